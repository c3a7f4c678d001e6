package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingSource struct {
	codes         []string
	metadataCalls int
	listCalls     int
	err           error
}

func (m *countingSource) Predictors(_ context.Context, _ string) ([]string, error) {
	m.listCalls++
	return m.codes, m.err
}

func (m *countingSource) PredictorMetadata(_ context.Context, path string) (Metadata, error) {
	m.metadataCalls++
	if m.err != nil {
		return Metadata{}, m.err
	}
	return Metadata{Name: path, Units: "m"}, nil
}

func testCache(inner MetadataSource, size int) *CachedMetadata {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCachedMetadata(inner, size, logger, testMetrics())
}

func TestCachedMetadata_CacheHit(t *testing.T) {
	inner := &countingSource{}
	cached := testCache(inner, 10)

	md1, err := cached.PredictorMetadata(context.Background(), "/data/fc/tp")
	require.NoError(t, err)
	md2, err := cached.PredictorMetadata(context.Background(), "/data/fc/tp")
	require.NoError(t, err)

	assert.Equal(t, md1, md2)
	assert.Equal(t, 1, inner.metadataCalls, "should only call inner once")
}

func TestCachedMetadata_ErrorsNotCached(t *testing.T) {
	inner := &countingSource{err: errors.New("backend down")}
	cached := testCache(inner, 10)

	_, err := cached.PredictorMetadata(context.Background(), "/data/fc/tp")
	require.Error(t, err)

	inner.err = nil
	md, err := cached.PredictorMetadata(context.Background(), "/data/fc/tp")
	require.NoError(t, err)
	assert.Equal(t, "m", md.Units)
	assert.Equal(t, 2, inner.metadataCalls, "failed lookup must be retried")
}

func TestCachedMetadata_EvictsLeastRecentlyUsed(t *testing.T) {
	inner := &countingSource{}
	cached := testCache(inner, 2)

	for _, p := range []string{"/a", "/b", "/a", "/c"} {
		_, err := cached.PredictorMetadata(context.Background(), p)
		require.NoError(t, err)
	}
	// /b was least recently used and should have been evicted by /c.
	before := inner.metadataCalls
	_, err := cached.PredictorMetadata(context.Background(), "/b")
	require.NoError(t, err)
	assert.Equal(t, before+1, inner.metadataCalls)

	// /a survived.
	before = inner.metadataCalls
	_, err = cached.PredictorMetadata(context.Background(), "/a")
	require.NoError(t, err)
	assert.Equal(t, before, inner.metadataCalls)
}

func TestCachedMetadata_WarmupPrimesEveryPredictor(t *testing.T) {
	inner := &countingSource{codes: []string{"tp", "cp", "cape"}}
	cached := testCache(inner, 10)

	require.NoError(t, cached.Warmup(context.Background(), "/data/fc"))
	assert.Equal(t, 1, inner.listCalls)
	assert.Equal(t, 3, inner.metadataCalls)

	// Follow-up lookups are warm.
	_, err := cached.PredictorMetadata(context.Background(), "/data/fc/tp")
	require.NoError(t, err)
	assert.Equal(t, 3, inner.metadataCalls)
}

func TestCachedMetadata_WarmupListFailureIsFatal(t *testing.T) {
	inner := &countingSource{err: errors.New("no such path")}
	cached := testCache(inner, 10)

	assert.Error(t, cached.Warmup(context.Background(), "/nope"))
}
