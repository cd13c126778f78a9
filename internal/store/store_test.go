package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	transcript "github.com/anatolykoptev/go-transcript"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sample(videoID, text string) *transcript.Transcript {
	return &transcript.Transcript{
		VideoID:  videoID,
		Language: "en",
		Text:     text,
		Segments: []transcript.Segment{
			{Text: text, Start: 0, End: 2, Duration: 2},
		},
	}
}

func TestSaveAndGet(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sample("v1", "hello world")))

	got, ok, err := s.Get(ctx, "v1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v1", got.VideoID)
	assert.Equal(t, "hello world", got.Text)
	require.Len(t, got.Segments, 1)
	assert.Equal(t, 2.0, got.Segments[0].End)
}

func TestGetMissing(t *testing.T) {
	s := testStore(t)
	_, ok, err := s.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveUpserts(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sample("v1", "first")))
	require.NoError(t, s.Save(ctx, sample("v1", "second")))

	got, ok, err := s.Get(ctx, "v1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", got.Text)

	entries, err := s.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSaveRejectsAnonymous(t *testing.T) {
	s := testStore(t)
	err := s.Save(context.Background(), &transcript.Transcript{Text: "no id"})
	require.Error(t, err)
}

func TestListAndSearch(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sample("v1", "the quick brown fox")))
	require.NoError(t, s.Save(ctx, sample("v2", "lazy dogs sleep")))

	entries, err := s.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, 4, entriesByID(entries)["v1"].Words)

	found, err := s.Search(ctx, "quick", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "v1", found[0].VideoID)
}

func TestDelete(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sample("v1", "x")))
	require.NoError(t, s.Delete(ctx, "v1"))

	_, ok, err := s.Get(ctx, "v1")
	require.NoError(t, err)
	assert.False(t, ok)

	// deleting again is not an error
	require.NoError(t, s.Delete(ctx, "v1"))
}

func entriesByID(entries []Entry) map[string]Entry {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		m[e.VideoID] = e
	}
	return m
}
