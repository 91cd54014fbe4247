package usecase

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/batchdl/internal/domain/download"
)

// mapFileSystem reports existence from a fixed set of paths.
type mapFileSystem struct {
	existing  map[string]bool
	existsErr error
}

func (m *mapFileSystem) Exists(_ context.Context, path string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	return m.existing[path], nil
}

func (*mapFileSystem) MkdirAll(_ context.Context, _ string) error {
	return nil
}

func (*mapFileSystem) Create(_ context.Context, _ string) (io.WriteCloser, error) {
	return nil, errors.New("not supported")
}

func TestBatch_ClaimSkipsActiveAndExistingNames(t *testing.T) {
	fs := &mapFileSystem{existing: map[string]bool{"/dl/img_1.png": true}}
	renderer := &recordingRenderer{}
	batch := NewBatch(3, "/dl", fs, renderer, "")
	ctx := context.Background()

	first, err := batch.Claim(ctx, "http://a/img.png", 10)
	require.NoError(t, err)
	second, err := batch.Claim(ctx, "http://b/img.png", 0)
	require.NoError(t, err)

	assert.Equal(t, "img.png", first)
	assert.Equal(t, "img_2.png", second)

	frame := batch.Snapshot()
	require.Len(t, frame.Entries, 2)
	assert.Equal(t, "img.png", frame.Entries[0].Name)
	assert.Equal(t, int64(10), frame.Entries[0].Total)
	assert.Equal(t, "img_2.png", frame.Entries[1].Name)
	assert.Len(t, renderer.Frames(), 2)
}

func TestBatch_ClaimReportsFilesystemError(t *testing.T) {
	batch := NewBatch(1, "/dl", &mapFileSystem{existsErr: errors.New("permission denied")}, nil, "")

	_, err := batch.Claim(context.Background(), "http://a/img.png", 0)

	require.Error(t, err)
	assert.Equal(t, download.KindFilesystem, download.KindOf(err))
	assert.Empty(t, batch.Snapshot().Entries)
}

func TestBatch_FinishReleasesEntryAndCounts(t *testing.T) {
	renderer := &recordingRenderer{}
	batch := NewBatch(2, "/dl", &mapFileSystem{}, renderer, "")
	ctx := context.Background()

	name, err := batch.Claim(ctx, "http://a/", 4)
	require.NoError(t, err)
	assert.Equal(t, "image", name)
	require.NoError(t, batch.Advance(name, 4))

	batch.Finish(name)
	batch.Finish("")
	batch.Finish("")

	frame := batch.Snapshot()
	assert.Equal(t, 2, frame.Completed, "counter never exceeds the task count")
	assert.Empty(t, frame.Entries)

	frames := renderer.Frames()
	last := frames[len(frames)-1]
	assert.True(t, last.Finished())
}

func TestBatch_AdvanceUnknownName(t *testing.T) {
	batch := NewBatch(1, "/dl", &mapFileSystem{}, nil, "")

	assert.ErrorIs(t, batch.Advance("ghost", 1), download.ErrUnknownEntry)
}
