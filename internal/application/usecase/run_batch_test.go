package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/batchdl/internal/application/port"
	"github.com/bnema/batchdl/internal/domain/download"
)

// osFileSystem implements port.FileSystem on the real disk for testing.
type osFileSystem struct{}

func (osFileSystem) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (osFileSystem) MkdirAll(_ context.Context, path string) error {
	return os.MkdirAll(path, 0o755)
}

func (osFileSystem) Create(_ context.Context, path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// staticFetcher serves fixed bodies keyed by URL.
type staticFetcher struct {
	bodies map[string][]byte
	// hideLength reports an unknown total for every response.
	hideLength bool
	delay      time.Duration

	active    atomic.Int32
	maxActive atomic.Int32
}

func (f *staticFetcher) Fetch(_ context.Context, url string) (io.ReadCloser, int64, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		peak := f.maxActive.Load()
		if n <= peak || f.maxActive.CompareAndSwap(peak, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	body, ok := f.bodies[url]
	if !ok {
		return nil, 0, errors.New("connection refused")
	}
	total := int64(len(body))
	if f.hideLength {
		total = 0
	}
	return io.NopCloser(bytes.NewReader(body)), total, nil
}

// mockFetcher is a testify mock of port.Fetcher.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	args := m.Called(ctx, url)
	body, _ := args.Get(0).(io.ReadCloser)
	return body, args.Get(1).(int64), args.Error(2)
}

// recordingRenderer keeps every frame it is given.
type recordingRenderer struct {
	mu     sync.Mutex
	frames []download.Frame
}

func (r *recordingRenderer) Render(frame download.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, frame)
}

func (r *recordingRenderer) Frames() []download.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]download.Frame(nil), r.frames...)
}

// recordingEvents keeps every download event.
type recordingEvents struct {
	mu     sync.Mutex
	events []port.DownloadEvent
}

func (r *recordingEvents) OnDownloadEvent(_ context.Context, event port.DownloadEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func newRunBatch(fetcher port.Fetcher, events port.DownloadEventHandler) *RunBatchUseCase {
	fs := osFileSystem{}
	return NewRunBatchUseCase(NewDownloadFileUseCase(fetcher, fs, events), fs, RunBatchOptions{})
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestRunBatch_SameTrailingSegmentGetsDistinctNames(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	fetcher := &staticFetcher{bodies: map[string][]byte{
		"http://a/img.png": []byte("aaa"),
		"http://b/img.png": []byte("bbbb"),
		"http://c/img.png": []byte("ccccc"),
	}}
	renderer := &recordingRenderer{}

	out, err := newRunBatch(fetcher, nil).Execute(context.Background(), RunBatchInput{
		URLs:           []string{"http://a/img.png", "http://b/img.png", "http://c/img.png"},
		DestinationDir: dir,
		Workers:        2,
		Renderer:       renderer,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"img.png", "img_1.png", "img_2.png"}, listDir(t, dir))
	assert.Equal(t, 3, out.Succeeded)
	assert.Equal(t, 0, out.Failed)
	assert.Equal(t, 3, out.Final.Completed)
	assert.Empty(t, out.Final.Entries)

	// Every result points at the bytes served for its own URL.
	for _, r := range out.Results {
		data, readErr := os.ReadFile(filepath.Join(dir, r.Filename))
		require.NoError(t, readErr)
		assert.Equal(t, fetcher.bodies[r.URL], data)
		assert.Equal(t, int64(len(data)), r.Bytes)
	}

	frames := renderer.Frames()
	require.NotEmpty(t, frames)
	assert.Equal(t, download.Frame{Completed: 0, Total: 3, Entries: []download.EntryView{}}, frames[0])
	last := frames[len(frames)-1]
	assert.Equal(t, 3, last.Completed)
	assert.Empty(t, last.Entries)
}

func TestRunBatch_ActiveNamesNeverCollide(t *testing.T) {
	dir := t.TempDir()
	bodies := map[string][]byte{}
	urls := make([]string, 0, 12)
	for _, host := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		u := "http://" + host + "/same"
		urls = append(urls, u)
		bodies[u] = bytes.Repeat([]byte(host), 3*ChunkSize)
	}
	renderer := &recordingRenderer{}

	out, err := newRunBatch(&staticFetcher{bodies: bodies}, nil).Execute(context.Background(), RunBatchInput{
		URLs:           urls,
		DestinationDir: dir,
		Workers:        6,
		Renderer:       renderer,
	})
	require.NoError(t, err)
	assert.Len(t, listDir(t, dir), len(urls))

	seen := map[string]bool{}
	for _, r := range out.Results {
		assert.False(t, seen[r.Filename], "duplicate filename %s", r.Filename)
		seen[r.Filename] = true
	}

	for _, frame := range renderer.Frames() {
		names := map[string]bool{}
		for _, e := range frame.Entries {
			assert.False(t, names[e.Name], "frame lists %s twice", e.Name)
			names[e.Name] = true
		}
		assert.LessOrEqual(t, frame.Completed, frame.Total)
	}
}

func TestRunBatch_ProgressIsMonotonicAndBounded(t *testing.T) {
	dir := t.TempDir()
	body := bytes.Repeat([]byte("x"), 5*ChunkSize+17)
	renderer := &recordingRenderer{}

	_, err := newRunBatch(&staticFetcher{bodies: map[string][]byte{"http://a/big.bin": body}}, nil).
		Execute(context.Background(), RunBatchInput{
			URLs:           []string{"http://a/big.bin"},
			DestinationDir: dir,
			Workers:        1,
			Renderer:       renderer,
		})
	require.NoError(t, err)

	var last int64 = -1
	updates := 0
	for _, frame := range renderer.Frames() {
		for _, e := range frame.Entries {
			require.Equal(t, "big.bin", e.Name)
			assert.GreaterOrEqual(t, e.Done, last)
			assert.LessOrEqual(t, e.Done, e.Total)
			assert.Equal(t, int64(len(body)), e.Total)
			last = e.Done
			updates++
		}
	}
	assert.Equal(t, int64(len(body)), last)
	// One claim frame plus one frame per chunk.
	assert.Equal(t, 1+6, updates)
}

func TestRunBatch_UnknownLength(t *testing.T) {
	dir := t.TempDir()
	body := bytes.Repeat([]byte("y"), 2*ChunkSize)
	renderer := &recordingRenderer{}

	out, err := newRunBatch(&staticFetcher{bodies: map[string][]byte{"http://a/stream": body}, hideLength: true}, nil).
		Execute(context.Background(), RunBatchInput{
			URLs:           []string{"http://a/stream"},
			DestinationDir: dir,
			Renderer:       renderer,
		})
	require.NoError(t, err)
	assert.Equal(t, int64(len(body)), out.Results[0].Bytes)

	for _, frame := range renderer.Frames() {
		for _, e := range frame.Entries {
			assert.False(t, e.Known())
		}
	}
	assert.True(t, out.Final.Finished())
}

func TestRunBatch_OneFailureAmongFive(t *testing.T) {
	dir := t.TempDir()
	fetcher := &mockFetcher{}
	urls := []string{"http://h/1.txt", "http://h/2.txt", "http://h/broken.txt", "http://h/4.txt", "http://h/5.txt"}
	refused := errors.New("connection refused")

	for _, u := range urls {
		if u == "http://h/broken.txt" {
			fetcher.On("Fetch", mock.Anything, u).Return(nil, int64(0), refused).Once()
			continue
		}
		fetcher.On("Fetch", mock.Anything, u).Return(io.NopCloser(bytes.NewReader([]byte(u))), int64(len(u)), nil).Once()
	}

	out, err := newRunBatch(fetcher, nil).Execute(context.Background(), RunBatchInput{
		URLs:           urls,
		DestinationDir: dir,
		Workers:        2,
	})

	require.Error(t, err)
	require.ErrorIs(t, err, refused)
	var dlErr *download.DownloadError
	require.ErrorAs(t, err, &dlErr)
	assert.Equal(t, "http://h/broken.txt", dlErr.URL)
	assert.Equal(t, download.KindNetwork, dlErr.Kind)

	assert.Equal(t, []string{"1.txt", "2.txt", "4.txt", "5.txt"}, listDir(t, dir))
	assert.Equal(t, 5, out.Final.Completed)
	assert.Empty(t, out.Final.Entries)
	assert.Equal(t, 4, out.Succeeded)
	assert.Equal(t, 1, out.Failed)
	assert.Empty(t, out.Results[2].Filename)
	fetcher.AssertExpectations(t)
}

func TestRunBatch_ShortBodyFails(t *testing.T) {
	dir := t.TempDir()
	fetcher := &mockFetcher{}
	fetcher.On("Fetch", mock.Anything, "http://h/short.bin").
		Return(io.NopCloser(bytes.NewReader([]byte("12345"))), int64(10), nil)

	out, err := newRunBatch(fetcher, nil).Execute(context.Background(), RunBatchInput{
		URLs:           []string{"http://h/short.bin"},
		DestinationDir: dir,
	})

	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, download.KindNetwork, download.KindOf(err))
	assert.Equal(t, 1, out.Final.Completed)
	assert.Empty(t, out.Final.Entries)
}

func TestRunBatch_LongBodyFails(t *testing.T) {
	dir := t.TempDir()
	fetcher := &mockFetcher{}
	fetcher.On("Fetch", mock.Anything, "http://h/long.bin").
		Return(io.NopCloser(bytes.NewReader([]byte("0123456789"))), int64(4), nil)

	_, err := newRunBatch(fetcher, nil).Execute(context.Background(), RunBatchInput{
		URLs:           []string{"http://h/long.bin"},
		DestinationDir: dir,
	})

	require.ErrorIs(t, err, download.ErrLengthExceeded)
}

func TestRunBatch_DestinationNotADirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	out, err := newRunBatch(&staticFetcher{bodies: map[string][]byte{"http://a/img.png": []byte("a")}}, nil).
		Execute(context.Background(), RunBatchInput{
			URLs:           []string{"http://a/img.png"},
			DestinationDir: filepath.Join(blocker, "sub"),
		})

	require.Error(t, err)
	assert.Equal(t, download.KindFilesystem, download.KindOf(err))
	assert.Equal(t, 1, out.Final.Completed)
}

func TestRunBatch_ExistingFileOnDiskIsNotOverwritten(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "img.png"), []byte("old"), 0o600))

	out, err := newRunBatch(&staticFetcher{bodies: map[string][]byte{"http://a/img.png": []byte("new")}}, nil).
		Execute(context.Background(), RunBatchInput{
			URLs:           []string{"http://a/img.png"},
			DestinationDir: dir,
		})
	require.NoError(t, err)

	assert.Equal(t, "img_1.png", out.Results[0].Filename)
	old, err := os.ReadFile(filepath.Join(dir, "img.png"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(old))
}

func TestRunBatch_TrailingSlashUsesPlaceholder(t *testing.T) {
	dir := t.TempDir()

	out, err := newRunBatch(&staticFetcher{bodies: map[string][]byte{"http://a/gallery/": []byte("a")}}, nil).
		Execute(context.Background(), RunBatchInput{
			URLs:           []string{"http://a/gallery/"},
			DestinationDir: dir,
		})
	require.NoError(t, err)
	assert.Equal(t, "image", out.Results[0].Filename)
}

func TestRunBatch_BoundsConcurrency(t *testing.T) {
	bodies := map[string][]byte{}
	urls := make([]string, 0, 10)
	for i := range 10 {
		u := "http://h/" + string(rune('a'+i))
		urls = append(urls, u)
		bodies[u] = []byte("x")
	}
	fetcher := &staticFetcher{bodies: bodies, delay: 20 * time.Millisecond}

	_, err := newRunBatch(fetcher, nil).Execute(context.Background(), RunBatchInput{
		URLs:           urls,
		DestinationDir: t.TempDir(),
		Workers:        3,
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, fetcher.maxActive.Load(), int32(3))
	assert.GreaterOrEqual(t, fetcher.maxActive.Load(), int32(1))
}

func TestRunBatch_EmptyList(t *testing.T) {
	renderer := &recordingRenderer{}

	out, err := newRunBatch(&staticFetcher{}, nil).Execute(context.Background(), RunBatchInput{
		DestinationDir: t.TempDir(),
		Renderer:       renderer,
	})
	require.NoError(t, err)

	frames := renderer.Frames()
	require.Len(t, frames, 1)
	assert.True(t, frames[0].Finished())
	assert.Equal(t, 1.0, frames[0].Fraction())
	assert.Equal(t, 0, out.Succeeded)
}

func TestRunBatch_InvalidInput(t *testing.T) {
	uc := newRunBatch(&staticFetcher{}, nil)

	_, err := uc.Execute(context.Background(), RunBatchInput{URLs: []string{"http://a/x"}, Workers: -1})
	require.ErrorIs(t, err, ErrInvalidWorkers)

	_, err = uc.Execute(context.Background(), RunBatchInput{URLs: []string{"http://a/x", "  "}})
	require.ErrorIs(t, err, ErrEmptyURL)
}

func TestRunBatch_EmitsEvents(t *testing.T) {
	dir := t.TempDir()
	events := &recordingEvents{}

	_, err := newRunBatch(&staticFetcher{bodies: map[string][]byte{"http://a/ok.txt": []byte("ok")}}, events).
		Execute(context.Background(), RunBatchInput{
			URLs:           []string{"http://a/ok.txt", "http://a/missing.txt"},
			DestinationDir: dir,
			Workers:        1,
		})
	require.Error(t, err)

	byType := map[port.DownloadEventType][]port.DownloadEvent{}
	for _, e := range events.events {
		byType[e.Type] = append(byType[e.Type], e)
	}

	require.Len(t, byType[port.DownloadEventStarted], 1)
	require.Len(t, byType[port.DownloadEventFinished], 1)
	require.Len(t, byType[port.DownloadEventFailed], 1)

	finished := byType[port.DownloadEventFinished][0]
	assert.Equal(t, filepath.Join(dir, "ok.txt"), finished.Destination)
	assert.Equal(t, int64(2), finished.Bytes)

	failed := byType[port.DownloadEventFailed][0]
	assert.Equal(t, "http://a/missing.txt", failed.URL)
	assert.Empty(t, failed.Filename)
	assert.Error(t, failed.Error)
}

type fakeDiskSpace struct {
	free   uint64
	probed []string
}

func (f *fakeDiskSpace) FreeBytes(_ context.Context, path string) (uint64, error) {
	f.probed = append(f.probed, path)
	return f.free, nil
}

func TestRunBatch_ProbesNearestExistingDirectory(t *testing.T) {
	root := t.TempDir()
	probe := &fakeDiskSpace{free: 1}
	fs := osFileSystem{}
	uc := NewRunBatchUseCase(NewDownloadFileUseCase(&staticFetcher{}, fs, nil), fs, RunBatchOptions{
		MinFreeSpace: 1 << 30,
		DiskSpace:    probe,
	})

	_, err := uc.Execute(context.Background(), RunBatchInput{DestinationDir: filepath.Join(root, "a", "b")})
	require.NoError(t, err)
	assert.Equal(t, []string{root}, probe.probed)
}
