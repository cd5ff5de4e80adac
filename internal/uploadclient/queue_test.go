package uploadclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prappser/csvdrop/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memFile struct {
	name string
	data []byte
}

func (f memFile) Name() string { return f.name }
func (f memFile) Size() int64 { return int64(len(f.data)) }
func (f memFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

func files(names ...string) []FileHandle {
	handles := make([]FileHandle, 0, len(names))
	for _, name := range names {
		handles = append(handles, memFile{name: name, data: []byte("a,b\n1,2\n")})
	}
	return handles
}

type mockUploader struct {
	uploadFunc func(ctx context.Context, file FileHandle) (*storage.UploadResponse, error)
}

func (m *mockUploader) Upload(ctx context.Context, file FileHandle) (*storage.UploadResponse, error) {
	return m.uploadFunc(ctx, file)
}

func succeeding() *mockUploader {
	return &mockUploader{uploadFunc: func(ctx context.Context, file FileHandle) (*storage.UploadResponse, error) {
		return &storage.UploadResponse{Success: true, FileName: file.Name(), SavedAs: "1-" + file.Name(), Size: file.Size()}, nil
	}}
}

// gated blocks every upload until release is closed.
func gated(release <-chan struct{}, err error) *mockUploader {
	return &mockUploader{uploadFunc: func(ctx context.Context, file FileHandle) (*storage.UploadResponse, error) {
		<-release
		if err != nil {
			return nil, err
		}
		return &storage.UploadResponse{Success: true, FileName: file.Name()}, nil
	}}
}

func TestIntake_ShouldSkipInvalidFiles(t *testing.T) {
	// given
	q := NewQueue(succeeding())

	// when
	result := q.Intake(context.Background(), files("a.csv", "b.txt", "c.CSV", "d.csv"))
	q.Wait()

	// then
	assert.Equal(t, 2, result.Invalid)
	assert.Equal(t, 0, result.Duplicates)
	require.Len(t, result.Accepted, 2)
	assert.Equal(t, "a.csv", result.Accepted[0].Name)
	assert.Equal(t, "d.csv", result.Accepted[1].Name)
	assert.Len(t, q.Files(), 2)
	assert.Equal(t, "2 invalid files were skipped. Only CSV files are allowed", q.Notice())
}

func TestIntake_ShouldSkipDuplicatesAndKeepOriginal(t *testing.T) {
	// given
	q := NewQueue(succeeding())
	first := q.Intake(context.Background(), files("a.csv"))
	q.Wait()

	// when
	second := q.Intake(context.Background(), files("a.csv", "b.csv"))
	q.Wait()

	// then
	assert.Equal(t, 1, second.Duplicates)
	queued := q.Files()
	require.Len(t, queued, 2)
	assert.Equal(t, first.Accepted[0].ID, queued[0].ID)
	assert.Equal(t, "b.csv", queued[1].Name)
	status, ok := q.Status(first.Accepted[0].ID)
	require.True(t, ok)
	assert.Equal(t, StateCompleted, status.State)
	assert.Equal(t, "1 duplicate files were skipped", q.Notice())
}

func TestIntake_ShouldSkipDuplicatesWithinOneBatch(t *testing.T) {
	q := NewQueue(succeeding())

	result := q.Intake(context.Background(), files("a.csv", "a.csv"))
	q.Wait()

	assert.Len(t, result.Accepted, 1)
	assert.Equal(t, 1, result.Duplicates)
}

func TestIntake_ShouldCombineRejectionCounts(t *testing.T) {
	// given
	q := NewQueue(succeeding())
	q.Intake(context.Background(), files("a.csv"))
	q.Wait()

	// when
	q.Intake(context.Background(), files("a.csv", "x.txt", "y.json"))
	q.Wait()

	// then
	assert.Equal(t, "2 invalid files and 1 duplicate files were skipped", q.Notice())
}

func TestIntake_ShouldAssignUniqueIDsToSameName(t *testing.T) {
	// given
	q := NewQueue(succeeding())
	first := q.Intake(context.Background(), files("a.csv"))
	q.Wait()
	q.Remove(first.Accepted[0].ID)

	// when
	second := q.Intake(context.Background(), files("a.csv"))
	q.Wait()

	// then
	require.Len(t, second.Accepted, 1)
	assert.NotEqual(t, first.Accepted[0].ID, second.Accepted[0].ID)
	assert.True(t, strings.HasPrefix(second.Accepted[0].ID, "a.csv-"))
}

func TestUpload_ShouldStartUploadingThenComplete(t *testing.T) {
	// given
	release := make(chan struct{})
	q := NewQueue(gated(release, nil))

	// when
	result := q.Intake(context.Background(), files("a.csv", "b.csv"))

	// then
	for _, f := range result.Accepted {
		status, ok := q.Status(f.ID)
		require.True(t, ok)
		assert.Equal(t, UploadStatus{State: StateUploading, Progress: 0}, status)
	}

	close(release)
	q.Wait()

	for _, f := range result.Accepted {
		status, ok := q.Status(f.ID)
		require.True(t, ok)
		assert.Equal(t, UploadStatus{State: StateCompleted, Progress: 100}, status)
	}
	assert.Empty(t, q.Notice())
}

func TestUpload_ShouldMarkErrorAndRaiseNotice(t *testing.T) {
	// given
	q := NewQueue(&mockUploader{uploadFunc: func(ctx context.Context, file FileHandle) (*storage.UploadResponse, error) {
		if file.Name() == "bad.csv" {
			return nil, errors.New("connection refused")
		}
		return &storage.UploadResponse{Success: true}, nil
	}})

	// when
	result := q.Intake(context.Background(), files("good.csv", "bad.csv"))
	q.Wait()

	// then
	good, _ := q.Status(result.Accepted[0].ID)
	bad, _ := q.Status(result.Accepted[1].ID)
	assert.Equal(t, StateCompleted, good.State)
	assert.Equal(t, UploadStatus{State: StateError, Progress: 0}, bad)
	assert.Equal(t, "Failed to upload bad.csv", q.Notice())
}

func TestResolve_ShouldNotLeaveTerminalState(t *testing.T) {
	// given
	q := NewQueue(succeeding())
	result := q.Intake(context.Background(), files("a.csv"))
	q.Wait()
	tracked := result.Accepted[0]

	// when
	q.resolve(tracked, UploadStatus{State: StateError}, "Failed to upload a.csv")

	// then
	status, _ := q.Status(tracked.ID)
	assert.Equal(t, StateCompleted, status.State)
	assert.Empty(t, q.Notice())
}

func TestRemove_ShouldDropQueueAndStatusEntries(t *testing.T) {
	// given
	release := make(chan struct{})
	q := NewQueue(gated(release, errors.New("boom")))
	result := q.Intake(context.Background(), files("a.csv", "b.csv"))

	// when
	q.Remove(result.Accepted[0].ID)
	close(release)
	q.Wait()

	// then
	queued := q.Files()
	require.Len(t, queued, 1)
	assert.Equal(t, "b.csv", queued[0].Name)
	_, ok := q.Status(result.Accepted[0].ID)
	assert.False(t, ok)
	assert.Len(t, q.Statuses(), 1)
}

func TestRemoveAll_ShouldEmptyBothCollections(t *testing.T) {
	// given
	release := make(chan struct{})
	q := NewQueue(gated(release, nil))
	q.Intake(context.Background(), files("a.csv", "b.csv", "c.csv"))

	// when
	q.RemoveAll()
	close(release)
	q.Wait()

	// then
	assert.Empty(t, q.Files())
	assert.Empty(t, q.Statuses())
}

func TestRemove_LateFailureShouldNotRaiseNotice(t *testing.T) {
	release := make(chan struct{})
	q := NewQueue(gated(release, errors.New("boom")))
	result := q.Intake(context.Background(), files("a.csv"))

	q.Remove(result.Accepted[0].ID)
	close(release)
	q.Wait()

	assert.Empty(t, q.Notice())
	assert.Empty(t, q.Statuses())
}

func TestNotice_ShouldExpire(t *testing.T) {
	// given
	q := NewQueue(succeeding(), WithNoticeTTL(50*time.Millisecond))

	// when
	q.Intake(context.Background(), files("a.txt"))

	// then
	assert.NotEmpty(t, q.Notice())
	assert.Eventually(t, func() bool { return q.Notice() == "" }, time.Second, 10*time.Millisecond)
}

func TestNotice_NewIntakeShouldReplaceMessage(t *testing.T) {
	// given
	q := NewQueue(succeeding(), WithNoticeTTL(300*time.Millisecond))
	q.Intake(context.Background(), files("a.txt"))
	q.Wait()
	time.Sleep(150 * time.Millisecond)

	// when
	q.Intake(context.Background(), files("b.txt", "c.txt"))
	q.Wait()
	time.Sleep(200 * time.Millisecond)

	// then the first timer has fired but the newer notice survives it
	assert.Equal(t, "2 invalid files were skipped. Only CSV files are allowed", q.Notice())
	assert.Eventually(t, func() bool { return q.Notice() == "" }, time.Second, 10*time.Millisecond)
}

func TestNotice_CleanIntakeShouldClearMessage(t *testing.T) {
	q := NewQueue(succeeding())
	q.Intake(context.Background(), files("a.txt"))
	require.NotEmpty(t, q.Notice())

	q.Intake(context.Background(), files("a.csv"))
	q.Wait()

	assert.Empty(t, q.Notice())
}

func TestStatusHook_ShouldSeeEveryTransition(t *testing.T) {
	// given
	var mu sync.Mutex
	var seen []State
	q := NewQueue(succeeding(), WithStatusHook(func(f TrackedFile, s UploadStatus) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s.State)
	}))

	// when
	q.Intake(context.Background(), files("a.csv"))
	q.Wait()

	// then
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{StateUploading, StateCompleted}, seen)
}
