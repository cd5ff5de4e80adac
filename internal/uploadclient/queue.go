package uploadclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prappser/csvdrop/internal/storage"
	"github.com/rs/zerolog/log"
)

// NoticeTTL is how long a notice stays visible absent a newer one.
const NoticeTTL = 5 * time.Second

// Queue owns the tracked files and their upload statuses. All mutation goes
// through Intake, Remove, RemoveAll and the per-file upload goroutines.
type Queue struct {
	uploader  Uploader
	noticeTTL time.Duration
	now       func() time.Time
	hook      func(TrackedFile, UploadStatus)

	mu          sync.Mutex
	files       []TrackedFile
	statuses    map[string]UploadStatus
	notice      string
	noticeSeq   uint64
	noticeTimer *time.Timer

	inflight sync.WaitGroup
}

type Option func(*Queue)

func WithNoticeTTL(d time.Duration) Option {
	return func(q *Queue) {
		q.noticeTTL = d
	}
}

// WithStatusHook registers fn to be called, outside the queue lock, after
// every status an upload enters.
func WithStatusHook(fn func(TrackedFile, UploadStatus)) Option {
	return func(q *Queue) {
		q.hook = fn
	}
}

func NewQueue(uploader Uploader, opts ...Option) *Queue {
	q := &Queue{
		uploader:  uploader,
		noticeTTL: NoticeTTL,
		now:       time.Now,
		statuses:  make(map[string]UploadStatus),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Intake classifies a batch of handles, appends the accepted ones in arrival
// order and starts one upload per accepted file.
func (q *Queue) Intake(ctx context.Context, handles []FileHandle) IntakeResult {
	var result IntakeResult

	q.mu.Lock()
	for _, h := range handles {
		name := h.Name()
		if !storage.IsCSV(name) {
			result.Invalid++
			continue
		}
		if q.hasNameLocked(name) {
			result.Duplicates++
			continue
		}

		tracked := TrackedFile{
			ID:     newFileID(name, q.now()),
			Name:   name,
			Size:   h.Size(),
			Handle: h,
		}
		q.files = append(q.files, tracked)
		q.statuses[tracked.ID] = UploadStatus{State: StateUploading, Progress: 0}
		result.Accepted = append(result.Accepted, tracked)
	}
	q.setNoticeLocked(rejectionNotice(result.Invalid, result.Duplicates))
	q.inflight.Add(len(result.Accepted))
	q.mu.Unlock()

	if result.Rejected() > 0 {
		log.Warn().
			Int("invalid", result.Invalid).
			Int("duplicates", result.Duplicates).
			Msg("Skipped files during intake")
	}

	for _, tracked := range result.Accepted {
		q.notify(tracked, UploadStatus{State: StateUploading, Progress: 0})
		go q.upload(ctx, tracked)
	}

	return result
}

func (q *Queue) upload(ctx context.Context, tracked TrackedFile) {
	defer q.inflight.Done()

	resp, err := q.uploader.Upload(ctx, tracked.Handle)
	if err != nil {
		log.Error().Err(err).Str("fileName", tracked.Name).Msg("Upload error")
		q.resolve(tracked, UploadStatus{State: StateError, Progress: 0}, fmt.Sprintf("Failed to upload %s", tracked.Name))
		return
	}

	if resp != nil {
		log.Debug().
			Str("fileName", tracked.Name).
			Str("savedAs", resp.SavedAs).
			Int64("size", resp.Size).
			Msg("Upload completed")
	}
	q.resolve(tracked, UploadStatus{State: StateCompleted, Progress: 100}, "")
}

// resolve moves an uploading file to a terminal status. Results for removed
// files and for files already in a terminal state are dropped.
func (q *Queue) resolve(tracked TrackedFile, next UploadStatus, notice string) {
	q.mu.Lock()
	current, ok := q.statuses[tracked.ID]
	if !ok || current.State.Terminal() {
		q.mu.Unlock()
		return
	}
	q.statuses[tracked.ID] = next
	if notice != "" {
		q.setNoticeLocked(notice)
	}
	q.mu.Unlock()

	q.notify(tracked, next)
}

func (q *Queue) Remove(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, f := range q.files {
		if f.ID == id {
			q.files = append(q.files[:i], q.files[i+1:]...)
			break
		}
	}
	delete(q.statuses, id)
}

func (q *Queue) RemoveAll() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.files = nil
	q.statuses = make(map[string]UploadStatus)
}

func (q *Queue) Files() []TrackedFile {
	q.mu.Lock()
	defer q.mu.Unlock()

	files := make([]TrackedFile, len(q.files))
	copy(files, q.files)
	return files
}

func (q *Queue) Status(id string) (UploadStatus, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	status, ok := q.statuses[id]
	return status, ok
}

func (q *Queue) Statuses() map[string]UploadStatus {
	q.mu.Lock()
	defer q.mu.Unlock()

	statuses := make(map[string]UploadStatus, len(q.statuses))
	for id, status := range q.statuses {
		statuses[id] = status
	}
	return statuses
}

// Notice returns the current user-facing message, or "" when none is shown.
func (q *Queue) Notice() string {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.notice
}

// Wait blocks until every upload started so far has resolved.
func (q *Queue) Wait() {
	q.inflight.Wait()
}

func (q *Queue) hasNameLocked(name string) bool {
	for _, f := range q.files {
		if f.Name == name {
			return true
		}
	}
	return false
}

// setNoticeLocked replaces the notice and restarts its expiry timer. An empty
// message clears the notice without arming a timer.
func (q *Queue) setNoticeLocked(message string) {
	if q.noticeTimer != nil {
		q.noticeTimer.Stop()
		q.noticeTimer = nil
	}
	q.noticeSeq++
	q.notice = message
	if message == "" {
		return
	}

	seq := q.noticeSeq
	q.noticeTimer = time.AfterFunc(q.noticeTTL, func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		// a timer that lost the race with Stop must not clear a newer notice
		if q.noticeSeq == seq {
			q.notice = ""
			q.noticeTimer = nil
		}
	})
}

func (q *Queue) notify(tracked TrackedFile, status UploadStatus) {
	if q.hook != nil {
		q.hook(tracked, status)
	}
}

func rejectionNotice(invalid, duplicates int) string {
	switch {
	case invalid > 0 && duplicates > 0:
		return fmt.Sprintf("%d invalid files and %d duplicate files were skipped", invalid, duplicates)
	case invalid > 0:
		return fmt.Sprintf("%d invalid files were skipped. Only CSV files are allowed", invalid)
	case duplicates > 0:
		return fmt.Sprintf("%d duplicate files were skipped", duplicates)
	default:
		return ""
	}
}
