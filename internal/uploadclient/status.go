package uploadclient

type State string

const (
	StateUploading State = "uploading"
	StateCompleted State = "completed"
	StateError     State = "error"
)

// Terminal reports whether no further transition is allowed from s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateError
}

type UploadStatus struct {
	State    State `json:"status"`
	Progress int   `json:"progress"`
}

type IntakeResult struct {
	Accepted   []TrackedFile
	Invalid    int
	Duplicates int
}

// Rejected is the number of handles that did not enter the queue.
func (r IntakeResult) Rejected() int {
	return r.Invalid + r.Duplicates
}
