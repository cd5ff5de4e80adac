package storage

type UploadRequest struct {
	Filename string
	Size     int64
}

type UploadResponse struct {
	Success  bool   `json:"success"`
	FileName string `json:"fileName"`
	SavedAs  string `json:"savedAs"`
	Size     int64  `json:"size"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

const (
	MessageNoFile        = "No file provided"
	MessageNotCSV        = "Only CSV files are allowed"
	MessageSaveFailed    = "Failed to save file"
	MessageProcessFailed = "Failed to process upload"
)
