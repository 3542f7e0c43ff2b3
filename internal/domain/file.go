package domain

// UploadedFile a plan document held in blob storage
type UploadedFile struct {
	FileID      string `json:"file_id"`
	Filename    string `json:"filename"`
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type,omitempty"`
}
