package dto

// UploadResponse is returned after a successful file upload.
type UploadResponse struct {
	FileID    string `json:"fileId"`
	URL       string `json:"url"`
	FileName  string `json:"fileName"`
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"sizeBytes"`
	Checksum  string `json:"checksum"`
}
