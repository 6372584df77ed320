package dto

import "io"

// UploadFile is a file received from a multipart form.
type UploadFile struct {
	Filename    string
	Size        int64
	ContentType string
	Reader      io.Reader
}

type UploadResponse struct {
	URL string `json:"url"`
}
