package libs

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Rejection codes, named after the drop-zone codes the admin UI already shows.
const (
	RejectTooLarge    = "file-too-large"
	RejectInvalidType = "file-invalid-type"
	RejectTooMany     = "too-many-files"
)

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type ImageFile struct {
	Filename    string
	ContentType string
	Size        int64
}

type Rejection struct {
	Filename string `json:"filename"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// ValidateImage checks a single file against the size limit and the image type
// list. It returns nil when the file is acceptable.
func ValidateImage(f ImageFile, maxSize int64) *Rejection {
	if !strings.HasPrefix(strings.ToLower(f.ContentType), "image/") {
		return &Rejection{Filename: f.Filename, Code: RejectInvalidType, Message: "file type must be an image"}
	}

	ext := strings.ToLower(filepath.Ext(f.Filename))
	if !allowedImageExtensions[ext] {
		return &Rejection{Filename: f.Filename, Code: RejectInvalidType, Message: "only .png, .jpg, .jpeg, .gif, .webp are supported"}
	}

	if f.Size > maxSize {
		return &Rejection{
			Filename: f.Filename,
			Code:     RejectTooLarge,
			Message:  fmt.Sprintf("file is larger than %dMB", maxSize/(1024*1024)),
		}
	}

	return nil
}
