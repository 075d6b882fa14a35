package libs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const fiveMB = 5 * 1024 * 1024

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name string
		file ImageFile
		code string
	}{
		{"png under limit", ImageFile{Filename: "a.png", ContentType: "image/png", Size: 1024}, ""},
		{"uppercase extension", ImageFile{Filename: "A.JPG", ContentType: "image/jpeg", Size: 1024}, ""},
		{"exactly at limit", ImageFile{Filename: "a.webp", ContentType: "image/webp", Size: fiveMB}, ""},
		{"over limit", ImageFile{Filename: "big.png", ContentType: "image/png", Size: fiveMB + 1}, RejectTooLarge},
		{"not an image", ImageFile{Filename: "doc.pdf", ContentType: "application/pdf", Size: 10}, RejectInvalidType},
		{"image type with odd extension", ImageFile{Filename: "a.bmp", ContentType: "image/bmp", Size: 10}, RejectInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rej := ValidateImage(tt.file, fiveMB)
			if tt.code == "" {
				assert.Nil(t, rej)
				return
			}
			if assert.NotNil(t, rej) {
				assert.Equal(t, tt.code, rej.Code)
				assert.Equal(t, tt.file.Filename, rej.Filename)
			}
		})
	}
}
