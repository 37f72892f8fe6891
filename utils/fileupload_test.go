package utils

import (
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateImageFile(t *testing.T) {
	tests := []struct {
		name         string
		filename     string
		size         int64
		expectedCode string
	}{
		{"valid png", "engine_bay.png", 1024, ""},
		{"valid png uppercase extension", "DASHBOARD.PNG", 2048, ""},
		{"too large", "huge.png", MaxFileSize + 1, "FILE_TOO_LARGE"},
		{"exactly at limit", "limit.png", MaxFileSize, ""},
		{"wrong format jpg", "photo.jpg", 1024, "INVALID_FILE_FORMAT"},
		{"no extension", "photo", 1024, "INVALID_FILE_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := &multipart.FileHeader{
				Filename: tt.filename,
				Size:     tt.size,
			}

			err := ValidateImageFile(header)
			if tt.expectedCode == "" {
				assert.NoError(t, err)
				return
			}

			assert.Error(t, err)
			uploadErr, ok := err.(*FileUploadError)
			assert.True(t, ok, "error should be a FileUploadError")
			assert.Equal(t, tt.expectedCode, uploadErr.Code)
		})
	}
}
