// Package storage provides object storage for uploaded images and contest entries.
package storage

import (
	"context"
	"fmt"
	"time"
)

// Uploader stores a file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, fileName, contentType string, body []byte) (string, error)
}

// ObjectKey derives a collision-resistant object key from the original file name.
func ObjectKey(fileName string) string {
	return fmt.Sprintf("%d_%s", time.Now().UTC().UnixNano(), fileName)
}
