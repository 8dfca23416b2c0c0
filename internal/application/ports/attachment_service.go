package ports

import (
	"context"
	"mime/multipart"
	"os"
)

type AttachmentService interface {
	Store(ctx context.Context, in *multipart.FileHeader) (string, error)
	Open(storagePath string) (f *os.File, contentType string, err error)
	Remove(storagePath string) error
	ResolveURL(storagePath string) string
}
