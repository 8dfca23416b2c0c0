package attachment

import (
	"context"
	"io"
	"os"
)

// Stored describes a file written by a Store.
type Stored struct {
	Path     string
	Size     int64
	Checksum string
}

// Store owns the attachment files under one storage root. Paths are
// relative to that root and written at most once.
type Store interface {
	Save(ctx context.Context, storagePath string, r io.Reader) (*Stored, error)
	Open(storagePath string) (*os.File, error)
	Remove(storagePath string) error
}
