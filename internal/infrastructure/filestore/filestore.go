package filestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"user-directory-api/internal/domain/apperr"
	"user-directory-api/internal/domain/attachment"
)

const tmpPrefix = ".upload-"

var (
	ErrOutsideRoot = errors.New("path escapes storage root")
	ErrExists      = errors.New("storage path already written")
)

// FileStore keeps attachments on local disk under root.
type FileStore struct {
	logger *zap.Logger
	root   string
}

func New(logger *zap.Logger, dir string) (*FileStore, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve storage dir %s: %w", dir, err)
	}
	if err = os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create storage dir %s: %w", root, err)
	}

	logger.Info("file store ready", zap.String("root", root))

	return &FileStore{logger: logger, root: root}, nil
}

func (s *FileStore) Root() string { return s.root }

// Save streams r into a temp file next to the target, fsyncs it and links it
// into place. The link fails if the target exists, so a path is written once.
// A cancelled ctx before the link leaves nothing behind.
func (s *FileStore) Save(ctx context.Context, storagePath string, r io.Reader) (*attachment.Stored, error) {
	full, err := s.resolve(storagePath)
	if err != nil {
		return nil, &apperr.StorageError{Op: "resolve", Err: err}
	}
	dir := filepath.Dir(full)
	if err = os.MkdirAll(dir, 0o750); err != nil {
		return nil, &apperr.StorageError{Op: "mkdir", Err: err}
	}

	tmp, err := os.CreateTemp(dir, tmpPrefix+"*")
	if err != nil {
		return nil, &apperr.StorageError{Op: "create", Err: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	hasher := sha256.New()
	size, err := io.Copy(tmp, io.TeeReader(r, hasher))
	if err != nil {
		tmp.Close()
		return nil, &apperr.StorageError{Op: "write", Err: err}
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return nil, &apperr.StorageError{Op: "sync", Err: err}
	}
	if err = tmp.Close(); err != nil {
		return nil, &apperr.StorageError{Op: "close", Err: err}
	}

	if err = ctx.Err(); err != nil {
		return nil, &apperr.StorageError{Op: "write", Err: err}
	}

	if err = os.Link(tmpPath, full); err != nil {
		if errors.Is(err, fs.ErrExist) {
			err = ErrExists
		}
		return nil, &apperr.StorageError{Op: "link", Err: err}
	}

	return &attachment.Stored{
		Path:     storagePath,
		Size:     size,
		Checksum: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// Open returns the stored file. Unknown, hidden or out-of-root paths are
// reported as apperr.ErrNotFound.
func (s *FileStore) Open(storagePath string) (*os.File, error) {
	full, err := s.resolve(storagePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", err, apperr.ErrNotFound)
	}

	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file %s: %w", storagePath, apperr.ErrNotFound)
		}
		return nil, &apperr.StorageError{Op: "open", Err: err}
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &apperr.StorageError{Op: "stat", Err: err}
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, fmt.Errorf("file %s: %w", storagePath, apperr.ErrNotFound)
	}

	return f, nil
}

// Remove deletes a stored file. A missing file is not an error.
func (s *FileStore) Remove(storagePath string) error {
	full, err := s.resolve(storagePath)
	if err != nil {
		return &apperr.StorageError{Op: "resolve", Err: err}
	}
	if err = os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &apperr.StorageError{Op: "remove", Err: err}
	}
	return nil
}

// resolve maps a relative slash path onto the root, refusing anything that
// would leave it or that names a hidden (temp) entry.
func (s *FileStore) resolve(storagePath string) (string, error) {
	if storagePath == "" || strings.ContainsRune(storagePath, 0) ||
		strings.HasPrefix(storagePath, "/") || filepath.IsAbs(storagePath) {
		return "", ErrOutsideRoot
	}
	for _, seg := range strings.Split(filepath.ToSlash(storagePath), "/") {
		if seg == "" || strings.HasPrefix(seg, ".") {
			return "", ErrOutsideRoot
		}
	}

	full := filepath.Join(s.root, filepath.FromSlash(storagePath))
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}

	return full, nil
}
