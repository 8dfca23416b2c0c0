package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"user-directory-api/internal/application/ports"
	"user-directory-api/internal/domain/apperr"
	domain "user-directory-api/internal/domain/attachment"
)

const (
	maxBaseNameLen = 100
	// enough for mimetype to recognise every format it knows
	sniffLen = 3072
	// FilesRoute is where stored attachments are served from.
	FilesRoute = "/files"
)

var windowsReserved = map[string]struct{}{
	"con": {}, "prn": {}, "aux": {}, "nul": {},
	"com1": {}, "com2": {}, "com3": {}, "com4": {}, "com5": {}, "com6": {}, "com7": {}, "com8": {}, "com9": {},
	"lpt1": {}, "lpt2": {}, "lpt3": {}, "lpt4": {}, "lpt5": {}, "lpt6": {}, "lpt7": {}, "lpt8": {}, "lpt9": {},
}

type AttachmentOption func(*AttachmentService)

// WithClock replaces time.Now for storage key generation.
func WithClock(now func() time.Time) AttachmentOption {
	return func(as *AttachmentService) { as.now = now }
}

// WithEntropy replaces the random source of storage keys.
func WithEntropy(r io.Reader) AttachmentOption {
	return func(as *AttachmentService) { as.entropy = r }
}

type AttachmentService struct {
	store    domain.Store
	baseURL  string
	maxSize  int64
	mCounter *prometheus.CounterVec

	mu      sync.Mutex
	now     func() time.Time
	entropy io.Reader
}

func NewAttachmentService(
	store domain.Store,
	baseURL string,
	maxSize int64,
	mCounter *prometheus.CounterVec,
	opts ...AttachmentOption,
) ports.AttachmentService {
	as := &AttachmentService{
		store:    store,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxSize:  maxSize,
		mCounter: mCounter,
		now:      time.Now,
		entropy:  ulid.DefaultEntropy(),
	}
	for _, opt := range opts {
		opt(as)
	}

	return as
}

// Store writes the upload under a fresh storage path and returns that path.
func (as *AttachmentService) Store(ctx context.Context, in *multipart.FileHeader) (string, error) {
	if in.Size <= 0 {
		return "", apperr.Invalid("image", "file is empty")
	}
	if as.maxSize > 0 && in.Size > as.maxSize {
		return "", apperr.Invalid("image", fmt.Sprintf("file exceeds %d bytes", as.maxSize))
	}

	f, err := in.Open()
	if err != nil {
		return "", &apperr.StorageError{Op: "read upload", Err: err}
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", &apperr.StorageError{Op: "read upload", Err: err}
	}
	head = head[:n]

	key, err := as.newKey(in.Filename, mimetype.Detect(head).String())
	if err != nil {
		return "", &apperr.StorageError{Op: "key", Err: err}
	}

	if _, err = as.store.Save(ctx, key, io.MultiReader(bytes.NewReader(head), f)); err != nil {
		return "", fmt.Errorf("store attachment: %w", err)
	}

	as.inc("attachments_stored_total")

	return key, nil
}

// Open returns the stored file with the content type detected from its bytes.
func (as *AttachmentService) Open(storagePath string) (*os.File, string, error) {
	f, err := as.store.Open(storagePath)
	if err != nil {
		return nil, "", err
	}

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return nil, "", &apperr.StorageError{Op: "detect", Err: err}
	}
	if _, err = f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, "", &apperr.StorageError{Op: "seek", Err: err}
	}

	ct := mt.String()
	if mt.Is("application/octet-stream") {
		if byExt := mime.TypeByExtension(path.Ext(storagePath)); byExt != "" {
			ct = byExt
		}
	}

	return f, ct, nil
}

// Remove deletes a stored file. External URLs are never touched.
func (as *AttachmentService) Remove(storagePath string) error {
	if storagePath == "" || isAbsoluteURL(storagePath) {
		return nil
	}
	if err := as.store.Remove(storagePath); err != nil {
		return err
	}

	as.inc("attachments_removed_total")

	return nil
}

func (as *AttachmentService) ResolveURL(storagePath string) string {
	return ResolveURL(storagePath, as.baseURL)
}

func (as *AttachmentService) newKey(originalName, contentType string) (string, error) {
	as.mu.Lock()
	defer as.mu.Unlock()

	return StorageKey(originalName, contentType, as.now(), as.entropy)
}

func (as *AttachmentService) inc(label string) {
	if as.mCounter != nil {
		as.mCounter.WithLabelValues(label).Inc()
	}
}

// ResolveURL returns storagePath unchanged when it is already an absolute
// http(s) URL, otherwise the URL it is served from under baseURL.
func ResolveURL(storagePath, baseURL string) string {
	if storagePath == "" || isAbsoluteURL(storagePath) {
		return storagePath
	}

	segs := strings.Split(strings.TrimLeft(storagePath, "/"), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}

	return strings.TrimRight(baseURL, "/") + FilesRoute + "/" + strings.Join(segs, "/")
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// StorageKey derives a collision-free relative path for an upload:
// "YYYY/MM/DD/<ulid>-<sanitized-name>.<ext>". The result depends only on its
// arguments; the ULID carries now and 80 bits read from entropy.
func StorageKey(originalName, contentType string, now time.Time, entropy io.Reader) (string, error) {
	now = now.UTC()
	id, err := ulid.New(ulid.Timestamp(now), entropy)
	if err != nil {
		return "", err
	}

	name := sanitizeFileName(originalName)
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)

	if ext == "" {
		ext = extensionFor(contentType)
	}

	return fmt.Sprintf(
		"%04d/%02d/%02d/%s-%s%s",
		now.Year(), int(now.Month()), now.Day(),
		strings.ToLower(id.String()),
		base,
		ext,
	), nil
}

func extensionFor(contentType string) string {
	if contentType != "" {
		if mt := mimetype.Lookup(contentType); mt != nil && mt.Extension() != "" {
			return mt.Extension()
		}
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			return exts[0]
		}
	}
	return ".bin"
}

// sanitizeFileName make file name ASCII standard
func sanitizeFileName(original string) string {
	s := strings.TrimSpace(original)
	s = strings.ReplaceAll(s, "\\", "/")
	s = filepath.Base(path.Base(s))

	if s == "." || s == ".." || s == "/" || s == "" {
		return "file"
	}

	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	s, _, _ = transform.String(t, s)

	ext := strings.ToLower(path.Ext(s))
	base := strings.TrimSuffix(s, path.Ext(s))
	if !isSafeExt(ext) {
		ext = ""
	}

	//  [a-z0-9], '-' и '_', dot/space → '-'
	var b strings.Builder
	b.Grow(len(base))
	prevDash := false
	for _, r := range base {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
			prevDash = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(unicode.ToLower(r))
			prevDash = false
		case r == '-' || r == '_' || r == '.' || unicode.IsSpace(r):
			if !prevDash {
				b.WriteRune('-')
				prevDash = true
			}
		default:
		}
	}
	base = strings.Trim(b.String(), "-")

	if base == "" {
		base = "file"
	}
	if _, bad := windowsReserved[base]; bad {
		base = "_" + base
	}

	for utf8.RuneCountInString(base)+len(ext) > maxBaseNameLen {
		_, size := utf8.DecodeLastRuneInString(base)
		if size <= 0 || size > len(base) {
			break
		}
		base = base[:len(base)-size]
	}

	return base + ext
}

func isSafeExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 10 {
		return false
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

func isMn(r rune) bool { return unicode.Is(unicode.Mn, r) }
