package services

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"user-directory-api/internal/application/ports"
	"user-directory-api/internal/domain/apperr"
	domain "user-directory-api/internal/domain/user"
	"user-directory-api/internal/infrastructure/filestore"
	"user-directory-api/internal/infrastructure/mq"
)

// fileHeader builds a *multipart.FileHeader the way gin hands it to handlers.
func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	fw, err := w.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&b, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["image"][0]
}

func newFileStore(t *testing.T) *filestore.FileStore {
	t.Helper()
	fs, err := filestore.New(zap.NewNop(), filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	return fs
}

// memRepo is an in-memory record store with soft-delete semantics.
type memRepo struct {
	mu      sync.Mutex
	users   map[domain.UUID]*domain.User
	deleted map[domain.UUID]bool
	seq     int

	createErr error
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[domain.UUID]*domain.User{}, deleted: map[domain.UUID]bool{}}
}

func (m *memRepo) FetchUserByID(_ context.Context, id domain.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || m.deleted[id] {
		return nil, fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (m *memRepo) FetchUsers(context.Context) (domain.Users, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := domain.Users{}
	for id, u := range m.users {
		if !m.deleted[id] {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memRepo) CreateUser(_ context.Context, u domain.User) (*domain.User, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	u.UUID = uuid.New()
	u.CreatedAt = time.Unix(int64(m.seq), 0)
	u.UpdatedAt = u.CreatedAt
	m.users[u.UUID] = &u
	cp := u
	return &cp, nil
}

func (m *memRepo) UpdateUser(_ context.Context, id domain.UUID, p domain.Patch) (*domain.User, *string, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || m.deleted[id] {
		return nil, nil, fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}
	prev := u.ImagePath
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	switch {
	case p.ImagePath != nil:
		u.ImagePath = p.ImagePath
	case p.ClearImage:
		u.ImagePath = nil
	}
	cp := *u
	return &cp, prev, nil
}

func (m *memRepo) DeleteUser(_ context.Context, id domain.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || m.deleted[id] {
		return nil, fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}
	m.deleted[id] = true
	cp := *u
	return &cp, nil
}

func (m *memRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []mq.Event
}

func (f *fakePublisher) Publish(e mq.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
}

func (f *fakePublisher) methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.Method
	}
	return out
}

var _ ports.EventPublisher = (*fakePublisher)(nil)
