package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"

	"user-directory-api/internal/domain/user"
)

// UserRepository is a read-through cache for lookups by id. Writes go to the
// wrapped repository and evict the entry; list calls are never cached.
// A row read before a write finished is never added after that write.
type UserRepository struct {
	next     user.Repository
	cache    *expirable.LRU[user.UUID, user.User]
	mCounter *prometheus.CounterVec

	mu      sync.Mutex
	loading map[user.UUID]*load
}

// load tracks the lookups of one id that are reading through to next.
type load struct {
	readers int
	stale   bool
}

// NewUserRepository wraps next. A size <= 0 disables caching and returns next as is.
func NewUserRepository(next user.Repository, size int, ttl time.Duration, mCounter *prometheus.CounterVec) user.Repository {
	if size <= 0 {
		return next
	}
	return &UserRepository{
		next:     next,
		cache:    expirable.NewLRU[user.UUID, user.User](size, nil, ttl),
		mCounter: mCounter,
		loading:  make(map[user.UUID]*load),
	}
}

func (r *UserRepository) FetchUserByID(ctx context.Context, uuid user.UUID) (*user.User, error) {
	if u, ok := r.cache.Get(uuid); ok {
		r.inc("user_cache_hits_total")
		return &u, nil
	}
	r.inc("user_cache_misses_total")

	l := r.beginLoad(uuid)
	u, err := r.next.FetchUserByID(ctx, uuid)
	r.endLoad(uuid, l, u)
	if err != nil {
		return nil, err
	}

	return u, nil
}

func (r *UserRepository) FetchUsers(ctx context.Context) (user.Users, error) {
	return r.next.FetchUsers(ctx)
}

func (r *UserRepository) CreateUser(ctx context.Context, req user.User) (*user.User, error) {
	return r.next.CreateUser(ctx, req)
}

func (r *UserRepository) UpdateUser(ctx context.Context, uuid user.UUID, p user.Patch) (*user.User, *string, error) {
	r.invalidate(uuid)
	u, prev, err := r.next.UpdateUser(ctx, uuid, p)
	r.invalidate(uuid)
	return u, prev, err
}

func (r *UserRepository) DeleteUser(ctx context.Context, uuid user.UUID) (*user.User, error) {
	r.invalidate(uuid)
	u, err := r.next.DeleteUser(ctx, uuid)
	r.invalidate(uuid)
	return u, err
}

func (r *UserRepository) beginLoad(uuid user.UUID) *load {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.loading[uuid]
	if !ok {
		l = &load{}
		r.loading[uuid] = l
	}
	l.readers++

	return l
}

// endLoad caches u unless a write to uuid was invalidated while it was loading.
func (r *UserRepository) endLoad(uuid user.UUID, l *load, u *user.User) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l.readers--; l.readers == 0 {
		delete(r.loading, uuid)
	}
	if u != nil && !l.stale {
		r.cache.Add(uuid, *u)
	}
}

func (r *UserRepository) invalidate(uuid user.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.loading[uuid]; ok {
		l.stale = true
	}
	r.cache.Remove(uuid)
}

func (r *UserRepository) inc(label string) {
	if r.mCounter != nil {
		r.mCounter.WithLabelValues(label).Inc()
	}
}
