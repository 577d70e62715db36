package service

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/notekeeper/notes-api/internal/core/domain"
	"github.com/notekeeper/notes-api/internal/core/ports"
)

var errStoreDown = errors.New("store unavailable")

type stubUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID int

	findErr   error
	deleteErr error

	// afterFind runs once, outside the lock, after the next FindByID has
	// read its record. It lets a test interleave a writer with a reader.
	afterFind func(id string)
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

// Create enforces username uniqueness under the lock, the way a unique index would.
func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	copy := cloneUser(user)
	copy.ID = "u" + strconv.Itoa(r.nextID)
	r.users[copy.ID] = cloneUser(copy)
	return copy, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	if r.findErr != nil {
		r.mu.Unlock()
		return nil, r.findErr
	}
	u, ok := r.users[id]
	found := cloneUser(u)
	hook := r.afterFind
	r.afterFind = nil
	r.mu.Unlock()

	if hook != nil {
		hook(id)
	}
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return found, nil
}

func (r *stubUserRepo) UpdateOrderCategories(_ context.Context, id string, pref domain.OrderPreference) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.OrderCategories = pref
	return nil
}

func (r *stubUserRepo) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

type stubNoteRepo struct {
	mu         sync.Mutex
	categories []domain.NoteCategory
	nextID     int

	listErr   error
	deleteErr error
}

func newStubNoteRepo() *stubNoteRepo {
	return &stubNoteRepo{}
}

func (r *stubNoteRepo) CreateCategory(_ context.Context, category *domain.NoteCategory) (*domain.NoteCategory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c := *category
	c.ID = "c" + strconv.Itoa(r.nextID)
	r.categories = append(r.categories, c)
	return &c, nil
}

func (r *stubNoteRepo) AddItem(_ context.Context, ownerID, categoryID string, item domain.NoteItem) (*domain.NoteItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.categories {
		c := &r.categories[i]
		if c.ID == categoryID && c.OwnerID == ownerID {
			r.nextID++
			item.ID = "i" + strconv.Itoa(r.nextID)
			c.Items = append(c.Items, item)
			return &item, nil
		}
	}
	return nil, domain.ErrNoteNotFound
}

func (r *stubNoteRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.NoteCategory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := []domain.NoteCategory{}
	for _, c := range r.categories {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *stubNoteRepo) DeleteByOwner(_ context.Context, ownerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	kept := r.categories[:0]
	var removed int64
	for _, c := range r.categories {
		if c.OwnerID == ownerID {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	r.categories = kept
	return removed, nil
}

func (r *stubNoteRepo) countOwned(ownerID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.categories {
		if c.OwnerID == ownerID {
			n++
		}
	}
	return n
}

// stubProfileCache mirrors the Redis cache: Set only fills empty keys and
// Invalidate leaves a tombstone behind.
type stubProfileCache struct {
	mu            sync.Mutex
	profiles      map[string]ports.UserProfile
	tombstones    map[string]bool
	getErr        error
	invalidateErr error
	invalidated   []string
}

func newStubProfileCache() *stubProfileCache {
	return &stubProfileCache{
		profiles:   make(map[string]ports.UserProfile),
		tombstones: make(map[string]bool),
	}
}

func (c *stubProfileCache) Get(_ context.Context, userID string) (*ports.UserProfile, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	p, ok := c.profiles[userID]
	if !ok {
		return nil, false, nil
	}
	return &p, true, nil
}

func (c *stubProfileCache) Set(_ context.Context, profile *ports.UserProfile) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.profiles[profile.ID]; ok || c.tombstones[profile.ID] {
		return nil
	}
	c.profiles[profile.ID] = *profile
	return nil
}

func (c *stubProfileCache) Invalidate(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, userID)
	if c.invalidateErr != nil {
		return c.invalidateErr
	}
	delete(c.profiles, userID)
	c.tombstones[userID] = true
	return nil
}

// expire drops tombstones, as if their TTL had passed.
func (c *stubProfileCache) expire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tombstones = make(map[string]bool)
}
