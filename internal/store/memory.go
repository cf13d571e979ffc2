// In-memory implementation of the Users and Posts stores.
//
// Characteristics:
//   - Documents live in maps keyed by id; post order follows insertion.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes
//     exclusive).
//   - State is lost when the process restarts; used for tests and
//     durability-free development.

package store

import (
	"context"
	"errors"
	"sync"
)

// errUniqueEmail mirrors the unique-index violation the SQLite store
// produces for a duplicate email.
var errUniqueEmail = errors.New("email already exists")

// Memory is a map-backed document store.
type Memory struct {
	mu        sync.RWMutex
	users     map[string]*User
	posts     map[string]*Post
	postOrder []string
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users: make(map[string]*User),
		posts: make(map[string]*Post),
	}
}

// Users returns the user collection.
func (m *Memory) Users() Users { return (*memoryUsers)(m) }

// Posts returns the post collection.
func (m *Memory) Posts() Posts { return (*memoryPosts)(m) }

// PostCount reports how many posts are stored. Test helper.
func (m *Memory) PostCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.posts)
}

/* ------------------------------- users ---------------------------------- */

type memoryUsers Memory

func (m *memoryUsers) Save(ctx context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return errUniqueEmail
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memoryUsers) FindByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryUsers) FindByID(ctx context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, ErrNotFound
}

/* ------------------------------- posts ---------------------------------- */

type memoryPosts Memory

func (m *memoryPosts) Save(ctx context.Context, p *Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	if cp.Tags == nil {
		cp.Tags = []string{}
	}
	m.posts[p.ID] = &cp
	m.postOrder = append(m.postOrder, p.ID)
	return nil
}

func (m *memoryPosts) Find(ctx context.Context) ([]Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Post{}
	for _, id := range m.postOrder {
		p, ok := m.posts[id]
		if !ok {
			continue
		}
		out = append(out, *m.withAuthor(p))
	}
	return out, nil
}

func (m *memoryPosts) FindOneAndIncViews(ctx context.Context, id string) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.ViewsCount++
	return m.withAuthor(p), nil
}

func (m *memoryPosts) UpdateOne(ctx context.Context, id string, upd PostUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		// Matches the update contract: no existence check.
		return nil
	}
	p.Title = upd.Title
	p.Text = upd.Text
	p.Tags = upd.Tags
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.ImageURL = upd.ImageURL
	p.UserID = upd.UserID
	return nil
}

func (m *memoryPosts) FindByIDAndDelete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return ErrNotFound
	}
	delete(m.posts, id)
	for i, pid := range m.postOrder {
		if pid == id {
			m.postOrder = append(m.postOrder[:i], m.postOrder[i+1:]...)
			break
		}
	}
	return nil
}

// withAuthor returns a copy of p with its author embedded. Caller holds
// the lock.
func (m *memoryPosts) withAuthor(p *Post) *Post {
	cp := *p
	if u, ok := m.users[p.UserID]; ok {
		uc := *u
		cp.User = &uc
	}
	return &cp
}
