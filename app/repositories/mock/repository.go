// Package mock provides in-memory repositories for service tests. Each
// repository exposes error fields that, when set, are returned by the
// matching method so tests can simulate storage failures.
package mock

import (
	"context"
	"sort"
	"strings"
	"sync"

	"microsocial/app/models"
	"microsocial/app/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository struct {
	users map[primitive.ObjectID]*models.User
	mutex sync.RWMutex
}

type PostRepository struct {
	posts map[primitive.ObjectID]*models.Post
	mutex sync.RWMutex

	FailAdjust error
	FailDelete error
}

type CommentRepository struct {
	comments map[primitive.ObjectID]*models.Comment
	mutex    sync.RWMutex

	FailCreate error
}

type LikeRepository struct {
	likes map[likeKey]*models.Like
	mutex sync.RWMutex

	FailToggle error
}

type likeKey struct {
	post primitive.ObjectID
	user primitive.ObjectID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[primitive.ObjectID]*models.User)}
}

func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[primitive.ObjectID]*models.Post)}
}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{comments: make(map[primitive.ObjectID]*models.Comment)}
}

func NewLikeRepository() *LikeRepository {
	return &LikeRepository{likes: make(map[likeKey]*models.Like)}
}

func page[T any](items []T, skip, limit int) []T {
	out := []T{}
	if skip >= len(items) || limit <= 0 {
		return out
	}
	end := skip + limit
	if end > len(items) {
		end = len(items)
	}
	return append(out, items[skip:end]...)
}

// idLess orders object ids by creation, which is also their byte order.
func idLess(a, b primitive.ObjectID) bool {
	return a.Hex() < b.Hex()
}

// UserRepository implementation

func (m *UserRepository) Create(_ context.Context, user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, u := range m.users {
		if models.UsernameKey(u.Username) == models.UsernameKey(user.Username) {
			return repositories.ErrDuplicateUsername
		}
		if u.Email == models.NormalizeEmail(user.Email) {
			return repositories.ErrDuplicateEmail
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *UserRepository) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *UserRepository) find(match func(*models.User) bool) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, u := range m.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Email == models.NormalizeEmail(email) })
}

func (m *UserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return m.find(func(u *models.User) bool {
		return models.UsernameKey(u.Username) == models.UsernameKey(username)
	})
}

func (m *UserRepository) Update(_ context.Context, user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	current, ok := m.users[user.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	for id, u := range m.users {
		if id != user.ID && models.UsernameKey(u.Username) == models.UsernameKey(user.Username) {
			return repositories.ErrDuplicateUsername
		}
	}
	user.Email = current.Email
	user.PasswordHash = current.PasswordHash
	user.CreatedAt = current.CreatedAt
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *UserRepository) matches(query string) []*models.User {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(query))
	var out []*models.User
	for _, u := range m.users {
		if strings.Contains(strings.ToLower(u.Username), needle) || strings.Contains(u.Email, needle) {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return idLess(out[i].ID, out[j].ID) })
	return out
}

func (m *UserRepository) Search(_ context.Context, query string, skip, limit int) ([]*models.User, error) {
	return page(m.matches(query), skip, limit), nil
}

func (m *UserRepository) CountSearch(_ context.Context, query string) (int, error) {
	return len(m.matches(query)), nil
}

// PostRepository implementation

func (m *PostRepository) Create(_ context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	cp := *post
	m.posts[post.ID] = &cp
	return nil
}

func (m *PostRepository) GetByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	cp := *post
	return &cp, nil
}

func (m *PostRepository) GetOwned(ctx context.Context, id, ownerID primitive.ObjectID) (*models.Post, error) {
	post, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.OwnedBy(ownerID) {
		return nil, repositories.ErrNotFound
	}
	return post, nil
}

// newestFirst returns copies of the posts matching keep, newest first.
func (m *PostRepository) newestFirst(keep func(*models.Post) bool) []*models.Post {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var out []*models.Post
	for _, p := range m.posts {
		if keep(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return idLess(out[j].ID, out[i].ID) })
	return out
}

func (m *PostRepository) List(_ context.Context, skip, limit int) ([]*models.Post, error) {
	return page(m.newestFirst(func(*models.Post) bool { return true }), skip, limit), nil
}

func (m *PostRepository) Count(_ context.Context) (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.posts), nil
}

func (m *PostRepository) ListByAuthor(_ context.Context, userID primitive.ObjectID, skip, limit int) ([]*models.Post, error) {
	return page(m.newestFirst(func(p *models.Post) bool { return p.UserID == userID }), skip, limit), nil
}

func (m *PostRepository) CountByAuthor(_ context.Context, userID primitive.ObjectID) (int, error) {
	return len(m.newestFirst(func(p *models.Post) bool { return p.UserID == userID })), nil
}

func (m *PostRepository) UpdateContent(_ context.Context, id, ownerID primitive.ObjectID, content string) (*models.Post, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	post, ok := m.posts[id]
	if !ok || !post.OwnedBy(ownerID) {
		return nil, repositories.ErrNotFound
	}
	post.Content = content
	post.UpdatedAt = models.Now()
	cp := *post
	return &cp, nil
}

func (m *PostRepository) AdjustCounter(_ context.Context, id primitive.ObjectID, field models.CounterField, delta int) (int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.FailAdjust != nil {
		return 0, m.FailAdjust
	}
	post, ok := m.posts[id]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	post.SetCounter(field, post.Counter(field)+delta)
	return post.Counter(field), nil
}

func (m *PostRepository) SetCounters(_ context.Context, id primitive.ObjectID, likes, comments int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	post, ok := m.posts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	post.SetCounter(models.LikeCounter, likes)
	post.SetCounter(models.CommentCounter, comments)
	return nil
}

func (m *PostRepository) Each(_ context.Context, fn func(*models.Post) error) error {
	posts := m.newestFirst(func(*models.Post) bool { return true })
	for i := len(posts) - 1; i >= 0; i-- {
		if err := fn(posts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *PostRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.FailDelete != nil {
		return m.FailDelete
	}
	if _, exists := m.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

// CommentRepository implementation

func (m *CommentRepository) Create(_ context.Context, comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.FailCreate != nil {
		return m.FailCreate
	}
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	cp := *comment
	m.comments[comment.ID] = &cp
	return nil
}

func (m *CommentRepository) GetOwned(_ context.Context, id, ownerID primitive.ObjectID) (*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	c, ok := m.comments[id]
	if !ok || !c.OwnedBy(ownerID) {
		return nil, repositories.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *CommentRepository) byPost(postID primitive.ObjectID) []*models.Comment {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var out []*models.Comment
	for _, c := range m.comments {
		if c.PostID == postID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return idLess(out[i].ID, out[j].ID) })
	return out
}

func (m *CommentRepository) ListByPost(_ context.Context, postID primitive.ObjectID, skip, limit int) ([]*models.Comment, error) {
	return page(m.byPost(postID), skip, limit), nil
}

func (m *CommentRepository) CountByPost(_ context.Context, postID primitive.ObjectID) (int, error) {
	return len(m.byPost(postID)), nil
}

func (m *CommentRepository) Delete(_ context.Context, comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.comments[comment.ID]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.comments, comment.ID)
	return nil
}

func (m *CommentRepository) DeleteByPost(_ context.Context, postID primitive.ObjectID) (int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	n := 0
	for id, c := range m.comments {
		if c.PostID == postID {
			delete(m.comments, id)
			n++
		}
	}
	return n, nil
}

// LikeRepository implementation

func (m *LikeRepository) Toggle(_ context.Context, postID, userID primitive.ObjectID) (bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.FailToggle != nil {
		return false, m.FailToggle
	}
	k := likeKey{post: postID, user: userID}
	if _, ok := m.likes[k]; ok {
		delete(m.likes, k)
		return false, nil
	}
	m.likes[k] = &models.Like{PostID: postID, UserID: userID, CreatedAt: models.Now()}
	return true, nil
}

func (m *LikeRepository) Exists(_ context.Context, postID, userID primitive.ObjectID) (bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	_, ok := m.likes[likeKey{post: postID, user: userID}]
	return ok, nil
}

func (m *LikeRepository) CountByPost(_ context.Context, postID primitive.ObjectID) (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	n := 0
	for k := range m.likes {
		if k.post == postID {
			n++
		}
	}
	return n, nil
}

func (m *LikeRepository) DeleteByPost(_ context.Context, postID primitive.ObjectID) (int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	n := 0
	for k := range m.likes {
		if k.post == postID {
			delete(m.likes, k)
			n++
		}
	}
	return n, nil
}

var (
	_ repositories.UserRepository    = (*UserRepository)(nil)
	_ repositories.PostRepository    = (*PostRepository)(nil)
	_ repositories.CommentRepository = (*CommentRepository)(nil)
	_ repositories.LikeRepository    = (*LikeRepository)(nil)
)
