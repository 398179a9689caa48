package mock

import (
	"context"
	"sort"
	"sync"

	"bulletin/app/models"
	"bulletin/app/repositories"
)

// Store is an in-memory repositories.Store. Transactions are serialized by a
// single mutex and a failed Update restores the state captured when it began.
type Store struct {
	mutex sync.Mutex
	state state
}

type state struct {
	posts    map[int]models.Post
	comments map[int]models.Comment
	likes    map[int]models.Like
	users    map[int]models.User
	seq      map[string]int
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{state: newState()}
}

func newState() state {
	return state{
		posts:    make(map[int]models.Post),
		comments: make(map[int]models.Comment),
		likes:    make(map[int]models.Like),
		users:    make(map[int]models.User),
		seq:      make(map[string]int),
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.posts {
		c.posts[k] = v
	}
	for k, v := range s.comments {
		c.comments[k] = v
	}
	for k, v := range s.likes {
		c.likes[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.seq {
		c.seq[k] = v
	}
	return c
}

func (s state) next(name string) int {
	s.seq[name]++
	return s.seq[name]
}

// Clear drops all data.
func (s *Store) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.state = newState()
}

func (s *Store) View(ctx context.Context, fn func(tx repositories.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return fn(&tx{st: s.state})
}

func (s *Store) Update(ctx context.Context, fn func(tx repositories.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	snapshot := s.state.clone()
	if err := fn(&tx{st: s.state}); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}

type tx struct {
	st state
}

func (t *tx) Posts() repositories.PostRepository       { return &PostRepository{st: t.st} }
func (t *tx) Comments() repositories.CommentRepository { return &CommentRepository{st: t.st} }
func (t *tx) Likes() repositories.LikeRepository       { return &LikeRepository{st: t.st} }
func (t *tx) Users() repositories.UserRepository       { return &UserRepository{st: t.st} }

// PostRepository implementation
type PostRepository struct {
	st state
}

func (m *PostRepository) Create(post *models.Post) error {
	post.BeforeCreate()
	if err := repositories.CheckEntity(post); err != nil {
		return err
	}
	post.ID = m.st.next("post")
	m.st.posts[post.ID] = *post
	return nil
}

func (m *PostRepository) GetByID(id int) (*models.Post, error) {
	post, exists := m.st.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &post, nil
}

func (m *PostRepository) GetByIDAndOwner(id, userID int) (*models.Post, error) {
	post, err := m.GetByID(id)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, repositories.ErrNotFound
	}
	return post, nil
}

func (m *PostRepository) ListOrderByModifiedDesc() ([]*models.Post, error) {
	var posts []*models.Post
	for _, id := range sortedKeys(m.st.posts) {
		post := m.st.posts[id]
		posts = append(posts, &post)
	}
	models.SortPostsByModifiedDesc(posts)
	return posts, nil
}

func (m *PostRepository) ListByOwner(userID int) ([]*models.Post, error) {
	var posts []*models.Post
	for _, id := range sortedKeys(m.st.posts) {
		if post := m.st.posts[id]; post.UserID == userID {
			posts = append(posts, &post)
		}
	}
	return posts, nil
}

func (m *PostRepository) Update(post *models.Post) error {
	if _, exists := m.st.posts[post.ID]; !exists {
		return repositories.ErrNotFound
	}
	if err := repositories.CheckEntity(post); err != nil {
		return err
	}
	m.st.posts[post.ID] = *post
	return nil
}

func (m *PostRepository) Delete(id int) error {
	if _, exists := m.st.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.st.posts, id)
	return nil
}

func (m *PostRepository) DeleteAllByOwner(userID int) error {
	for id, post := range m.st.posts {
		if post.UserID == userID {
			delete(m.st.posts, id)
		}
	}
	return nil
}

// CommentRepository implementation
type CommentRepository struct {
	st state
}

func (m *CommentRepository) Create(comment *models.Comment) error {
	comment.BeforeCreate()
	if err := repositories.CheckEntity(comment); err != nil {
		return err
	}
	comment.ID = m.st.next("comment")
	m.st.comments[comment.ID] = *comment
	return nil
}

func (m *CommentRepository) GetByID(id int) (*models.Comment, error) {
	comment, exists := m.st.comments[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &comment, nil
}

func (m *CommentRepository) GetByIDAndOwner(id, userID int) (*models.Comment, error) {
	comment, err := m.GetByID(id)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, repositories.ErrNotFound
	}
	return comment, nil
}

func (m *CommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	return m.filter(func(c models.Comment) bool { return c.PostID == postID }), nil
}

func (m *CommentRepository) ListChildren(parentID int) ([]*models.Comment, error) {
	return m.filter(func(c models.Comment) bool {
		return c.ParentCommentID != nil && *c.ParentCommentID == parentID
	}), nil
}

func (m *CommentRepository) ListByOwner(userID int) ([]*models.Comment, error) {
	return m.filter(func(c models.Comment) bool { return c.UserID == userID }), nil
}

func (m *CommentRepository) Update(comment *models.Comment) error {
	if _, exists := m.st.comments[comment.ID]; !exists {
		return repositories.ErrNotFound
	}
	if err := repositories.CheckEntity(comment); err != nil {
		return err
	}
	m.st.comments[comment.ID] = *comment
	return nil
}

func (m *CommentRepository) Delete(id int) error {
	if _, exists := m.st.comments[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.st.comments, id)
	return nil
}

func (m *CommentRepository) DeleteAllByOwner(userID int) error {
	for id, comment := range m.st.comments {
		if comment.UserID == userID {
			delete(m.st.comments, id)
		}
	}
	return nil
}

func (m *CommentRepository) filter(keep func(models.Comment) bool) []*models.Comment {
	var comments []*models.Comment
	for _, id := range sortedKeys(m.st.comments) {
		if comment := m.st.comments[id]; keep(comment) {
			comments = append(comments, &comment)
		}
	}
	return comments
}

// LikeRepository implementation
type LikeRepository struct {
	st state
}

func (m *LikeRepository) Create(like *models.Like) error {
	if err := repositories.CheckEntity(like); err != nil {
		return err
	}
	if _, err := m.GetByTargetAndOwner(like.Target(), like.UserID); err == nil {
		return repositories.ErrDuplicate
	}
	like.ID = m.st.next("like")
	m.st.likes[like.ID] = *like
	return nil
}

func (m *LikeRepository) GetByTargetAndOwner(target models.Target, userID int) (*models.Like, error) {
	for _, id := range sortedKeys(m.st.likes) {
		like := m.st.likes[id]
		if like.UserID == userID && like.Target() == target {
			return &like, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *LikeRepository) CountByTarget(target models.Target) (int, error) {
	count := 0
	for _, like := range m.st.likes {
		if like.Target() == target {
			count++
		}
	}
	return count, nil
}

func (m *LikeRepository) Delete(id int) error {
	if _, exists := m.st.likes[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.st.likes, id)
	return nil
}

func (m *LikeRepository) DeleteAllByTarget(target models.Target) error {
	for id, like := range m.st.likes {
		if like.Target() == target {
			delete(m.st.likes, id)
		}
	}
	return nil
}

func (m *LikeRepository) DeleteAllByOwner(userID int) error {
	for id, like := range m.st.likes {
		if like.UserID == userID {
			delete(m.st.likes, id)
		}
	}
	return nil
}

// UserRepository implementation
type UserRepository struct {
	st state
}

func (m *UserRepository) Create(user *models.User) error {
	user.BeforeCreate()
	if err := repositories.CheckEntity(user); err != nil {
		return err
	}
	if _, err := m.GetByUsername(user.Username); err == nil {
		return repositories.ErrDuplicate
	}
	user.ID = m.st.next("user")
	m.st.users[user.ID] = *user
	return nil
}

func (m *UserRepository) GetByID(id int) (*models.User, error) {
	user, exists := m.st.users[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &user, nil
}

func (m *UserRepository) GetByUsername(username string) (*models.User, error) {
	for _, user := range m.st.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *UserRepository) Delete(id int) error {
	if _, exists := m.st.users[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.st.users, id)
	return nil
}

func sortedKeys[V any](rows map[int]V) []int {
	keys := make([]int, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
