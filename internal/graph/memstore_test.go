package graph

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hitoshi/bookreview/internal/model"
	"github.com/hitoshi/bookreview/internal/repository"
)

// memStore はテスト用のインメモリストア。一意制約と外部キーを再現する。
type memStore struct {
	mu      sync.Mutex
	nextID  int64
	users   []*model.User
	books   []*model.Book
	reviews []*model.Review
	// fail が設定されている間は全ての操作がこのエラーを返す
	fail error
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func paginate[T any](items []T, page model.Page) []T {
	out := []T{}
	for i, it := range items {
		if i < page.Skip {
			continue
		}
		if len(out) >= page.Take {
			break
		}
		out = append(out, it)
	}
	return out
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// --- users ---

type memUsers struct{ *memStore }

func (m memUsers) FindByID(_ context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m memUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m memUsers) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = m.id()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	m.users = append(m.users, &cp)
	return nil
}

// --- books ---

type memBooks struct{ *memStore }

func (m memBooks) List(_ context.Context) ([]*model.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	out := []*model.Book{}
	for _, b := range m.books {
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}

func (m memBooks) FindByID(_ context.Context, id int64) (*model.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	for _, b := range m.books {
		if b.ID == id {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (m memBooks) Search(_ context.Context, filter repository.BookFilter, page model.Page) ([]*model.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	var matched []*model.Book
	for _, b := range m.books {
		if filter.Title != "" && !containsFold(b.Title, filter.Title) {
			continue
		}
		if filter.Author != "" && !containsFold(b.Author, filter.Author) {
			continue
		}
		cp := *b
		matched = append(matched, &cp)
	}
	return paginate(matched, page), nil
}

func (m memBooks) Create(_ context.Context, book *model.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	book.ID = m.id()
	book.CreatedAt = time.Now()
	cp := *book
	m.books = append(m.books, &cp)
	return nil
}

// --- reviews ---

type memReviews struct{ *memStore }

func (m memReviews) find(match func(*model.Review) bool) (*model.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	for _, rv := range m.reviews {
		if match(rv) {
			cp := *rv
			return &cp, nil
		}
	}
	return nil, nil
}

func (m memReviews) list(match func(*model.Review) bool) ([]*model.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	out := []*model.Review{}
	for _, rv := range m.reviews {
		if match(rv) {
			cp := *rv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m memReviews) FindByUserAndBook(_ context.Context, userID, bookID int64) (*model.Review, error) {
	return m.find(func(rv *model.Review) bool { return rv.UserID == userID && rv.BookID == bookID })
}

func (m memReviews) ListByBook(_ context.Context, bookID int64, filter repository.ReviewFilter, page model.Page) ([]*model.Review, error) {
	all, err := m.list(func(rv *model.Review) bool {
		if rv.BookID != bookID {
			return false
		}
		if filter.Rating != nil && rv.Rating != *filter.Rating {
			return false
		}
		return filter.Comment == "" || containsFold(rv.Comment, filter.Comment)
	})
	if err != nil {
		return nil, err
	}
	return paginate(all, page), nil
}

func (m memReviews) ListByUser(_ context.Context, userID int64, page model.Page) ([]*model.Review, error) {
	all, err := m.list(func(rv *model.Review) bool { return rv.UserID == userID })
	if err != nil {
		return nil, err
	}
	return paginate(all, page), nil
}

func (m memReviews) ListAllByBook(_ context.Context, bookID int64) ([]*model.Review, error) {
	return m.list(func(rv *model.Review) bool { return rv.BookID == bookID })
}

func (m memReviews) ListAllByUser(_ context.Context, userID int64) ([]*model.Review, error) {
	return m.list(func(rv *model.Review) bool { return rv.UserID == userID })
}

func (m memReviews) Create(_ context.Context, review *model.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	bookExists := false
	for _, b := range m.books {
		if b.ID == review.BookID {
			bookExists = true
		}
	}
	if !bookExists {
		return repository.ErrReferenceNotFound
	}
	for _, rv := range m.reviews {
		if rv.UserID == review.UserID && rv.BookID == review.BookID {
			return repository.ErrDuplicate
		}
	}
	review.ID = m.id()
	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt
	cp := *review
	m.reviews = append(m.reviews, &cp)
	return nil
}

func (m memReviews) Update(_ context.Context, id, userID int64, patch model.ReviewPatch) (*model.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	for _, rv := range m.reviews {
		if rv.ID == id && rv.UserID == userID {
			if patch.Rating != nil {
				rv.Rating = *patch.Rating
			}
			if patch.Comment != nil {
				rv.Comment = *patch.Comment
			}
			rv.UpdatedAt = time.Now()
			cp := *rv
			return &cp, nil
		}
	}
	return nil, nil
}

func (m memReviews) Delete(_ context.Context, id, userID int64) (*model.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	for i, rv := range m.reviews {
		if rv.ID == id && rv.UserID == userID {
			m.reviews = append(m.reviews[:i], m.reviews[i+1:]...)
			return rv, nil
		}
	}
	return nil, nil
}

var (
	_ repository.UserRepository   = memUsers{}
	_ repository.BookRepository   = memBooks{}
	_ repository.ReviewRepository = memReviews{}
)
