// Package book は書籍カタログのドメインロジックを提供する。
package book

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/bookreview/internal/model"
	"github.com/hitoshi/bookreview/internal/repository"
	"github.com/hitoshi/bookreview/internal/security"
)

// MsgBookNotFound は書籍が見つからない場合のメッセージ。
const MsgBookNotFound = "Book not found"

// Service は書籍の一覧・取得・検索・登録を提供する。
type Service struct {
	bookRepo  repository.BookRepository
	sanitizer security.TextSanitizerService
}

// NewService はServiceを生成する。
func NewService(bookRepo repository.BookRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{
		bookRepo:  bookRepo,
		sanitizer: sanitizer,
	}
}

// List は全書籍をID順で返す。
func (s *Service) List(ctx context.Context, _ model.NoInput) ([]*model.Book, error) {
	books, err := s.bookRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("書籍一覧の取得に失敗しました: %w", err)
	}
	return books, nil
}

// Get は指定IDの書籍を返す。
func (s *Service) Get(ctx context.Context, in model.IDInput) (*model.Book, error) {
	book, err := s.bookRepo.FindByID(ctx, int64(in.ID))
	if err != nil {
		return nil, fmt.Errorf("書籍の取得に失敗しました: %w", err)
	}
	if book == nil {
		return nil, model.NewNotFoundError(MsgBookNotFound)
	}
	return book, nil
}

// Search はタイトル・著者の部分一致で書籍を検索する。
// skip/takeは省略時のみデフォルト値を使う。
func (s *Service) Search(ctx context.Context, in model.SearchBooksInput) ([]*model.Book, error) {
	var filter repository.BookFilter
	if in.Filter != nil {
		if in.Filter.Title != nil {
			filter.Title = *in.Filter.Title
		}
		if in.Filter.Author != nil {
			filter.Author = *in.Filter.Author
		}
	}

	books, err := s.bookRepo.Search(ctx, filter, in.Page())
	if err != nil {
		return nil, fmt.Errorf("書籍の検索に失敗しました: %w", err)
	}
	return books, nil
}

// Add は書籍を登録する。タイトルと著者はHTMLを除去して保存する。
func (s *Service) Add(ctx context.Context, in model.AddBookInput) (*model.Book, error) {
	title, err := security.CleanField(s.sanitizer, "title", in.Title)
	if err != nil {
		return nil, err
	}
	author, err := security.CleanField(s.sanitizer, "author", in.Author)
	if err != nil {
		return nil, err
	}

	book := &model.Book{
		Title:         title,
		Author:        author,
		PublishedYear: int(in.PublishedYear),
	}
	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("書籍の登録に失敗しました: %w", err)
	}

	slog.InfoContext(ctx, "書籍を登録しました",
		slog.Int64("book_id", book.ID),
	)
	return book, nil
}
