// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/bookreview/internal/model"
)

var (
	// ErrDuplicate は一意制約違反を示す。
	ErrDuplicate = errors.New("duplicate record")
	// ErrReferenceNotFound は外部キーの参照先が存在しないことを示す。
	ErrReferenceNotFound = errors.New("referenced record not found")
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成し、採番されたIDとタイムスタンプを設定する。
	// メールアドレスが重複する場合はErrDuplicateを返す。
	Create(ctx context.Context, user *model.User) error
}

// BookFilter は書籍検索の条件。空文字列の項目は条件に含めない。
type BookFilter struct {
	Title  string
	Author string
}

// BookRepository は書籍データの永続化インターフェース。
type BookRepository interface {
	// List は全書籍をID順で取得する。
	List(ctx context.Context) ([]*model.Book, error)

	// FindByID は指定IDの書籍を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Book, error)

	// Search はタイトル・著者の部分一致（大文字小文字を区別しない）で書籍を検索する。
	Search(ctx context.Context, filter BookFilter, page model.Page) ([]*model.Book, error)

	// Create は書籍を作成し、採番されたIDを設定する。
	Create(ctx context.Context, book *model.Book) error
}

// ReviewFilter はレビュー一覧の条件。
type ReviewFilter struct {
	Rating  *int
	Comment string
}

// ReviewRepository はレビューデータの永続化インターフェース。
type ReviewRepository interface {
	// FindByUserAndBook はユーザーと書籍の組み合わせでレビューを取得する。見つからない場合はnilを返す。
	FindByUserAndBook(ctx context.Context, userID, bookID int64) (*model.Review, error)

	// ListByBook は書籍のレビューを条件とページング付きで取得する。
	ListByBook(ctx context.Context, bookID int64, filter ReviewFilter, page model.Page) ([]*model.Review, error)

	// ListByUser はユーザーのレビューをページング付きで取得する。
	ListByUser(ctx context.Context, userID int64, page model.Page) ([]*model.Review, error)

	// ListAllByBook は書籍の全レビューを取得する。関連リゾルバー用。
	ListAllByBook(ctx context.Context, bookID int64) ([]*model.Review, error)

	// ListAllByUser はユーザーの全レビューを取得する。関連リゾルバー用。
	ListAllByUser(ctx context.Context, userID int64) ([]*model.Review, error)

	// Create はレビューを作成する。
	// 同一ユーザー・同一書籍のレビューが既にある場合はErrDuplicate、
	// 書籍が存在しない場合はErrReferenceNotFoundを返す。
	Create(ctx context.Context, review *model.Review) error

	// Update は指定ユーザーが所有するレビューに変更を適用し、更新後のレビューを返す。
	// 対象がない場合はnilを返す。
	Update(ctx context.Context, id, userID int64, patch model.ReviewPatch) (*model.Review, error)

	// Delete は指定ユーザーが所有するレビューを削除し、削除したレビューを返す。
	// 対象がない場合はnilを返す。
	Delete(ctx context.Context, id, userID int64) (*model.Review, error)
}
