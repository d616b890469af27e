package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hitoshi/bookreview/internal/model"
)

// PostgresBookRepo はPostgreSQLを使用した書籍リポジトリ。
type PostgresBookRepo struct {
	db *sql.DB
}

// NewPostgresBookRepo はPostgresBookRepoを生成する。
func NewPostgresBookRepo(db *sql.DB) *PostgresBookRepo {
	return &PostgresBookRepo{db: db}
}

const bookColumns = `id, title, author, published_year, created_at`

// List は全書籍をID順で取得する。書籍がない場合は空スライスを返す。
func (r *PostgresBookRepo) List(ctx context.Context) ([]*model.Book, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books ORDER BY id`,
	)
	if err != nil {
		return nil, wrapDBError(err, "list books")
	}
	defer rows.Close()

	return scanBooks(rows)
}

// FindByID は指定IDの書籍を取得する。見つからない場合はnilを返す。
func (r *PostgresBookRepo) FindByID(ctx context.Context, id int64) (*model.Book, error) {
	book := &model.Book{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = $1`,
		id,
	).Scan(&book.ID, &book.Title, &book.Author, &book.PublishedYear, &book.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBError(err, "find book by id")
	}
	return book, nil
}

// Search はタイトル・著者の部分一致で書籍を検索する。
// 条件はANDで結合し、大文字小文字を区別しない。
func (r *PostgresBookRepo) Search(ctx context.Context, filter BookFilter, page model.Page) ([]*model.Book, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Title != "" {
		args = append(args, filter.Title)
		conds = append(conds, fmt.Sprintf("strpos(lower(title), lower($%d)) > 0", len(args)))
	}
	if filter.Author != "" {
		args = append(args, filter.Author)
		conds = append(conds, fmt.Sprintf("strpos(lower(author), lower($%d)) > 0", len(args)))
	}

	query := `SELECT ` + bookColumns + ` FROM books`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	args = append(args, page.Skip, page.Take)
	query += fmt.Sprintf(` ORDER BY id OFFSET $%d LIMIT $%d`, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError(err, "search books")
	}
	defer rows.Close()

	return scanBooks(rows)
}

// Create は書籍を作成し、採番されたIDを設定する。
func (r *PostgresBookRepo) Create(ctx context.Context, book *model.Book) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO books (title, author, published_year)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		book.Title, book.Author, book.PublishedYear,
	).Scan(&book.ID, &book.CreatedAt)
	if err != nil {
		return wrapDBError(err, "insert book")
	}
	return nil
}

func scanBooks(rows *sql.Rows) ([]*model.Book, error) {
	books := []*model.Book{}
	for rows.Next() {
		b := &model.Book{}
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.PublishedYear, &b.CreatedAt); err != nil {
			return nil, wrapDBError(err, "scan book")
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err, "iterate books")
	}
	return books, nil
}

// compile-time interface check
var _ BookRepository = (*PostgresBookRepo)(nil)
