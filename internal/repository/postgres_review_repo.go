package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hitoshi/bookreview/internal/model"
)

// PostgresReviewRepo はPostgreSQLを使用したレビューリポジトリ。
type PostgresReviewRepo struct {
	db *sql.DB
}

// NewPostgresReviewRepo はPostgresReviewRepoを生成する。
func NewPostgresReviewRepo(db *sql.DB) *PostgresReviewRepo {
	return &PostgresReviewRepo{db: db}
}

const reviewColumns = `id, rating, comment, book_id, user_id, created_at, updated_at`

// FindByUserAndBook はユーザーと書籍の組み合わせでレビューを取得する。
func (r *PostgresReviewRepo) FindByUserAndBook(ctx context.Context, userID, bookID int64) (*model.Review, error) {
	return r.queryOne(ctx, "find review by user and book",
		`SELECT `+reviewColumns+` FROM reviews WHERE user_id = $1 AND book_id = $2`,
		userID, bookID,
	)
}

// ListByBook は書籍のレビューを評価の一致・コメントの部分一致で絞り込んで取得する。
func (r *PostgresReviewRepo) ListByBook(ctx context.Context, bookID int64, filter ReviewFilter, page model.Page) ([]*model.Review, error) {
	conds := []string{"book_id = $1"}
	args := []any{bookID}

	if filter.Rating != nil {
		args = append(args, *filter.Rating)
		conds = append(conds, fmt.Sprintf("rating = $%d", len(args)))
	}
	if filter.Comment != "" {
		args = append(args, filter.Comment)
		conds = append(conds, fmt.Sprintf("strpos(lower(comment), lower($%d)) > 0", len(args)))
	}

	args = append(args, page.Skip, page.Take)
	query := fmt.Sprintf(
		`SELECT %s FROM reviews WHERE %s ORDER BY id OFFSET $%d LIMIT $%d`,
		reviewColumns, strings.Join(conds, " AND "), len(args)-1, len(args),
	)
	return r.queryMany(ctx, "list reviews by book", query, args...)
}

// ListByUser はユーザーのレビューをページング付きで取得する。
func (r *PostgresReviewRepo) ListByUser(ctx context.Context, userID int64, page model.Page) ([]*model.Review, error) {
	return r.queryMany(ctx, "list reviews by user",
		`SELECT `+reviewColumns+` FROM reviews WHERE user_id = $1 ORDER BY id OFFSET $2 LIMIT $3`,
		userID, page.Skip, page.Take,
	)
}

// ListAllByBook は書籍の全レビューを取得する。
func (r *PostgresReviewRepo) ListAllByBook(ctx context.Context, bookID int64) ([]*model.Review, error) {
	return r.queryMany(ctx, "list all reviews by book",
		`SELECT `+reviewColumns+` FROM reviews WHERE book_id = $1 ORDER BY id`,
		bookID,
	)
}

// ListAllByUser はユーザーの全レビューを取得する。
func (r *PostgresReviewRepo) ListAllByUser(ctx context.Context, userID int64) ([]*model.Review, error) {
	return r.queryMany(ctx, "list all reviews by user",
		`SELECT `+reviewColumns+` FROM reviews WHERE user_id = $1 ORDER BY id`,
		userID,
	)
}

// Create はレビューを作成し、採番されたIDとタイムスタンプを設定する。
// (user_id, book_id) の一意制約がレビュー重複の最終的な防御となる。
func (r *PostgresReviewRepo) Create(ctx context.Context, review *model.Review) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO reviews (rating, comment, book_id, user_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		review.Rating, review.Comment, review.BookID, review.UserID,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		return wrapDBError(err, "insert review")
	}
	return nil
}

// Update は所有者を条件に含めてレビューを部分更新する。nilのフィールドは変更しない。
func (r *PostgresReviewRepo) Update(ctx context.Context, id, userID int64, patch model.ReviewPatch) (*model.Review, error) {
	return r.queryOne(ctx, "update review",
		`UPDATE reviews
		 SET rating = COALESCE($3::integer, rating),
		     comment = COALESCE($4::text, comment),
		     updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+reviewColumns,
		id, userID, patch.Rating, patch.Comment,
	)
}

// Delete は所有者を条件に含めてレビューを削除し、削除したレビューを返す。
func (r *PostgresReviewRepo) Delete(ctx context.Context, id, userID int64) (*model.Review, error) {
	return r.queryOne(ctx, "delete review",
		`DELETE FROM reviews WHERE id = $1 AND user_id = $2 RETURNING `+reviewColumns,
		id, userID,
	)
}

func (r *PostgresReviewRepo) queryOne(ctx context.Context, operation, query string, args ...any) (*model.Review, error) {
	rv := &model.Review{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&rv.ID, &rv.Rating, &rv.Comment, &rv.BookID, &rv.UserID, &rv.CreatedAt, &rv.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBError(err, operation)
	}
	return rv, nil
}

func (r *PostgresReviewRepo) queryMany(ctx context.Context, operation, query string, args ...any) ([]*model.Review, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError(err, operation)
	}
	defer rows.Close()

	reviews := []*model.Review{}
	for rows.Next() {
		rv := &model.Review{}
		if err := rows.Scan(&rv.ID, &rv.Rating, &rv.Comment, &rv.BookID, &rv.UserID, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
			return nil, wrapDBError(err, operation)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err, operation)
	}
	return reviews, nil
}

// compile-time interface check
var _ ReviewRepository = (*PostgresReviewRepo)(nil)
