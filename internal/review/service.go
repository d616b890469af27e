// Package review はレビューのドメインロジックを提供する。
// 更新・削除は所有者を条件に含めたクエリで行い、他ユーザーのレビューは未検出と区別しない。
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/bookreview/internal/auth"
	"github.com/hitoshi/bookreview/internal/model"
	"github.com/hitoshi/bookreview/internal/repository"
	"github.com/hitoshi/bookreview/internal/security"
	"github.com/hitoshi/bookreview/internal/validate"
)

// 利用者向けメッセージ
const (
	MsgAlreadyReviewed = "Already review to this book"
	MsgReviewNotFound  = "Review not found"
	MsgBookNotFound    = "Book not found"
)

// Service はレビューの一覧・投稿・更新・削除を提供する。
type Service struct {
	reviewRepo repository.ReviewRepository
	sanitizer  security.TextSanitizerService
}

// NewService はServiceを生成する。
func NewService(reviewRepo repository.ReviewRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{
		reviewRepo: reviewRepo,
		sanitizer:  sanitizer,
	}
}

// ListByBook は書籍のレビューを評価・コメントで絞り込んで返す。
func (s *Service) ListByBook(ctx context.Context, in model.GetReviewsInput) ([]*model.Review, error) {
	var filter repository.ReviewFilter
	if in.Filter != nil {
		if in.Filter.Rating != nil {
			r := int(*in.Filter.Rating)
			filter.Rating = &r
		}
		if in.Filter.Comment != nil {
			filter.Comment = *in.Filter.Comment
		}
	}

	reviews, err := s.reviewRepo.ListByBook(ctx, int64(in.BookID), filter, in.Page())
	if err != nil {
		return nil, fmt.Errorf("レビュー一覧の取得に失敗しました: %w", err)
	}
	return reviews, nil
}

// ListMine は認証済みユーザー自身のレビューを返す。
func (s *Service) ListMine(ctx context.Context, in model.PageInput) ([]*model.Review, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviewRepo.ListByUser(ctx, userID, in.Page())
	if err != nil {
		return nil, fmt.Errorf("レビュー一覧の取得に失敗しました: %w", err)
	}
	return reviews, nil
}

// Add は認証済みユーザーとしてレビューを投稿する。
// 同じ書籍へのレビューが既にある場合はINVALID_REQUESTを返す。
func (s *Service) Add(ctx context.Context, in model.AddReviewInput) (*model.Review, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	bookID := int64(in.BookID)

	existing, err := s.reviewRepo.FindByUserAndBook(ctx, userID, bookID)
	if err != nil {
		return nil, fmt.Errorf("既存レビューの確認に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewInvalidRequestError(MsgAlreadyReviewed)
	}

	comment, err := security.CleanField(s.sanitizer, "comment", in.Comment)
	if err != nil {
		return nil, err
	}

	rv := &model.Review{
		Rating:  int(in.Rating),
		Comment: comment,
		BookID:  bookID,
		UserID:  userID,
	}
	if err := s.reviewRepo.Create(ctx, rv); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			// 確認と作成の間に同じ書籍へ投稿された場合
			return nil, model.NewInvalidRequestError(MsgAlreadyReviewed)
		case errors.Is(err, repository.ErrReferenceNotFound):
			return nil, model.NewNotFoundError(MsgBookNotFound)
		}
		return nil, fmt.Errorf("レビューの作成に失敗しました: %w", err)
	}

	slog.InfoContext(ctx, "レビューを投稿しました",
		slog.Int64("review_id", rv.ID),
		slog.Int64("book_id", rv.BookID),
	)
	return rv, nil
}

// Update は認証済みユーザーが所有するレビューに指定された項目のみを反映する。
func (s *Service) Update(ctx context.Context, in model.UpdateReviewInput) (*model.Review, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	patch := in.Patch()
	if patch.Comment != nil {
		comment, err := security.CleanField(s.sanitizer, "comment", *patch.Comment)
		if err != nil {
			return nil, err
		}
		patch.Comment = &comment
	}
	if patch.IsEmpty() {
		return nil, model.NewBadUserInputError(validate.MsgUpdateReviewEmpty)
	}

	rv, err := s.reviewRepo.Update(ctx, int64(in.ID), userID, patch)
	if err != nil {
		return nil, fmt.Errorf("レビューの更新に失敗しました: %w", err)
	}
	if rv == nil {
		return nil, model.NewNotFoundError(MsgReviewNotFound)
	}
	return rv, nil
}

// Delete は認証済みユーザーが所有するレビューを削除し、削除したレビューを返す。
func (s *Service) Delete(ctx context.Context, in model.IDInput) (*model.Review, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	rv, err := s.reviewRepo.Delete(ctx, int64(in.ID), userID)
	if err != nil {
		return nil, fmt.Errorf("レビューの削除に失敗しました: %w", err)
	}
	if rv == nil {
		return nil, model.NewNotFoundError(MsgReviewNotFound)
	}

	slog.InfoContext(ctx, "レビューを削除しました",
		slog.Int64("review_id", rv.ID),
	)
	return rv, nil
}

// OfBook は書籍の全レビューを返す。Book.reviewsの解決に使う。
func (s *Service) OfBook(ctx context.Context, bookID int64) ([]*model.Review, error) {
	reviews, err := s.reviewRepo.ListAllByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("書籍のレビュー取得に失敗しました: %w", err)
	}
	return reviews, nil
}

// OfUser はユーザーの全レビューを返す。User.reviewsの解決に使う。
func (s *Service) OfUser(ctx context.Context, userID int64) ([]*model.Review, error) {
	reviews, err := s.reviewRepo.ListAllByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーのレビュー取得に失敗しました: %w", err)
	}
	return reviews, nil
}

func currentUser(ctx context.Context) (int64, error) {
	userID, err := auth.UserIDFromContext(ctx)
	if err != nil {
		return 0, model.NewUnauthorizedError(auth.MsgNotAuthenticated, err)
	}
	return userID, nil
}
