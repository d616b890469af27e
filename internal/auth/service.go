package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/bookreview/internal/model"
	"github.com/hitoshi/bookreview/internal/repository"
	"github.com/hitoshi/bookreview/internal/token"
)

// 利用者向けメッセージ
const (
	MsgEmailExists     = "Email already exists"
	MsgUserNotFound    = "No such user found"
	MsgInvalidPassword = "Invalid password"
)

// TokenIssuer はトークン発行のインターフェース。
type TokenIssuer interface {
	Issue(kind token.Kind, subject int64) (string, error)
}

// Service はユーザー登録、ログイン、アクセストークン再発行のビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// Register はユーザーを登録する。
// メールアドレスが登録済みの場合はINVALID_USERを返す。
func (s *Service) Register(ctx context.Context, in model.RegisterInput) (*model.User, error) {
	existing, err := s.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewInvalidUserError(MsgEmailExists)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	user := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// 確認と作成の間に同じメールアドレスで登録された場合
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewInvalidUserError(MsgEmailExists)
		}
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	slog.InfoContext(ctx, "ユーザーを登録しました",
		slog.Int64("user_id", user.ID),
	)
	return user, nil
}

// Login はメールアドレスとパスワードを照合し、アクセストークンとリフレッシュトークンを発行する。
func (s *Service) Login(ctx context.Context, in model.LoginInput) (*model.AuthPayload, error) {
	user, err := s.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewNotFoundError(MsgUserNotFound)
	}

	ok, err := s.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("パスワードの照合に失敗しました: %w", err)
	}
	if !ok {
		return nil, model.NewUnauthorizedError(MsgInvalidPassword, nil)
	}

	access, err := s.tokens.Issue(token.KindAccess, user.ID)
	if err != nil {
		return nil, fmt.Errorf("アクセストークンの発行に失敗しました: %w", err)
	}
	refresh, err := s.tokens.Issue(token.KindRefresh, user.ID)
	if err != nil {
		return nil, fmt.Errorf("リフレッシュトークンの発行に失敗しました: %w", err)
	}

	return &model.AuthPayload{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user,
	}, nil
}

// RefreshAccessToken は認証済みユーザーに新しいアクセストークンを発行する。
// リフレッシュトークンで認証したRequireAuthの内側で呼ぶこと。
func (s *Service) RefreshAccessToken(ctx context.Context) (*model.AuthPayload, error) {
	userID, err := UserIDFromContext(ctx)
	if err != nil {
		return nil, model.NewUnauthorizedError(MsgNotAuthenticated, err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewNotFoundError(MsgUserNotFound)
	}

	access, err := s.tokens.Issue(token.KindAccess, user.ID)
	if err != nil {
		return nil, fmt.Errorf("アクセストークンの発行に失敗しました: %w", err)
	}

	return &model.AuthPayload{
		AccessToken: access,
		User:        user,
	}, nil
}
