package auth

import (
	"context"
	"strings"

	"github.com/hitoshi/bookreview/internal/model"
	"github.com/hitoshi/bookreview/internal/token"
)

const bearerPrefix = "bearer "

// 認証失敗時のメッセージ
const (
	MsgNotAuthenticated = "Not authenticated"
	MsgTokenNotFound    = "Token Not Found"
	MsgInvalidToken     = "Invalid or expired token"
)

// TokenVerifier はトークン検証のインターフェース。
// token.Serviceの部分集合として定義する。
type TokenVerifier interface {
	Verify(kind token.Kind, tokenString string) (*token.Payload, error)
}

// Authenticator はリクエストのBearerトークンからユーザーIDを特定する。
type Authenticator struct {
	verifier TokenVerifier
}

// NewAuthenticator はAuthenticatorを生成する。
func NewAuthenticator(verifier TokenVerifier) *Authenticator {
	return &Authenticator{verifier: verifier}
}

// Identify はコンテキストのAuthorizationヘッダーを指定種別のトークンとして検証し、ユーザーIDを返す。
// ヘッダーがない、トークンが空、検証に失敗した場合はUNAUTHORIZEDのAPIErrorを返す。
// 匿名ユーザーへのフォールバックは行わない。
func (a *Authenticator) Identify(ctx context.Context, kind token.Kind) (int64, error) {
	header, ok := AuthorizationFromContext(ctx)
	if !ok || strings.TrimSpace(header) == "" {
		return 0, model.NewUnauthorizedError(MsgNotAuthenticated, nil)
	}

	raw, ok := bearerToken(header)
	if !ok {
		return 0, model.NewUnauthorizedError(MsgTokenNotFound, nil)
	}

	payload, err := a.verifier.Verify(kind, raw)
	if err != nil {
		return 0, model.NewUnauthorizedError(MsgInvalidToken, err)
	}
	return payload.Subject, nil
}

// bearerToken は "Bearer <token>" 形式のヘッダーからトークン部分を取り出す。
// スキームは大文字小文字を区別しない。
func bearerToken(header string) (string, bool) {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	raw := strings.TrimSpace(header[len(bearerPrefix):])
	if raw == "" {
		return "", false
	}
	return raw, true
}
