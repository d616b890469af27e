// Package auth はトークン認証、認可ラッパー、ユーザー登録・ログインを提供する。
package auth

import (
	"context"
	"fmt"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	// authorizationContextKey はリクエストのAuthorizationヘッダー値を格納するキー。
	authorizationContextKey = contextKey("authorization")
	// userIDContextKey は認証済みユーザーIDを格納するキー。
	userIDContextKey = contextKey("user_id")
)

// WithAuthorization はAuthorizationヘッダーの値をコンテキストに格納する。
// ヘッダーが存在しないリクエストでは呼び出さない。
func WithAuthorization(ctx context.Context, header string) context.Context {
	return context.WithValue(ctx, authorizationContextKey, header)
}

// AuthorizationFromContext はコンテキストからAuthorizationヘッダーの値を取得する。
// ヘッダーが存在しない場合はokがfalseになる。
func AuthorizationFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(authorizationContextKey).(string)
	return v, ok
}

// ContextWithUserID はコンテキストに認証済みユーザーIDを注入する。
func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext はコンテキストから認証済みユーザーIDを取得する。
// RequireAuthを通過したリゾルバー内でのみ有効。
func UserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(userIDContextKey).(int64)
	if !ok {
		return 0, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}
