package auth

import (
	"context"

	"github.com/hitoshi/bookreview/internal/token"
)

// Identifier はリクエストの認証を行うインターフェース。
type Identifier interface {
	Identify(ctx context.Context, kind token.Kind) (int64, error)
}

// RequireAuth はリゾルバーを認証必須にしたリゾルバーを返す。
// 認証に失敗した場合はnextを呼ばずにエラーを返す。
// 成功した場合はユーザーIDをコンテキストに注入してnextを呼ぶ。
func RequireAuth[In, Out any](
	id Identifier,
	kind token.Kind,
	next func(ctx context.Context, in In) (Out, error),
) func(ctx context.Context, in In) (Out, error) {
	return func(ctx context.Context, in In) (Out, error) {
		userID, err := id.Identify(ctx, kind)
		if err != nil {
			var zero Out
			return zero, err
		}
		return next(ContextWithUserID(ctx, userID), in)
	}
}
