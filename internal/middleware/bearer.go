// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"net/http"

	"github.com/hitoshi/bookreview/internal/auth"
)

// NewBearerMiddleware はAuthorizationヘッダーをリクエストコンテキストに載せるミドルウェアを返す。
// トークンの検証は各オペレーションの認可段で行うため、ここでは拒否しない。
func NewBearerMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if header := r.Header.Get("Authorization"); header != "" {
				r = r.WithContext(auth.WithAuthorization(r.Context(), header))
			}
			next.ServeHTTP(w, r)
		})
	}
}
