package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/bookreview/internal/model"
)

// errorEntry はGraphQLレスポンスのerrors要素と同じ形をとる。
type errorEntry struct {
	Message    string                 `json:"message"`
	Extensions map[string]interface{} `json:"extensions"`
}

// ErrorResponseBody はGraphQL実行に到達する前に拒否したリクエストのレスポンス。
// クライアントが通常のGraphQLエラーと同じ方法で扱えるようにする。
type ErrorResponseBody struct {
	Errors []errorEntry `json:"errors"`
}

// WriteErrorResponse はAPIErrorのステータスコードでエラーレスポンスを書き込む。
func WriteErrorResponse(w http.ResponseWriter, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.StatusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Errors: []errorEntry{{
			Message:    apiErr.Message,
			Extensions: apiErr.Extensions(),
		}},
	})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, model.NewInternalError("Internal server error", nil))
}
