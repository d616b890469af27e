// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"net/http"
)

// APIError は統一エラーフォーマットを表す。
// GraphQLレスポンスでは message と extensions{code, statusCode} として公開される。
type APIError struct {
	Code       string // エラーコード
	Message    string // エラーメッセージ
	StatusCode int    // 対応するHTTPステータス
	Stack      string // 非本番モードでのみ設定されるスタックトレース

	cause error
}

// Error はerrorインターフェースを実装する。
// GraphQLのmessageにそのまま使われるため、メッセージのみを返す。
func (e *APIError) Error() string {
	return e.Message
}

// Unwrap は元になったエラーを返す。
func (e *APIError) Unwrap() error {
	return e.cause
}

// Extensions はGraphQLエラーのextensionsフィールドを返す。
func (e *APIError) Extensions() map[string]interface{} {
	ext := map[string]interface{}{
		"code":       e.Code,
		"statusCode": e.StatusCode,
	}
	if e.Stack != "" {
		ext["stack"] = e.Stack
	}
	return ext
}

// WithStack はスタックトレースを付与したコピーを返す。
func (e *APIError) WithStack(stack string) *APIError {
	cp := *e
	cp.Stack = stack
	return &cp
}

// 定義済みエラーコード
const (
	ErrCodeBadUserInput   = "BAD_USER_INPUT"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeInvalidUser    = "INVALID_USER"
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeInternal       = "INTERNAL_SERVER_ERROR"
)

// ErrCodeTooManyRequests はHTTP層でGraphQL実行前に返すレート制限エラーのコード。
const ErrCodeTooManyRequests = "TOO_MANY_REQUESTS"

// NewBadUserInputError は入力検証エラーを生成する。
func NewBadUserInputError(message string) *APIError {
	return &APIError{
		Code:       ErrCodeBadUserInput,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewUnauthorizedError は認証エラーを生成する。
func NewUnauthorizedError(message string, cause error) *APIError {
	return &APIError{
		Code:       ErrCodeUnauthorized,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
		cause:      cause,
	}
}

// NewNotFoundError はリソース未検出エラーを生成する。
// 他ユーザー所有のリソースもこのエラーで表し、存在を区別させない。
func NewNotFoundError(message string) *APIError {
	return &APIError{
		Code:       ErrCodeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewInvalidUserError はユーザー登録時の競合エラーを生成する。
func NewInvalidUserError(message string) *APIError {
	return &APIError{
		Code:       ErrCodeInvalidUser,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewInvalidRequestError はレビュー重複などの競合エラーを生成する。
func NewInvalidRequestError(message string) *APIError {
	return &APIError{
		Code:       ErrCodeInvalidRequest,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewInternalError は内部エラーを生成する。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewInternalError(message string, cause error) *APIError {
	return &APIError{
		Code:       ErrCodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		cause:      cause,
	}
}

// NewTooManyRequestsError はレート制限超過エラーを生成する。
func NewTooManyRequestsError(message string) *APIError {
	return &APIError{
		Code:       ErrCodeTooManyRequests,
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
	}
}

// AsAPIError はエラーチェーンからAPIErrorを取り出す。
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsCode はエラーが指定コードのAPIErrorかどうかを返す。
func IsCode(err error, code string) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Code == code
}
