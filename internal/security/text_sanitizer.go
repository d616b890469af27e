// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer はユーザーが入力したプレーンテキスト（書籍のタイトル・著者、
// レビューのコメント）からHTMLを取り除く。bluemondayのStrictPolicyを使い、
// 全てのタグを除去してテキストのみを残す。
package security

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hitoshi/bookreview/internal/model"
)

// maxSanitizePasses はエスケープされたタグを展開しながら除去する最大回数。
const maxSanitizePasses = 3

// TextSanitizerService はプレーンテキストのサニタイズ機能のインターフェースを定義する。
type TextSanitizerService interface {
	// Sanitize はHTMLタグを除去し、前後の空白を取り除いたテキストを返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// TextSanitizer はTextSanitizerServiceの実装。
// bluemondayのポリシーはスレッドセーフなので、リクエスト間で共有してよい。
type TextSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerを生成する。
func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize はHTMLタグを除去したテキストを返す。
// StrictPolicyは "&" などをエンティティに変換するため、元の文字に戻して保存する。
// 戻した結果に再びタグが現れなくなるまで繰り返し、収束しない場合はエスケープしたまま返す。
func (s *TextSanitizer) Sanitize(raw string) string {
	out := raw
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(s.policy.Sanitize(out))
		if next == out {
			return strings.TrimSpace(out)
		}
		out = next
	}
	return strings.TrimSpace(s.policy.Sanitize(out))
}

// compile-time interface check
var _ TextSanitizerService = (*TextSanitizer)(nil)

// CleanField はフィールド値をサニタイズし、結果が空になった場合はBAD_USER_INPUTを返す。
func CleanField(s TextSanitizerService, field, raw string) (string, error) {
	cleaned := s.Sanitize(raw)
	if cleaned == "" {
		return "", model.NewBadUserInputError(fmt.Sprintf("%q must contain text", field))
	}
	return cleaned, nil
}
