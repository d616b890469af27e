package auth

import (
	"errors"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/bookreview/internal/model"
)

// DefaultBcryptCost は既存のパスワードハッシュと互換のあるコスト。
const DefaultBcryptCost = 10

// MsgPasswordTooLong はbcryptが扱える長さを超えたパスワードに対するメッセージ。
const MsgPasswordTooLong = "password must be at most 72 bytes"

// PasswordHasher はパスワードのハッシュ化と照合のインターフェース。
type PasswordHasher interface {
	// Hash はパスワードのハッシュを返す。
	Hash(password string) (string, error)
	// Verify はパスワードがハッシュと一致するかを返す。
	// 不一致は(false, nil)、ハッシュ自体が不正な場合はエラーを返す。
	Verify(password, hash string) (bool, error)
}

// BcryptHasher はbcryptによるPasswordHasherの実装。
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher はBcryptHasherを生成する。costが範囲外の場合はDefaultBcryptCostを使う。
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash はパスワードのbcryptハッシュを返す。
// 72バイトを超えるパスワードは入力エラーになる。
func (h *BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", model.NewBadUserInputError(MsgPasswordTooLong)
	}
	if err != nil {
		return "", oops.In("auth").Code("HASH_FAILED").Wrap(err)
	}
	return string(b), nil
}

// Verify はパスワードをbcryptハッシュと照合する。
func (h *BcryptHasher) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, oops.In("auth").Code("INVALID_HASH").Wrap(err)
}

var _ PasswordHasher = (*BcryptHasher)(nil)
