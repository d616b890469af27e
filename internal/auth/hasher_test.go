package auth

import (
	"strings"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/bookreview/internal/model"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("password1")
	require.NoError(t, err)
	assert.NotEqual(t, "password1", hash)

	ok, err := h.Verify("password1", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("password2", hash)
	require.NoError(t, err)
	assert.False(t, ok, "不一致はエラーではなくfalse")
}

func TestBcryptHasher_MalformedHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	ok, err := h.Verify("password1", "not-a-bcrypt-hash")
	require.Error(t, err)
	assert.False(t, ok)

	oopsErr, isOops := oops.AsOops(err)
	require.True(t, isOops)
	assert.Equal(t, "INVALID_HASH", oopsErr.Code())
}

func TestBcryptHasher_PasswordTooLong(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("a", 72))
	require.NoError(t, err, "72バイトちょうどは受け付ける")

	_, err = h.Hash(strings.Repeat("a", 80))
	apiErr, ok := model.AsAPIError(err)
	require.True(t, ok, "err = %v", err)
	assert.Equal(t, model.ErrCodeBadUserInput, apiErr.Code)
	assert.Equal(t, MsgPasswordTooLong, apiErr.Message)
}

func TestNewBcryptHasher_CostOutOfRange(t *testing.T) {
	assert.Equal(t, DefaultBcryptCost, NewBcryptHasher(0).cost)
	assert.Equal(t, DefaultBcryptCost, NewBcryptHasher(bcrypt.MaxCost+1).cost)
	assert.Equal(t, 12, NewBcryptHasher(12).cost)
}
