// Package token はアクセストークンとリフレッシュトークンの発行と検証を提供する。
//
// トークンはHS256で署名したJWTで、sub（ユーザーID）、iat、exp、jtiを持つ。
// アクセス用とリフレッシュ用で別のシークレットを使うため、
// 一方の種別で署名したトークンはもう一方の種別では検証に失敗する。
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken は署名不正・形式不正・期限切れのいずれかで検証に失敗したことを示す。
var ErrInvalidToken = errors.New("invalid token")

// Payload はトークンに格納される情報。
type Payload struct {
	Subject   int64
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// Issue はsubjectを格納し、now+ttlで失効する署名済みトークンを生成する。
func Issue(subject int64, secret []byte, ttl time.Duration, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", fmt.Errorf("failed to sign token: empty secret")
	}

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(subject, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンの署名と有効期限を検証し、格納された情報を返す。
// 検証に失敗した場合はErrInvalidTokenをラップしたエラーを返す。
func Verify(tokenString string, secret []byte, now time.Time) (*Payload, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	subject, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}

	payload := &Payload{
		Subject: subject,
		ID:      claims.ID,
	}
	if claims.IssuedAt != nil {
		payload.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		payload.ExpiresAt = claims.ExpiresAt.Time
	}
	return payload, nil
}
