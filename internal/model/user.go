// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashはAPI応答には含めない。
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AuthPayload はログインおよびアクセストークン再発行の結果を表す。
// 再発行時はRefreshTokenが空になる。
type AuthPayload struct {
	AccessToken  string
	RefreshToken string
	User         *User
}
