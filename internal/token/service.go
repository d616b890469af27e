package token

import (
	"bytes"
	"fmt"
	"time"
)

// Kind はトークンの種別を表す。
type Kind string

const (
	// KindAccess はリソース操作に使う短命なトークン。
	KindAccess Kind = "access"
	// KindRefresh はアクセストークンの再発行にのみ使う長命なトークン。
	KindRefresh Kind = "refresh"
)

// デフォルトの有効期限
const (
	DefaultAccessTTL  = 30 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Config はトークン種別ごとのシークレットと有効期限を保持する。
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// IssueRecorder はトークン発行数を記録するインターフェース。
type IssueRecorder interface {
	RecordTokenIssued(kind string)
}

// Service は種別に応じたシークレットと有効期限でトークンを発行・検証する。
// 起動時に1回生成し、リクエスト間で共有する。
type Service struct {
	keys     map[Kind]key
	now      func() time.Time
	recorder IssueRecorder
}

type key struct {
	secret []byte
	ttl    time.Duration
}

// Option はServiceの任意設定。
type Option func(*Service)

// WithClock は現在時刻の取得関数を差し替える。
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithRecorder はトークン発行時に呼ばれるレコーダーを設定する。
func WithRecorder(r IssueRecorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// NewService はServiceを生成する。
// シークレットが未設定、または両種別で同一の場合はエラーを返す。
func NewService(cfg Config, opts ...Option) (*Service, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, fmt.Errorf("token secrets must not be empty")
	}
	if bytes.Equal(cfg.AccessSecret, cfg.RefreshSecret) {
		return nil, fmt.Errorf("access and refresh token secrets must differ")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}

	s := &Service{
		keys: map[Kind]key{
			KindAccess:  {secret: cfg.AccessSecret, ttl: cfg.AccessTTL},
			KindRefresh: {secret: cfg.RefreshSecret, ttl: cfg.RefreshTTL},
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue は指定種別のトークンをsubjectに対して発行する。
func (s *Service) Issue(kind Kind, subject int64) (string, error) {
	k, ok := s.keys[kind]
	if !ok {
		return "", fmt.Errorf("unknown token kind: %s", kind)
	}

	signed, err := Issue(subject, k.secret, k.ttl, s.now())
	if err != nil {
		return "", err
	}
	if s.recorder != nil {
		s.recorder.RecordTokenIssued(string(kind))
	}
	return signed, nil
}

// Verify は指定種別のシークレットでトークンを検証する。
func (s *Service) Verify(kind Kind, tokenString string) (*Payload, error) {
	k, ok := s.keys[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown token kind %s", ErrInvalidToken, kind)
	}
	return Verify(tokenString, k.secret, s.now())
}

// TTL は指定種別の有効期限を返す。
func (s *Service) TTL(kind Kind) time.Duration {
	return s.keys[kind].ttl
}
