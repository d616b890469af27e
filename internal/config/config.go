// Package config は環境変数からアプリケーション設定を読み込む。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// APP_ENVの値
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// 開発環境でのみ使うトークンシークレット。本番では環境変数の指定を必須にする。
const (
	devAccessTokenSecret  = "dev-access-token-secret"
	devRefreshTokenSecret = "dev-refresh-token-secret"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int

	// Server
	Port   string
	AppEnv string

	// Token
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration

	// CORS
	CORSAllowedOrigin string

	// Rate Limit
	RateLimitPerMinute int

	// Logging
	LogLevel  string
	LogFormat string
}

// IsProduction は本番モードかどうかを返す。
// 本番モードではエラーレスポンスにスタックトレースを含めない。
func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// Addr はHTTPサーバーのlistenアドレスを返す。
func (c *Config) Addr() string {
	return ":" + c.Port
}

// LoadDotEnv は.envファイルの内容を環境変数に読み込む。
// 既に設定されている環境変数は上書きしない。ファイルが存在しない場合は何もしない。
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合や値が不正な場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.AppEnv = getEnvString("APP_ENV", EnvDevelopment)
	cfg.AccessTokenSecret = os.Getenv("ACCESS_TOKEN_SECRET")
	cfg.RefreshTokenSecret = os.Getenv("REFRESH_TOKEN_SECRET")
	if cfg.IsProduction() {
		if cfg.AccessTokenSecret == "" {
			missing = append(missing, "ACCESS_TOKEN_SECRET")
		}
		if cfg.RefreshTokenSecret == "" {
			missing = append(missing, "REFRESH_TOKEN_SECRET")
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	if cfg.AccessTokenSecret == "" {
		cfg.AccessTokenSecret = devAccessTokenSecret
	}
	if cfg.RefreshTokenSecret == "" {
		cfg.RefreshTokenSecret = devRefreshTokenSecret
	}
	if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		return nil, errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}

	var err error
	if cfg.AccessTokenExpiry, err = getEnvExpiry("ACCESS_TOKEN_EXPIRY", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RefreshTokenExpiry, err = getEnvExpiry("REFRESH_TOKEN_EXPIRY", 7*24*time.Hour); err != nil {
		return nil, err
	}

	// Optional fields with defaults
	cfg.Port = getEnvString("PORT", "4000")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "*")
	cfg.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", 120)
	cfg.DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	cfg.DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 5)
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.LogFormat = getEnvString("LOG_FORMAT", "json")

	return cfg, nil
}

// ParseExpiry はトークンの有効期限を解析する。
// Goのduration表記に加えて "7d"（日）と "30min"（分）を受け付け、単位のない数値は秒として扱う。
func ParseExpiry(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	var d time.Duration
	switch {
	case strings.HasSuffix(s, "min"):
		n, err := strconv.Atoi(strings.TrimSuffix(s, "min"))
		if err != nil {
			return 0, fmt.Errorf("invalid expiry %q: %w", s, err)
		}
		d = time.Duration(n) * time.Minute
	case strings.HasSuffix(s, "d"):
		n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, fmt.Errorf("invalid expiry %q: %w", s, err)
		}
		d = time.Duration(n) * 24 * time.Hour
	default:
		if n, err := strconv.Atoi(s); err == nil {
			d = time.Duration(n) * time.Second
			break
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("invalid expiry %q: %w", s, err)
		}
		d = parsed
	}

	if d <= 0 {
		return 0, fmt.Errorf("invalid expiry %q: must be positive", s)
	}
	return d, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvExpiry(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	d, err := ParseExpiry(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
