package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	// DatabaseURLは未設定を許容する。未設定または接続不可の場合でもプロセスは
	// 起動し、identity系エンドポイントのみが縮退応答（STORE_UNAVAILABLE）になる。
	DatabaseURL  string
	DatabaseName string

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数はない。SERVER_PORTがポート番号として不正な場合のみエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.DatabaseName = getEnvString("DATABASE_NAME", "idman")
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	if err := validatePort(cfg.ServerPort); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func validatePort(port string) error {
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("SERVER_PORT must be numeric, got %q", port)
	}
	if n < 1 || n > 65535 {
		return fmt.Errorf("SERVER_PORT must be within 1-65535, got %d", n)
	}
	return nil
}
