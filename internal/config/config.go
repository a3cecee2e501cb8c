package config

import (
	"fmt"
	"os"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	JWTSecret string // JWT署名シークレット

	AssetBaseURL string // アセットホストのベースURL
	AssetAPIKey  string // アセットホストのAPIキー

	RedisAddr string // 空ならキャッシュ無し

	GoEnv string // dev/prod
	FEURL string // フロントURL（CORSで使う）
}

// Loadは環境変数から設定を組み立てる。
// DB接続はinfra/db側がPOSTGRES_*を直接読む。
func Load() (Config, error) {
	cfg := Config{
		Port: os.Getenv("PORT"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		AssetBaseURL: os.Getenv("ASSET_BASE_URL"),
		AssetAPIKey:  os.Getenv("ASSET_API_KEY"),

		RedisAddr: os.Getenv("REDIS_ADDR"),

		GoEnv: os.Getenv("GO_ENV"),
		FEURL: os.Getenv("FE_URL"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.GoEnv == "" {
		cfg.GoEnv = "dev"
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.AssetBaseURL == "" {
		return Config{}, fmt.Errorf("ASSET_BASE_URL is required")
	}
	if cfg.AssetAPIKey == "" {
		return Config{}, fmt.Errorf("ASSET_API_KEY is required")
	}

	return cfg, nil
}
