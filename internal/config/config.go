// Package config は環境変数 (.env) とゲームモード設定ファイルから実行時設定を読み込みます。
package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config はコマンド共通の実行時設定です。
type Config struct {
	AnswerFile     string   // 目標スコアとシードを含む回答ファイル
	Mode           string   // "full" または "o-only"
	GameLog        string   // ゲームログの出力先 (空なら出力しない)
	Debug          bool     // ラウンドごとに盤面をログに出す
	ConfigFile     string   // ゲームモード設定ファイル (YAML)
	Port           string   // ビューアーの待ち受けポート
	ReplayDir      string   // ビューアーが配信するゲームログのディレクトリ
	AllowedOrigins []string // ビューアーのCORS許可オリジン
}

// GameMode はゲームモード設定ファイルの内容です。未指定の項目は環境変数や回答ファイルの値を使います。
type GameMode struct {
	Mode        string   `yaml:"mode"`
	Kinds       []string `yaml:"kinds"`
	TargetScore *uint64  `yaml:"target_score"`
}

// LoadEnv は本番環境以外で .env を読み込みます。ファイルがなくてもエラーにはしません。
func LoadEnv() {
	if os.Getenv("APP_ENV") == "production" {
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Printf("[Config] .env not loaded (this is fine in production): %v", err)
	}
}

// Load は環境変数から設定を組み立てます。
func Load() *Config {
	cfg := &Config{
		AnswerFile: getEnv("TETRIS_ANSWER_FILE", "answer.txt"),
		Mode:       getEnv("TETRIS_MODE", "full"),
		GameLog:    os.Getenv("TETRIS_GAME_LOG"),
		Debug:      isTruthy(os.Getenv("TETRIS_DEBUG")),
		ConfigFile: os.Getenv("TETRIS_CONFIG"),
		Port:       getEnv("PORT", "8080"),
		ReplayDir:  getEnv("TETRIS_REPLAY_DIR", "replays"),
	}
	for _, origin := range strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}
	return cfg
}

// LoadGameMode はゲームモード設定ファイルを読み込みます。
//
// Parameters:
//
//	path : YAMLファイルのパス。空文字列なら nil を返します
//
// Returns:
//
//	*GameMode: 読み込んだ設定
//	error: 読み込みまたはパースに失敗した場合
func LoadGameMode(path string) (*GameMode, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var mode GameMode
	if err := yaml.Unmarshal(data, &mode); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &mode, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
