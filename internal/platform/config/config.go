package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// Database設定
	Database DatabaseConfig

	// OpenAI設定（Embeddings + 回答合成）
	OpenAI OpenAIConfig

	// Google Drive設定
	Drive DriveConfig

	// チャンク分割設定
	Chunking ChunkingConfig

	// HTTPサーバー設定
	Server ServerConfig

	// ログレベル（debug / info / warn / error）
	LogLevel string
}

// DatabaseConfig はデータベース接続設定
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// OpenAIConfig はOpenAI API設定（Embeddings + LLM）
type OpenAIConfig struct {
	APIKey             string
	EmbeddingModel     string
	EmbeddingDimension int
	LLMModel           string // 回答合成に使用するモデル名
}

// DriveConfig はGoogle Drive API設定
// OAuthトークンの取得フロー自体はアプリの責務外で、
// 事前に払い出された credentials.json / token.json を読み込むだけ
type DriveConfig struct {
	CredentialsPath string // OAuthクライアントシークレットのパス
	TokenPath       string // 認可済みトークンのパス
}

// ChunkingConfig はテキスト分割のパラメータ
type ChunkingConfig struct {
	ChunkSize int // 1チャンクの文字数
	Overlap   int // 隣接チャンク間で共有する文字数
}

// ServerConfig はHTTPサーバー設定
type ServerConfig struct {
	Addr string
}

// Load は環境変数または.envファイルから設定を読み込みます
func Load(envFilePath string) (*Config, error) {
	// .envファイルが存在する場合は読み込む
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			// ファイルが存在しない場合はエラーとしない（環境変数のみで動作可能）
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "driverag"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "driverag"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		OpenAI: OpenAIConfig{
			APIKey:             getEnv("OPENAI_API_KEY", ""),
			EmbeddingModel:     getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimension: getEnvAsInt("OPENAI_EMBEDDING_DIMENSION", 1536),
			LLMModel:           getEnv("OPENAI_LLM_MODEL", "gpt-4o-mini"),
		},
		Drive: DriveConfig{
			CredentialsPath: getEnv("DRIVE_CREDENTIALS_PATH", "credentials.json"),
			TokenPath:       getEnv("DRIVE_TOKEN_PATH", "token.json"),
		},
		Chunking: ChunkingConfig{
			ChunkSize: getEnvAsInt("CHUNK_SIZE", 1000),
			Overlap:   getEnvAsInt("CHUNK_OVERLAP", 100),
		},
		Server: ServerConfig{
			Addr: getEnv("SERVER_ADDR", ":8000"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt は環境変数を整数として取得します
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
