package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort int

	// DBPath is the path to the local SQLite user directory.
	DBPath string

	// JWTSecret signs session tokens. Required at server startup.
	JWTSecret string

	// EncryptionKey protects stored Google refresh tokens. Required at
	// server startup.
	EncryptionKey string

	// GoogleClientSecretsFile is the OAuth2 client credentials JSON file
	// downloaded from the Google Cloud console.
	GoogleClientSecretsFile string

	// OAuthRedirectURL must match an authorized redirect URI of the
	// OAuth2 client.
	OAuthRedirectURL string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	port := getEnvInt("SERVER_PORT", 8080)

	return Config{
		ServerPort:              port,
		DBPath:                  getEnv("DB_PATH", "erp_users.db"),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		EncryptionKey:           getEnv("ENCRYPTION_KEY", ""),
		GoogleClientSecretsFile: getEnv("GOOGLE_CLIENT_SECRETS_FILE", "client_secret.json"),
		OAuthRedirectURL:        getEnv("OAUTH_REDIRECT_URL", fmt.Sprintf("http://127.0.0.1:%d/auth/callback", port)),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}
