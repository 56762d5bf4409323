package main

import (
	"flag"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mdobak/go-xerrors"

	"github.com/wavescribe/WaveScribe/internal/service"
	"github.com/wavescribe/WaveScribe/pkg/logger"
)

var (
	port           int
	dbPath         string
	tempDir        string
	modelDir       string
	allowedOrigins string
)

func init() {
	flag.IntVar(&port, "port", 8080, "HTTP server port")
	flag.StringVar(&dbPath, "db", getEnvOrDefault("WAVESCRIBE_DB_PATH", "wavescribe.sqlite3"), "Path to SQLite database")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("WAVESCRIBE_TEMP_DIR", "/tmp/wavescribe"), "Temporary directory")
	flag.StringVar(&modelDir, "models", getEnvOrDefault("WAVESCRIBE_MODEL_DIR", "models"), "Directory holding classification model artifacts")
	flag.StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	// Optional .env; absence is not an error.
	godotenv.Load()
	flag.Parse()

	log := logger.GetLogger()

	var origins []string
	if allowedOrigins == "*" {
		origins = []string{"*"}
	} else {
		origins = strings.Split(allowedOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	apiKeys := parseAPIKeys(os.Getenv("WAVESCRIBE_API_KEYS"))
	if len(apiKeys) == 0 {
		log.Warnf("WAVESCRIBE_API_KEYS is not set; API authentication is disabled")
	}

	svc, err := service.NewAnalysisService(service.Options{
		DBPath:   dbPath,
		ModelDir: modelDir,
		TempDir:  tempDir,
	})
	if err != nil {
		log.Fatalf("Failed to create service: %v", xerrors.New(err))
	}
	defer svc.Close()

	config := &ServerConfig{
		Port:           port,
		DBPath:         dbPath,
		TempDir:        tempDir,
		ModelDir:       modelDir,
		AllowedOrigins: origins,
		APIKeys:        apiKeys,
	}

	server := NewServer(svc, config)
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", xerrors.New(err))
	}
}

func parseAPIKeys(raw string) []string {
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
