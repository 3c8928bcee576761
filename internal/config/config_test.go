package config

import (
	"os"
	"path/filepath"
	"testing"
)

// setEnv sets an environment variable, ignoring errors (for test setup)
func setEnv(key, value string) {
	_ = os.Setenv(key, value)
}

// unsetEnv unsets an environment variable, ignoring errors (for test cleanup)
func unsetEnv(key string) {
	_ = os.Unsetenv(key)
}

var envVars = []string{
	"CORPUS_PATH", "QDRANT_VECTOR_SIZE",
	"LLM_BASE_URL", "LLM_API_KEY", "MODEL_NAME",
	"EMBEDDING_BASE_URL", "EMBEDDING_MODEL_NAME",
	"DB_PATH", "QDRANT_URL", "QDRANT_COLLECTION",
	"RETRIEVAL_TOP_K", "MAX_RETRIEVALS",
	"API_PORT", "LOG_LEVEL", "LOG_FORMAT",
}

// saveEnv snapshots and clears the config env vars, restoring them on cleanup.
func saveEnv(t *testing.T) {
	t.Helper()
	original := make(map[string]string)
	for _, key := range envVars {
		original[key] = os.Getenv(key)
		unsetEnv(key)
	}
	t.Cleanup(func() {
		for key, value := range original {
			if value != "" {
				setEnv(key, value)
			} else {
				unsetEnv(key)
			}
		}
	})
}

func TestLoad(t *testing.T) {
	saveEnv(t)

	tests := []struct {
		name        string
		setupEnv    func(*testing.T)
		wantErr     bool
		checkConfig func(*Config) bool
	}{
		{
			name: "valid config with all required fields",
			setupEnv: func(t *testing.T) {
				setEnv("CORPUS_PATH", t.TempDir())
				setEnv("QDRANT_VECTOR_SIZE", "768")
			},
			checkConfig: func(cfg *Config) bool {
				return cfg.CorpusPath != "" && cfg.QdrantVectorSize == 768
			},
		},
		{
			name: "missing CORPUS_PATH",
			setupEnv: func(t *testing.T) {
				setEnv("QDRANT_VECTOR_SIZE", "768")
			},
			wantErr: true,
		},
		{
			name: "missing QDRANT_VECTOR_SIZE",
			setupEnv: func(t *testing.T) {
				setEnv("CORPUS_PATH", t.TempDir())
			},
			wantErr: true,
		},
		{
			name: "invalid QDRANT_VECTOR_SIZE",
			setupEnv: func(t *testing.T) {
				setEnv("CORPUS_PATH", t.TempDir())
				setEnv("QDRANT_VECTOR_SIZE", "invalid")
			},
			wantErr: true,
		},
		{
			name: "zero QDRANT_VECTOR_SIZE",
			setupEnv: func(t *testing.T) {
				setEnv("CORPUS_PATH", t.TempDir())
				setEnv("QDRANT_VECTOR_SIZE", "0")
			},
			wantErr: true,
		},
		{
			name: "negative RETRIEVAL_TOP_K",
			setupEnv: func(t *testing.T) {
				setEnv("CORPUS_PATH", t.TempDir())
				setEnv("QDRANT_VECTOR_SIZE", "768")
				setEnv("RETRIEVAL_TOP_K", "-1")
			},
			wantErr: true,
		},
		{
			name: "non-numeric MAX_RETRIEVALS",
			setupEnv: func(t *testing.T) {
				setEnv("CORPUS_PATH", t.TempDir())
				setEnv("QDRANT_VECTOR_SIZE", "768")
				setEnv("MAX_RETRIEVALS", "many")
			},
			wantErr: true,
		},
		{
			name: "default values for optional fields",
			setupEnv: func(t *testing.T) {
				setEnv("CORPUS_PATH", t.TempDir())
				setEnv("QDRANT_VECTOR_SIZE", "768")
			},
			checkConfig: func(cfg *Config) bool {
				return cfg.LLMBaseURL == "http://localhost:8080" &&
					cfg.LLMModelName == "SciPhi-Self-RAG-Mistral-7B-32k" &&
					cfg.LLMAPIKey == "dummy-key" &&
					cfg.EmbeddingBaseURL == "http://localhost:8081" &&
					cfg.QdrantURL == "http://localhost:6333" &&
					cfg.QdrantCollection == "papers" &&
					cfg.RetrievalTopK == 3 &&
					cfg.MaxRetrievals == 8 &&
					cfg.APIPort == "9000" &&
					cfg.LogLevel == "info" &&
					cfg.LogFormat == "text"
			},
		},
		{
			name: "custom optional values",
			setupEnv: func(t *testing.T) {
				tmpDir := t.TempDir()
				setEnv("CORPUS_PATH", t.TempDir())
				setEnv("QDRANT_VECTOR_SIZE", "768")
				setEnv("LLM_BASE_URL", "http://custom:9090")
				setEnv("MODEL_NAME", "custom-RAG-model")
				setEnv("RETRIEVAL_TOP_K", "5")
				setEnv("MAX_RETRIEVALS", "12")
				setEnv("DB_PATH", filepath.Join(tmpDir, "custom", "db.db"))
			},
			checkConfig: func(cfg *Config) bool {
				return cfg.LLMBaseURL == "http://custom:9090" &&
					cfg.LLMModelName == "custom-RAG-model" &&
					cfg.RetrievalTopK == 5 &&
					cfg.MaxRetrievals == 12 &&
					filepath.Base(cfg.DBPath) == "db.db"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Run from a temp directory so no stray .env file is loaded
			tmpDir := t.TempDir()
			originalWd, _ := os.Getwd()
			_ = os.Chdir(tmpDir)
			defer func() {
				_ = os.Chdir(originalWd)
			}()

			for _, key := range envVars {
				unsetEnv(key)
			}

			tt.setupEnv(t)

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Load() unexpected error: %v", err)
				return
			}
			if cfg == nil {
				t.Fatal("Load() returned nil config")
			}
			if tt.checkConfig != nil && !tt.checkConfig(cfg) {
				t.Errorf("Load() config validation failed: %+v", cfg)
			}
		})
	}
}

func TestLoad_CreatesDataDirectory(t *testing.T) {
	saveEnv(t)

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test", "db.db")

	setEnv("CORPUS_PATH", t.TempDir())
	setEnv("QDRANT_VECTOR_SIZE", "768")
	setEnv("DB_PATH", dbPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if _, err := os.Stat(filepath.Dir(dbPath)); os.IsNotExist(err) {
		t.Errorf("Load() should create data directory: %v", err)
	}
	if cfg.DBPath != dbPath {
		t.Errorf("Load() DBPath = %v, want %v", cfg.DBPath, dbPath)
	}
}

func TestGetEnv(t *testing.T) {
	originalValue := os.Getenv("TEST_ENV_VAR")
	defer func() {
		if originalValue != "" {
			setEnv("TEST_ENV_VAR", originalValue)
		} else {
			unsetEnv("TEST_ENV_VAR")
		}
	}()

	tests := []struct {
		name         string
		setupEnv     func()
		defaultValue string
		want         string
	}{
		{
			name: "env var set",
			setupEnv: func() {
				setEnv("TEST_ENV_VAR", "set-value")
			},
			defaultValue: "default",
			want:         "set-value",
		},
		{
			name: "env var not set",
			setupEnv: func() {
				unsetEnv("TEST_ENV_VAR")
			},
			defaultValue: "default",
			want:         "default",
		},
		{
			name: "empty env var uses default",
			setupEnv: func() {
				setEnv("TEST_ENV_VAR", "")
			},
			defaultValue: "default",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupEnv()
			got := getEnv("TEST_ENV_VAR", tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv() = %q, want %q", got, tt.want)
			}
		})
	}
}
