// Command advisory-probe checks the configured provider and store from the
// command line. It sends one symptom triage and writes one record.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vcscsvcscs/aidoctor-pro/internal/advisory"
	"github.com/vcscsvcscs/aidoctor-pro/internal/llm"
	"github.com/vcscsvcscs/aidoctor-pro/internal/prompt"
	"github.com/vcscsvcscs/aidoctor-pro/internal/store"
	"github.com/vcscsvcscs/aidoctor-pro/pkg/model"
)

func main() {
	// Initialize logger
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	providerName := envOr("LLM_PROVIDER", llm.ProviderOpenAI)
	apiKey := os.Getenv("OPENAI_API_KEY")
	if providerName == llm.ProviderAzure {
		apiKey = os.Getenv("AZURE_OPENAI_API_KEY")
	}

	if apiKey == "" {
		logger.Fatal("Missing provider credentials. Set OPENAI_API_KEY, or LLM_PROVIDER=azure with AZURE_OPENAI_API_KEY and AZURE_OPENAI_ENDPOINT")
	}

	ctx := context.Background()
	failed := false

	// Test 1: advisory provider
	logger.Info("=== Probing advisory provider ===", zap.String("provider", providerName))
	if err := probeProvider(ctx, llm.Config{
		Provider:   providerName,
		APIKey:     apiKey,
		BaseURL:    os.Getenv("OPENAI_BASE_URL"),
		Endpoint:   os.Getenv("AZURE_OPENAI_ENDPOINT"),
		APIVersion: envOr("AZURE_OPENAI_API_VERSION", "2024-08-01-preview"),
		Model:      envOr("OPENAI_MODEL", envOr("AZURE_OPENAI_DEPLOYMENT", "gpt-4o-mini")),
		Timeout:    60 * time.Second,
	}, logger); err != nil {
		logger.Error("Provider probe failed", zap.Error(err))
		failed = true
	} else {
		logger.Info("Provider probe passed")
	}

	// Test 2: store round trip
	backend := envOr("STORE_BACKEND", store.BackendMemory)
	logger.Info("=== Probing store ===", zap.String("backend", backend))
	if err := probeStore(ctx, store.Options{
		Backend:         backend,
		PostgresURL:     os.Getenv("DATABASE_URL"),
		SQLitePath:      envOr("SQLITE_PATH", "/tmp/aidoctor-probe.db"),
		RedisURL:        os.Getenv("REDIS_URL"),
		MongoURI:        os.Getenv("MONGO_URI"),
		MongoDatabase:   envOr("MONGO_DATABASE", "aidoctor"),
		MongoCollection: envOr("MONGO_COLLECTION", "records"),
		Blob: store.BlobOptions{
			ConnectionString: os.Getenv("AZURE_STORAGE_CONNECTION_STRING"),
			AccountName:      os.Getenv("AZURE_STORAGE_ACCOUNT_NAME"),
			AccountKey:       os.Getenv("AZURE_STORAGE_ACCOUNT_KEY"),
			ContainerName:    envOr("AZURE_STORAGE_CONTAINER", "aidoctor-records"),
		},
	}, logger); err != nil {
		logger.Error("Store probe failed", zap.Error(err))
		failed = true
	} else {
		logger.Info("Store probe passed")
	}

	logger.Info("=== All probes completed ===")
	if failed {
		os.Exit(1)
	}
}

func probeProvider(ctx context.Context, cfg llm.Config, logger *zap.Logger) error {
	client, err := llm.NewOpenAIClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create provider client: %w", err)
	}

	req, err := prompt.SymptomTriage(nil, []model.Symptom{
		{Name: "Headache", Severity: model.SeverityMild, Duration: "1-3 days"},
	}, "Started after a long day at the computer.")
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	result, err := advisory.NewClient(client, logger).Invoke(ctx, req)
	if err != nil {
		return fmt.Errorf("symptom triage failed: %w", err)
	}

	pretty, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	logger.Info("Provider response received",
		zap.String("kind", string(result.Kind())),
		zap.Int("response_length", len(pretty)),
	)
	fmt.Println(string(pretty))
	return nil
}

func probeStore(ctx context.Context, opts store.Options, logger *zap.Logger) error {
	s, err := store.Open(ctx, opts, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	key := store.Key("aidoctor", "probe", uuid.New().String())
	value := []byte(`{"probe":true}`)

	if err := s.Put(ctx, key, value); err != nil {
		return fmt.Errorf("put failed: %w", err)
	}
	defer s.Delete(ctx, key)

	got, err := s.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("get failed: %w", err)
	}
	if string(got) != string(value) {
		return fmt.Errorf("read back %q, wrote %q", got, value)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
