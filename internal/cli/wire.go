package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/PabloGalante/fermi-notifier/internal/adapters/llm"
	"github.com/PabloGalante/fermi-notifier/internal/adapters/notify"
	"github.com/PabloGalante/fermi-notifier/internal/app/fermi"
	"github.com/PabloGalante/fermi-notifier/internal/config"
	"github.com/PabloGalante/fermi-notifier/internal/domain"
	"github.com/PabloGalante/fermi-notifier/internal/observability"
)

// upstreamTimeout bounds every outbound call.
const upstreamTimeout = 45 * time.Second

// loadConfig reads configuration and sets up logging. Any error here is
// fatal for the caller.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		observability.Logger().Error("failed to load config", "error", err)
		return nil, err
	}

	level := cfg.LogLevel
	if opts.debug {
		level = "debug"
	}
	observability.Setup(os.Stdout, level)

	observability.Logger().Info("configuration loaded",
		"port", cfg.Port,
		"ntfy_topic", cfg.NtfyTopic,
		"generator", cfg.Generator,
		"model", cfg.GeminiModel,
		"schedule", cfg.Schedule,
	)
	return cfg, nil
}

// newHTTPClient returns the client shared by every upstream call.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: upstreamTimeout}
}

func newGenerator(ctx context.Context, cfg *config.Config, client *http.Client) (domain.ProblemGenerator, error) {
	log := observability.Logger()

	switch cfg.Generator {
	case config.GeneratorMock:
		log.Info("[LLM] Using MOCK generator")
		return llm.NewMockGenerator(), nil
	case config.GeneratorGenAI:
		log.Info("[LLM] Using genai SDK generator")
		g, err := llm.NewGenAIClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL, client)
		if err != nil {
			return nil, fmt.Errorf("initializing genai generator: %w", err)
		}
		return g, nil
	default:
		log.Info("[LLM] Using Gemini REST generator")
		return llm.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL, client), nil
	}
}

func newService(ctx context.Context, cfg *config.Config) (*fermi.Service, error) {
	client := newHTTPClient()

	gen, err := newGenerator(ctx, cfg, client)
	if err != nil {
		return nil, err
	}
	notifier := notify.NewNtfyClient(cfg.NtfyServer, cfg.NtfyTopic, client)

	return fermi.NewService(gen, notifier), nil
}
