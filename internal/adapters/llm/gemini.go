package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PabloGalante/fermi-notifier/internal/domain"
	"github.com/PabloGalante/fermi-notifier/internal/observability"
)

// DefaultGeminiBaseURL is the public Gemini REST endpoint.
const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// DefaultModel is fast and cheap enough for a single short generation.
const DefaultModel = "gemini-2.0-flash"

// GeminiClient implements domain.ProblemGenerator over the Gemini REST API.
// The API key travels as the "key" query parameter, which is what the
// endpoint expects.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGeminiClient creates a REST generator. Empty model or baseURL fall
// back to DefaultModel and DefaultGeminiBaseURL.
func NewGeminiClient(apiKey, model, baseURL string, client *http.Client) *GeminiClient {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate implements domain.ProblemGenerator.
func (g *GeminiClient) Generate(ctx context.Context) (domain.Estimation, error) {
	prompt := BuildPrompt()
	log := observability.WithFields(ctx,
		"backend", "rest",
		"model", g.model,
	)

	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			MaxOutputTokens: maxOutputTokens,
			Temperature:     temperature,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return domain.Estimation{}, &domain.SerializationError{Op: "encoding generation request", Err: err}
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent?%s", g.baseURL, g.model, url.Values{"key": {g.apiKey}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return domain.Estimation{}, fmt.Errorf("%w: building generation request: %v", domain.ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Info("sending request to generation API", "prompt_len", len(prompt))

	resp, err := g.client.Do(req)
	if err != nil {
		log.Error("generation API request failed", "error", redactKey(err.Error(), g.apiKey))
		return domain.Estimation{}, &domain.TransportError{Op: "calling generation API", Err: redactedError{err, g.apiKey}}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody := readErrorBody(resp.Body)
		log.Error("generation API returned error status", "status", resp.StatusCode, "error_body", errBody)
		return domain.Estimation{}, &domain.UpstreamError{Status: resp.StatusCode, Body: errBody}
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		log.Error("failed to decode generation response", "error", err)
		return domain.Estimation{}, &domain.SerializationError{Op: "decoding generation response", Err: err}
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		log.Error("generation response carried no text")
		return domain.Estimation{}, &domain.UpstreamError{Message: "no text content in response"}
	}

	text := strings.TrimSpace(genResp.Candidates[0].Content.Parts[0].Text)
	log.Debug("full generation output", "generated_text", text)

	est, err := ParseEstimation(text)
	if err != nil {
		log.Error("failed to parse generated text", "error", err, "generated_text", text)
		return domain.Estimation{}, err
	}

	log.Info("parsed Fermi problem and solution")
	return est, nil
}

// readErrorBody returns the response body for error reporting, or a
// placeholder when it cannot be read.
func readErrorBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil {
		return "failed to read error body"
	}
	return string(b)
}

// url.Error embeds the full request URL, key included.
type redactedError struct {
	err error
	key string
}

func (e redactedError) Error() string { return redactKey(e.err.Error(), e.key) }

func (e redactedError) Unwrap() error { return e.err }

func redactKey(s, key string) string {
	if key == "" {
		return s
	}
	s = strings.ReplaceAll(s, url.QueryEscape(key), "REDACTED")
	return strings.ReplaceAll(s, key, "REDACTED")
}
