package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"google.golang.org/genai"

	"github.com/PabloGalante/fermi-notifier/internal/domain"
	"github.com/PabloGalante/fermi-notifier/internal/observability"
)

// GenAIClient implements domain.ProblemGenerator with the Google Gen AI SDK.
// Unlike GeminiClient it authenticates with a header, which the SDK manages.
type GenAIClient struct {
	client    *genai.Client
	modelName string
}

// NewGenAIClient creates an SDK-backed generator that shares httpClient.
// baseURL accepts the same value as GeminiClient (".../v1beta/models") or a
// bare API root; empty keeps the SDK default.
func NewGenAIClient(ctx context.Context, apiKey, modelName, baseURL string, httpClient *http.Client) (*GenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required for the genai backend")
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: sdkHTTPOptions(baseURL),
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &GenAIClient{
		client:    client,
		modelName: modelName,
	}, nil
}

// sdkHTTPOptions splits "<root>/<version>/models" into the root and version
// the SDK builds its URLs from. Any other value is used as the root.
func sdkHTTPOptions(baseURL string) genai.HTTPOptions {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		return genai.HTTPOptions{}
	}
	u, err := url.Parse(base)
	if err != nil {
		return genai.HTTPOptions{BaseURL: base}
	}
	dir, ok := strings.CutSuffix(u.Path, "/models")
	if !ok || dir == "" {
		return genai.HTTPOptions{BaseURL: base}
	}
	version := path.Base(dir)
	u.Path = strings.TrimRight(path.Dir(dir), "/")
	return genai.HTTPOptions{BaseURL: u.String(), APIVersion: version}
}

// Generate implements domain.ProblemGenerator.
func (c *GenAIClient) Generate(ctx context.Context) (domain.Estimation, error) {
	prompt := BuildPrompt()
	log := observability.WithFields(ctx,
		"backend", "genai",
		"model", c.modelName,
	)

	temp := float32(temperature)
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: int32(maxOutputTokens),
	}

	log.Info("sending request to generation API", "prompt_len", len(prompt))

	res, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(prompt), cfg)
	if err != nil {
		if apiErr, ok := asAPIError(err); ok {
			log.Error("generation API returned error status", "status", apiErr.Code, "error_body", apiErr.Message)
			return domain.Estimation{}, &domain.UpstreamError{Status: apiErr.Code, Body: apiErr.Message}
		}
		log.Error("generation API request failed", "error", err)
		return domain.Estimation{}, &domain.TransportError{Op: "calling generation API", Err: err}
	}

	text, ok := firstPartText(res)
	if !ok {
		log.Error("generation response carried no text")
		return domain.Estimation{}, &domain.UpstreamError{Message: "no text content in response"}
	}
	text = strings.TrimSpace(text)
	log.Debug("full generation output", "generated_text", text)

	est, err := ParseEstimation(text)
	if err != nil {
		log.Error("failed to parse generated text", "error", err, "generated_text", text)
		return domain.Estimation{}, err
	}

	log.Info("parsed Fermi problem and solution")
	return est, nil
}

// firstPartText returns the text of the first part of the first candidate,
// the same field GeminiClient reads.
func firstPartText(res *genai.GenerateContentResponse) (string, bool) {
	if res == nil || len(res.Candidates) == 0 {
		return "", false
	}
	cand := res.Candidates[0]
	if cand == nil || cand.Content == nil || len(cand.Content.Parts) == 0 || cand.Content.Parts[0] == nil {
		return "", false
	}
	return cand.Content.Parts[0].Text, true
}

// The SDK returns APIError by value.
func asAPIError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return *apiErrPtr, true
	}
	return genai.APIError{}, false
}
