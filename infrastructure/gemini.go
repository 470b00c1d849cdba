package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"career-coach/config"
	"career-coach/domain"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient calls the Gemini generateContent REST endpoint, walking the
// configured model list until one answers.
type GeminiClient struct {
	name    string
	apiKey  string
	models  []string
	baseURL string
	client  *http.Client
	log     logrus.FieldLogger
}

// NewGeminiClient creates a Gemini REST client from its own configuration.
func NewGeminiClient(cfg config.CapabilityConfig, logger logrus.FieldLogger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: Gemini API key not set", cfg.Name)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	return &GeminiClient{
		name:    cfg.Name,
		apiKey:  cfg.APIKey,
		models:  cfg.Models,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
		log:     logger.WithFields(logrus.Fields{"capability": cfg.Name, "provider": config.ProviderGemini}),
	}, nil
}

// Complete performs one completion using the first model that succeeds.
func (g *GeminiClient) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	var lastError error
	for _, model := range g.models {
		text, err := g.callGeminiWithModel(ctx, req, model)
		if err == nil {
			g.log.WithField("model", model).Debug("completion succeeded")
			return text, nil
		}
		lastError = err
		g.log.WithError(err).WithField("model", model).Warn("model failed")
		if ctx.Err() != nil {
			break
		}
	}
	if lastError == nil {
		lastError = errors.New("no models configured")
	}
	return "", &domain.CapabilityError{Provider: config.ProviderGemini, Err: fmt.Errorf("all models failed: %w", lastError)}
}

func (g *GeminiClient) callGeminiWithModel(ctx context.Context, req domain.CompletionRequest, model string) (string, error) {
	generationConfig := map[string]interface{}{
		"temperature": req.Temperature,
	}
	if req.MaxOutputTokens > 0 {
		generationConfig["maxOutputTokens"] = req.MaxOutputTokens
	}
	if req.JSON {
		generationConfig["responseMimeType"] = "application/json"
	}

	requestBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]interface{}{
					{"text": req.Prompt},
				},
			},
		},
		"generationConfig": generationConfig,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, model, g.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, truncate(string(body), 512))
	}

	var apiResponse map[string]interface{}
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return "", fmt.Errorf("failed to parse API response: %w", err)
	}

	return extractTextFromResponse(apiResponse)
}

func extractTextFromResponse(apiResponse map[string]interface{}) (string, error) {
	candidates, ok := apiResponse["candidates"].([]interface{})
	if !ok || len(candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	firstCandidate, ok := candidates[0].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("invalid candidate format")
	}
	content, ok := firstCandidate["content"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("invalid content format")
	}

	parts, ok := content["parts"].([]interface{})
	if !ok || len(parts) == 0 {
		return "", fmt.Errorf("no parts in content")
	}

	var text strings.Builder
	for _, p := range parts {
		part, ok := p.(map[string]interface{})
		if !ok {
			continue
		}
		if s, ok := part["text"].(string); ok {
			text.WriteString(s)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("no text in parts")
	}
	return text.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
