package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"career-coach/config"
	"career-coach/domain"
)

// GenAIClient uses the Google GenAI SDK against the Gemini API.
type GenAIClient struct {
	client *genai.Client
	models []string
	log    logrus.FieldLogger
}

func NewGenAIClient(ctx context.Context, cfg config.CapabilityConfig, logger logrus.FieldLogger) (*GenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: GenAI API key is required", cfg.Name)
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		// GEMINI_BASE_URL may carry the REST version suffix; the SDK adds its own.
		base := strings.TrimSuffix(strings.TrimRight(cfg.BaseURL, "/"), "/v1beta")
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: base + "/"}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIClient{
		client: client,
		models: cfg.Models,
		log:    logger.WithFields(logrus.Fields{"capability": cfg.Name, "provider": config.ProviderGenAI}),
	}, nil
}

func (c *GenAIClient) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	gc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.MaxOutputTokens > 0 {
		gc.MaxOutputTokens = req.MaxOutputTokens
	}
	if req.JSON {
		gc.ResponseMIMEType = "application/json"
	}

	var lastError error
	for _, model := range c.models {
		result, err := c.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), gc)
		if err != nil {
			lastError = err
			c.log.WithError(err).WithField("model", model).Warn("model failed")
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if text := result.Text(); text != "" {
			return text, nil
		}
		lastError = domain.ErrEmptyOutput
	}
	if lastError == nil {
		lastError = errors.New("no models configured")
	}
	return "", &domain.CapabilityError{Provider: config.ProviderGenAI, Err: lastError}
}
