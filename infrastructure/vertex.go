package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"strings"

	vertex "cloud.google.com/go/vertexai/genai"
	"github.com/sirupsen/logrus"

	"career-coach/config"
	"career-coach/domain"
)

// VertexClient generates text through Vertex AI using application default
// credentials.
type VertexClient struct {
	client *vertex.Client
	models []string
	log    logrus.FieldLogger
}

func NewVertexClient(ctx context.Context, cfg config.CapabilityConfig, logger logrus.FieldLogger) (*VertexClient, error) {
	client, err := vertex.NewClient(ctx, cfg.Project, cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}
	return &VertexClient{
		client: client,
		models: cfg.Models,
		log:    logger.WithFields(logrus.Fields{"capability": cfg.Name, "provider": config.ProviderVertex}),
	}, nil
}

func (c *VertexClient) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	var lastError error
	for _, name := range c.models {
		model := c.client.GenerativeModel(name)
		model.SetTemperature(req.Temperature)
		if req.MaxOutputTokens > 0 {
			model.SetMaxOutputTokens(req.MaxOutputTokens)
		}
		if req.JSON {
			model.ResponseMIMEType = "application/json"
		}

		resp, err := model.GenerateContent(ctx, vertex.Text(req.Prompt))
		if err != nil {
			lastError = err
			c.log.WithError(err).WithField("model", name).Warn("model failed")
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if text := vertexText(resp); text != "" {
			return text, nil
		}
		lastError = domain.ErrEmptyOutput
	}
	if lastError == nil {
		lastError = errors.New("no models configured")
	}
	return "", &domain.CapabilityError{Provider: config.ProviderVertex, Err: lastError}
}

func (c *VertexClient) Close() error {
	return c.client.Close()
}

func vertexText(resp *vertex.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(vertex.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}
