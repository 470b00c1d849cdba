package infrastructure

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"career-coach/config"
	"career-coach/domain"
)

// OpenAIClient serves completions from the OpenAI chat API.
type OpenAIClient struct {
	client *openai.Client
	models []string
	log    logrus.FieldLogger
}

func NewOpenAIClient(cfg config.CapabilityConfig, logger logrus.FieldLogger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: OpenAI API key is required", cfg.Name)
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(oc),
		models: cfg.Models,
		log:    logger.WithFields(logrus.Fields{"capability": cfg.Name, "provider": config.ProviderOpenAI}),
	}, nil
}

func (c *OpenAIClient) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	request := openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   int(req.MaxOutputTokens),
	}
	if req.JSON {
		request.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	var lastError error
	for _, model := range c.models {
		request.Model = model
		resp, err := c.client.CreateChatCompletion(ctx, request)
		if err != nil {
			lastError = err
			c.log.WithError(err).WithField("model", model).Warn("model failed")
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			lastError = domain.ErrEmptyOutput
			continue
		}
		return resp.Choices[0].Message.Content, nil
	}
	if lastError == nil {
		lastError = errors.New("no models configured")
	}
	return "", &domain.CapabilityError{Provider: config.ProviderOpenAI, Err: lastError}
}
