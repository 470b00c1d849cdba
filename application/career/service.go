// Package career holds the assistant features around the interview: free
// prompting, resume parsing, industry trends, project planning and feedback.
package career

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"career-coach/domain"
)

const noResponseText = "⚠️ No response from Gemini."

// TextExtractor turns an uploaded document into plain text.
type TextExtractor interface {
	Extract(filename, mime string, data []byte) (string, error)
}

// Options wires a Service. Each feature has its own completer.
type Options struct {
	General   domain.Completer
	Resume    domain.Completer
	Trends    domain.Completer
	Planner   domain.Completer
	Feedback  domain.FeedbackRepository
	Extractor TextExtractor
	Metrics   domain.UsageMetrics
	Logger    logrus.FieldLogger
	Now       func() time.Time
}

type Service struct {
	general   domain.Completer
	resume    domain.Completer
	trends    domain.Completer
	planner   domain.Completer
	feedback  domain.FeedbackRepository
	extractor TextExtractor
	metrics   domain.UsageMetrics
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewService(opts Options) *Service {
	s := &Service{
		general:   opts.General,
		resume:    opts.Resume,
		trends:    opts.Trends,
		planner:   opts.Planner,
		feedback:  opts.Feedback,
		extractor: opts.Extractor,
		metrics:   opts.Metrics,
		log:       opts.Logger,
		now:       opts.Now,
	}
	if s.resume == nil {
		s.resume = s.general
	}
	if s.trends == nil {
		s.trends = s.general
	}
	if s.planner == nil {
		s.planner = s.general
	}
	if s.metrics == nil {
		s.metrics = domain.NopMetrics{}
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	s.log = s.log.WithField("component", "career")
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Generate passes a free prompt to the general completer. Unlike the other
// features it has no fallback: a failing capability is returned to the caller.
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	if err := domain.Required("prompt", prompt); err != nil {
		return "", err
	}
	text, err := s.general.Complete(ctx, domain.CompletionRequest{Prompt: prompt, Temperature: 1})
	if errors.Is(err, domain.ErrEmptyOutput) {
		return noResponseText, nil
	}
	if err != nil {
		return "", err
	}
	if text = strings.TrimSpace(text); text == "" {
		return noResponseText, nil
	}
	return text, nil
}
