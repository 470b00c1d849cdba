package career

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"career-coach/domain"
)

const minFeedbackLength = 10

type FeedbackRequest struct {
	Rating      int      `json:"rating"`
	Mood        string   `json:"mood"`
	Category    string   `json:"category"`
	Message     string   `json:"message"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Screenshot  string   `json:"screenshot"`
	Attachments []string `json:"attachments"`
	Timestamp   string   `json:"timestamp"`
}

// SaveFeedback validates and stores one feedback entry, filling defaults.
func (s *Service) SaveFeedback(ctx context.Context, req FeedbackRequest) (*domain.Feedback, error) {
	if utf8.RuneCountInString(strings.TrimSpace(req.Message)) < minFeedbackLength {
		return nil, &domain.ValidationError{Field: "message", Reason: "feedback message too short"}
	}
	if s.feedback == nil {
		return nil, fmt.Errorf("feedback storage is not configured")
	}

	now := s.now()
	entry := &domain.Feedback{
		ID:          now.UnixMilli(),
		Rating:      req.Rating,
		Mood:        req.Mood,
		Category:    req.Category,
		Message:     req.Message,
		Name:        req.Name,
		Email:       req.Email,
		Screenshot:  req.Screenshot,
		Attachments: req.Attachments,
		Timestamp:   req.Timestamp,
	}
	if strings.TrimSpace(entry.Category) == "" {
		entry.Category = "General"
	}
	if entry.Attachments == nil {
		entry.Attachments = []string{}
	}
	if entry.Timestamp == "" {
		entry.Timestamp = now.UTC().Format(time.RFC3339)
	}

	if err := s.feedback.Save(ctx, entry); err != nil {
		return nil, fmt.Errorf("save feedback: %w", err)
	}
	s.log.WithFields(logrus.Fields{"id": entry.ID, "category": entry.Category}).Info("feedback saved")
	return entry, nil
}
