package domain

import "context"

type Feedback struct {
	ID          int64    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Rating      int      `json:"rating"`
	Mood        string   `gorm:"size:64" json:"mood"`
	Category    string   `gorm:"size:128;default:'General'" json:"category"`
	Message     string   `gorm:"type:text;not null" json:"message"`
	Name        string   `gorm:"size:255" json:"name"`
	Email       string   `gorm:"size:255" json:"email"`
	Screenshot  string   `gorm:"type:longtext" json:"screenshot"`
	Attachments []string `gorm:"serializer:json;type:json" json:"attachments"`
	Timestamp   string   `gorm:"size:64" json:"timestamp"`
}

// FeedbackRepository appends feedback entries.
type FeedbackRepository interface {
	Save(ctx context.Context, entry *Feedback) error
}
