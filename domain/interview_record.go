package domain

import (
	"context"
	"time"
)

// InterviewRecord is the archived form of a summarized interview.
type InterviewRecord struct {
	ID                uint    `gorm:"primaryKey"`
	SessionID         string  `gorm:"size:64;uniqueIndex;not null"`
	Role              string  `gorm:"size:255"`
	Type              string  `gorm:"size:64"`
	Difficulty        string  `gorm:"size:16"`
	OverallRating     string  `gorm:"type:enum('Excellent','Good','Average','Needs Improvement')"`
	AverageScore      float64 `gorm:"column:average_score"`
	QuestionsAnswered int
	DurationMinutes   int
	Summary           string  `gorm:"type:text"`
	Recommendation    string  `gorm:"type:text"`
	ResultJSON        *string `gorm:"type:json"`
	Fallback          bool
	CreatedAt         time.Time
}

// InterviewArchive stores and looks up archived interviews.
type InterviewArchive interface {
	Store(ctx context.Context, event SummaryEvent) error
	Find(ctx context.Context, sessionID string) (*InterviewRecord, error)
}
