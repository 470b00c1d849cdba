package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"career-coach/domain"
)

// NewMySQLConnection opens the database and migrates the feedback and
// interview archive tables.
func NewMySQLConnection(dsn string, logger logrus.FieldLogger) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("DB_DSN is not set")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Feedback{}, &domain.InterviewRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("connected to MySQL and migrated schema")
	return db, nil
}

// MySQLFeedbackRepository stores feedback rows through gorm.
type MySQLFeedbackRepository struct {
	db *gorm.DB
}

func NewMySQLFeedbackRepository(db *gorm.DB) *MySQLFeedbackRepository {
	return &MySQLFeedbackRepository{db: db}
}

func (r *MySQLFeedbackRepository) Save(ctx context.Context, entry *domain.Feedback) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// InterviewArchive persists summarized interviews.
type InterviewArchive struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewInterviewArchive(db *gorm.DB, logger logrus.FieldLogger) *InterviewArchive {
	return &InterviewArchive{db: db, log: logger.WithField("component", "archive")}
}

// Store upserts the record for the event's session, so a redelivered or
// repeated summary replaces the earlier row.
func (a *InterviewArchive) Store(ctx context.Context, event domain.SummaryEvent) error {
	record, err := RecordFromEvent(event)
	if err != nil {
		return err
	}
	err = a.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		UpdateAll: true,
	}).Create(record).Error
	if err != nil {
		return fmt.Errorf("archive interview %s: %w", event.SessionID, err)
	}
	a.log.WithField("session_id", event.SessionID).Info("interview archived")
	return nil
}

func (a *InterviewArchive) Find(ctx context.Context, sessionID string) (*domain.InterviewRecord, error) {
	var record domain.InterviewRecord
	err := a.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find interview %s: %w", sessionID, err)
	}
	return &record, nil
}

// RecordFromEvent flattens a summary event into its archive row.
func RecordFromEvent(event domain.SummaryEvent) (*domain.InterviewRecord, error) {
	raw, err := json.Marshal(event.Summary)
	if err != nil {
		return nil, fmt.Errorf("encode summary: %w", err)
	}
	resultJSON := string(raw)

	d := event.Summary.SessionDetails
	created := event.GeneratedAt
	if created.IsZero() {
		created = time.Now()
	}
	return &domain.InterviewRecord{
		SessionID:         event.SessionID,
		Role:              d.Role,
		Type:              d.Type,
		Difficulty:        d.Difficulty,
		OverallRating:     string(event.Summary.OverallRating),
		AverageScore:      math.Round(d.AverageScore*10) / 10,
		QuestionsAnswered: d.QuestionsAnswered,
		DurationMinutes:   d.Duration,
		Summary:           event.Summary.Summary,
		Recommendation:    event.Summary.Recommendation,
		ResultJSON:        &resultJSON,
		Fallback:          event.Summary.Fallback,
		CreatedAt:         created,
	}, nil
}
