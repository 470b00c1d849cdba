package domain

import "time"

type Rating string

const (
	RatingExcellent        Rating = "Excellent"
	RatingGood             Rating = "Good"
	RatingAverage          Rating = "Average"
	RatingNeedsImprovement Rating = "Needs Improvement"
)

// RatingFor maps a mean score onto the rating bands.
func RatingFor(avg float64) Rating {
	switch {
	case avg >= 8:
		return RatingExcellent
	case avg >= 6:
		return RatingGood
	case avg >= 4:
		return RatingAverage
	default:
		return RatingNeedsImprovement
	}
}

// ParseRating accepts a rating spelled any case; ok is false for anything
// outside the four bands.
func ParseRating(s string) (Rating, bool) {
	for _, r := range []Rating{RatingExcellent, RatingGood, RatingAverage, RatingNeedsImprovement} {
		if equalFold(string(r), s) {
			return r, true
		}
	}
	return "", false
}

type SessionDetails struct {
	Role              string    `json:"role"`
	Type              string    `json:"type"`
	Difficulty        string    `json:"difficulty"`
	Duration          int       `json:"duration"`
	QuestionsAnswered int       `json:"questionsAnswered"`
	AverageScore      float64   `json:"averageScore"`
	StartTime         time.Time `json:"startTime"`
}

type QuestionDetail struct {
	QuestionNumber int      `json:"questionNumber"`
	Question       string   `json:"question"`
	Answer         string   `json:"answer"`
	Score          int      `json:"score"`
	Feedback       []string `json:"feedback"`
}

// Summary is the aggregate report for a finished interview.
type Summary struct {
	OverallRating       Rating           `json:"overallRating"`
	Summary             string           `json:"summary"`
	KeyStrengths        []string         `json:"keyStrengths"`
	AreasForImprovement []string         `json:"areasForImprovement"`
	Recommendation      string           `json:"recommendation"`
	NextSteps           []string         `json:"nextSteps"`
	SessionDetails      SessionDetails   `json:"sessionDetails"`
	QuestionDetails     []QuestionDetail `json:"questionDetails"`
	Fallback            bool             `json:"fallback,omitempty"`
}

// SummaryEvent is published once per summarized session.
type SummaryEvent struct {
	SessionID   string    `json:"session_id"`
	Summary     Summary   `json:"summary"`
	GeneratedAt time.Time `json:"generated_at"`
}
