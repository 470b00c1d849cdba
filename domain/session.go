package domain

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// TotalSlots is the fixed number of questions in every interview.
const TotalSlots = 5

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty maps free client input to a Difficulty; empty input means medium.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DifficultyMedium, nil
	case DifficultyEasy:
		return DifficultyEasy, nil
	case DifficultyMedium:
		return DifficultyMedium, nil
	case DifficultyHard:
		return DifficultyHard, nil
	}
	return "", &ValidationError{Field: "difficulty", Reason: fmt.Sprintf("unknown difficulty %q (want easy, medium or hard)", s)}
}

// SessionParams holds what the client supplies when an interview is created.
type SessionParams struct {
	Role       string
	Type       string
	Difficulty Difficulty
}

// Session is one in-progress or completed interview. All access goes through
// its methods, which hold the session's own lock.
type Session struct {
	ID         string
	Role       string
	Type       string
	Difficulty Difficulty
	StartedAt  time.Time

	mu         sync.Mutex
	questions  []string
	answers    []AnswerRecord
	summarized bool
}

func NewSession(id string, params SessionParams, startedAt time.Time) *Session {
	if params.Difficulty == "" {
		params.Difficulty = DifficultyMedium
	}
	return &Session{
		ID:         id,
		Role:       params.Role,
		Type:       params.Type,
		Difficulty: params.Difficulty,
		StartedAt:  startedAt,
	}
}

// SessionSnapshot is a consistent copy of a session's state.
type SessionSnapshot struct {
	ID         string
	Role       string
	Type       string
	Difficulty Difficulty
	StartedAt  time.Time
	Questions  []string
	Answers    []AnswerRecord
}

// QuestionCount is the number of questions handed out so far.
func (s SessionSnapshot) QuestionCount() int { return len(s.Questions) }

// Completed reports whether every slot has been handed out.
func (s SessionSnapshot) Completed() bool { return len(s.Questions) >= TotalSlots }

func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers := make([]AnswerRecord, len(s.answers))
	for i, a := range s.answers {
		answers[i] = a.clone()
	}
	return SessionSnapshot{
		ID:         s.ID,
		Role:       s.Role,
		Type:       s.Type,
		Difficulty: s.Difficulty,
		StartedAt:  s.StartedAt,
		Questions:  append([]string(nil), s.questions...),
		Answers:    answers,
	}
}

// AppendQuestion records the question for slot. The slot must be the next
// free one, so two racing starts cannot both fill it.
func (s *Session) AppendQuestion(slot int, question string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.questions) >= TotalSlots {
		return ErrInterviewComplete
	}
	if slot != len(s.questions)+1 {
		return fmt.Errorf("question for slot %d: %w", slot, ErrSlotConflict)
	}
	s.questions = append(s.questions, question)
	return nil
}

// CheckAnswerSlot reports whether slot can currently receive an answer.
func (s *Session) CheckAnswerSlot(slot int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkAnswerSlot(slot)
}

func (s *Session) checkAnswerSlot(slot int) error {
	if slot < 1 || slot > TotalSlots {
		return &ValidationError{Field: "questionNumber", Reason: fmt.Sprintf("must be between 1 and %d", TotalSlots)}
	}
	if slot > len(s.questions) {
		return &ValidationError{Field: "questionNumber", Reason: fmt.Sprintf("question %d has not been asked yet", slot)}
	}
	if slot <= len(s.answers) {
		return fmt.Errorf("answer for slot %d: %w", slot, ErrSlotConflict)
	}
	if slot != len(s.answers)+1 {
		return &ValidationError{Field: "questionNumber", Reason: fmt.Sprintf("question %d must be answered first", len(s.answers)+1)}
	}
	return nil
}

// AppendAnswer records the answer for slot, keeping answers parallel to
// questions and never longer than them.
func (s *Session) AppendAnswer(slot int, record AnswerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkAnswerSlot(slot); err != nil {
		return err
	}
	s.answers = append(s.answers, record.clone())
	return nil
}

// MarkSummarized returns true only on the first call.
func (s *Session) MarkSummarized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summarized {
		return false
	}
	s.summarized = true
	return true
}

// SessionStore keeps live interview sessions.
type SessionStore interface {
	Create(params SessionParams) (*Session, error)
	Get(id string) (*Session, error)
	AppendQuestion(id string, slot int, question string) error
	AppendAnswer(id string, slot int, record AnswerRecord) error
	Evict(id string) bool
	Len() int
}
