package infrastructure

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"career-coach/domain"
)

// MemorySessionStore keeps sessions in a bounded LRU whose entries expire
// after an idle period. Every mutation re-adds the entry to refresh its TTL.
type MemorySessionStore struct {
	cache *expirable.LRU[string, *domain.Session]
	now   func() time.Time
	log   logrus.FieldLogger
}

func NewMemorySessionStore(capacity int, idleTTL time.Duration, logger logrus.FieldLogger) *MemorySessionStore {
	s := &MemorySessionStore{
		now: time.Now,
		log: logger.WithField("component", "session_store"),
	}
	s.cache = expirable.NewLRU[string, *domain.Session](capacity, func(id string, _ *domain.Session) {
		s.log.WithField("session_id", id).Debug("session dropped")
	}, idleTTL)
	return s
}

func (s *MemorySessionStore) Create(params domain.SessionParams) (*domain.Session, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	session := domain.NewSession(id.String(), params, s.now())
	s.cache.Add(session.ID, session)
	return session, nil
}

func (s *MemorySessionStore) Get(id string) (*domain.Session, error) {
	session, ok := s.cache.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *MemorySessionStore) AppendQuestion(id string, slot int, question string) error {
	session, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := session.AppendQuestion(slot, question); err != nil {
		return err
	}
	s.touch(session)
	return nil
}

func (s *MemorySessionStore) AppendAnswer(id string, slot int, record domain.AnswerRecord) error {
	session, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := session.AppendAnswer(slot, record); err != nil {
		return err
	}
	s.touch(session)
	return nil
}

// touch refreshes the TTL unless the session was evicted meanwhile.
func (s *MemorySessionStore) touch(session *domain.Session) {
	if current, ok := s.cache.Peek(session.ID); ok && current == session {
		s.cache.Add(session.ID, session)
	}
}

func (s *MemorySessionStore) Evict(id string) bool {
	return s.cache.Remove(id)
}

func (s *MemorySessionStore) Len() int {
	return s.cache.Len()
}
