package conversation

import (
	"sync"
	"time"

	"roadtrip/internal/model"
)

// State tracks the last completed step of a trip conversation.
type State string

const (
	StateStart               State = "START"
	StateOriginSelected      State = "ORIGIN_SELECTED"
	StateDestinationSelected State = "DESTINATION_SELECTED"
	StateTimeSelected        State = "TIME_SELECTED"
	StateCategoriesSelected  State = "CATEGORIES_SELECTED"
	StateFinished            State = "FINISHED"
	StateCancelled           State = "CANCELLED"
)

// Session is one user's in-flight trip conversation.
type Session struct {
	UserID        int64
	UserName      string
	Email         string
	State         State
	Origin        string
	Destination   string
	Departure     time.Time
	Categories    model.CategorySet
	LatestRouteID string
	UpdatedAt     time.Time
}

// Sessions is an in-memory session store with idle expiry. A session that
// finished, was cancelled, or sat idle past the TTL is replaced by a fresh
// one on the next message.
type Sessions struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	byUser map[int64]*Session
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{ttl: ttl, now: time.Now, byUser: map[int64]*Session{}}
}

// Get returns the live session for a user, creating one when none exists or
// the previous trip is over. The second return reports whether the session
// is new.
func (s *Sessions) Get(userID int64, userName string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	sess, ok := s.byUser[userID]
	if ok && sess.State != StateFinished && sess.State != StateCancelled && now.Sub(sess.UpdatedAt) < s.ttl {
		sess.UpdatedAt = now
		return sess, false
	}
	sess = &Session{UserID: userID, UserName: userName, State: StateStart, UpdatedAt: now}
	s.byUser[userID] = sess
	return sess, true
}
