// Package vote implements the time-boxed collective decision used by the
// skip and stop commands. A session snapshots who may vote at construction,
// records at most one ballot per voter (latest wins), and resolves exactly
// once: by deadline tally, or - in the binary confirm variant - on the first
// decisive response.
package vote

import (
	"sort"
	"sync"
	"time"
)

type Choice uint8

const (
	ChoiceApprove Choice = iota
	ChoiceReject
)

type Outcome uint8

const (
	OutcomePending Outcome = iota
	OutcomeApproved
	OutcomeRejected
	// OutcomeNoQuorum means the binary confirm window expired with no
	// decisive response; callers treat it as a cancellation.
	OutcomeNoQuorum
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApproved:
		return "approved"
	case OutcomeRejected:
		return "rejected"
	case OutcomeNoQuorum:
		return "no-quorum"
	default:
		return "pending"
	}
}

type Voter struct {
	ID   string
	Name string
}

// Tally is a display snapshot: names of voters whose latest ballot is
// approve/reject, sorted for stable output.
type Tally struct {
	Approved []string
	Rejected []string
}

type Session struct {
	mu       sync.Mutex
	eligible map[string]bool // nil means anyone may respond (binary variant)
	ballots  map[string]Choice
	names    map[string]string
	binary   bool
	outcome  Outcome
	timer    *time.Timer
	done     chan struct{}
}

// New starts a tallied vote. The initiator's approve ballot is pre-seeded.
// When nobody besides the initiator is eligible (or the eligible set is
// empty), the vote resolves Approved immediately with no collection window.
func New(initiator Voter, eligible []Voter, window time.Duration) *Session {
	s := &Session{
		eligible: make(map[string]bool, len(eligible)),
		ballots:  map[string]Choice{initiator.ID: ChoiceApprove},
		names:    map[string]string{initiator.ID: initiator.Name},
		done:     make(chan struct{}),
	}
	for _, v := range eligible {
		s.eligible[v.ID] = true
	}

	if s.everyEligibleApprovedLocked() {
		s.outcome = OutcomeApproved
		close(s.done)
		return s
	}

	s.timer = time.AfterFunc(window, s.expire)
	return s
}

// NewConfirm starts the binary confirm/cancel variant: the first ballot from
// anyone resolves the session; an empty window resolves to no-quorum.
func NewConfirm(window time.Duration) *Session {
	s := &Session{
		ballots: map[string]Choice{},
		names:   map[string]string{},
		binary:  true,
		done:    make(chan struct{}),
	}
	s.timer = time.AfterFunc(window, s.expire)
	return s
}

// Cast records a ballot, replacing any earlier ballot from the same voter.
// It reports whether the ballot was accepted; ballots from outside the
// eligibility snapshot or after resolution are ignored without effect.
func (s *Session) Cast(v Voter, c Choice) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outcome != OutcomePending {
		return false
	}
	if s.eligible != nil && !s.eligible[v.ID] {
		return false
	}

	s.ballots[v.ID] = c
	s.names[v.ID] = v.Name

	if s.binary {
		if c == ChoiceApprove {
			s.resolveLocked(OutcomeApproved)
		} else {
			s.resolveLocked(OutcomeRejected)
		}
	}
	return true
}

// Done is closed when the session resolves.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) Outcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

func (s *Session) Resolved() bool {
	return s.Outcome() != OutcomePending
}

func (s *Session) Tally() Tally {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tallyLocked()
}

func (s *Session) expire() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outcome != OutcomePending {
		return
	}
	if s.binary {
		s.resolveLocked(OutcomeNoQuorum)
		return
	}

	approve, reject := s.countsLocked()
	// Ties favor rejection.
	if approve > reject {
		s.resolveLocked(OutcomeApproved)
	} else {
		s.resolveLocked(OutcomeRejected)
	}
}

func (s *Session) resolveLocked(o Outcome) {
	s.outcome = o
	if s.timer != nil {
		s.timer.Stop()
	}
	close(s.done)
}

func (s *Session) everyEligibleApprovedLocked() bool {
	for id := range s.eligible {
		if c, ok := s.ballots[id]; !ok || c != ChoiceApprove {
			return false
		}
	}
	return true
}

func (s *Session) countsLocked() (approve, reject int) {
	for _, c := range s.ballots {
		if c == ChoiceApprove {
			approve++
		} else {
			reject++
		}
	}
	return approve, reject
}

func (s *Session) tallyLocked() Tally {
	var t Tally
	for id, c := range s.ballots {
		if c == ChoiceApprove {
			t.Approved = append(t.Approved, s.names[id])
		} else {
			t.Rejected = append(t.Rejected, s.names[id])
		}
	}
	sort.Strings(t.Approved)
	sort.Strings(t.Rejected)
	return t
}
