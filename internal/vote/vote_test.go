package vote

import (
	"testing"
	"time"
)

const window = 50 * time.Millisecond

func waitResolved(t *testing.T, s *Session) Outcome {
	t.Helper()
	select {
	case <-s.Done():
		return s.Outcome()
	case <-time.After(time.Second):
		t.Fatal("vote did not resolve in time")
		return OutcomePending
	}
}

func TestAloneResolvesImmediately(t *testing.T) {
	initiator := Voter{ID: "1", Name: "ana"}

	for _, eligible := range [][]Voter{nil, {initiator}} {
		s := New(initiator, eligible, window)
		if !s.Resolved() {
			t.Fatalf("eligible=%v: expected immediate resolution", eligible)
		}
		if got := s.Outcome(); got != OutcomeApproved {
			t.Fatalf("eligible=%v: outcome = %v, want approved", eligible, got)
		}
	}
}

func TestMajorityApproves(t *testing.T) {
	initiator := Voter{ID: "1", Name: "ana"}
	eligible := []Voter{initiator, {ID: "2", Name: "bo"}, {ID: "3", Name: "cy"}}

	s := New(initiator, eligible, window)
	if s.Resolved() {
		t.Fatal("vote resolved before the window")
	}
	if !s.Cast(eligible[1], ChoiceApprove) {
		t.Fatal("eligible ballot rejected")
	}

	if got := waitResolved(t, s); got != OutcomeApproved {
		t.Fatalf("outcome = %v, want approved", got)
	}
}

func TestTieRejects(t *testing.T) {
	initiator := Voter{ID: "1", Name: "ana"}
	eligible := []Voter{initiator, {ID: "2", Name: "bo"}}

	s := New(initiator, eligible, window)
	s.Cast(eligible[1], ChoiceReject)

	if got := waitResolved(t, s); got != OutcomeRejected {
		t.Fatalf("outcome = %v, want rejected on tie", got)
	}
}

func TestIneligibleBallotIgnored(t *testing.T) {
	initiator := Voter{ID: "1", Name: "ana"}
	eligible := []Voter{initiator, {ID: "2", Name: "bo"}}

	s := New(initiator, eligible, window)

	if s.Cast(Voter{ID: "99", Name: "drifter"}, ChoiceReject) {
		t.Fatal("ballot from outside the snapshot was accepted")
	}
	tally := s.Tally()
	if len(tally.Approved) != 1 || len(tally.Rejected) != 0 {
		t.Fatalf("tally changed after ignored ballot: %+v", tally)
	}

	// Only the initiator's pre-seeded approve counts.
	if got := waitResolved(t, s); got != OutcomeRejected {
		t.Fatalf("outcome = %v, want rejected", got)
	}
}

func TestLatestBallotWins(t *testing.T) {
	initiator := Voter{ID: "1", Name: "ana"}
	bo := Voter{ID: "2", Name: "bo"}

	s := New(initiator, []Voter{initiator, bo}, window)
	s.Cast(bo, ChoiceReject)
	s.Cast(bo, ChoiceApprove)

	tally := s.Tally()
	if len(tally.Approved) != 2 || len(tally.Rejected) != 0 {
		t.Fatalf("tally = %+v, want both voters under approved", tally)
	}
	if got := waitResolved(t, s); got != OutcomeApproved {
		t.Fatalf("outcome = %v, want approved", got)
	}
}

func TestTallyTracksEveryBallot(t *testing.T) {
	initiator := Voter{ID: "1", Name: "ana"}
	bo := Voter{ID: "2", Name: "bo"}
	cy := Voter{ID: "3", Name: "cy"}

	s := New(initiator, []Voter{initiator, bo, cy}, window)

	s.Cast(bo, ChoiceReject)
	tally := s.Tally()
	if len(tally.Approved) != 1 || len(tally.Rejected) != 1 {
		t.Fatalf("tally after first ballot = %+v", tally)
	}

	s.Cast(cy, ChoiceApprove)
	tally = s.Tally()
	if len(tally.Approved) != 2 || len(tally.Rejected) != 1 {
		t.Fatalf("tally after second ballot = %+v", tally)
	}
}

func TestCastAfterResolutionIgnored(t *testing.T) {
	initiator := Voter{ID: "1", Name: "ana"}
	bo := Voter{ID: "2", Name: "bo"}

	s := New(initiator, []Voter{initiator, bo}, window)
	waitResolved(t, s)

	if s.Cast(bo, ChoiceApprove) {
		t.Fatal("ballot accepted after resolution")
	}
}

func TestConfirmResolvesOnFirstBallot(t *testing.T) {
	s := NewConfirm(window)
	if !s.Cast(Voter{ID: "1", Name: "ana"}, ChoiceApprove) {
		t.Fatal("confirm ballot rejected")
	}
	if got := waitResolved(t, s); got != OutcomeApproved {
		t.Fatalf("outcome = %v, want approved", got)
	}

	s = NewConfirm(window)
	s.Cast(Voter{ID: "1", Name: "ana"}, ChoiceReject)
	if got := waitResolved(t, s); got != OutcomeRejected {
		t.Fatalf("outcome = %v, want rejected", got)
	}
}

func TestConfirmExpiresToNoQuorum(t *testing.T) {
	s := NewConfirm(window)
	if got := waitResolved(t, s); got != OutcomeNoQuorum {
		t.Fatalf("outcome = %v, want no-quorum", got)
	}
}
