package claims

import "testing"

func TestTransitionTable(t *testing.T) {
	wantNext := map[Status][]Status{
		StatusDraft:            {StatusSubmitted},
		StatusSubmitted:        {StatusApproved, StatusRejected},
		StatusApproved:         {StatusPartiallySettled},
		StatusPartiallySettled: {StatusSettled},
		StatusRejected:         {},
		StatusSettled:          {},
	}

	for _, from := range AllStatuses() {
		allowed := make(map[Status]bool)
		for _, to := range wantNext[from] {
			allowed[to] = true
		}
		for _, to := range AllStatuses() {
			if got := from.CanTransitionTo(to); got != allowed[to] {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", from, to, got, allowed[to])
			}
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	var terminals []Status
	for _, s := range AllStatuses() {
		if s.IsTerminal() {
			terminals = append(terminals, s)
		}
	}
	if len(terminals) != 2 {
		t.Fatalf("expected exactly 2 terminal statuses, got %v", terminals)
	}
	if !StatusRejected.IsTerminal() || !StatusSettled.IsTerminal() {
		t.Fatal("expected rejected and settled to be terminal")
	}
}

func TestOnlyDraftIsEditable(t *testing.T) {
	for _, s := range AllStatuses() {
		if got := s.IsEditable(); got != (s == StatusDraft) {
			t.Errorf("IsEditable(%s) = %v", s, got)
		}
	}
}

func TestCanTransitionToUnknownStatus(t *testing.T) {
	if StatusDraft.CanTransitionTo(Status("archived")) {
		t.Fatal("expected transition to unknown status to be illegal")
	}
	if Status("archived").CanTransitionTo(StatusDraft) {
		t.Fatal("expected transition from unknown status to be illegal")
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"draft", StatusDraft},
		{"submitted", StatusSubmitted},
		{"approved", StatusApproved},
		{"rejected", StatusRejected},
		{"partiallysettled", StatusPartiallySettled},
		{"settled", StatusSettled},
		{"", StatusDraft},
		{"bogus", StatusDraft},
		{"SETTLED", StatusDraft}, // stored statuses are lowercase by contract
	}
	for _, tt := range tests {
		if got := ParseStatus(tt.in); got != tt.want {
			t.Errorf("ParseStatus(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestValidTransitionsReturnsCopy(t *testing.T) {
	next := StatusSubmitted.ValidTransitions()
	next[0] = StatusSettled
	if StatusSubmitted.ValidTransitions()[0] != StatusApproved {
		t.Fatal("mutating the returned slice must not affect the table")
	}
}

func TestDisplayStrings(t *testing.T) {
	for _, s := range AllStatuses() {
		if s.DisplayName() == "" {
			t.Errorf("missing display name for %s", s)
		}
		if s.Description() == "" {
			t.Errorf("missing description for %s", s)
		}
	}
}
