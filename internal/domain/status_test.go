package domain

import "testing"

func TestParseProposalStatus(t *testing.T) {
	cases := []struct {
		in   string
		want ProposalStatus
		ok   bool
	}{
		{"draft", StatusDraft, true},
		{"REVIEW", StatusReview, true},
		{" Approved ", StatusApproved, true},
		{"sent", StatusSent, true},
		{"cancelled", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseProposalStatus(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseProposalStatus(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseProposalAction(t *testing.T) {
	for _, name := range []string{"submit", "Approve", "REJECT", "send"} {
		if _, ok := ParseProposalAction(name); !ok {
			t.Fatalf("expected %q to parse", name)
		}
	}
	if _, ok := ParseProposalAction("cancel"); ok {
		t.Fatalf("cancel is not an action")
	}
}

func TestStatusLabel(t *testing.T) {
	if StatusReview.Label() != "In Review" {
		t.Fatalf("unexpected label %q", StatusReview.Label())
	}
	if ProposalStatus("X").Label() != "Unknown" {
		t.Fatalf("unknown status should have Unknown label")
	}
	if ProposalStatus("X").Valid() {
		t.Fatalf("X should not be valid")
	}
}
