package job_test

import (
	"testing"

	"whirr/job"
)

func TestStatusRoundTrip(t *testing.T) {
	statuses := []job.Status{
		job.Unknown,
		job.Queued,
		job.Running,
		job.Completed,
		job.Failed,
		job.Cancelled,
	}
	for _, s := range statuses {
		text, err := s.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var got job.Status
		if err := got.UnmarshalText(text); err != nil {
			t.Fatal(err)
		}
		if got != s {
			t.Fatalf("round trip mismatch: got %v, want %v", got, s)
		}
	}
}

func TestParseStatusUnknown(t *testing.T) {
	if _, err := job.ParseStatus("not-a-status"); err == nil {
		t.Fatal("expected error for unrecognized status")
	}
}

func TestTerminal(t *testing.T) {
	terminal := []job.Status{job.Completed, job.Failed, job.Cancelled}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Fatalf("expected %v to be terminal", s)
		}
	}
	nonTerminal := []job.Status{job.Unknown, job.Queued, job.Running}
	for _, s := range nonTerminal {
		if s.Terminal() {
			t.Fatalf("expected %v to be non-terminal", s)
		}
	}
}
