package orchestration

import "testing"

func TestNewSessionIsRunningAndIdle(t *testing.T) {
	session := NewSession()

	if !session.IsRunning() {
		t.Fatalf("expected new session to be running")
	}
	if session.IsListening() || session.IsSpeaking() {
		t.Fatalf("expected new session to be idle")
	}
	if len(session.History()) != 0 {
		t.Fatalf("expected empty history")
	}
}

func TestHistoryReturnsIndependentCopy(t *testing.T) {
	session := NewSession()
	session.append(SpeakerUser, "hello")

	history := session.History()
	history[0].Text = "changed"

	if got := session.History()[0].Text; got != "hello" {
		t.Fatalf("expected stored exchange to stay %q, got %q", "hello", got)
	}
}

func TestRecentReturnsLatestInOrder(t *testing.T) {
	session := NewSession()
	for _, text := range []string{"a", "b", "c", "d"} {
		session.append(SpeakerUser, text)
	}

	recent := session.Recent(2)
	if len(recent) != 2 || recent[0].Text != "c" || recent[1].Text != "d" {
		t.Fatalf("expected [c d], got %v", recent)
	}
	if got := session.Recent(10); len(got) != 4 {
		t.Fatalf("expected all 4 exchanges, got %d", len(got))
	}
	if got := session.Recent(0); len(got) != 0 {
		t.Fatalf("expected no exchanges for n=0, got %v", got)
	}
}
