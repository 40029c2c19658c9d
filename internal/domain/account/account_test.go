package account

import (
	"errors"
	"testing"

	"github.com/teamdo/engine/internal/es"
)

func mustCreate(t *testing.T) *Account {
	t.Helper()
	a, err := Create("acct-1", "team-1", "Dev Team")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	a.ClearUncommittedEvents()
	return a
}

func eventTypes(events []es.Event) []string {
	types := make([]string, len(events))
	for i, event := range events {
		types[i] = event.EventType()
	}
	return types
}

func TestCreate_Validation(t *testing.T) {
	if _, err := Create("", "team-1", "Dev Team"); !errors.Is(err, ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}
	if _, err := Create("acct-1", " ", "Dev Team"); !errors.Is(err, ErrMissingTeam) {
		t.Fatalf("expected ErrMissingTeam, got %v", err)
	}
	if _, err := Create("acct-1", "team-1", "  "); !errors.Is(err, ErrMissingName) {
		t.Fatalf("expected ErrMissingName, got %v", err)
	}
}

func TestCreate_StartsInactive(t *testing.T) {
	a, err := Create("acct-1", "team-1", "Dev Team")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if a.Active() {
		t.Fatal("a fresh account must not be active")
	}
	got := eventTypes(a.UncommittedEvents())
	if len(got) != 1 || got[0] != EventCreated {
		t.Fatalf("expected only a Created event, got %v", got)
	}
}

func TestActivationGuard(t *testing.T) {
	a := mustCreate(t)

	// Token alone does not activate.
	if err := a.SetToken("secret-token"); err != nil {
		t.Fatalf("SetToken returned error: %v", err)
	}
	if a.Active() {
		t.Fatal("token alone must not activate the account")
	}
	got := eventTypes(a.UncommittedEvents())
	if len(got) != 1 || got[0] != EventTokenSet {
		t.Fatalf("expected only a TokenSet event, got %v", got)
	}

	// Adding the webhook URL completes the configuration.
	if err := a.SetWebhookURL("https://hooks.example.com/t1"); err != nil {
		t.Fatalf("SetWebhookURL returned error: %v", err)
	}
	if !a.Active() {
		t.Fatal("a fully configured account must be active")
	}
	got = eventTypes(a.UncommittedEvents())
	want := []string{EventTokenSet, EventWebhookURLSet, EventActivated}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}

	// Clearing the token while active deactivates, exactly once.
	a.ClearUncommittedEvents()
	if err := a.SetToken(""); err != nil {
		t.Fatalf("SetToken returned error: %v", err)
	}
	if a.Active() {
		t.Fatal("clearing a required field must deactivate")
	}
	got = eventTypes(a.UncommittedEvents())
	if len(got) != 2 || got[0] != EventTokenSet || got[1] != EventDeactivated {
		t.Fatalf("expected TokenSet then Deactivated, got %v", got)
	}
}

func TestSetWebhookURL_Validation(t *testing.T) {
	a := mustCreate(t)
	for _, raw := range []string{"not a url", "ftp://example.com/x", "https://", "//missing-scheme"} {
		if err := a.SetWebhookURL(raw); !errors.Is(err, ErrInvalidWebhookURL) {
			t.Fatalf("SetWebhookURL(%q): expected ErrInvalidWebhookURL, got %v", raw, err)
		}
	}
	if len(a.UncommittedEvents()) != 0 {
		t.Fatal("rejected input must not raise events")
	}
}

func TestSetters_IdempotentOnSameValue(t *testing.T) {
	a := mustCreate(t)
	if err := a.SetToken("secret"); err != nil {
		t.Fatalf("SetToken returned error: %v", err)
	}
	a.ClearUncommittedEvents()

	if err := a.SetToken("secret"); err != nil {
		t.Fatalf("repeated SetToken returned error: %v", err)
	}
	if err := a.Rename("Dev Team"); err != nil {
		t.Fatalf("Rename to same name returned error: %v", err)
	}
	if len(a.UncommittedEvents()) != 0 {
		t.Fatal("setting an unchanged value must raise no event")
	}
}

func TestReplay_RestoresActivation(t *testing.T) {
	source := mustCreate(t)
	if err := source.SetToken("secret"); err != nil {
		t.Fatalf("SetToken returned error: %v", err)
	}
	if err := source.SetWebhookURL("https://hooks.example.com/t1"); err != nil {
		t.Fatalf("SetWebhookURL returned error: %v", err)
	}

	// Rebuild the full history including creation.
	full, err := Create("acct-1", "team-1", "Dev Team")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := full.SetToken("secret"); err != nil {
		t.Fatalf("SetToken returned error: %v", err)
	}
	if err := full.SetWebhookURL("https://hooks.example.com/t1"); err != nil {
		t.Fatalf("SetWebhookURL returned error: %v", err)
	}

	replayed := New("acct-1")
	if err := replayed.Replay(full.UncommittedEvents()); err != nil {
		t.Fatalf("Replay returned error: %v", err)
	}
	if !replayed.Active() || replayed.Token != "secret" || replayed.WebhookURL != "https://hooks.example.com/t1" {
		t.Fatalf("unexpected replayed state: %+v", replayed)
	}
}
