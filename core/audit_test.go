package core

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func TestLogrusAuthEvents(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	events := NewLogrusAuthEvents(log)

	if err := events.LogLogin(context.Background(), "admin@example.com", "token", "1.2.3.4", "curl/8"); err != nil {
		t.Fatalf("LogLogin: %v", err)
	}
	if err := events.LogAdminAccess(context.Background(), "admin@example.com", "/auth/is-admin", true); err != nil {
		t.Fatalf("LogAdminAccess: %v", err)
	}
	if err := events.LogRateLimited(context.Background(), "1.2.3.4", "/api/data"); err != nil {
		t.Fatalf("LogRateLimited: %v", err)
	}

	entries := hook.AllEntries()
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	for i, want := range []string{"login", "admin_access", "rate_limited"} {
		if got := entries[i].Data["event"]; got != want {
			t.Errorf("entry %d event = %v, want %q", i, got, want)
		}
		if id, ok := entries[i].Data["event_id"].(string); !ok || id == "" {
			t.Errorf("entry %d missing event_id", i)
		}
	}
	if entries[2].Level != logrus.WarnLevel {
		t.Errorf("rate_limited level = %v, want warn", entries[2].Level)
	}
}
