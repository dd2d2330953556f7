package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dlaveaga/go-guidedog/pkg/nav"
)

func TestStatusEndpoint(t *testing.T) {
	s := NewServer("0", nil)
	s.UpdateStatus(Status{HazardLevel: "WARNING"})

	resp, err := s.app.Test(httptest.NewRequest("GET", "/api/status", nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got Status
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.HazardLevel != "WARNING" {
		t.Errorf("hazard_level = %q, want WARNING", got.HazardLevel)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("updated_at not stamped")
	}
}

func TestCommandEndpoint(t *testing.T) {
	s := NewServer("0", nil)

	post := func(body string) (int, string) {
		t.Helper()
		req := httptest.NewRequest("POST", "/api/command", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := s.app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(b)
	}

	t.Run("unconfigured", func(t *testing.T) {
		if code, _ := post(`{"text":"stop"}`); code != 503 {
			t.Errorf("status = %d, want 503", code)
		}
	})

	s.OnCommand = func(_ context.Context, text string) (string, error) {
		cmd := nav.ParseCommand(text)
		if cmd.Kind == nav.CmdUnknown {
			return cmd.Kind.String(), errors.New("unrecognized")
		}
		return cmd.Kind.String(), nil
	}

	t.Run("parsed command", func(t *testing.T) {
		code, body := post(`{"text":"navigate to the park"}`)
		if code != 200 {
			t.Fatalf("status = %d, want 200 (%s)", code, body)
		}
		if !strings.Contains(body, "navigate-to") {
			t.Errorf("body = %s, want parsed kind", body)
		}
	})

	t.Run("handler error", func(t *testing.T) {
		if code, _ := post(`{"text":"play some jazz"}`); code != 500 {
			t.Errorf("status = %d, want 500", code)
		}
	})

	t.Run("bad body", func(t *testing.T) {
		if code, _ := post(`{}`); code != 400 {
			t.Errorf("status = %d, want 400", code)
		}
	})
}

func TestEventFeedRingBuffer(t *testing.T) {
	s := NewServer("0", nil)
	go s.eventHub.Run()
	defer s.eventHub.Stop()
	for i := 0; i < maxEvents+10; i++ {
		s.AddEvent("hazard", "level change")
	}

	s.eventsMu.RLock()
	n := len(s.events)
	s.eventsMu.RUnlock()
	if n != maxEvents {
		t.Errorf("event buffer length = %d, want %d", n, maxEvents)
	}

	resp, err := s.app.Test(httptest.NewRequest("GET", "/api/events", nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
