package server

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/4lexxe/DevsProject-sub001/pkg/config"
	"github.com/4lexxe/DevsProject-sub001/pkg/engine"
)

func testEngine(t *testing.T) *engine.Engine {
	t.Helper()
	store := engine.NewMemoryStore()
	store.Put(engine.Record{
		ID:      "course-01",
		Title:   "JavaScript Fundamentals",
		Summary: "Variables, functions and the event loop",
		Tags:    []string{"javascript", "frontend"},
		Active:  true,
	})
	store.Put(engine.Record{
		ID:      "course-02",
		Title:   "Python for Data Analysis",
		Summary: "Pandas and numpy from scratch",
		Tags:    []string{"python", "data"},
		Active:  true,
	})
	eng := engine.New(config.Default(), store.Source(), store)
	if err := eng.Rebuild(context.Background()); err != nil {
		t.Fatalf("building engine: %v", err)
	}
	return eng
}

// runLines feeds newline-delimited requests to a fresh server and returns
// the response lines, with the ready handshake stripped.
func runLines(t *testing.T, input string) []string {
	t.Helper()
	var out bytes.Buffer
	srv := New(testEngine(t), config.Default().Server, strings.NewReader(input), &out)
	if err := srv.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) < 1 || !strings.Contains(lines[0], "ready") {
		t.Fatalf("expected ready handshake, got %q", lines[0])
	}
	return lines[1:]
}

func TestSearchCommand(t *testing.T) {
	lines := runLines(t, `{"command":"search","query":"javascrpt"}`+"\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 response, got %d", len(lines))
	}
	var resp SearchResponse
	if err := json.Unmarshal([]byte(lines[0]), &resp); err != nil {
		t.Fatalf("unmarshaling response: %v", err)
	}
	if resp.Count == 0 {
		t.Fatal("expected results for a one-typo query")
	}
	if resp.Items[0].ID != "course-01" {
		t.Errorf("expected course-01 first, got %s", resp.Items[0].ID)
	}
	if resp.Algorithm == "" {
		t.Error("expected algorithm label")
	}
}

func TestSuggestCommand(t *testing.T) {
	lines := runLines(t, `{"command":"suggest","prefix":"pyt","limit":5}`+"\n")
	var resp SuggestResponse
	if err := json.Unmarshal([]byte(lines[0]), &resp); err != nil {
		t.Fatalf("unmarshaling response: %v", err)
	}
	found := false
	for _, s := range resp.Suggestions {
		if s == "python" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected python in suggestions, got %v", resp.Suggestions)
	}
}

func TestStatsAndHealth(t *testing.T) {
	input := `{"command":"stats"}` + "\n" + `{"command":"health"}` + "\n"
	lines := runLines(t, input)
	if len(lines) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(lines))
	}
	var stats StatsResponse
	if err := json.Unmarshal([]byte(lines[0]), &stats); err != nil {
		t.Fatalf("unmarshaling stats: %v", err)
	}
	if !stats.IsBuilt || stats.TotalTerms == 0 {
		t.Errorf("expected built engine with terms, got %+v", stats)
	}
	if stats.State != "ready" {
		t.Errorf("expected ready state, got %q", stats.State)
	}
	if !strings.Contains(lines[1], `"ok"`) {
		t.Errorf("expected ok health response, got %q", lines[1])
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed json", `{"command":`},
		{"unknown command", `{"command":"explode"}`},
		{"empty query", `{"command":"search","query":"!!!"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := runLines(t, tt.input+"\n")
			var resp ErrorResponse
			if err := json.Unmarshal([]byte(lines[0]), &resp); err != nil {
				t.Fatalf("unmarshaling error response: %v", err)
			}
			if resp.Status != 400 {
				t.Errorf("expected status 400, got %d", resp.Status)
			}
		})
	}
}

func TestLimitClamping(t *testing.T) {
	srv := New(testEngine(t), config.ServerConfig{DefaultLimit: 10, MaxLimit: 64}, strings.NewReader(""), &bytes.Buffer{})
	tests := []struct {
		in, want int
	}{
		{0, 10},
		{-3, 10},
		{5, 5},
		{200, 64},
	}
	for _, tt := range tests {
		if got := srv.clampLimit(tt.in); got != tt.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
