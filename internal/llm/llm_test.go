package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/madrasa-panel/madrasa/internal/model"
)

// fakeOpenAI serves the two endpoints the client uses and records the last prompt.
func fakeOpenAI(t *testing.T, reply string) (*httptest.Server, *string) {
	t.Helper()
	var lastPrompt string
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"llama3.2:latest","object":"model"}]}`))
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) > 0 {
			lastPrompt = req.Messages[0].Content
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": reply},
			}},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &lastPrompt
}

func sampleReports() []model.DailyReport {
	day := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	return []model.DailyReport{
		{Date: day, Sabaq: "2:1,2:2", SabaqMistakes: 0, Sabqi: "Al-Mulk", Manzil: "Juz 30", ManzilMistakes: 5,
			Condition: model.ConditionNeedFocus, Attendance: model.AttendancePresent},
		{Date: day.AddDate(0, 0, -1), Sabaq: "1:7", Condition: model.ConditionGood, Attendance: model.AttendancePresent},
	}
}

func TestNewRejectsUnknownVariant(t *testing.T) {
	if _, err := New("", "key", "m", "lenient"); err == nil {
		t.Fatal("expected error for unknown variant")
	}
}

func TestPing(t *testing.T) {
	srv, _ := fakeOpenAI(t, "")

	c, err := New(srv.URL+"/v1", "key", "llama3.2", "standard")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}

	c2, _ := New(srv.URL+"/v1", "key", "mistral", "standard")
	if err := c2.Ping(context.Background()); err == nil {
		t.Error("expected Ping to fail for a model the endpoint does not serve")
	}
}

func TestSummarizeProgress(t *testing.T) {
	srv, lastPrompt := fakeOpenAI(t, "  Ahmad is improving steadily.  ")

	c, err := New(srv.URL+"/v1", "key", "llama3.2", "strict")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	student := model.Student{ID: "s1", Name: "Ahmad", RollNumber: "R-001", ClassName: "Hifz A"}

	got, err := c.SummarizeProgress(context.Background(), student, sampleReports())
	if err != nil {
		t.Fatalf("SummarizeProgress: %v", err)
	}
	if got != "Ahmad is improving steadily." {
		t.Errorf("summary = %q", got)
	}

	for _, want := range []string{"Ahmad", "R-001", "Hifz A", "2024-02-10", "Need Focus", "TOTAL SABAQ LINES: 3", "POOR REPORTS (Below Average or Need Focus): 1", "demanding"} {
		if !strings.Contains(*lastPrompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestSummarizeProgressNoReports(t *testing.T) {
	c, err := New("http://127.0.0.1:1/v1", "key", "m", "gentle")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.SummarizeProgress(context.Background(), model.Student{ID: "s1"}, nil); err == nil {
		t.Error("expected error with no reports")
	}
}
