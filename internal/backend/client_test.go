package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"alumni-quiz-proctor/internal/domain"
)

func TestGetJobSendsBearer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/job-posts/job-9" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("unexpected auth header %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"title":       "Backend Engineer",
			"skills":      []string{"Go", "SQL"},
			"quizEnabled": false,
		})
	}))
	defer server.Close()

	job, err := NewClient(server.URL+"/", time.Second).GetJob(context.Background(), "tok", "job-9")
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if job.ID != "job-9" || job.Title != "Backend Engineer" || len(job.Skills) != 2 {
		t.Fatalf("unexpected job %+v", job)
	}
}

func TestSampleQuestionsQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if cats := q["categories"]; len(cats) != 2 || cats[0] != "go" || cats[1] != "sql" {
			t.Errorf("unexpected categories %v", cats)
		}
		if q.Get("limit") != "10" {
			t.Errorf("unexpected limit %q", q.Get("limit"))
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{{
			"id":                 "b1",
			"question":           "Which keyword starts a goroutine?",
			"options":            []string{"go", "async", "spawn", "thread"},
			"correctAnswerIndex": 0,
		}})
	}))
	defer server.Close()

	questions, err := NewClient(server.URL, time.Second).SampleQuestions(context.Background(), "tok", []string{"go", "sql"}, 10)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(questions) != 1 || questions[0].Text == "" || len(questions[0].Options) != 4 {
		t.Fatalf("unexpected questions %+v", questions)
	}
}

func TestSubmitResultStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload domain.SubmissionPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode: %v", err)
		}
		if payload.Status != domain.StatusSubmitted {
			t.Errorf("unexpected status %q", payload.Status)
		}
		http.Error(w, "already submitted", http.StatusConflict)
	}))
	defer server.Close()

	err := NewClient(server.URL, time.Second).SubmitResult(context.Background(), "tok", domain.SubmissionPayload{
		UserID: "u1", JobID: "job-1", Status: domain.StatusSubmitted, UserAnswers: domain.AnswerMap{},
	})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Status != http.StatusConflict {
		t.Fatalf("expected 409 status error, got %v", err)
	}
}

func TestRequestsRequireToken(t *testing.T) {
	_, err := NewClient("http://unused", time.Second).GetJob(context.Background(), "", "job-1")
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestStatusErrorMapsToSentinels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/job-posts/gone" {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "expired", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	if _, err := client.GetJob(context.Background(), "tok", "gone"); !errors.Is(err, domain.ErrJobNotFound) {
		t.Fatalf("expected job not found, got %v", err)
	}
	if _, err := client.SampleQuestions(context.Background(), "tok", []string{"go"}, 10); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}
