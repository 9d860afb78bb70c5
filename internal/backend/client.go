package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"alumni-quiz-proctor/internal/domain"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %d %s", e.Op, e.Status, e.Body)
}

// Unwrap lets callers match rejected credentials and missing jobs with errors.Is.
func (e *StatusError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return domain.ErrUnauthenticated
	case e.Status == http.StatusNotFound && e.Op == opFetchJob:
		return domain.ErrJobNotFound
	}
	return nil
}

const (
	opFetchJob       = "fetch job details"
	opFetchQuestions = "fetch quiz questions"
	opSubmitResult   = "submit quiz result"
)

// Client talks to the platform REST API. Every call carries the learner's bearer token.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// GetJob fetches GET /api/job-posts/{jobId}.
func (c *Client) GetJob(ctx context.Context, token, jobID string) (domain.Job, error) {
	var job domain.Job
	endpoint := c.baseURL + "/api/job-posts/" + url.PathEscape(jobID)
	if err := c.do(ctx, http.MethodGet, endpoint, token, nil, &job, opFetchJob); err != nil {
		return domain.Job{}, err
	}
	if job.ID == "" {
		job.ID = jobID
	}
	return job, nil
}

// SampleQuestions fetches GET /api/quizzes/questions with one categories param per skill.
func (c *Client) SampleQuestions(ctx context.Context, token string, categories []string, limit int) ([]domain.Question, error) {
	query := url.Values{}
	for _, category := range categories {
		query.Add("categories", category)
	}
	query.Set("limit", strconv.Itoa(limit))

	var questions []domain.Question
	endpoint := c.baseURL + "/api/quizzes/questions?" + query.Encode()
	if err := c.do(ctx, http.MethodGet, endpoint, token, nil, &questions, opFetchQuestions); err != nil {
		return nil, err
	}
	return questions, nil
}

// SubmitResult posts the payload to /api/quizzes/submit-result.
func (c *Client) SubmitResult(ctx context.Context, token string, payload domain.SubmissionPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}
	return c.do(ctx, http.MethodPost, c.baseURL+"/api/quizzes/submit-result", token, body, nil, opSubmitResult)
}

func (c *Client) do(ctx context.Context, method, endpoint, token string, body []byte, out any, op string) error {
	if token == "" {
		return domain.ErrUnauthenticated
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(text))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode: %w", op, err)
	}
	return nil
}
