// Package watch implements a terminal job watcher for the studio API.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Job is the subset of the job resource the watcher renders.
type Job struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	Status        string `json:"status"`
	Progress      int    `json:"progress"`
	EstimatedTime int    `json:"estimated_time"`
	ImageURL      string `json:"image_url"`
	ModelURL      string `json:"model_url"`
	Error         string `json:"error"`
	Attempts      int    `json:"attempts"`
}

// Terminal reports whether the job can no longer change.
func (j Job) Terminal() bool {
	return j.Status == "completed" || j.Status == "failed"
}

// Result returns the artifact URL of a completed job.
func (j Job) Result() string {
	if j.ModelURL != "" {
		return j.ModelURL
	}
	return j.ImageURL
}

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api %d", e.Status)
}

// Client talks to the job endpoints with a bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("watch: invalid api url %q", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(u.String(), "/"), token: token, http: httpClient}, nil
}

func (c *Client) Get(ctx context.Context, id string) (Job, error) {
	return c.do(ctx, http.MethodGet, "/v1/jobs/"+url.PathEscape(id))
}

func (c *Client) Cancel(ctx context.Context, id string) (Job, error) {
	return c.do(ctx, http.MethodPost, "/v1/jobs/"+url.PathEscape(id)+"/cancel")
}

func (c *Client) do(ctx context.Context, method, path string) (Job, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return Job{}, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Job{}, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Job{}, err
	}
	if resp.StatusCode/100 != 2 {
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &envelope) == nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
		return Job{}, apiErr
	}
	var job Job
	if err := json.Unmarshal(body, &job); err != nil {
		return Job{}, fmt.Errorf("watch: decode job: %w", err)
	}
	return job, nil
}
