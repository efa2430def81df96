package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// apiClient talks to a running daemon over its HTTP API.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
	// stream has no timeout so the log follower can stay attached.
	stream *http.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		stream:  &http.Client{},
	}
}

type jobView struct {
	UUID        string     `json:"uuid"`
	SourcePath  string     `json:"source_path"`
	Filename    string     `json:"filename"`
	Status      string     `json:"status"`
	InputSize   int64      `json:"input_size"`
	OutputSize  *int64     `json:"output_size,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type queueStatus struct {
	Busy       bool `json:"busy"`
	Waiting    int  `json:"waiting"`
	Processing int  `json:"processing"`
	Done       int  `json:"done"`
	Failed     int  `json:"failed"`
}

type logLine struct {
	Seq  int64     `json:"seq"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

func (c *apiClient) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("daemon unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func apiError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return fmt.Errorf("daemon: %s", payload.Error)
	}
	return fmt.Errorf("daemon: %s", resp.Status)
}

func (c *apiClient) createJob(path string) (jobView, error) {
	var job jobView
	err := c.do(http.MethodPost, "/api/jobs", map[string]string{"path": path}, &job)
	return job, err
}

func (c *apiClient) start() (queueStatus, error) {
	var status queueStatus
	err := c.do(http.MethodPost, "/api/start", nil, &status)
	return status, err
}

func (c *apiClient) status() (queueStatus, error) {
	var status queueStatus
	err := c.do(http.MethodGet, "/api/status", nil, &status)
	return status, err
}

func (c *apiClient) jobs() ([]jobView, error) {
	var jobs []jobView
	err := c.do(http.MethodGet, "/api/jobs", nil, &jobs)
	return jobs, err
}

func (c *apiClient) logs(since int64) ([]logLine, error) {
	var lines []logLine
	err := c.do(http.MethodGet, fmt.Sprintf("/api/logs?since=%d", since), nil, &lines)
	return lines, err
}

// followLogs attaches to the daemon's SSE stream and writes every
// encoder line to out until ctx is cancelled or the stream ends.
func (c *apiClient) followLogs(ctx context.Context, since int64, out io.Writer) error {
	url := fmt.Sprintf("%s/api/logs/stream?since=%d", c.baseURL, since)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.stream.Do(req)
	if err != nil {
		return fmt.Errorf("daemon unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return apiError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		data, ok := strings.CutPrefix(scanner.Text(), "data: ")
		if !ok {
			continue
		}
		var line logLine
		if err := json.Unmarshal([]byte(data), &line); err != nil {
			continue
		}
		fmt.Fprintln(out, line.Text)
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return nil
}
