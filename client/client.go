// Package client is a typed Go client for the tool tracker HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"workshop_tool_tracker/models"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultBaseURL = "http://localhost:3000"

	markReadConcurrency = 4
)

// APIError is a non-success envelope returned by the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsNotFound reports a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsHistoryConflict reports a plain delete refused because the tool has
// borrow records; a force delete would succeed.
func IsHistoryConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && strings.Contains(apiErr.Message, "use force delete")
}

type Client struct {
	httpClient *http.Client
	baseURL    string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

type envelope struct {
	Success       bool                  `json:"success"`
	Message       string                `json:"message"`
	Tool          *models.Tool          `json:"tool"`
	Tools         []models.Tool         `json:"tools"`
	BorrowRecord  *models.BorrowRecord  `json:"borrowRecord"`
	Records       []models.BorrowRecord `json:"records"`
	Notifications []models.Notification `json:"notifications"`
	Count         int                   `json:"count"`
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	var rdr io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("unreadable response: %v", err)}
	}
	if !env.Success || resp.StatusCode >= http.StatusBadRequest {
		return nil, &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	return &env, nil
}

func (c *Client) Hello(ctx context.Context) (string, error) {
	env, err := c.do(ctx, http.MethodGet, "/hello", nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// Tools

type CreateToolRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type UpdateToolRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

func (c *Client) ListTools(ctx context.Context) ([]models.Tool, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/tools", nil)
	if err != nil {
		return nil, err
	}
	return env.Tools, nil
}

func (c *Client) CreateTool(ctx context.Context, in CreateToolRequest) (*models.Tool, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/tools", in)
	if err != nil {
		return nil, err
	}
	return env.Tool, nil
}

func (c *Client) GetTool(ctx context.Context, id string) (*models.Tool, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/tools/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return env.Tool, nil
}

// GetToolByCode looks a tool up by its scanned QR text.
func (c *Client) GetToolByCode(ctx context.Context, code string) (*models.Tool, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/tools/qr/"+url.PathEscape(strings.TrimSpace(code)), nil)
	if err != nil {
		return nil, err
	}
	return env.Tool, nil
}

func (c *Client) UpdateTool(ctx context.Context, id string, in UpdateToolRequest) (*models.Tool, error) {
	env, err := c.do(ctx, http.MethodPut, "/api/tools/"+url.PathEscape(id), in)
	if err != nil {
		return nil, err
	}
	return env.Tool, nil
}

func (c *Client) DeleteTool(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/tools/"+url.PathEscape(id), nil)
	return err
}

func (c *Client) ForceDeleteTool(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/tools/"+url.PathEscape(id)+"/force", nil)
	return err
}

// Borrowing

type BorrowRequest struct {
	ToolID           string `json:"toolId"`
	BorrowerName     string `json:"borrowerName"`
	BorrowerLocation string `json:"borrowerLocation"`
	Purpose          string `json:"purpose"`
}

func (c *Client) Borrow(ctx context.Context, in BorrowRequest) (*models.BorrowRecord, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/borrow", in)
	if err != nil {
		return nil, err
	}
	return env.BorrowRecord, nil
}

func (c *Client) Return(ctx context.Context, borrowRecordID string) (*models.BorrowRecord, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/return", map[string]string{"borrowRecordId": borrowRecordID})
	if err != nil {
		return nil, err
	}
	return env.BorrowRecord, nil
}

func (c *Client) ListRecords(ctx context.Context) ([]models.BorrowRecord, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/borrow-records", nil)
	if err != nil {
		return nil, err
	}
	return env.Records, nil
}

func (c *Client) ListActiveRecords(ctx context.Context) ([]models.BorrowRecord, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/borrow-records/active", nil)
	if err != nil {
		return nil, err
	}
	return env.Records, nil
}

// NotifyOverdue triggers the overdue check. olderThan <= 0 uses the server
// default.
func (c *Client) NotifyOverdue(ctx context.Context, olderThan time.Duration) (int, error) {
	var body any
	if olderThan > 0 {
		body = map[string]float64{"olderThanHours": olderThan.Hours()}
	}
	env, err := c.do(ctx, http.MethodPost, "/api/borrow-records/overdue", body)
	if err != nil {
		return 0, err
	}
	return env.Count, nil
}

// Notifications

func (c *Client) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/notifications", nil)
	if err != nil {
		return nil, err
	}
	return env.Notifications, nil
}

func (c *Client) MarkRead(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodPatch, "/api/notifications/"+url.PathEscape(id)+"/read", nil)
	return err
}

// MarkAllRead uses the server's bulk endpoint and returns how many changed.
func (c *Client) MarkAllRead(ctx context.Context) (int, error) {
	env, err := c.do(ctx, http.MethodPatch, "/api/notifications/read-all", nil)
	if err != nil {
		return 0, err
	}
	return env.Count, nil
}

// MarkEachRead marks every unread notification one request at a time, a few
// in parallel. Used against servers without the bulk endpoint.
func (c *Client) MarkEachRead(ctx context.Context) (int, error) {
	ns, err := c.ListNotifications(ctx)
	if err != nil {
		return 0, err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(markReadConcurrency)
	marked := 0
	for _, n := range ns {
		if n.Read {
			continue
		}
		id := n.ID
		marked++
		g.Go(func() error { return c.MarkRead(gctx, id) })
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return marked, nil
}
