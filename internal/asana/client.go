package asana

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Afrawles/onboardtracker/internal/metrics"
)

const (
	DefaultBaseURL = "https://app.asana.com/api/1.0"
	pageSize       = 100
)

const (
	taskListFields = "name,completed,custom_fields,gid"
	subtaskFields  = "name,completed,completed_at,resource_subtype,gid"
)

type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLimiter shares a rate limiter between clients. A nil limiter disables
// rate limiting.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// NewLimiter returns a limiter allowing rps requests per second, or an
// unlimited one for rps <= 0.
func NewLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:      token,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SectionTasks lists the incomplete tasks of a section.
func (c *Client) SectionTasks(ctx context.Context, sectionGID string) ([]Task, error) {
	q := url.Values{}
	q.Set("section", sectionGID)
	q.Set("completed_since", "now")
	q.Set("opt_fields", taskListFields)
	return listAll[Task](ctx, c, "tasks", "/tasks", q)
}

// TaskCustomFields fetches the custom field values attached to a task.
func (c *Client) TaskCustomFields(ctx context.Context, taskGID string) ([]CustomField, error) {
	q := url.Values{}
	q.Set("opt_fields", "custom_fields")

	var resp envelope[Task]
	if err := c.get(ctx, "task", "/tasks/"+url.PathEscape(taskGID), q, &resp); err != nil {
		return nil, err
	}
	return resp.Data.CustomFields, nil
}

// Subtasks lists the direct subtasks of a task.
func (c *Client) Subtasks(ctx context.Context, taskGID string) ([]Task, error) {
	q := url.Values{}
	q.Set("opt_fields", subtaskFields)
	return listAll[Task](ctx, c, "subtasks", "/tasks/"+url.PathEscape(taskGID)+"/subtasks", q)
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var resp envelope[User]
	if err := c.get(ctx, "users.me", "/users/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *Client) Project(ctx context.Context, projectGID string) (*Project, error) {
	var resp envelope[Project]
	if err := c.get(ctx, "project", "/projects/"+url.PathEscape(projectGID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *Client) ProjectSections(ctx context.Context, projectGID string) ([]Section, error) {
	return listAll[Section](ctx, c, "sections", "/projects/"+url.PathEscape(projectGID)+"/sections", nil)
}

// SampleTasks returns at most limit tasks of a project, optionally narrowed
// to the incomplete tasks of one section. No pagination is followed.
func (c *Client) SampleTasks(ctx context.Context, projectGID, sectionGID string, limit int) ([]Task, error) {
	q := url.Values{}
	q.Set("project", projectGID)
	if sectionGID != "" {
		q.Set("section", sectionGID)
		q.Set("completed_since", "now")
	}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("opt_fields", "name,completed,gid")

	var resp envelope[[]Task]
	if err := c.get(ctx, "tasks", "/tasks", q, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// HealthCheck verifies the token by fetching the current user.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.Me(ctx)
	return err
}

func listAll[T any](ctx context.Context, c *Client, endpoint, path string, q url.Values) ([]T, error) {
	if q == nil {
		q = url.Values{}
	}
	q.Set("limit", strconv.Itoa(pageSize))

	var all []T
	for {
		var resp envelope[[]T]
		if err := c.get(ctx, endpoint, path, q, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Data...)

		if resp.NextPage == nil || resp.NextPage.Offset == "" {
			return all, nil
		}
		q.Set("offset", resp.NextPage.Offset)
	}
}

func (c *Client) get(ctx context.Context, endpoint, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.AsanaRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AsanaRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return &APIError{Message: err.Error(), URL: u}
	}
	defer resp.Body.Close()

	metrics.AsanaRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
			URL:        u,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", u, err)
	}

	return nil
}
