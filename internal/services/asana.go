// Asana API implementation of [TaskSource]
//
// Asana API response types based on https://developers.asana.com/reference
package services

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

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/taskcal/internal/models"
	"github.com/desertthunder/taskcal/internal/shared"
)

const (
	asanaBaseURL     = "https://app.asana.com/api/1.0"
	asanaPageLimit   = 100
	asanaTaskFields  = "name,due_on,due_at,completed"
	defaultAsanaRate = 5.0
)

// AsanaTag is a workspace tag.
type AsanaTag struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

// AsanaTask is the wire form of a task; null due fields decode to nil.
type AsanaTask struct {
	GID       string  `json:"gid"`
	Name      string  `json:"name"`
	DueOn     *string `json:"due_on"`
	DueAt     *string `json:"due_at"`
	Completed bool    `json:"completed"`
}

// AsanaUser is the authenticated user.
type AsanaUser struct {
	GID   string `json:"gid"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type asanaNextPage struct {
	Offset string `json:"offset"`
}

type asanaEnvelope struct {
	Data     json.RawMessage `json:"data"`
	NextPage *asanaNextPage  `json:"next_page"`
	Errors   []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Task converts the wire form to a [models.Task].
func (t AsanaTask) Task() models.Task {
	task := models.Task{ID: t.GID, Name: t.Name, Completed: t.Completed}
	if t.DueOn != nil {
		task.DueOn = *t.DueOn
	}
	if t.DueAt != nil {
		task.DueAt = *t.DueAt
	}
	return task
}

// AsanaOpts configures an [AsanaService].
type AsanaOpts struct {
	Token             string
	WorkspaceID       string
	BaseURL           string
	HTTPClient        *http.Client // defaults to an oauth2 client carrying Token
	RequestsPerSecond float64
}

// AsanaService implements [TaskSource] for the Asana REST API.
type AsanaService struct {
	baseURL     string
	workspaceID string
	httpClient  *http.Client
	limiter     *rate.Limiter
}

// NewAsanaService creates an Asana client for one workspace.
func NewAsanaService(opts AsanaOpts) (*AsanaService, error) {
	if opts.WorkspaceID == "" {
		return nil, fmt.Errorf("%w: asana workspace_id", shared.ErrMissingCredentials)
	}

	client := opts.HTTPClient
	if client == nil {
		if opts.Token == "" {
			return nil, fmt.Errorf("%w: asana access_token", shared.ErrMissingCredentials)
		}
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token, TokenType: "Bearer"})
		client = oauth2.NewClient(context.Background(), ts)
	}

	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = asanaBaseURL
	}

	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = defaultAsanaRate
	}

	return &AsanaService{
		baseURL:     baseURL,
		workspaceID: opts.WorkspaceID,
		httpClient:  client,
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

func (s *AsanaService) Name() string {
	return "Asana"
}

// doRequest performs a rate-limited request and decodes the response envelope.
func (s *AsanaService) doRequest(ctx context.Context, method, endpoint string, query url.Values, body any) (*asanaEnvelope, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	apiURL := s.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(map[string]any{"data": body})
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	var env asanaEnvelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && len(env.Errors) > 0 {
			msg = env.Errors[0].Message
		}
		return nil, fmt.Errorf("%w: asana %s %s: status %d: %s", shared.ErrAPIRequest, method, endpoint, resp.StatusCode, msg)
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode response: %w", decodeErr)
	}

	return &env, nil
}

// Ping verifies the token by fetching the current user.
func (s *AsanaService) Ping(ctx context.Context) error {
	_, err := s.Me(ctx)
	return err
}

// Me returns the authenticated user.
func (s *AsanaService) Me(ctx context.Context) (*AsanaUser, error) {
	env, err := s.doRequest(ctx, http.MethodGet, "/users/me", nil, nil)
	if err != nil {
		return nil, err
	}

	var user AsanaUser
	if err := json.Unmarshal(env.Data, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &user, nil
}

// Tags lists every tag in the workspace.
func (s *AsanaService) Tags(ctx context.Context) ([]AsanaTag, error) {
	var tags []AsanaTag
	err := s.paginate(ctx, "/workspaces/"+url.PathEscape(s.workspaceID)+"/tags", nil, func(raw json.RawMessage) error {
		var page []AsanaTag
		if err := json.Unmarshal(raw, &page); err != nil {
			return fmt.Errorf("failed to decode tags: %w", err)
		}
		tags = append(tags, page...)
		return nil
	})
	return tags, err
}

// FindTag resolves a tag name case-insensitively, returning [shared.ErrTagNotFound] when absent.
func (s *AsanaService) FindTag(ctx context.Context, name string) (*AsanaTag, error) {
	tags, err := s.Tags(ctx)
	if err != nil {
		return nil, err
	}

	for _, tag := range tags {
		if strings.EqualFold(tag.Name, name) {
			return &tag, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrTagNotFound, name)
}

// FetchTaggedTasks lists tasks carrying tag, dropping completed ones unless includeCompleted is set.
func (s *AsanaService) FetchTaggedTasks(ctx context.Context, tag string, includeCompleted bool) ([]models.Task, error) {
	found, err := s.FindTag(ctx, tag)
	if errors.Is(err, shared.ErrTagNotFound) {
		return []models.Task{}, nil
	}
	if err != nil {
		return nil, err
	}

	query := url.Values{"opt_fields": {asanaTaskFields}}
	tasks := []models.Task{}

	err = s.paginate(ctx, "/tags/"+url.PathEscape(found.GID)+"/tasks", query, func(raw json.RawMessage) error {
		var page []AsanaTask
		if err := json.Unmarshal(raw, &page); err != nil {
			return fmt.Errorf("failed to decode tasks: %w", err)
		}
		for _, t := range page {
			if t.Completed && !includeCompleted {
				continue
			}
			tasks = append(tasks, t.Task())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

// ParseDueDate wraps [models.Task.ParseDueDate] errors in [shared.ErrInvalidDueDate].
func (s *AsanaService) ParseDueDate(task models.Task) (*models.DueDate, error) {
	due, err := task.ParseDueDate()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidDueDate, err)
	}
	return due, nil
}

func (s *AsanaService) HasTimeComponent(task models.Task) bool {
	return task.HasTimeComponent()
}

// CreateTag creates a tag in the workspace.
func (s *AsanaService) CreateTag(ctx context.Context, name string) (*AsanaTag, error) {
	body := map[string]string{"name": name, "workspace": s.workspaceID}
	env, err := s.doRequest(ctx, http.MethodPost, "/tags", nil, body)
	if err != nil {
		return nil, err
	}

	var tag AsanaTag
	if err := json.Unmarshal(env.Data, &tag); err != nil {
		return nil, fmt.Errorf("failed to decode tag: %w", err)
	}
	return &tag, nil
}

// AddTagToTask tags a task, creating the tag first if the workspace lacks it.
func (s *AsanaService) AddTagToTask(ctx context.Context, taskID, tagName string) error {
	tag, err := s.FindTag(ctx, tagName)
	if errors.Is(err, shared.ErrTagNotFound) {
		tag, err = s.CreateTag(ctx, tagName)
	}
	if err != nil {
		return err
	}

	_, err = s.doRequest(ctx, http.MethodPost, "/tasks/"+url.PathEscape(taskID)+"/addTag", nil, map[string]string{"tag": tag.GID})
	return err
}

// paginate requests endpoint page by page, passing each page's data to fn.
func (s *AsanaService) paginate(ctx context.Context, endpoint string, query url.Values, fn func(json.RawMessage) error) error {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("limit", fmt.Sprint(asanaPageLimit))

	for {
		env, err := s.doRequest(ctx, http.MethodGet, endpoint, q, nil)
		if err != nil {
			return err
		}

		if err := fn(env.Data); err != nil {
			return err
		}

		if env.NextPage == nil || env.NextPage.Offset == "" {
			return nil
		}
		q.Set("offset", env.NextPage.Offset)
	}
}
