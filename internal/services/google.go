// Google Calendar implementation of [EventSink]
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/desertthunder/taskcal/internal/models"
	"github.com/desertthunder/taskcal/internal/shared"
)

const dateLayout = "2006-01-02"

// GoogleCalendarService implements [EventSink] for one Google calendar.
type GoogleCalendarService struct {
	srv        *calendar.Service
	calendarID string
}

// NewGoogleCalendarService wraps an existing [calendar.Service].
func NewGoogleCalendarService(srv *calendar.Service, calendarID string) *GoogleCalendarService {
	if calendarID == "" {
		calendarID = "primary"
	}
	return &GoogleCalendarService{srv: srv, calendarID: calendarID}
}

// NewGoogleCalendarServiceFromClient builds the calendar API client on top of an authenticated [http.Client].
//
// Extra options (e.g. [option.WithEndpoint]) are passed through to [calendar.NewService].
func NewGoogleCalendarServiceFromClient(ctx context.Context, client *http.Client, calendarID string, opts ...option.ClientOption) (*GoogleCalendarService, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	srv, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create calendar client: %w", err)
	}
	return NewGoogleCalendarService(srv, calendarID), nil
}

func (s *GoogleCalendarService) Name() string {
	return "Google Calendar"
}

// CalendarID returns the calendar this service writes to.
func (s *GoogleCalendarService) CalendarID() string {
	return s.calendarID
}

// Ping checks that the configured calendar is reachable.
func (s *GoogleCalendarService) Ping(ctx context.Context) error {
	if _, err := s.srv.Calendars.Get(s.calendarID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("%w: calendar %s: %v", shared.ErrAPIRequest, s.calendarID, err)
	}
	return nil
}

// CreateEvent inserts a normalized event built by [models.NewCalendarEvent].
func (s *GoogleCalendarService) CreateEvent(ctx context.Context, title, description string, start time.Time, allDay bool) (*models.CalendarEvent, error) {
	event := models.NewCalendarEvent(title, description, start, allDay)

	created, err := s.srv.Events.Insert(s.calendarID, toCalendarEvent(event)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrEventCreate, err)
	}

	event.ID = created.Id
	return event, nil
}

// DeleteEvent removes an event from the calendar.
func (s *GoogleCalendarService) DeleteEvent(ctx context.Context, eventID string) error {
	err := s.srv.Events.Delete(s.calendarID, eventID).Context(ctx).Do()
	if isNotFound(err) {
		return fmt.Errorf("%w: %s", shared.ErrEventNotFound, eventID)
	}
	if err != nil {
		return fmt.Errorf("%w: delete event %s: %v", shared.ErrAPIRequest, eventID, err)
	}
	return nil
}

// GetEvent fetches an event and converts it to normalized form.
func (s *GoogleCalendarService) GetEvent(ctx context.Context, eventID string) (*models.CalendarEvent, error) {
	ev, err := s.srv.Events.Get(s.calendarID, eventID).Context(ctx).Do()
	if isNotFound(err) {
		return nil, fmt.Errorf("%w: %s", shared.ErrEventNotFound, eventID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get event %s: %v", shared.ErrAPIRequest, eventID, err)
	}
	return fromCalendarEvent(ev)
}

func toCalendarEvent(e *models.CalendarEvent) *calendar.Event {
	ev := &calendar.Event{Summary: e.Title, Description: e.Description}
	if e.AllDay {
		ev.Start = &calendar.EventDateTime{Date: e.StartDate()}
		ev.End = &calendar.EventDateTime{Date: e.EndDate()}
	} else {
		ev.Start = &calendar.EventDateTime{DateTime: e.Start.Format(time.RFC3339)}
		ev.End = &calendar.EventDateTime{DateTime: e.End.Format(time.RFC3339)}
	}
	return ev
}

func fromCalendarEvent(ev *calendar.Event) (*models.CalendarEvent, error) {
	e := &models.CalendarEvent{ID: ev.Id, Title: ev.Summary, Description: ev.Description}
	if ev.Start == nil || ev.End == nil {
		return nil, fmt.Errorf("%w: event %s has no start or end", shared.ErrAPIRequest, ev.Id)
	}

	var err error
	if ev.Start.Date != "" {
		e.AllDay = true
		if e.Start, err = time.ParseInLocation(dateLayout, ev.Start.Date, time.UTC); err != nil {
			return nil, fmt.Errorf("invalid start date %q: %w", ev.Start.Date, err)
		}
		if e.End, err = time.ParseInLocation(dateLayout, ev.End.Date, time.UTC); err != nil {
			return nil, fmt.Errorf("invalid end date %q: %w", ev.End.Date, err)
		}
		return e, nil
	}

	if e.Start, err = time.Parse(time.RFC3339, ev.Start.DateTime); err != nil {
		return nil, fmt.Errorf("invalid start time %q: %w", ev.Start.DateTime, err)
	}
	if e.End, err = time.Parse(time.RFC3339, ev.End.DateTime); err != nil {
		return nil, fmt.Errorf("invalid end time %q: %w", ev.End.DateTime, err)
	}
	return e, nil
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && (gerr.Code == http.StatusNotFound || gerr.Code == http.StatusGone)
}

// LoadOAuthConfig reads an OAuth client secrets file and requests the calendar events scope.
//
// redirectURL overrides the first redirect URI in the file when non-empty.
func LoadOAuthConfig(credentialsFile, redirectURL string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to read client secret file %s: %v", shared.ErrMissingCredentials, credentialsFile, err)
	}

	config, err := google.ConfigFromJSON(b, calendar.CalendarEventsScope, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to parse client secret file: %v", shared.ErrInvalidConfig, err)
	}

	if redirectURL != "" {
		config.RedirectURL = redirectURL
	}
	return config, nil
}

// LoadToken reads a cached OAuth token from a JSON file.
func LoadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: no token at %s, run `taskcal auth google`", shared.ErrNotAuthenticated, path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token from file %s: %w", path, err)
	}
	return tok, nil
}

// SaveToken writes an OAuth token to path, readable only by the owner.
func SaveToken(path string, token *oauth2.Token) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache OAuth token to %s: %w", path, err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return nil
}

// NewGoogleClient returns an [http.Client] that refreshes the cached token as needed.
//
// A refreshed token is written back to tokenFile.
func NewGoogleClient(ctx context.Context, config *oauth2.Config, tokenFile string) (*http.Client, error) {
	tok, err := LoadToken(tokenFile)
	if err != nil {
		return nil, err
	}

	ts := &savingTokenSource{
		base: config.TokenSource(ctx, tok),
		path: tokenFile,
		last: tok.AccessToken,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, ts)), nil
}

// savingTokenSource persists tokens whose access token changed.
type savingTokenSource struct {
	base oauth2.TokenSource
	path string
	last string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := SaveToken(s.path, tok); err != nil {
			return nil, err
		}
	}
	return tok, nil
}
