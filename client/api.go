package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vaughan-dsouza/freelancehub/internal/models"
)

type LoginResult struct {
	Tokens
	ExpiresIn int64        `json:"expires_in"`
	User      *models.User `json:"user"`
}

// Login stores the returned token pair. Bad credentials come back as an
// *APIError, never ErrSessionExpired.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	payload, err := encode(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	resp, err := c.send(ctx, http.MethodPost, "/api/auth/login", payload, false)
	if err != nil {
		return nil, err
	}

	var res LoginResult
	if err := decode(resp, &res); err != nil {
		return nil, err
	}
	c.tokens.Set(res.Tokens)
	return &res, nil
}

// Logout revokes the refresh token server side and clears local tokens.
func (c *Client) Logout(ctx context.Context) error {
	rt := c.tokens.Get().RefreshToken
	err := c.Do(ctx, http.MethodPost, "/api/auth/logout", map[string]string{"refresh_token": rt}, nil)
	c.tokens.Clear()
	if errors.Is(err, ErrSessionExpired) {
		return nil
	}
	return err
}

type NewTimeLog struct {
	ProjectID   int64   `json:"project_id"`
	TaskID      *int64  `json:"task_id,omitempty"`
	HoursLogged float64 `json:"hours_logged"`
	LogDate     string  `json:"log_date,omitempty"`
	Description string  `json:"description,omitempty"`
}

type TimeLogResult struct {
	TimeLog models.TimeLog `json:"time_log"`
	Charge  models.Charge  `json:"charge"`
}

func (c *Client) CreateTimeLog(ctx context.Context, in NewTimeLog) (*TimeLogResult, error) {
	var out TimeLogResult
	if err := c.Do(ctx, http.MethodPost, "/api/timelogs/create", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TimeLogs lists logs visible to the caller; projectID 0 means all.
func (c *Client) TimeLogs(ctx context.Context, projectID int64) ([]models.TimeLog, error) {
	var out []models.TimeLog
	err := c.Do(ctx, http.MethodGet, withProject("/api/timelogs/list", projectID), nil, &out)
	return out, err
}

func (c *Client) Notifications(ctx context.Context, unreadOnly bool, limit int) ([]models.Notification, error) {
	q := url.Values{}
	if unreadOnly {
		q.Set("unread", "1")
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/notifications/list"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out []models.Notification
	err := c.Do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) UnreadCount(ctx context.Context) (int64, error) {
	var out struct {
		Count int64 `json:"count"`
	}
	err := c.Do(ctx, http.MethodGet, "/api/notifications/unread_count", nil, &out)
	return out.Count, err
}

// MarkRead marks one notification, or all of them when id is 0. It returns
// the number of rows updated.
func (c *Client) MarkRead(ctx context.Context, id int64) (int64, error) {
	body := map[string]any{}
	if id != 0 {
		body["notification_id"] = id
	}
	var out struct {
		Updated int64 `json:"updated"`
	}
	err := c.Do(ctx, http.MethodPost, "/api/notifications/mark_read", body, &out)
	return out.Updated, err
}

func (c *Client) SendMessage(ctx context.Context, projectID int64, text string) (*models.ProjectMessage, error) {
	var out models.ProjectMessage
	err := c.Do(ctx, http.MethodPost, "/api/messages/send",
		map[string]any{"project_id": projectID, "message_text": text}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Messages(ctx context.Context, projectID int64) ([]models.ProjectMessage, error) {
	var out []models.ProjectMessage
	err := c.Do(ctx, http.MethodGet, withProject("/api/messages/list", projectID), nil, &out)
	return out, err
}

func (c *Client) ProjectStatusReport(ctx context.Context) ([]models.ProjectStatusRow, error) {
	var out []models.ProjectStatusRow
	err := c.Do(ctx, http.MethodGet, "/api/reports/project_status", nil, &out)
	return out, err
}

// FreelancerHours takes optional YYYY-MM-DD bounds; pass "" to leave one open.
func (c *Client) FreelancerHours(ctx context.Context, from, to string) ([]models.FreelancerHoursRow, error) {
	var out []models.FreelancerHoursRow
	err := c.Do(ctx, http.MethodGet, withRange("/api/reports/freelancer_hours", from, to), nil, &out)
	return out, err
}

func (c *Client) Revenue(ctx context.Context, from, to string) ([]models.RevenueRow, error) {
	var out []models.RevenueRow
	err := c.Do(ctx, http.MethodGet, withRange("/api/reports/revenue", from, to), nil, &out)
	return out, err
}

// ClientSpend reports for clientID; 0 means the caller.
func (c *Client) ClientSpend(ctx context.Context, clientID int64) ([]models.ClientSpendRow, error) {
	path := "/api/reports/client_spend"
	if clientID != 0 {
		path += "?client_id=" + strconv.FormatInt(clientID, 10)
	}
	var out []models.ClientSpendRow
	err := c.Do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func withProject(path string, projectID int64) string {
	if projectID == 0 {
		return path
	}
	return path + "?project_id=" + strconv.FormatInt(projectID, 10)
}

func withRange(path, from, to string) string {
	q := url.Values{}
	if from != "" {
		q.Set("from", from)
	}
	if to != "" {
		q.Set("to", to)
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
