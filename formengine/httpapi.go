package formengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmdatafocus/kvk_backend/models"
	"github.com/mmdatafocus/kvk_backend/utils"
)

// HTTPClient implements API against the REST surface rooted at BaseURL (for example http://host/api).
type HTTPClient struct {
	BaseURL string
	HTTP    *http.Client
	Token   func() string
}

func NewHTTPClient(baseURL string, session *Session) *HTTPClient {
	return &HTTPClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Token:   session.Token,
	}
}

type envelope struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Data    json.RawMessage    `json:"data"`
	Errors  []utils.FieldError `json:"errors"`
}

type reportPayload struct {
	Report *models.Report `json:"report"`
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != nil {
		if tok := c.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{Status: resp.StatusCode}
		}
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		status := resp.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusInternalServerError
		}
		return &APIError{Status: status, Message: env.Message, Errors: env.Errors}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (*models.LoginInfo, error) {
	var info models.LoginInfo
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *HTTPClient) report(ctx context.Context, method, path string, body any) (*models.Report, error) {
	var out reportPayload
	if err := c.do(ctx, method, path, body, &out); err != nil {
		return nil, err
	}
	if out.Report == nil {
		return nil, fmt.Errorf("%s %s: response carried no report", method, path)
	}
	return out.Report, nil
}

func (c *HTTPClient) CreateReport(ctx context.Context, input *models.NewReport) (*models.Report, error) {
	return c.report(ctx, http.MethodPost, "/reports", input)
}

func (c *HTTPClient) UpdateReport(ctx context.Context, id int, input *models.NewReport) (*models.Report, error) {
	return c.report(ctx, http.MethodPut, fmt.Sprintf("/reports/%d", id), input)
}

func (c *HTTPClient) SubmitReport(ctx context.Context, id int) (*models.Report, error) {
	return c.report(ctx, http.MethodPost, fmt.Sprintf("/reports/%d/submit", id), nil)
}

func (c *HTTPClient) GetReport(ctx context.Context, id int) (*models.Report, error) {
	return c.report(ctx, http.MethodGet, fmt.Sprintf("/reports/%d", id), nil)
}

// ListReports fetches one page of the caller's visible reports.
func (c *HTTPClient) ListReports(ctx context.Context, page, limit int) (*models.ReportList, error) {
	var list models.ReportList
	path := fmt.Sprintf("/reports?page=%d&limit=%d", page, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}
