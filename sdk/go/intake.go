package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Config holds the configuration for the intake client.
type Config struct {
	// BaseURL is the root URL of the intake server.
	// Examples: "https://forms.example.com" or "https://forms.example.com/api/v1"
	// The "/api/v1" suffix is appended automatically if missing.
	BaseURL string

	// HTTPClient is an optional custom HTTP client.
	// If nil, a default client with 30s timeout is used. Submissions in
	// synchronous mode wait for both notification emails.
	HTTPClient *http.Client

	// UserAgent is sent with every request when set.
	UserAgent string
}

func (c *Config) defaults() {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	if !strings.HasSuffix(c.BaseURL, "/api/v1") {
		c.BaseURL = c.BaseURL + "/api/v1"
	}
}

// Client submits forms to an intake server.
type Client struct {
	cfg Config
}

// NewClient creates a new intake client with the given configuration.
func NewClient(cfg Config) *Client {
	cfg.defaults()
	return &Client{cfg: cfg}
}

// SubmitApplication submits an internship application.
func (c *Client) SubmitApplication(ctx context.Context, req ApplicationRequest) (*SubmissionResponse, error) {
	return c.submitJSON(ctx, "/applications", req)
}

// SubmitCareerApplication submits a career application. resume may be nil;
// when set the request is sent as multipart/form-data with the file in the
// "resume" field.
func (c *Client) SubmitCareerApplication(ctx context.Context, req CareerApplicationRequest, resume *Resume) (*SubmissionResponse, error) {
	if resume == nil {
		return c.submitJSON(ctx, "/careers/applications", req)
	}
	if resume.Content == nil {
		return nil, ErrNoResume
	}

	body, contentType, err := multipartBody(req, resume)
	if err != nil {
		return nil, err
	}
	return c.submit(ctx, "/careers/applications", contentType, body)
}

// SubmitContact submits a contact form.
func (c *Client) SubmitContact(ctx context.Context, req ContactRequest) (*SubmissionResponse, error) {
	return c.submitJSON(ctx, "/contact", req)
}

// SubmitSubscription signs an address up to the mailing list.
func (c *Client) SubmitSubscription(ctx context.Context, req SubscriptionRequest) (*SubmissionResponse, error) {
	return c.submitJSON(ctx, "/subscriptions", req)
}

// TestConnection asks the server to verify its mail transport. A failed
// check is returned as an APIError with status 503.
func (c *Client) TestConnection(ctx context.Context) (*ConnectionResponse, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/email/test-connection", "", nil)
	if err != nil {
		return nil, err
	}

	var resp ConnectionResponse
	if jsonErr := json.Unmarshal(body, &resp); jsonErr != nil {
		return nil, fmt.Errorf("intake: failed to parse connection response: %w", jsonErr)
	}
	if status >= 400 {
		return &resp, &APIError{StatusCode: status, Title: "Mail connection failed", Message: resp.Message}
	}
	return &resp, nil
}

// SendNotification sends one named notification for a form payload,
// e.g. kind "contact" and notification "adminNotification".
func (c *Client) SendNotification(ctx context.Context, kind, notification string, payload any) (*NotificationResponse, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("intake: failed to marshal request: %w", err)
	}

	p := path.Join("/email", url.PathEscape(kind), url.PathEscape(notification))
	status, body, err := c.do(ctx, http.MethodPost, p, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, parseAPIError(status, body)
	}

	var resp NotificationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("intake: failed to parse notification response: %w", err)
	}
	return &resp, nil
}

func (c *Client) submitJSON(ctx context.Context, p string, payload any) (*SubmissionResponse, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("intake: failed to marshal request: %w", err)
	}
	return c.submit(ctx, p, "application/json", bytes.NewReader(data))
}

// submit posts a form. A stored submission whose emails all failed comes
// back as a 500 with a submission body; that is returned without error
// and with Success false.
func (c *Client) submit(ctx context.Context, p, contentType string, payload io.Reader) (*SubmissionResponse, error) {
	status, body, err := c.do(ctx, http.MethodPost, p, contentType, payload)
	if err != nil {
		return nil, err
	}

	var resp SubmissionResponse
	if jsonErr := json.Unmarshal(body, &resp); jsonErr == nil && resp.SubmissionID != "" {
		return &resp, nil
	}
	if status >= 400 {
		return nil, parseAPIError(status, body)
	}
	return nil, fmt.Errorf("intake: unexpected response %d: %s", status, string(body))
}

// do sends a request to the intake API and returns the status and body.
func (c *Client) do(ctx context.Context, method, p, contentType string, payload io.Reader) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+p, payload)
	if err != nil {
		return 0, nil, fmt.Errorf("intake: failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("intake: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("intake: failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// multipartBody writes the form fields followed by the resume part.
func multipartBody(form any, resume *Resume) (*bytes.Buffer, string, error) {
	fields, err := formValues(form)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range fields[k] {
			if err := mw.WriteField(k, v); err != nil {
				return nil, "", fmt.Errorf("intake: failed to write field %s: %w", k, err)
			}
		}
	}

	name := resume.FileName
	if name == "" {
		name = "resume.pdf"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="resume"; filename=%q`, name))
	h.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("intake: failed to create resume part: %w", err)
	}
	if _, err := io.Copy(part, resume.Content); err != nil {
		return nil, "", fmt.Errorf("intake: failed to read resume: %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("intake: failed to finish multipart body: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

// formValues flattens a request struct into text form values using its
// JSON field names.
func formValues(form any) (map[string][]string, error) {
	data, err := json.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("intake: failed to marshal request: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("intake: failed to flatten request: %w", err)
	}

	out := make(map[string][]string, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case nil:
		case []any:
			for _, item := range v {
				out[k] = append(out[k], formValue(item))
			}
		default:
			out[k] = []string{formValue(v)}
		}
	}
	return out, nil
}

func formValue(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
