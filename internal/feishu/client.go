// Package feishu is a minimal client for the Feishu (Lark) Bitable
// open API, covering the record operations the sync engine needs.
// API docs: https://open.feishu.cn/document/server-docs/docs/bitable-v1/
package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// tokenSafetyMargin is subtracted from the server-reported expiry so a
// token is refreshed before it actually lapses.
const tokenSafetyMargin = 60 * time.Second

// APIError is returned when the Feishu API answers with a non-success
// HTTP status or a non-zero application code.
type APIError struct {
	StatusCode int
	Code       int
	Msg        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("feishu api error: status=%d code=%d msg=%s", e.StatusCode, e.Code, e.Msg)
}

// Record is one Bitable row: an opaque record id plus a flat field map.
type Record struct {
	ID     string         `json:"record_id"`
	Fields map[string]any `json:"fields"`
}

// Client calls the Feishu open API with a cached tenant access token.
type Client struct {
	httpClient *http.Client
	baseURL    string
	appID      string
	appSecret  string

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a Feishu client for the given app credentials.
func NewClient(appID, appSecret string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:   "https://open.feishu.cn",
		appID:     appID,
		appSecret: appSecret,
	}
}

// WithBaseURL points the client at a different API host, used for
// self-hosted gateways and tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// UserFilter builds the record filter expression selecting one user's
// rows. The syntax is dictated by the Bitable API and treated as
// opaque everywhere else.
func UserFilter(userID string) string {
	return fmt.Sprintf(`CurrentValue.[user_id] = "%s"`, userID)
}

type tokenResponse struct {
	Code              int    `json:"code"`
	Msg               string `json:"msg"`
	TenantAccessToken string `json:"tenant_access_token"`
	Expire            int    `json:"expire"` // seconds
}

// tenantToken returns a valid tenant access token, fetching a fresh one
// when the cached token is absent or within the safety margin of expiry.
func (c *Client) tenantToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	body, err := json.Marshal(map[string]string{
		"app_id":     c.appID,
		"app_secret": c.appSecret,
	})
	if err != nil {
		return "", fmt.Errorf("marshal token request: %w", err)
	}

	url := c.baseURL + "/open-apis/auth/v3/tenant_access_token/internal"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch tenant token: %w", err)
	}
	defer resp.Body.Close()

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || tr.Code != 0 {
		return "", &APIError{StatusCode: resp.StatusCode, Code: tr.Code, Msg: tr.Msg}
	}

	c.token = tr.TenantAccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tr.Expire)*time.Second - tokenSafetyMargin)

	return c.token, nil
}

type listRecordsResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Items     []Record `json:"items"`
		HasMore   bool     `json:"has_more"`
		PageToken string   `json:"page_token"`
	} `json:"data"`
}

// QueryRecords lists records of a table, optionally filtered, following
// pagination until the table is exhausted.
func (c *Client) QueryRecords(ctx context.Context, appToken, tableID, filter string) ([]Record, error) {
	token, err := c.tenantToken(ctx)
	if err != nil {
		return nil, err
	}

	var records []Record
	pageToken := ""

	for {
		params := url.Values{}
		params.Set("page_size", "500")
		if filter != "" {
			params.Set("filter", filter)
		}
		if pageToken != "" {
			params.Set("page_token", pageToken)
		}

		reqURL := fmt.Sprintf("%s/open-apis/bitable/v1/apps/%s/tables/%s/records?%s",
			c.baseURL, appToken, tableID, params.Encode())
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create query request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("query records: %w", err)
		}

		var lr listRecordsResponse
		decodeErr := json.NewDecoder(resp.Body).Decode(&lr)
		resp.Body.Close()
		if decodeErr != nil {
			return nil, fmt.Errorf("decode query response: %w", decodeErr)
		}
		if resp.StatusCode != http.StatusOK || lr.Code != 0 {
			return nil, &APIError{StatusCode: resp.StatusCode, Code: lr.Code, Msg: lr.Msg}
		}

		records = append(records, lr.Data.Items...)

		if !lr.Data.HasMore || lr.Data.PageToken == "" {
			return records, nil
		}
		pageToken = lr.Data.PageToken
	}
}

type mutationResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// AppendRecords batch-creates records in a table.
func (c *Client) AppendRecords(ctx context.Context, appToken, tableID string, fields []map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	token, err := c.tenantToken(ctx)
	if err != nil {
		return err
	}

	type recordBody struct {
		Fields map[string]any `json:"fields"`
	}
	payload := struct {
		Records []recordBody `json:"records"`
	}{}
	for _, f := range fields {
		payload.Records = append(payload.Records, recordBody{Fields: f})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal append request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/open-apis/bitable/v1/apps/%s/tables/%s/records/batch_create",
		c.baseURL, appToken, tableID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create append request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("append records: %w", err)
	}
	defer resp.Body.Close()

	var mr mutationResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return fmt.Errorf("decode append response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || mr.Code != 0 {
		return &APIError{StatusCode: resp.StatusCode, Code: mr.Code, Msg: mr.Msg}
	}
	return nil
}

// UpdateRecord replaces the fields of an existing record.
func (c *Client) UpdateRecord(ctx context.Context, appToken, tableID, recordID string, fields map[string]any) error {
	token, err := c.tenantToken(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]any{"fields": fields})
	if err != nil {
		return fmt.Errorf("marshal update request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/open-apis/bitable/v1/apps/%s/tables/%s/records/%s",
		c.baseURL, appToken, tableID, recordID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create update request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	defer resp.Body.Close()

	var mr mutationResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return fmt.Errorf("decode update response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || mr.Code != 0 {
		return &APIError{StatusCode: resp.StatusCode, Code: mr.Code, Msg: mr.Msg}
	}
	return nil
}

// DeleteRecord removes a record from a table.
func (c *Client) DeleteRecord(ctx context.Context, appToken, tableID, recordID string) error {
	token, err := c.tenantToken(ctx)
	if err != nil {
		return err
	}

	reqURL := fmt.Sprintf("%s/open-apis/bitable/v1/apps/%s/tables/%s/records/%s",
		c.baseURL, appToken, tableID, recordID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	defer resp.Body.Close()

	var mr mutationResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return fmt.Errorf("decode delete response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || mr.Code != 0 {
		return &APIError{StatusCode: resp.StatusCode, Code: mr.Code, Msg: mr.Msg}
	}
	return nil
}
