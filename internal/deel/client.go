package deel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Config addresses one Deel API environment. Resolved per run by the
// settings service (stored row > environment > default).
type Config struct {
	BaseURL  string
	APIToken string
}

// APIError is a non-2xx response from the Deel API, carrying the raw body.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("deel API error (%d): %s", e.StatusCode, e.Body)
}

type AlternateEmail struct {
	Email      *string `json:"email"`
	IsVerified bool    `json:"isVerified"`
}

type Worker struct {
	ID             string           `json:"id"`
	Email          *string          `json:"email"`
	FullName       string           `json:"full_name"`
	AlternateEmail []AlternateEmail `json:"alternate_email,omitempty"`
}

type Contract struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Title      string  `json:"title"`
	Status     string  `json:"status"`
	Worker     *Worker `json:"worker"`
	CreatedAt  *string `json:"created_at"`
	IsArchived bool    `json:"is_archived"`
	IsShielded bool    `json:"is_shielded"`
	ExternalID *string `json:"external_id,omitempty"`
}

type contractsResponse struct {
	Data []Contract `json:"data"`
	Page struct {
		Cursor    string `json:"cursor"`
		TotalRows int    `json:"total_rows"`
	} `json:"page"`
}

type TimesheetData struct {
	Quantity       float64 `json:"quantity"`
	ContractID     string  `json:"contract_id"`
	Description    string  `json:"description"`
	DateSubmitted  string  `json:"date_submitted"`
	IsAutoApproved bool    `json:"is_auto_approved"`
}

type TimesheetResult struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Created   bool   `json:"created"`
	CreatedAt string `json:"created_at"`
}

type timesheetResponse struct {
	Data TimesheetResult `json:"data"`
}

type FetchOptions struct {
	Limit    int
	Statuses []string
	Search   string
}

// Client is a bearer-token Deel REST client.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchContracts pages through /rest/v2/contracts until a page comes back
// empty or without a cursor and returns the accumulated contracts. The first
// non-2xx response aborts the whole fetch; no partial result is returned.
func (c *Client) FetchContracts(ctx context.Context, opts FetchOptions) ([]Contract, error) {
	var all []Contract
	cursor := ""

	for {
		endpoint := c.cfg.BaseURL + "/rest/v2/contracts"
		params := url.Values{}
		if opts.Limit > 0 {
			params.Set("limit", fmt.Sprintf("%d", opts.Limit))
		}
		if cursor != "" {
			params.Set("after_cursor", cursor)
		}
		if len(opts.Statuses) > 0 {
			encoded, err := json.Marshal(opts.Statuses)
			if err != nil {
				return nil, fmt.Errorf("encoding statuses filter: %w", err)
			}
			params.Set("statuses", string(encoded))
		}
		if opts.Search != "" {
			params.Set("search", opts.Search)
		}
		if len(params) > 0 {
			endpoint += "?" + params.Encode()
		}

		var page contractsResponse
		if err := c.do(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		all = append(all, page.Data...)

		cursor = page.Page.Cursor
		if len(page.Data) == 0 || cursor == "" {
			return all, nil
		}
	}
}

// SubmitTimesheet posts one timesheet to /rest/v2/timesheets.
func (c *Client) SubmitTimesheet(ctx context.Context, data TimesheetData) (*TimesheetResult, error) {
	payload, err := json.Marshal(map[string]TimesheetData{"data": data})
	if err != nil {
		return nil, fmt.Errorf("encoding timesheet: %w", err)
	}

	var resp timesheetResponse
	endpoint := c.cfg.BaseURL + "/rest/v2/timesheets"
	if err := c.do(ctx, http.MethodPost, endpoint, payload, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte, out interface{}) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deel API request failed: %w", err)
	}
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding deel response: %w", err)
	}
	return nil
}
