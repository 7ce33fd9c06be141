// Package hubspot is a minimal client for the HubSpot CRM v3 objects API.
package hubspot

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

	"go.uber.org/zap"
)

// DefaultBaseURL is the public HubSpot API endpoint.
const DefaultBaseURL = "https://api.hubapi.com"

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 4 * 1024 * 1024

// Object classes used by the sync.
const (
	ClassContacts  = "contacts"
	ClassCompanies = "companies"
)

// ErrMissingToken is returned by NewClient when no access token is configured.
var ErrMissingToken = errors.New("hubspot: access token required")

// Config configures the client.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// CallObserver is notified after every API call.
type CallObserver interface {
	ObserveCall(op, class string, d time.Duration, err error)
}

// Client talks to the HubSpot CRM objects API with a private app token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
	observer   CallObserver
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithObserver registers a CallObserver.
func WithObserver(o CallObserver) Option {
	return func(c *Client) { c.observer = o }
}

// NewClient creates a client from cfg.
func NewClient(cfg Config, logger *zap.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, ErrMissingToken
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("hubspot: invalid base URL %q: %w", cfg.BaseURL, err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		baseURL:    base,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Object is a CRM object as returned by the API.
type Object struct {
	ID         string         `json:"id"`
	Properties map[string]any `json:"properties"`
}

// Property returns a property as a string; missing and null values are "".
func (o Object) Property(name string) string {
	switch v := o.Properties[name].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

type searchFilter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

type filterGroup struct {
	Filters []searchFilter `json:"filters"`
}

type searchRequest struct {
	FilterGroups []filterGroup `json:"filterGroups"`
	Properties   []string      `json:"properties,omitempty"`
}

type searchResponse struct {
	Total   int      `json:"total"`
	Results []Object `json:"results"`
}

type propertiesBody struct {
	Properties map[string]any `json:"properties"`
}

// Search returns the objects of class whose property equals value. Properties
// listed in returnProps are included in the results.
func (c *Client) Search(ctx context.Context, class, property, value string, returnProps ...string) ([]Object, error) {
	body := searchRequest{
		FilterGroups: []filterGroup{{
			Filters: []searchFilter{{PropertyName: property, Operator: "EQ", Value: value}},
		}},
		Properties: returnProps,
	}

	var resp searchResponse
	if err := c.call(ctx, "search", class, http.MethodPost, objectsPath(class)+"/search", body, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Create creates an object of class with the given properties.
func (c *Client) Create(ctx context.Context, class string, props map[string]any) (*Object, error) {
	var obj Object
	if err := c.call(ctx, "create", class, http.MethodPost, objectsPath(class), propertiesBody{Properties: props}, &obj); err != nil {
		return nil, err
	}
	return &obj, nil
}

// Update patches the properties of an existing object.
func (c *Client) Update(ctx context.Context, class, id string, props map[string]any) (*Object, error) {
	var obj Object
	path := objectsPath(class) + "/" + url.PathEscape(id)
	if err := c.call(ctx, "update", class, http.MethodPatch, path, propertiesBody{Properties: props}, &obj); err != nil {
		return nil, err
	}
	return &obj, nil
}

func objectsPath(class string) string {
	return "/crm/v3/objects/" + url.PathEscape(class)
}

func (c *Client) call(ctx context.Context, op, class, method, path string, in, out any) error {
	start := time.Now()
	err := c.do(ctx, method, path, in, out)
	if c.observer != nil {
		c.observer.ObserveCall(op, class, time.Since(start), err)
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("hubspot: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("hubspot: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("hubspot: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("hubspot: read response: %w", err)
	}

	c.logger.Debug("hubspot response",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, respBody)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("hubspot: decode response: %w", err)
	}
	return nil
}
