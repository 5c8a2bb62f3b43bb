// Package client talks to a running fixture server
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/celestiaorg/memberenv/internal/api"
)

// DefaultTimeout is the default timeout for API requests
const DefaultTimeout = 10 * time.Second

// Options contains configuration options for the API client
type Options struct {
	// BaseURL is the base URL of the fixture server
	BaseURL string

	// Timeout is the request timeout
	Timeout time.Duration
}

// DefaultOptions returns the default client options
func DefaultOptions() *Options {
	return &Options{
		BaseURL: api.DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// Client is a fixture server client
type Client struct {
	baseURL string
	timeout time.Duration
}

// NewClient creates a new API client with the given options
func NewClient(opts *Options) (*Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if _, err := url.ParseRequestURI(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{baseURL: opts.BaseURL, timeout: timeout}, nil
}

// Health checks that the server is up
func (c *Client) Health(ctx context.Context) error {
	var resp api.HealthResponse
	return c.executeRequest(ctx, http.MethodGet, api.HealthPath, nil, &resp)
}

// Reset purges all fixture tables
func (c *Client) Reset(ctx context.Context) error {
	return c.executeRequest(ctx, http.MethodPost, api.ResetPath, nil, nil)
}

// SeedMember creates a member and returns its id
func (c *Client) SeedMember(ctx context.Context, req api.SeedMemberRequest) (*api.SeedResponse, error) {
	var resp api.SeedResponse
	if err := c.executeRequest(ctx, http.MethodPost, api.MembersPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SeedTemporaryMember creates a pending registration and returns its id
func (c *Client) SeedTemporaryMember(ctx context.Context, req api.SeedTempMemberRequest) (*api.SeedResponse, error) {
	var resp api.SeedResponse
	if err := c.executeRequest(ctx, http.MethodPost, api.TempMembersPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) createAgent(ctx context.Context, method, endpoint string, body interface{}) (*fiber.Agent, error) {
	fullURL := c.baseURL + endpoint

	var agent *fiber.Agent
	switch method {
	case http.MethodGet:
		agent = fiber.Get(fullURL)
	case http.MethodPost:
		agent = fiber.Post(fullURL)
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}

	// Set timeout from context or client default
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	} else {
		agent.Timeout(c.timeout)
	}

	agent.Set("Accept", "application/json")
	if body != nil {
		agent.JSON(body)
	}
	return agent, nil
}

func (c *Client) executeRequest(ctx context.Context, method, endpoint string, body, response interface{}) error {
	agent, err := c.createAgent(ctx, method, endpoint, body)
	if err != nil {
		return err
	}

	statusCode, respBody, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("error sending request: %w", errs[0])
	}

	if statusCode < 200 || statusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return &fiber.Error{Code: statusCode, Message: errResp.Error}
		}
		return &fiber.Error{Code: statusCode, Message: "unknown error"}
	}

	if response != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, response); err != nil {
			return fmt.Errorf("error decoding response: %w", err)
		}
	}
	return nil
}
