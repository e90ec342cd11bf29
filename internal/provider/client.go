package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/flightbroker/config"
	"github.com/Domenick1991/flightbroker/internal/domain"
	"github.com/sirupsen/logrus"
)

const maxResponseBytes = 32 << 20

// Client talks to the flight inventory provider. It never retries; every
// call gets its own deadline and failures come back as domain errors.
type Client struct {
	sharedURL  string
	airURL     string
	creds      config.ProviderConfig
	timeout    time.Duration
	httpClient *http.Client
	log        logrus.FieldLogger
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(cfg config.ProviderConfig, log logrus.FieldLogger, opts ...ClientOption) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		sharedURL:  strings.TrimRight(cfg.SharedURL, "/"),
		airURL:     strings.TrimRight(cfg.AirURL, "/"),
		creds:      cfg,
		timeout:    timeout,
		httpClient: &http.Client{},
		log:        log.WithField("component", "provider"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Authenticate(ctx context.Context, endUserIP string) (*AuthenticateResponse, error) {
	req := AuthenticateRequest{
		ClientID:  c.creds.ClientID,
		UserName:  c.creds.UserName,
		Password:  c.creds.Password,
		EndUserIP: endUserIP,
	}
	var resp AuthenticateResponse
	if err := c.post(ctx, "Authenticate", c.sharedURL+"/Authenticate", req, &resp); err != nil {
		return nil, err
	}
	if resp.Error == nil {
		return nil, malformed("Authenticate")
	}
	return &resp, nil
}

func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	var resp searchResponse
	if err := c.post(ctx, "Search", c.airURL+"/Search", req, &resp); err != nil {
		return nil, err
	}
	if resp.Response == nil {
		return nil, malformed("Search")
	}
	if err := tokenRejected("Search", resp.Response.Error); err != nil {
		return nil, err
	}
	return resp.Response, nil
}

func (c *Client) FareRule(ctx context.Context, req ResultRequest) (*FareRuleResult, error) {
	var resp fareRuleResponse
	if err := c.post(ctx, "FareRule", c.airURL+"/FareRule", req, &resp); err != nil {
		return nil, err
	}
	if resp.Response == nil {
		return nil, malformed("FareRule")
	}
	if err := tokenRejected("FareRule", resp.Response.Error); err != nil {
		return nil, err
	}
	return resp.Response, nil
}

func (c *Client) FareQuote(ctx context.Context, req ResultRequest) (*FareQuoteResult, error) {
	var resp fareQuoteResponse
	if err := c.post(ctx, "FareQuote", c.airURL+"/FareQuote", req, &resp); err != nil {
		return nil, err
	}
	if resp.Response == nil {
		return nil, malformed("FareQuote")
	}
	if err := tokenRejected("FareQuote", resp.Response.Error); err != nil {
		return nil, err
	}
	return resp.Response, nil
}

func (c *Client) SSR(ctx context.Context, req ResultRequest) (*SSRResult, error) {
	var resp ssrResponse
	if err := c.post(ctx, "SSR", c.airURL+"/SSR", req, &resp); err != nil {
		return nil, err
	}
	if resp.Response == nil {
		return nil, malformed("SSR")
	}
	if err := tokenRejected("SSR", resp.Response.Error); err != nil {
		return nil, err
	}
	return resp.Response, nil
}

func (c *Client) Book(ctx context.Context, req BookRequest) (*BookResult, error) {
	var resp bookResponse
	if err := c.post(ctx, "Book", c.airURL+"/Book", req, &resp); err != nil {
		return nil, err
	}
	if resp.Response == nil {
		return nil, malformed("Book")
	}
	if err := tokenRejected("Book", resp.Response.Error); err != nil {
		return nil, err
	}
	return resp.Response, nil
}

func (c *Client) Ticket(ctx context.Context, req TicketRequest) (*TicketResult, error) {
	var resp ticketResponse
	if err := c.post(ctx, "Ticket", c.airURL+"/Ticket", req, &resp); err != nil {
		return nil, err
	}
	if resp.Response == nil {
		return nil, malformed("Ticket")
	}
	if err := tokenRejected("Ticket", resp.Response.Error); err != nil {
		return nil, err
	}
	return resp.Response, nil
}

func (c *Client) GetBookingDetails(ctx context.Context, req BookingDetailsRequest) (*BookingDetailsResult, error) {
	var resp bookingDetailsResponse
	if err := c.post(ctx, "GetBookingDetails", c.airURL+"/GetBookingDetails", req, &resp); err != nil {
		return nil, err
	}
	if resp.Response == nil {
		return nil, malformed("GetBookingDetails")
	}
	if err := tokenRejected("GetBookingDetails", resp.Response.Error); err != nil {
		return nil, err
	}
	return resp.Response, nil
}

func (c *Client) post(ctx context.Context, endpoint, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", endpoint, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithError(err).WithField("endpoint", endpoint).Error("provider request failed")
		return transportError(endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.log.WithError(err).WithField("endpoint", endpoint).Error("provider response read failed")
		return transportError(endpoint, err)
	}

	entry := c.log.WithFields(logrus.Fields{
		"endpoint":    endpoint,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(started).Milliseconds(),
	})
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		entry.WithField("response", string(raw)).Error("provider returned non-2xx status")
		return domain.NewError(domain.ErrUpstream, fmt.Sprintf("%s failed with status %d", endpoint, resp.StatusCode), nil)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		entry.WithError(err).WithField("response", string(raw)).Error("provider response could not be decoded")
		return domain.NewError(domain.ErrUpstream, endpoint+" returned an unreadable response", err)
	}
	entry.WithField("bytes", len(raw)).Debug("provider call completed")
	return nil
}

func transportError(endpoint string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewError(domain.ErrUpstreamTimeout, endpoint+" timed out", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.NewError(domain.ErrUpstreamTimeout, endpoint+" timed out", err)
	}
	return domain.NewError(domain.ErrUpstream, endpoint+" request failed", err)
}

func tokenRejected(endpoint string, perr Error) error {
	if !perr.TokenRejected() {
		return nil
	}
	return domain.NewError(domain.ErrTokenExpired, endpoint+" rejected the provider token", nil)
}

func malformed(endpoint string) error {
	return domain.NewError(domain.ErrUpstream, endpoint+" returned an unexpected response shape", nil)
}
