package phonepe

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

const InstrumentPayPage = "PAY_PAGE"

type PaymentInstrument struct {
	Type string `json:"type"`
}

type PayRequest struct {
	MerchantID            string            `json:"merchantId"`
	MerchantTransactionID string            `json:"merchantTransactionId"`
	MerchantUserID        string            `json:"merchantUserId"`
	Amount                int64             `json:"amount"`
	RedirectURL           string            `json:"redirectUrl"`
	CallbackURL           string            `json:"callbackUrl"`
	PaymentInstrument     PaymentInstrument `json:"paymentInstrument"`
}

type StatusResponse struct {
	Success bool               `json:"success"`
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Data    domain.PaymentData `json:"data"`
}

// Client calls the payment gateway's pay and status endpoints, signing each
// request with the configured salt.
type Client struct {
	baseURL    string
	merchantID string
	saltKey    string
	saltIndex  int
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

func NewClient(cfg config.PaymentConfig, log logrus.FieldLogger, opts ...ClientOption) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		merchantID: cfg.MerchantID,
		saltKey:    cfg.SaltKey,
		saltIndex:  cfg.SaltIndex,
		timeout:    timeout,
		httpClient: &http.Client{},
		log:        log.WithField("component", "payment_gateway"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) MerchantID() string {
	return c.merchantID
}

// Pay starts a pay-page transaction and returns the gateway response as is.
func (c *Client) Pay(ctx context.Context, req PayRequest) (json.RawMessage, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal pay request: %w", err)
	}
	body, err := json.Marshal(map[string]string{"request": EncodePayload(payload)})
	if err != nil {
		return nil, fmt.Errorf("marshal pay body: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PayPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build pay request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-VERIFY", PayChecksum(payload, c.saltKey, c.saltIndex))

	status, raw, err := c.do(httpReq, "pay")
	if err != nil {
		return nil, err
	}

	var head struct {
		Success bool   `json:"success"`
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		c.log.WithError(err).WithField("response", string(raw)).Error("pay response could not be decoded")
		return nil, domain.NewError(domain.ErrUpstream, "payment gateway returned an unreadable response", err)
	}
	if status < 200 || status >= 300 || !head.Success {
		c.log.WithFields(logrus.Fields{
			"status":                  status,
			"code":                    head.Code,
			"merchant_transaction_id": req.MerchantTransactionID,
			"response":                string(raw),
		}).Error("payment initiation rejected")
		return nil, domain.NewError(domain.ErrPaymentFailed, nonEmpty(head.Message, "payment initiation failed"), nil)
	}
	return json.RawMessage(raw), nil
}

// Status looks up a transaction. The gateway answers failures with a JSON
// body and a 4xx status, so any decodable body is returned to the caller.
func (c *Client) Status(ctx context.Context, merchantTransactionID string) (*StatusResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+statusPath(c.merchantID, merchantTransactionID), nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-VERIFY", StatusChecksum(c.merchantID, merchantTransactionID, c.saltKey, c.saltIndex))
	httpReq.Header.Set("X-MERCHANT-ID", c.merchantID)

	status, raw, err := c.do(httpReq, "status")
	if err != nil {
		return nil, err
	}

	var resp StatusResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{"status": status, "response": string(raw)}).Error("status response could not be decoded")
		return nil, domain.NewError(domain.ErrUpstream, "payment gateway returned an unreadable response", err)
	}
	c.log.WithFields(logrus.Fields{
		"status":                  status,
		"code":                    resp.Code,
		"merchant_transaction_id": merchantTransactionID,
	}).Info("payment status checked")
	return &resp, nil
}

func (c *Client) do(req *http.Request, op string) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithError(err).WithField("op", op).Error("payment gateway request failed")
		return 0, nil, transportError(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, transportError(op, err)
	}
	return resp.StatusCode, raw, nil
}

func transportError(op string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return domain.NewError(domain.ErrUpstreamTimeout, "payment gateway "+op+" timed out", err)
	}
	return domain.NewError(domain.ErrUpstream, "payment gateway "+op+" request failed", err)
}

func nonEmpty(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
