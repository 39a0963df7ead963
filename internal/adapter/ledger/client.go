// Package ledger talks to the bank API holding the payout account: it reads
// the account statement and creates acquiring invoices.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	domainErrors "github.com/polkiloo/routeshop/internal/domain/errors"
	"github.com/polkiloo/routeshop/internal/domain/model"
)

const (
	currencyUAH     = 980
	invoiceValidity = 10 * time.Minute
)

// TooManyRequestsError represents rate limiting signal from the bank.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

func (e TooManyRequestsError) Unwrap() error {
	return domainErrors.ErrExternalService
}

// HTTPClient implements the ledger over the bank HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	token      string
	account    string
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// Options configure HTTPClient.
type Options struct {
	Token      string
	Account    string
	WebhookURL string
	Timeout    time.Duration
}

type statementItem struct {
	ID        string `json:"id"`
	Time      int64  `json:"time"`
	Amount    int64  `json:"amount"`
	MaskedPan string `json:"maskedPan"`
}

type merchantInfo struct {
	Reference   string `json:"reference"`
	Destination string `json:"destination"`
}

type invoiceRequest struct {
	Amount           int64        `json:"amount"`
	Currency         int          `json:"ccy"`
	MerchantPaymInfo merchantInfo `json:"merchantPaymInfo"`
	WebHookURL       string       `json:"webHookUrl,omitempty"`
	Validity         int64        `json:"validity"`
}

type invoiceResponse struct {
	InvoiceID string `json:"invoiceId"`
	PageURL   string `json:"pageUrl"`
}

// NewHTTPClient creates ledger client with default timeout.
func NewHTTPClient(baseURL string, opts Options, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse ledger url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("ledger url must be absolute")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	account := opts.Account
	if account == "" {
		account = "0"
	}
	return &HTTPClient{
		baseURL:    parsed,
		token:      opts.Token,
		account:    account,
		webhookURL: opts.WebhookURL,
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Statement returns account movements within [from, to].
func (c *HTTPClient) Statement(ctx context.Context, from, to time.Time) ([]model.LedgerEvent, error) {
	endpoint := c.endpoint("/personal/statement", c.account,
		strconv.FormatInt(from.Unix(), 10), strconv.FormatInt(to.Unix(), 10))

	var items []statementItem
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &items); err != nil {
		return nil, err
	}

	events := make([]model.LedgerEvent, 0, len(items))
	for _, it := range items {
		events = append(events, model.LedgerEvent{
			ID:        it.ID,
			Time:      time.Unix(it.Time, 0),
			Amount:    it.Amount,
			MaskedPan: it.MaskedPan,
		})
	}
	return events, nil
}

// CreateInvoice registers a payment page for the order.
func (c *HTTPClient) CreateInvoice(ctx context.Context, order *model.Order, title string) (*model.Invoice, error) {
	payload, err := json.Marshal(invoiceRequest{
		Amount:   order.Amount,
		Currency: currencyUAH,
		MerchantPaymInfo: merchantInfo{
			Reference:   strconv.FormatInt(order.ID, 10),
			Destination: title,
		},
		WebHookURL: c.webhookURL,
		Validity:   int64(invoiceValidity / time.Second),
	})
	if err != nil {
		return nil, err
	}

	var resp invoiceResponse
	if err := c.do(ctx, http.MethodPost, c.endpoint("/api/merchant/invoice/create"), payload, &resp); err != nil {
		return nil, err
	}
	if resp.InvoiceID == "" {
		return nil, fmt.Errorf("%w: invoice id missing in response", domainErrors.ErrExternalService)
	}
	return &model.Invoice{ID: resp.InvoiceID, PageURL: resp.PageURL}, nil
}

func (c *HTTPClient) endpoint(parts ...string) string {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(append([]string{endpoint.Path}, parts...)...)
	return endpoint.String()
}

func (c *HTTPClient) do(ctx context.Context, method, endpoint string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Token", c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", domainErrors.ErrExternalService, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %v", domainErrors.ErrExternalService, err)
		}
		return nil
	case http.StatusTooManyRequests:
		return TooManyRequestsError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("ledger request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(data)))
		return fmt.Errorf("%w: ledger error: %s", domainErrors.ErrExternalService, resp.Status)
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return time.Minute
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return time.Minute
}
