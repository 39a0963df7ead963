package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/polkiloo/routeshop/internal/config"
	domainErrors "github.com/polkiloo/routeshop/internal/domain/errors"
	"github.com/polkiloo/routeshop/internal/domain/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewHTTPClientValidatesURL(t *testing.T) {
	if _, err := NewHTTPClient("://bad-url", Options{}, testLogger()); err == nil {
		t.Fatal("expected error for invalid url")
	}
	if _, err := NewHTTPClient("/relative", Options{}, testLogger()); err == nil {
		t.Fatal("expected error for relative url")
	}
}

func TestStatement(t *testing.T) {
	from := time.Unix(1714564800, 0)
	to := from.Add(time.Hour)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/personal/statement/acc/1714564800/1714568400" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Token") != "secret" {
			t.Errorf("missing token header")
		}
		_ = json.NewEncoder(w).Encode([]statementItem{
			{ID: "a", Time: 1714565000, Amount: 1000, MaskedPan: "537541******4321"},
			{ID: "b", Time: 1714565100, Amount: -500},
		})
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL, Options{Token: "secret", Account: "acc"}, testLogger())
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	events, err := client.Statement(context.Background(), from, to)
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected two events, got %d", len(events))
	}
	if events[0].CardSuffix() != "4321" || !events[0].Time.Equal(time.Unix(1714565000, 0)) || events[1].Credit() {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestStatementRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, _ := NewHTTPClient(srv.URL, Options{}, testLogger())
	_, err := client.Statement(context.Background(), time.Now(), time.Now())

	var tooMany TooManyRequestsError
	if !errors.As(err, &tooMany) || tooMany.RetryAfter != time.Minute {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if !errors.Is(err, domainErrors.ErrExternalService) {
		t.Fatal("rate limit must be an external service error")
	}
}

func TestStatementServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, _ := NewHTTPClient(srv.URL, Options{}, testLogger())
	if _, err := client.Statement(context.Background(), time.Now(), time.Now()); !errors.Is(err, domainErrors.ErrExternalService) {
		t.Fatalf("expected external service error, got %v", err)
	}
}

func TestCreateInvoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/merchant/invoice/create" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req invoiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Amount != 250 || req.Currency != currencyUAH || req.MerchantPaymInfo.Reference != "17" || req.WebHookURL != "https://shop/webhook" {
			t.Errorf("unexpected request %+v", req)
		}
		_ = json.NewEncoder(w).Encode(invoiceResponse{InvoiceID: "inv-17", PageURL: "https://pay/inv-17"})
	}))
	defer srv.Close()

	client, _ := NewHTTPClient(srv.URL, Options{WebhookURL: "https://shop/webhook"}, testLogger())
	inv, err := client.CreateInvoice(context.Background(), &model.Order{ID: 17, Amount: 250}, "Маршрут №1")
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if inv.ID != "inv-17" || inv.PageURL != "https://pay/inv-17" {
		t.Fatalf("unexpected invoice %+v", inv)
	}
}

func TestCreateInvoiceMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, _ := NewHTTPClient(srv.URL, Options{}, testLogger())
	if _, err := client.CreateInvoice(context.Background(), &model.Order{ID: 1, Amount: 1}, ""); !errors.Is(err, domainErrors.ErrExternalService) {
		t.Fatalf("expected external service error, got %v", err)
	}
}

func TestParseRetryAfter(t *testing.T) {
	if got := parseRetryAfter(""); got != time.Minute {
		t.Fatalf("unexpected default %s", got)
	}
	if got := parseRetryAfter("3"); got != 3*time.Second {
		t.Fatalf("unexpected seconds %s", got)
	}
	future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	if got := parseRetryAfter(future); got <= 0 {
		t.Fatalf("expected positive duration, got %s", got)
	}
	if got := parseRetryAfter("soon"); got != time.Minute {
		t.Fatalf("unexpected fallback %s", got)
	}
}

func TestNewClientUsesConfig(t *testing.T) {
	cfg := &config.Config{LedgerURL: "http://example.com", LedgerToken: "t"}
	client, err := newClient(clientParams{Config: cfg, Logger: testLogger()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client == nil {
		t.Fatal("expected client instance")
	}
}
