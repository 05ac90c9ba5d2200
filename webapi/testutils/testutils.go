// Package testutils builds a fully wired API over in-memory storage and
// a mocked gateway for handler tests.
package testutils

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/impactlink/impactlink/internal/fixtures/mocks"
	"github.com/impactlink/impactlink/pkg/app"
	"github.com/impactlink/impactlink/pkg/config"
	"github.com/impactlink/impactlink/pkg/testutils"
	"github.com/impactlink/impactlink/webapi"
)

// TestConfig returns an App config suitable for handler tests.
func TestConfig() *config.App {
	return &config.App{
		Env:       "test",
		Server:    &config.Server{Scheme: "http", Host: "localhost", Port: 3000},
		Log:       &config.Log{Format: "text"},
		RateLimit: &config.RateLimit{MaxRequests: 1000, Window: time.Minute},
		Fee: &config.Fee{
			PlatformRateBps:   500,
			ProcessorRateBps:  290,
			ProcessorFixedFee: 30,
			MinimumAmount:     100,
		},
		Events: &config.Events{DedupTTL: time.Hour},
	}
}

// SetupTestApp wires the fiber app over a FakeStore and a MockGateway.
func SetupTestApp(t *testing.T) (*fiber.App, *testutils.FakeStore, *mocks.MockGateway) {
	t.Helper()
	store := testutils.NewFakeStore()
	gw := mocks.NewMockGateway(t)
	bus := &testutils.RecordingBus{}

	a := app.New(&app.Deps{
		Uow:      store,
		Gateway:  gw,
		EventBus: bus,
		Logger:   slog.Default(),
	}, TestConfig())
	return webapi.SetupApp(a), store, gw
}

// MakeRequest performs one request against the fiber app and returns the
// response.
func MakeRequest(t *testing.T, app *fiber.App, method, target, body string, headers ...map[string]string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, target, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for k, v := range h {
			req.Header.Set(k, v)
		}
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, target, err)
	}
	return resp
}
