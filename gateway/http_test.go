package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type fakeDispatcher struct {
	deviceID string
	payload  interface{}
	calls    int
	err      error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, deviceID string, payload interface{}) error {
	f.calls++
	f.deviceID = deviceID
	f.payload = payload
	return f.err
}

func TestCommandHandlerForwardsBody(t *testing.T) {
	d := &fakeDispatcher{}
	body := `{"deviceId":"device-42","action":"pump_on"}`
	rw := httptest.NewRecorder()
	CommandHandler(d).ServeHTTP(rw, httptest.NewRequest(http.MethodPost, "/command", strings.NewReader(body)))

	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	if d.deviceID != "device-42" {
		t.Errorf("expected device-42, got %q", d.deviceID)
	}
	raw, ok := d.payload.(json.RawMessage)
	if !ok || string(raw) != body {
		t.Errorf("expected whole body as payload, got %v", d.payload)
	}
}

func TestCommandHandlerFailure(t *testing.T) {
	d := &fakeDispatcher{err: errors.New("boom")}
	rw := httptest.NewRecorder()
	CommandHandler(d).ServeHTTP(rw, httptest.NewRequest(http.MethodPost, "/command", strings.NewReader(`{"deviceId":"device-42"}`)))
	if rw.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rw.Code)
	}
}

func TestCommandHandlerBadRequests(t *testing.T) {
	for name, body := range map[string]string{
		"not json":     `{`,
		"no device id": `{"action":"pump_on"}`,
		"array":        `[1,2]`,
	} {
		d := &fakeDispatcher{}
		rw := httptest.NewRecorder()
		CommandHandler(d).ServeHTTP(rw, httptest.NewRequest(http.MethodPost, "/command", strings.NewReader(body)))
		if rw.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, rw.Code)
		}
		if d.calls != 0 {
			t.Errorf("%s: expected no dispatch, got %d", name, d.calls)
		}
	}

	rw := httptest.NewRecorder()
	CommandHandler(&fakeDispatcher{}).ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/command", nil))
	if rw.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rw.Code)
	}
}
