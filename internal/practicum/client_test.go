package practicum

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"homework-bot/internal/homework"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/oauth2"
)

func TestClient_GetStatuses(t *testing.T) {
	var gotAuth, gotFrom, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotFrom = r.URL.Query().Get("from_date")
		gotMethod = r.Method
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"homeworks": [{"status": "approved", "homework_name": "hw.zip"}], "current_date": 1581604970}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/api/user_api/homework_statuses/", "secret", 5*time.Second, zap.NewNop())
	defer client.Close()

	resp, err := client.GetStatuses(context.Background(), 1549962000)
	if err != nil {
		t.Fatalf("GetStatuses() error = %v", err)
	}

	if gotMethod != http.MethodGet {
		t.Errorf("method = %s, want GET", gotMethod)
	}
	if gotAuth != "OAuth secret" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "OAuth secret")
	}
	if gotFrom != "1549962000" {
		t.Errorf("from_date = %q, want 1549962000", gotFrom)
	}

	date, err := homework.CurrentDate(resp)
	if err != nil {
		t.Fatalf("CurrentDate() error = %v", err)
	}
	if date != 1581604970 {
		t.Errorf("current_date = %d, want 1581604970", date)
	}

	homeworks, err := homework.ExtractHomeworks(resp)
	if err != nil {
		t.Fatalf("ExtractHomeworks() error = %v", err)
	}
	if len(homeworks) != 1 {
		t.Errorf("len(homeworks) = %d, want 1", len(homeworks))
	}
}

func TestClient_UnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": "maintenance"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", 5*time.Second, zap.NewNop())

	_, err := client.GetStatuses(context.Background(), 0)
	if err == nil {
		t.Fatal("GetStatuses() expected error for 503")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("GetStatuses() error = %T, want *StatusError", err)
	}
	if statusErr.Code != http.StatusServiceUnavailable {
		t.Errorf("Code = %d, want 503", statusErr.Code)
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error = %q, want it to contain 503", err)
	}
}

func TestClient_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"homeworks": [`))
	}))
	defer server.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	client := NewClient(server.URL, "secret", 5*time.Second, zap.New(core))

	_, err := client.GetStatuses(context.Background(), 0)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("GetStatuses() error = %v, want ErrDecode", err)
	}

	if logs.FilterLevelExact(zapcore.ErrorLevel).Len() != 1 {
		t.Errorf("expected one error log, got %d", logs.Len())
	}
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	client := NewClient(url, "secret", time.Second, zap.New(core))

	resp, err := client.GetStatuses(context.Background(), 0)
	if resp != nil {
		t.Errorf("GetStatuses() resp = %v, want nil", resp)
	}
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("GetStatuses() error = %v, want ErrTransport", err)
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		t.Error("transport failure must not be reported as a status error")
	}

	if logs.FilterLevelExact(zapcore.ErrorLevel).Len() != 1 {
		t.Errorf("expected one error log, got %d", logs.Len())
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL, "secret", 50*time.Millisecond, zap.NewNop())

	_, err := client.GetStatuses(context.Background(), 0)
	if !errors.Is(err, ErrTransport) {
		t.Errorf("GetStatuses() error = %v, want ErrTransport", err)
	}
}

func TestClient_KeepsEndpointQuery(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"homeworks": [], "current_date": 1}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/?lang=ru", "secret", time.Second, zap.NewNop())
	if _, err := client.GetStatuses(context.Background(), 42); err != nil {
		t.Fatalf("GetStatuses() error = %v", err)
	}

	if gotQuery != "from_date=42&lang=ru" {
		t.Errorf("query = %q, want from_date=42&lang=ru", gotQuery)
	}
}

func TestClient_Close_NilClient(t *testing.T) {
	var client *Client

	// should not panic on nil receiver
	client.Close()
}

func TestClient_Close_ReleasesBaseTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"homeworks": [], "current_date": 1}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", time.Second, zap.NewNop())

	ot, ok := client.httpClient.Transport.(*oauth2.Transport)
	if !ok {
		t.Fatalf("transport = %T, want *oauth2.Transport", client.httpClient.Transport)
	}
	if ot.Base != client.transport {
		t.Fatal("oauth2 transport does not wrap the transport closed by Close")
	}

	if _, err := client.GetStatuses(context.Background(), 0); err != nil {
		t.Fatalf("GetStatuses() error = %v", err)
	}

	client.Close()

	if _, err := client.GetStatuses(context.Background(), 0); err != nil {
		t.Fatalf("GetStatuses() after Close error = %v", err)
	}
}
