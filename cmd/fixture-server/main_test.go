package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/history-gogo-client/pkg/apierr"
	"github.com/Sternrassler/history-gogo-client/pkg/client"
	"github.com/Sternrassler/history-gogo-client/pkg/model"
	"github.com/Sternrassler/history-gogo-client/pkg/ratelimit"
	"github.com/Sternrassler/history-gogo-client/pkg/resource"
)

func setupServer(t *testing.T) (*httptest.Server, *resource.Client) {
	t.Helper()

	mock := resource.NewMock(resource.WithDelay(0), resource.WithTimelineDelay(0))
	srv := httptest.NewServer(newRouter(mock, zerolog.Nop()))
	t.Cleanup(srv.Close)

	cfg := client.DefaultConfig(srv.URL + "/api/v1")
	cfg.RateLimit = ratelimit.Config{}
	nop := zerolog.Nop()
	cfg.Logger = &nop

	transport, err := client.New(cfg)
	if err != nil {
		t.Fatalf("client.New() error = %v", err)
	}
	t.Cleanup(func() { transport.Close() })

	return srv, resource.NewClient(transport)
}

func TestHealthEndpoint(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	healthHandler(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if string(body) != "OK" {
		t.Errorf("Expected body 'OK', got %s", string(body))
	}
}

func TestListEmperors_RoundTrip(t *testing.T) {
	_, api := setupServer(t)

	got, err := api.ListEmperors(context.Background(), resource.EmperorFilter{DynastyID: resource.String("ming")}, 2, 2)
	if err != nil {
		t.Fatalf("ListEmperors() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "ming_chengzu" || got[1].ID != "ming_renzong" {
		t.Errorf("ListEmperors() = %+v", got)
	}
	if got[0].ReignStart.Year() != 1402 {
		t.Errorf("ReignStart = %v, want 1402", got[0].ReignStart)
	}
}

func TestListEvents_Filters(t *testing.T) {
	_, api := setupServer(t)

	got, err := api.ListEvents(context.Background(), resource.EventFilter{
		DynastyID: resource.String("ming"),
		EventType: resource.String(model.EventTypeDiplomatic),
	}, 0, 20)
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(got) != 1 || got[0].Title != "郑和下西洋" {
		t.Errorf("ListEvents() = %+v", got)
	}
}

func TestGetDetail_RoundTrip(t *testing.T) {
	_, api := setupServer(t)
	ctx := context.Background()

	person, err := api.GetPerson(ctx, "person_001")
	if err != nil {
		t.Fatalf("GetPerson() error = %v", err)
	}
	if person.FullName() != "郑和（三宝太监）" {
		t.Errorf("FullName() = %q", person.FullName())
	}

	tl, err := api.GetTimeline(ctx, "qing")
	if err != nil {
		t.Fatalf("GetTimeline() error = %v", err)
	}
	if years := tl.YearsWithEvents(); len(years) != 1 || years[0] != 1685 {
		t.Errorf("YearsWithEvents() = %v, want [1685]", years)
	}
}

func TestNotFound_PropagatesServerMessage(t *testing.T) {
	_, api := setupServer(t)

	_, err := api.GetEmperor(context.Background(), "tang_taizong")

	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("GetEmperor() error = %v, want *apierr.Error", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Message != "皇帝不存在: tang_taizong" {
		t.Errorf("GetEmperor() error = %+v", apiErr)
	}
}

func TestPageValidation(t *testing.T) {
	srv, api := setupServer(t)

	_, err := api.ListPersons(context.Background(), resource.PersonFilter{}, 0, resource.MaxLimit+1)
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("ListPersons(limit=101) error = %v, want 422", err)
	}

	resp, err := http.Get(srv.URL + "/api/v1/persons?skip=-1")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("skip=-1 status = %d, want 422", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, api := setupServer(t)

	if _, err := api.ListDynasties(context.Background()); err != nil {
		t.Fatalf("ListDynasties() error = %v", err)
	}

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "history_requests_total") {
		t.Error("Expected history_requests_total in metrics output")
	}
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := setupServer(t)

	resp, err := http.Get(srv.URL + "/api/v2/dynasties")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
