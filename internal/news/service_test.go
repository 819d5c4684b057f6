package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/patholens/patholens-api/internal/apperr"
	"github.com/patholens/patholens-api/internal/logging"
)

func newUpstream(t *testing.T, hits *atomic.Int64, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("apikey") == "" {
			t.Error("missing apikey query parameter")
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newCache(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestLatestFetchesAndCaches(t *testing.T) {
	var hits atomic.Int64
	upstream := newUpstream(t, &hits, http.StatusOK, `{"status":"success","totalResults":1,"results":[{"title":"Pemphigus study"}]}`)

	svc := NewService(NewClient(upstream.URL, "test-key"), newCache(t), "pemphigus", "en", time.Minute, logging.Discard())
	ctx := context.Background()

	payload, err := svc.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if payload["status"] != "success" {
		t.Fatalf("unexpected payload: %v", payload)
	}

	if _, err := svc.Latest(ctx); err != nil {
		t.Fatalf("cached latest: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected 1 upstream hit, got %d", hits.Load())
	}
}

func TestLatestUpstreamFailure(t *testing.T) {
	var hits atomic.Int64
	upstream := newUpstream(t, &hits, http.StatusInternalServerError, `{"status":"error"}`)

	svc := NewService(NewClient(upstream.URL, "test-key"), newCache(t), "pemphigus", "en", time.Minute, logging.Discard())

	_, err := svc.Latest(context.Background())
	appErr, ok := apperr.As(err)
	if !ok || appErr.Kind != apperr.KindUpstream {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestLatestWorksWithoutCache(t *testing.T) {
	var hits atomic.Int64
	upstream := newUpstream(t, &hits, http.StatusOK, `{"status":"success"}`)

	svc := NewService(NewClient(upstream.URL, "test-key"), nil, "pemphigus", "en", time.Minute, logging.Discard())
	ctx := context.Background()

	if _, err := svc.Latest(ctx); err != nil {
		t.Fatalf("latest: %v", err)
	}
	if _, err := svc.Latest(ctx); err != nil {
		t.Fatalf("second latest: %v", err)
	}
	if hits.Load() != 2 {
		t.Fatalf("expected 2 upstream hits without cache, got %d", hits.Load())
	}
}

func TestLatestSurvivesCacheOutage(t *testing.T) {
	var hits atomic.Int64
	upstream := newUpstream(t, &hits, http.StatusOK, `{"status":"success"}`)

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	svc := NewService(NewClient(upstream.URL, "test-key"), cache, "pemphigus", "en", time.Minute, logging.Discard())

	payload, err := svc.Latest(context.Background())
	if err != nil {
		t.Fatalf("latest with dead cache: %v", err)
	}
	if payload["status"] != "success" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}
