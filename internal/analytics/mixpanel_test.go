package analytics

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestSetPropertiesPayload(t *testing.T) {
	var captured []engageSet
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("invalid payload: %v", err)
		}
		w.Write([]byte("1"))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "token-1", time.Second, zap.NewNop())
	err := client.SetProperties(context.Background(), 42, map[string]string{"predict_gender": "unknown"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(captured) != 1 {
		t.Fatalf("expected one engage record, got %d", len(captured))
	}
	if captured[0].Token != "token-1" || captured[0].DistinctID != "42" {
		t.Fatalf("unexpected envelope: %+v", captured[0])
	}
	if captured[0].Set["predict_gender"] != "unknown" {
		t.Fatalf("unexpected properties: %+v", captured[0].Set)
	}
}

func TestSetPropertiesRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("0"))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "token-1", time.Second, zap.NewNop())
	if err := client.SetProperties(context.Background(), 42, nil); err == nil {
		t.Fatalf("expected error on rejected engage set")
	}
}

func TestGetPropertyAbsentProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "token-1", time.Second, zap.NewNop())
	prop, err := client.GetProperty(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prop != nil {
		t.Fatalf("absent profile must yield nil, got %+v", prop)
	}
}

func TestGetPropertyMapsFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": [{"$properties": {"$city": "Taipei", "$region": "TPE", "$country_code": "TW", "$is_student": true}}]}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "token-1", time.Second, zap.NewNop())
	prop, err := client.GetProperty(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prop == nil || prop.City != "Taipei" || prop.CountryCode != "TW" || !prop.IsEducation {
		t.Fatalf("unexpected property: %+v", prop)
	}
	if prop.UserRegion() != "Taipei" {
		t.Fatalf("expected city as region, got %q", prop.UserRegion())
	}
}
