package storm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/star-marathon/star_backend/internal/logging"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, logging.Discard())
}

func TestExchangeSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/authRegister":
			var req map[string]any
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode register: %v", err)
			}
			if req["pin"] != "1234" || req["tg_id"] != float64(42) {
				t.Fatalf("unexpected register payload: %v", req)
			}
			json.NewEncoder(w).Encode(map[string]string{"auth_jwt": "A1"})
		case "/authLogin":
			json.NewEncoder(w).Encode(map[string]string{"session_jwt": "S1"})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	res := client.Exchange(context.Background(), 42, "1234", "alice", "+700")
	if res.SessionJWT != "S1" || res.AuthJWT != "A1" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !res.SessionGranted() {
		t.Fatal("expected granted session")
	}
}

func TestExchangeRegisterRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	res := client.Exchange(context.Background(), 42, "0000", "", "")
	if res != (ExchangeResult{}) {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestExchangeEmptyAuthJWT(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"auth_jwt": ""})
	})

	res := client.Exchange(context.Background(), 42, "1234", "", "")
	if res != (ExchangeResult{}) {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestExchangeLoginRejectedKeepsAuthJWT(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/authRegister":
			json.NewEncoder(w).Encode(map[string]string{"auth_jwt": "A1"})
		case "/authLogin":
			w.WriteHeader(http.StatusUnauthorized)
		}
	})

	res := client.Exchange(context.Background(), 42, "1234", "", "")
	if res.SessionJWT != "" || res.AuthJWT != "A1" {
		t.Fatalf("expected partial result, got %+v", res)
	}
}

func TestExchangeTransportFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on
	client := NewClient(srv.URL, logging.Discard())

	res := client.Exchange(context.Background(), 42, "1234", "", "")
	if res != (ExchangeResult{}) {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestAddTransactionStatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	if err := client.AddTransaction(context.Background(), "S1", -100, "Покупка"); err == nil {
		t.Fatal("expected error for non-2xx status")
	}
}

func TestGetProfile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getProfile" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["session_jwt"] != "S1" {
			t.Fatalf("unexpected session credential: %v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{"fio": "Иванов И.И.", "balance": 250})
	})

	profile, err := client.GetProfile(context.Background(), "S1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.Fio != "Иванов И.И." || profile.Balance != 250 {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}
