package pos

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dinehall/internal/logger"
	"dinehall/internal/models"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc, _ := newTestService(t, "0.00")
	handler := NewHandler(svc, logger.New("pos-test"), nil)
	srv := httptest.NewServer(handler.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var decoded map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func TestHandlerOrderFlow(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/orders", `{"created_by":"alice"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create order: status = %d, want 201", resp.StatusCode)
	}
	number, _ := body["order_number"].(string)
	if number == "" {
		t.Fatalf("create order: no order_number in %v", body)
	}

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/orders/"+number+"/items",
		`{"menu_item_id":1,"quantity":1,"added_by":"alice"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add item: status = %d, want 201", resp.StatusCode)
	}

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/orders/"+number, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get order: status = %d, want 200", resp.StatusCode)
	}
	if got := body["grand_total"]; got != "235.4" && got != "235.40" {
		t.Errorf("grand_total = %v, want 235.40", got)
	}
}

func TestHandlerErrorMapping(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{
			name:       "unknown order",
			method:     http.MethodGet,
			path:       "/orders/ORD_20260101_999",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "invalid quantity",
			method:     http.MethodPost,
			path:       "/orders/ORD_20260101_999/items",
			body:       `{"menu_item_id":1,"quantity":0,"added_by":"alice"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing created_by",
			method:     http.MethodPost,
			path:       "/orders",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed body",
			method:     http.MethodPost,
			path:       "/orders",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown bill",
			method:     http.MethodGet,
			path:       "/bills/0d7f8c1e-0000-0000-0000-000000000000",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := doJSON(t, tt.method, srv.URL+tt.path, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestHandlerSubmitEmptyOrderConflict(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/orders", `{"created_by":"alice"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create order: status = %d", resp.StatusCode)
	}
	number := body["order_number"].(string)

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/orders/"+number+"/submit", `{"submitted_by":"alice"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("submit empty: status = %d, want 409", resp.StatusCode)
	}
	if msg, _ := body["error"].(string); msg != models.ErrEmptyOrder.Error() {
		t.Errorf("error = %q, want %q", msg, models.ErrEmptyOrder.Error())
	}
}

func TestHandlerHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health: status = %d, want 200", resp.StatusCode)
	}
	if body["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", body["status"])
	}
}
