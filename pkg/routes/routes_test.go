package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sahilkapur/ledgerdesk/pkg/routes"
)

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()

	routes.Register(mux, routes.Group{
		Prefix: "/documents",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: ok},
			{Method: "GET", Pattern: "/{id}", Handler: ok},
			{Method: "POST", Pattern: "", Handler: ok},
		},
	})

	tests := []struct {
		name     string
		method   string
		path     string
		wantCode int
	}{
		{"list", "GET", "/documents", http.StatusOK},
		{"find", "GET", "/documents/abc", http.StatusOK},
		{"create", "POST", "/documents", http.StatusOK},
		{"wrong method", "DELETE", "/documents", http.StatusMethodNotAllowed},
		{"unknown path", "GET", "/ledgers", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.wantCode)
			}
		})
	}
}

func TestNestedGroups(t *testing.T) {
	mux := http.NewServeMux()

	routes.Register(mux, routes.Group{
		Prefix: "/api",
		Children: []routes.Group{
			{
				Prefix: "/investments",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: ok},
				},
			},
		},
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/investments", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("nested route = %d, want 200", rec.Code)
	}
}
