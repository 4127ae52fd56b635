package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestParam(t *testing.T) {
	m := chi.NewRouter()
	var got string
	m.Get("/sittings/{date}", func(w http.ResponseWriter, r *http.Request) {
		got = Param(r, "date")
	})
	m.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/sittings/2024-03-05", nil))
	if got != "2024-03-05" {
		t.Fatalf("Param = %q", got)
	}
	if Param(httptest.NewRequest("GET", "/", nil), "date") != "" {
		t.Fatal("unbound param should be empty")
	}
}
