// Package v1 keeps the retired API surface alive as permanent redirects
// so old clients land on the v2 routes.
package v1

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// NewRouter creates the legacy v1 router. Every route answers with a 308
// to its v2 equivalent; the v1 handlers themselves are gone.
func NewRouter() *mux.Router {
	router := mux.NewRouter()
	v1 := router.PathPrefix("/api/v1").Subrouter()

	redirect := func(w http.ResponseWriter, r *http.Request) {
		target := strings.Replace(r.URL.Path, "/api/v1", "/api/v2", 1)
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusPermanentRedirect)
	}

	v1.HandleFunc("/accounts", redirect).Methods("POST", "GET")
	v1.HandleFunc("/accounts/{id}", redirect).Methods("GET")
	v1.HandleFunc("/relationships", redirect).Methods("POST", "GET")
	v1.HandleFunc("/relationships/{id}", redirect).Methods("DELETE")
	v1.HandleFunc("/members", redirect).Methods("POST", "GET")
	v1.HandleFunc("/members/{id}/link", redirect).Methods("POST")
	v1.HandleFunc("/tree", redirect).Methods("GET")
	v1.HandleFunc("/tree/{id}", redirect).Methods("GET")

	// Anything not matched above still leaves the v1 namespace
	router.NotFoundHandler = http.HandlerFunc(redirect)

	v1.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		w.Write([]byte(`{"status":"healthy","version":"v1","deprecated":true}`))
	}).Methods("GET")

	return router
}
