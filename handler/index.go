package handler

import (
	"encoding/json"
	"net/http"
	"time"
)

const apiVersion = "1.0"

type indexResponse struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Docs      string            `json:"docs"`
	Resources map[string]string `json:"resources"`
	Time      time.Time         `json:"time"`
}

// Handler describes the API root for clients landing on "/".
func Handler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(indexResponse{
		Name:    "Catalog Admin API",
		Version: apiVersion,
		Docs:    "/swagger/index.html",
		Resources: map[string]string{
			"auth":       "/api/auth",
			"products":   "/api/products",
			"categories": "/api/categories",
			"tags":       "/api/tags",
			"drafts":     "/api/drafts",
		},
		Time: time.Now().UTC(),
	})
}
