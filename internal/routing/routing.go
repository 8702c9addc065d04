package routing

import (
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"boombot/pkg/enroll"
)

func InitRoutes(api *mux.Router, registry *enroll.Registry, logger *slog.Logger) {

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeResp(w, logger, map[string]any{"status": "ok"}, http.StatusOK)
	}).Methods("GET").Name("health")

	api.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
		writeResp(w, logger, map[string]any{"active": registry.Count()}, http.StatusOK)
	}).Methods("GET").Name("sessions")
}

func StartServer(r *mux.Router, addr string) {
	fmt.Println("\n\033[32m", "The ops server is running on", addr, "\033[0m")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal("Server failed:", err)
	}
}

func writeResp(w http.ResponseWriter, logger *slog.Logger, body map[string]any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to write JSON response", slog.Any("err", err))
	}
}
