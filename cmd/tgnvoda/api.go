package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"tgnvoda/internal/coordinator"
	"tgnvoda/internal/scrapers/tgnvoda"

	"github.com/NYTimes/gziphandler"
	"github.com/gorilla/mux"
)

type submitRequest struct {
	Readings map[string]float64 `json:"readings"`
}

type historyRequest struct {
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to"`
}

type api struct {
	coordinators map[string]*coordinator.Coordinator
}

func newAPI(coordinators map[string]*coordinator.Coordinator) http.Handler {
	a := api{coordinators: coordinators}

	router := mux.NewRouter()
	router.HandleFunc("/api/entries/{entry}/sensors", a.sensors).Methods(http.MethodGet)
	router.HandleFunc("/api/entries/{entry}/readings", a.submitReadings).Methods(http.MethodPost)
	router.HandleFunc("/api/entries/{entry}/history", a.history).Methods(http.MethodPost)
	return gziphandler.GzipHandler(router)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Warn("write response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// errorStatus maps portal errors onto http statuses for api callers.
func errorStatus(err error) int {
	var httpErr *tgnvoda.HttpError
	switch {
	case errors.Is(err, tgnvoda.ErrNoMatchingCounters):
		return http.StatusUnprocessableEntity
	case errors.Is(err, tgnvoda.ErrAuth), errors.Is(err, tgnvoda.ErrLoginRejected):
		return http.StatusUnauthorized
	case errors.As(err, &httpErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (a api) lookup(w http.ResponseWriter, r *http.Request) (*coordinator.Coordinator, bool) {
	c, ok := a.coordinators[mux.Vars(r)["entry"]]
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("unknown entry"))
		return nil, false
	}
	return c, true
}

func (a api) sensors(w http.ResponseWriter, r *http.Request) {
	c, ok := a.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.Sensors())
}

func (a api) submitReadings(w http.ResponseWriter, r *http.Request) {
	c, ok := a.lookup(w, r)
	if !ok {
		return
	}
	var req submitRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.Readings) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("readings must not be empty"))
		return
	}

	result, err := c.SubmitReadings(r.Context(), req.Readings)
	if err != nil {
		writeError(w, errorStatus(err), err)
		return
	}
	slog.Info("tgn_voda.submit_readings", "entry", c.EntryID, "success", result.Success, "applied", len(result.Applied))
	writeJSON(w, http.StatusOK, result)
}

func (a api) history(w http.ResponseWriter, r *http.Request) {
	c, ok := a.lookup(w, r)
	if !ok {
		return
	}
	var req historyRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.DateFrom == "" || req.DateTo == "" {
		writeError(w, http.StatusBadRequest, errors.New("date_from and date_to are required"))
		return
	}

	items, err := c.History(r.Context(), req.DateFrom, req.DateTo)
	if err != nil {
		writeError(w, errorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entry_id": c.EntryID, "items": items})
}
