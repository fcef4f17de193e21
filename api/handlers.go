package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"rea_scraper/models"
)

const defaultRunsLimit = 20

// Router registers every route of the app.
func (a *App) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", a.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/runs", a.handleRuns).Methods(http.MethodGet)
	r.HandleFunc("/{category}/from-otodom-offer", a.handleFromOtodomOffer).Methods(http.MethodGet)
	return r
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleRuns(w http.ResponseWriter, r *http.Request) {
	if a.runs == nil {
		writeJSON(w, http.StatusOK, []models.RunRecord{})
		return
	}

	limit := defaultRunsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeMessage(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := a.runs.ListRuns(r.Context(), limit)
	if err != nil {
		log.Printf("API: list runs: %v", err)
		writeMessage(w, http.StatusInternalServerError, "An error occured while reading runs: "+err.Error())
		return
	}
	if runs == nil {
		runs = []models.RunRecord{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (a *App) handleFromOtodomOffer(w http.ResponseWriter, r *http.Request) {
	category := models.ParseCategory(mux.Vars(r)["category"])
	s, ok := a.scrapers[category]
	if !ok {
		writeMessage(w, http.StatusNotFound, "unknown category "+strings.ToLower(string(category)))
		return
	}

	offerURL := r.URL.Query().Get("url")
	if offerURL == "" {
		writeMessage(w, http.StatusBadRequest, "url query parameter is required")
		return
	}

	offer, err := s.ScrapeOffer(r.Context(), offerURL)
	if err != nil {
		log.Printf("API: scrape %s: %v", offerURL, err)
		writeMessage(w, http.StatusInternalServerError, "An error occured during the offer scraping: "+err.Error())
		return
	}

	features, err := offerFeatures(offer)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, features)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("API: encode response: %v", err)
	}
}
