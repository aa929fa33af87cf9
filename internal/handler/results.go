package handler

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"

	"digitcam/internal/dto"
	"digitcam/internal/logger"
	"digitcam/internal/model"
	"digitcam/internal/repository"
	"digitcam/internal/service"
)

// ResultLogHandler serves the text result log on GET and truncates it,
// together with the stored history, on DELETE.
func ResultLogHandler(recorder *service.ResultRecorder, logPath string, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if _, err := os.Stat(logPath); os.IsNotExist(err) {
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				return
			}
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Cache-Control", "no-cache")
			http.ServeFile(w, r, logPath)

		case http.MethodDelete:
			if err := recorder.Reset(); err != nil {
				logger.Error("Failed to open log: %v", err)
				http.Error(w, "Failed to reset log", http.StatusInternalServerError)
				return
			}
			logger.Info("Result log reset")
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Write([]byte("Log reset"))

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// GetResultsHandler returns a page of stored results, newest first.
// Query parameters: page, limit, source (foreground|background).
func GetResultsHandler(repo repository.ResultRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		q := r.URL.Query()
		page := atoiDefault(q.Get("page"), 1)
		limit := atoiDefault(q.Get("limit"), 50)

		filter := &model.ResultFilter{
			Source: model.Source(q.Get("source")),
			Limit:  limit,
			Offset: (page - 1) * limit,
		}

		results, err := repo.GetAll(filter)
		if err != nil {
			logger.Error("Error querying results from database: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		totalCount, err := repo.GetTotalCount(filter)
		if err != nil {
			logger.Error("Error counting results: %v", err)
			totalCount = len(results)
		}

		if results == nil {
			results = []model.LogEntry{}
		}
		data := dto.ResultsData{
			Results:     results,
			Length:      totalCount,
			TotalPages:  (totalCount + limit - 1) / limit,
			CurrentPage: page,
			Limit:       limit,
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logger.Error("Error encoding JSON response: %v", err)
		}
	}
}

// atoiDefault converts string to int or returns a default when conversion fails or value <= 0.
func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}
