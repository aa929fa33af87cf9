package handler

import (
	"encoding/json"
	"net/http"

	"digitcam/internal/dto"
	"digitcam/internal/logger"
	"digitcam/internal/service"
	"digitcam/internal/service/storage"
	"digitcam/internal/service/websocket"
)

// StartHandler handles POST /api/start and starts the periodic background capture.
func StartHandler(scheduler *service.Scheduler, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if !scheduler.StartBackground() {
			w.Write([]byte("Already running"))
			return
		}
		w.Write([]byte("Started"))
	}
}

// StopHandler handles POST /api/stop. At most one trigger already in flight
// can still follow; the producer exits at the end of its current sleep.
func StopHandler(scheduler *service.Scheduler, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		scheduler.StopBackground()
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("Stopped"))
	}
}

// StatusHandler reports scheduler counters and sink state. hub and buffer may be nil.
func StatusHandler(scheduler *service.Scheduler, hub *websocket.HubService, buffer *storage.BufferService,
	logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := scheduler.Stats()
		data := dto.StatusData{
			Running:            stats.Running,
			Regions:            stats.Regions,
			ForegroundAccepted: stats.ForegroundAccepted,
			ForegroundDropped:  stats.ForegroundDropped,
			BackgroundAccepted: stats.BackgroundAccepted,
			BackgroundDropped:  stats.BackgroundDropped,
			Passes:             stats.Passes,
			Failures:           stats.Failures,
		}
		if hub != nil {
			data.Viewers = hub.GetClientCount()
		}
		if buffer != nil {
			data.PendingHistory = buffer.Pending()
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logger.Error("Error encoding JSON response: %v", err)
		}
	}
}
