package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"digitcam/internal/logger"
	"digitcam/internal/model"
	"digitcam/internal/service"
	"digitcam/internal/service/storage"
)

// maxConfigSize bounds an uploaded rectangle document.
const maxConfigSize = 1 << 20

// UploadConfigHandler handles POST /api/upload-config. The body is a
// {"rectangles": [...]} document; it is validated, persisted and then
// becomes the active configuration for the next pass.
func UploadConfigHandler(regions *service.RegionSet, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		data, err := io.ReadAll(io.LimitReader(r.Body, maxConfigSize))
		if err != nil {
			logger.Error("Error reading config upload: %v", err)
			http.Error(w, "Error reading body", http.StatusBadRequest)
			return
		}
		logger.Info("Received %d bytes of config data", len(data))

		cfg, err := storage.Decode(data)
		if err != nil {
			logger.Warning("Rejected config upload: %v", err)
			http.Error(w, "Invalid config: "+err.Error(), http.StatusBadRequest)
			return
		}

		if err := regions.Update(cfg); err != nil {
			if errors.Is(err, model.ErrInvalidRectangle) {
				logger.Warning("Rejected config upload: %v", err)
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			logger.Error("Failed to apply config: %v", err)
			http.Error(w, "Failed to save config", http.StatusInternalServerError)
			return
		}

		logger.Info("Config saved with %d rectangles", len(cfg))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("Config saved"))
	}
}

// GetConfigHandler handles GET /api/config and returns the active rectangles.
func GetConfigHandler(regions *service.RegionSet, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		doc := model.ConfigDocument{Rectangles: regions.Current()}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(doc); err != nil {
			logger.Error("Error encoding JSON response: %v", err)
		}
	}
}
