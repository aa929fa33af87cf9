package route

import (
	"net/http"
	"os"
	"path/filepath"

	"digitcam/internal/config"
	"digitcam/internal/handler"
	"digitcam/internal/logger"
	"digitcam/internal/middleware"
	"digitcam/internal/repository"
	"digitcam/internal/service"
	"digitcam/internal/service/storage"
	"digitcam/internal/service/websocket"
)

// staticHandler serves files from dir. The root path prefers a pre-compressed
// index.html.gz, as produced by the web UI build.
func staticHandler(dir string) http.HandlerFunc {
	files := http.FileServer(http.Dir(dir))
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			gz := filepath.Join(dir, "index.html.gz")
			if _, err := os.Stat(gz); err == nil {
				w.Header().Set("Content-Type", "text/html")
				w.Header().Set("Content-Encoding", "gzip")
				http.ServeFile(w, r, gz)
				return
			}
		}
		files.ServeHTTP(w, r)
	}
}

// SetupRoutes registers API endpoints, service log endpoints and static file
// serving, and wraps the mux with the auth and CORS middleware.
func SetupRoutes(cfg *config.Config, logger *logger.Logger, scheduler *service.Scheduler,
	regions *service.RegionSet, recorder *service.ResultRecorder, resultRepo repository.ResultRepository,
	hub *websocket.HubService, buffer *storage.BufferService) http.Handler {
	mux := http.NewServeMux()

	// Classification
	mux.HandleFunc("/api/inference", handler.InferenceHandler(scheduler, cfg.RequestTimeout, logger))
	mux.HandleFunc("/api/image", handler.ImageHandler(scheduler, cfg.RequestTimeout, logger))
	mux.HandleFunc("/api/start", handler.StartHandler(scheduler, logger))
	mux.HandleFunc("/api/stop", handler.StopHandler(scheduler, logger))
	mux.HandleFunc("/api/status", handler.StatusHandler(scheduler, hub, buffer, logger))

	// Regions
	mux.HandleFunc("/api/upload-config", handler.UploadConfigHandler(regions, logger))
	mux.HandleFunc("/api/config", handler.GetConfigHandler(regions, logger))

	// Results
	mux.HandleFunc("/api/log", handler.ResultLogHandler(recorder, cfg.ResultLogPath, logger))
	if resultRepo != nil {
		mux.HandleFunc("/api/results", handler.GetResultsHandler(resultRepo, logger))
	}
	if hub != nil {
		mux.HandleFunc("/api/view", handler.ViewWebsocketHandler(hub, logger))
	}

	// Log endpoints
	for _, name := range []string{"info", "warning", "error"} {
		file := name + ".log"
		mux.HandleFunc("/logs/"+name, handler.ShowLogsHandler(cfg.LogDirectory, file))
		mux.HandleFunc("/logs/"+name+"/clear", handler.ClearLogsHandler(logger, file))
	}

	// Auth endpoints
	mux.HandleFunc("/auth/login", handler.LoginHandler(cfg.Password, logger))
	mux.HandleFunc("/auth/logout", handler.LogoutHandler)

	mux.HandleFunc("/", staticHandler(cfg.StaticDir))

	return middleware.CORSMiddleware(middleware.AuthMiddleware(cfg.Password, mux))
}
