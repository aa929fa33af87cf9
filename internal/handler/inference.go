package handler

import (
	"net/http"
	"strconv"
	"time"

	"digitcam/internal/logger"
	"digitcam/internal/service"
)

// InferenceHandler handles GET /api/inference: one foreground classification
// pass. The body is one 784-byte canvas per region followed by the raw frame;
// the digits are returned in the X-Result header.
func InferenceHandler(scheduler *service.Scheduler, timeout time.Duration, logger *logger.Logger) http.HandlerFunc {
	return foregroundHandler(scheduler, timeout, logger, false)
}

// ImageHandler handles GET /api/image: the same body as /api/inference
// without running the classifier. Previews are not logged.
func ImageHandler(scheduler *service.Scheduler, timeout time.Duration, logger *logger.Logger) http.HandlerFunc {
	return foregroundHandler(scheduler, timeout, logger, true)
}

func foregroundHandler(scheduler *service.Scheduler, timeout time.Duration, logger *logger.Logger, preview bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		req := service.NewRequest(preview)
		if !scheduler.Submit(req) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Busy", http.StatusServiceUnavailable)
			return
		}

		timer := time.NewTimer(timeout)
		defer timer.Stop()

		var reply service.Reply
		select {
		case reply = <-req.Done():
		case <-r.Context().Done():
			req.Abandon()
			logger.Warning("Client left before request %s was served", req.ID)
			return
		case <-timer.C:
			req.Abandon()
			logger.Warning("Request %s timed out after %s", req.ID, timeout)
			http.Error(w, "Timed out", http.StatusGatewayTimeout)
			return
		}

		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Length", strconv.Itoa(len(reply.Body)))
		w.Header().Set("X-Request-ID", req.ID)
		if !preview {
			w.Header().Set("X-Result", reply.Result)
		}

		if reply.Err != nil {
			logger.Error("Request %s failed: %v", req.ID, reply.Err)
			w.WriteHeader(http.StatusInternalServerError)
		}
		if _, err := w.Write(reply.Body); err != nil {
			logger.Error("Error writing response for request %s: %v", req.ID, err)
		}
	}
}
