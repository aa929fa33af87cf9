// StatusData reports scheduler and sink state.
package dto

type StatusData struct {
	Running            bool   `json:"running"`
	Regions            int    `json:"regions"`
	ForegroundAccepted uint64 `json:"foregroundAccepted"`
	ForegroundDropped  uint64 `json:"foregroundDropped"`
	BackgroundAccepted uint64 `json:"backgroundAccepted"`
	BackgroundDropped  uint64 `json:"backgroundDropped"`
	Passes             uint64 `json:"passes"`
	Failures           uint64 `json:"failures"`
	Viewers            int    `json:"viewers"`
	PendingHistory     int    `json:"pendingHistory"`
}
