// ResultsData is a paginated response payload for the result history.
package dto

import "digitcam/internal/model"

type ResultsData struct {
	Results     []model.LogEntry `json:"results"`
	Length      int              `json:"length"`
	TotalPages  int              `json:"totalPages"`
	CurrentPage int              `json:"currentPage"`
	Limit       int              `json:"pageSize"`
}
