package query

import (
	"fmt"

	"github.com/prognoza/forecast-platform/internal/forecast/domain"
)

// GetForecastHistoryQuery represents the paginated history query
type GetForecastHistoryQuery struct {
	OrganizationID uint
	Page           int
	Limit          int
	Search         string
}

// ForecastHistory is the paginated history payload
type ForecastHistory struct {
	Items []HistoryEntry `json:"items"`
	Total int64          `json:"total"`
}

// GetForecastHistoryHandler handles the history query
type GetForecastHistoryHandler struct {
	preds domain.PredictionRepository
}

// NewGetForecastHistoryHandler creates a new get forecast history handler
func NewGetForecastHistoryHandler(preds domain.PredictionRepository) *GetForecastHistoryHandler {
	return &GetForecastHistoryHandler{preds: preds}
}

// Handle returns one page of prediction history, newest first,
// optionally filtered by product name.
func (h *GetForecastHistoryHandler) Handle(q GetForecastHistoryQuery) (*ForecastHistory, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := (page - 1) * limit

	items, total, err := h.preds.FindByOrganization(q.OrganizationID, q.Search, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forecast history: %w", err)
	}

	history := &ForecastHistory{
		Items: make([]HistoryEntry, 0, len(items)),
		Total: total,
	}
	for _, item := range items {
		history.Items = append(history.Items, historyEntry(item))
	}

	return history, nil
}
