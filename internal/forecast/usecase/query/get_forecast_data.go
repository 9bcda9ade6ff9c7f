package query

import (
	"fmt"
	"sort"

	"github.com/prognoza/forecast-platform/internal/forecast/domain"
)

// Accuracy bands shown on the dashboard.
const (
	AccuracyHigh   = "Высокая"
	AccuracyMedium = "Средняя"
	AccuracyLow    = "Низкая"
)

// AccuracyBand maps an item MAPE to its display band.
func AccuracyBand(mape float64) string {
	switch {
	case mape < 5:
		return AccuracyHigh
	case mape < 10:
		return AccuracyMedium
	default:
		return AccuracyLow
	}
}

// TrendPoint is one point of the dashboard trend chart
type TrendPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// TopProduct is one bar of the dashboard top-products widget
type TopProduct struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	ColorClass string  `json:"colorClass"`
	BarWidth   string  `json:"barWidth"`
}

// HistoryEntry is one row of the forecast history table
type HistoryEntry struct {
	Date     string  `json:"date"`
	Product  string  `json:"product"`
	Category string  `json:"category"`
	Forecast float64 `json:"forecast"`
	Accuracy string  `json:"accuracy"`
}

// ForecastData is the dashboard payload built from the latest run
type ForecastData struct {
	Trend struct {
		Points []TrendPoint `json:"points"`
	} `json:"trend"`
	TopProducts []TopProduct `json:"topProducts"`
	History     struct {
		Items []HistoryEntry `json:"items"`
		Total int            `json:"total"`
	} `json:"history"`
}

// GetForecastDataQuery represents the dashboard query
type GetForecastDataQuery struct {
	OrganizationID uint
}

// GetForecastDataHandler handles the dashboard query
type GetForecastDataHandler struct {
	runs  domain.PredictionRunRepository
	preds domain.PredictionRepository
}

// NewGetForecastDataHandler creates a new get forecast data handler
func NewGetForecastDataHandler(runs domain.PredictionRunRepository, preds domain.PredictionRepository) *GetForecastDataHandler {
	return &GetForecastDataHandler{runs: runs, preds: preds}
}

// Handle builds the dashboard payload from the organization's latest
// run. An organization without runs gets an empty payload, not an
// error.
func (h *GetForecastDataHandler) Handle(q GetForecastDataQuery) (*ForecastData, error) {
	data := &ForecastData{
		TopProducts: []TopProduct{},
	}
	data.Trend.Points = []TrendPoint{}
	data.History.Items = []HistoryEntry{}

	latest, err := h.runs.FindLatest(q.OrganizationID)
	if err != nil {
		// No runs yet.
		return data, nil
	}

	items, err := h.preds.FindByRun(latest.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prediction details: %w", err)
	}

	for _, item := range items {
		data.Trend.Points = append(data.Trend.Points, TrendPoint{
			Date:  item.PeriodStart.Format("2006-01-02"),
			Value: item.PredictedQuantity,
		})
		data.History.Items = append(data.History.Items, historyEntry(item))
	}
	data.History.Total = len(data.History.Items)

	sorted := make([]domain.HistoryItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PredictedQuantity > sorted[j].PredictedQuantity
	})

	colors := []string{"bg-green-500", "bg-yellow-500", "bg-red-500"}
	widths := []string{"80%", "60%", "40%"}
	for i, item := range sorted {
		if i == 3 {
			break
		}
		name := item.ProductName
		if name == "" {
			name = "Unknown"
		}
		data.TopProducts = append(data.TopProducts, TopProduct{
			Name:       name,
			Amount:     item.PredictedQuantity,
			ColorClass: colors[i%3],
			BarWidth:   widths[i%3],
		})
	}

	return data, nil
}

func historyEntry(item domain.HistoryItem) HistoryEntry {
	name := item.ProductName
	if name == "" {
		name = "Unknown"
	}
	category := item.ProductCategory
	if category == "" {
		category = "Общая"
	}
	mape := 0.0
	if item.ItemMAPE != nil {
		mape = *item.ItemMAPE
	}
	return HistoryEntry{
		Date:     fmt.Sprintf("%s - %s", item.PeriodStart.Format("2006-01-02"), item.PeriodEnd.Format("2006-01-02")),
		Product:  name,
		Category: category,
		Forecast: item.PredictedQuantity,
		Accuracy: AccuracyBand(mape),
	}
}
