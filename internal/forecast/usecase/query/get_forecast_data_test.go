package query

import (
	"errors"
	"testing"
	"time"

	"github.com/prognoza/forecast-platform/internal/forecast/domain"
)

type fakeRunRepo struct {
	latest    *domain.PredictionRun
	latestErr error
}

func (r *fakeRunRepo) Create(run *domain.PredictionRun) error                 { return nil }
func (r *fakeRunRepo) FindByID(orgID, id uint) (*domain.PredictionRun, error) { return nil, nil }
func (r *fakeRunRepo) FindLatest(orgID uint) (*domain.PredictionRun, error) {
	return r.latest, r.latestErr
}
func (r *fakeRunRepo) FindAllByOrganization(orgID uint, limit, offset int) ([]domain.PredictionRun, error) {
	return nil, nil
}
func (r *fakeRunRepo) Count(orgID uint) (int64, error) { return 0, nil }

type fakePredictionRepo struct {
	items   []domain.HistoryItem
	history []domain.HistoryItem
	total   int64
}

func (r *fakePredictionRepo) CreateBatch(rows []domain.Prediction) error { return nil }
func (r *fakePredictionRepo) FindByRun(runID uint) ([]domain.HistoryItem, error) {
	return r.items, nil
}
func (r *fakePredictionRepo) FindByOrganization(orgID uint, search string, limit, offset int) ([]domain.HistoryItem, int64, error) {
	return r.history, r.total, nil
}

func mapePtr(v float64) *float64 { return &v }

func historyItem(name string, quantity float64, mape *float64) domain.HistoryItem {
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	return domain.HistoryItem{
		Prediction: domain.Prediction{
			PeriodStart:       start,
			PeriodEnd:         start.AddDate(0, 0, 7),
			PredictedQuantity: quantity,
			ItemMAPE:          mape,
		},
		ProductName: name,
	}
}

func TestAccuracyBand(t *testing.T) {
	tests := []struct {
		mape float64
		want string
	}{
		{0, AccuracyHigh},
		{4.99, AccuracyHigh},
		{5, AccuracyMedium},
		{9.99, AccuracyMedium},
		{10, AccuracyLow},
		{47, AccuracyLow},
	}

	for _, tt := range tests {
		if got := AccuracyBand(tt.mape); got != tt.want {
			t.Errorf("AccuracyBand(%v) = %q, want %q", tt.mape, got, tt.want)
		}
	}
}

func TestGetForecastDataNoRunsYieldsEmptyPayload(t *testing.T) {
	h := NewGetForecastDataHandler(&fakeRunRepo{latestErr: errors.New("record not found")}, &fakePredictionRepo{})

	data, err := h.Handle(GetForecastDataQuery{OrganizationID: 1})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if data.Trend.Points == nil || len(data.Trend.Points) != 0 {
		t.Errorf("expected empty trend slice, got %v", data.Trend.Points)
	}
	if data.TopProducts == nil || len(data.TopProducts) != 0 {
		t.Errorf("expected empty top products slice, got %v", data.TopProducts)
	}
	if data.History.Total != 0 {
		t.Errorf("expected empty history, got total %d", data.History.Total)
	}
}

func TestGetForecastDataTopProductsAndHistory(t *testing.T) {
	runs := &fakeRunRepo{latest: &domain.PredictionRun{ID: 9}}
	preds := &fakePredictionRepo{items: []domain.HistoryItem{
		historyItem("Хлеб", 5, mapePtr(12)),
		historyItem("Молоко 3.2%", 20, mapePtr(3)),
		historyItem("Сыр", 12, mapePtr(7)),
		historyItem("", 8, nil),
	}}

	data, err := NewGetForecastDataHandler(runs, preds).Handle(GetForecastDataQuery{OrganizationID: 1})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if len(data.TopProducts) != 3 {
		t.Fatalf("expected top 3 products, got %d", len(data.TopProducts))
	}
	if data.TopProducts[0].Name != "Молоко 3.2%" || data.TopProducts[0].Amount != 20 {
		t.Errorf("unexpected leader: %+v", data.TopProducts[0])
	}
	if data.TopProducts[0].ColorClass != "bg-green-500" || data.TopProducts[0].BarWidth != "80%" {
		t.Errorf("unexpected leader styling: %+v", data.TopProducts[0])
	}
	if data.TopProducts[2].ColorClass != "bg-red-500" || data.TopProducts[2].BarWidth != "40%" {
		t.Errorf("unexpected third styling: %+v", data.TopProducts[2])
	}

	if data.History.Total != 4 {
		t.Errorf("expected 4 history rows, got %d", data.History.Total)
	}

	byProduct := map[string]HistoryEntry{}
	for _, entry := range data.History.Items {
		byProduct[entry.Product] = entry
	}

	if byProduct["Молоко 3.2%"].Accuracy != AccuracyHigh {
		t.Errorf("expected high accuracy for MAPE 3, got %q", byProduct["Молоко 3.2%"].Accuracy)
	}
	if byProduct["Хлеб"].Accuracy != AccuracyLow {
		t.Errorf("expected low accuracy for MAPE 12, got %q", byProduct["Хлеб"].Accuracy)
	}

	unknown, ok := byProduct["Unknown"]
	if !ok {
		t.Fatal("expected fallback product name for row without a catalog match")
	}
	if unknown.Category != "Общая" {
		t.Errorf("expected fallback category, got %q", unknown.Category)
	}
	if unknown.Accuracy != AccuracyHigh {
		t.Errorf("missing MAPE must band as high, got %q", unknown.Accuracy)
	}
	if unknown.Date != "2025-03-10 - 2025-03-17" {
		t.Errorf("unexpected history date range %q", unknown.Date)
	}

	if len(data.Trend.Points) != 4 {
		t.Errorf("expected one trend point per row, got %d", len(data.Trend.Points))
	}
}

func TestGetForecastHistoryPaging(t *testing.T) {
	preds := &fakePredictionRepo{
		history: []domain.HistoryItem{historyItem("Молоко 3.2%", 10, mapePtr(2))},
		total:   41,
	}

	h := NewGetForecastHistoryHandler(preds)

	result, err := h.Handle(GetForecastHistoryQuery{OrganizationID: 1, Page: 0, Limit: 0})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if result.Total != 41 {
		t.Errorf("expected total 41, got %d", result.Total)
	}
	if len(result.Items) != 1 {
		t.Errorf("expected one page item, got %d", len(result.Items))
	}
}
