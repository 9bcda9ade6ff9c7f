package assembler

import (
	"strconv"
	"strings"
	"time"

	"github.com/prognoza/forecast-platform/internal/forecast/domain"
	inventory "github.com/prognoza/forecast-platform/internal/inventory/domain"
)

// Metrics is the first element of the ML response.
type Metrics struct {
	MAPE        float64
	MAE         float64
	DaysPredict int
}

// ParseResponse splits the raw ML response into run metrics and
// per-product prediction rows. The first element carries MAPE/MAE/
// DaysPredict; the rest echo the product name and code they were
// trained on. Predictions that cannot be matched to a known product
// are dropped.
func ParseResponse(raw []map[string]interface{}, products []inventory.Product, daysCount int, now time.Time) (Metrics, []domain.Prediction) {
	metrics := Metrics{DaysPredict: daysCount}
	if len(raw) > 0 {
		head := raw[0]
		metrics.MAPE = asFloat(head["MAPE"])
		metrics.MAE = asFloat(head["MAE"])
		if d := int(asFloat(head["DaysPredict"])); d > 0 {
			metrics.DaysPredict = d
		}
	}

	periodStart := now.Truncate(24 * time.Hour)
	periodEnd := periodStart.AddDate(0, 0, daysCount)

	var predictions []domain.Prediction
	for _, item := range rest(raw) {
		product := matchProduct(item, products)
		if product == nil {
			continue
		}

		itemMAPE := asFloat(item["MAPE"])
		itemMAE := asFloat(item["MAE"])
		quantity := asFloat(item[FieldQuantity])
		if quantity == 0 {
			quantity = asFloat(item["quantity"])
		}

		predictions = append(predictions, domain.Prediction{
			ProductID:         product.ID,
			PeriodStart:       periodStart,
			PeriodEnd:         periodEnd,
			PredictedQuantity: quantity,
			ItemMAPE:          &itemMAPE,
			ItemMAE:           &itemMAE,
		})
	}

	return metrics, predictions
}

func rest(raw []map[string]interface{}) []map[string]interface{} {
	if len(raw) < 2 {
		return nil
	}
	return raw[1:]
}

// matchProduct resolves a prediction to a catalog product by name,
// then code, then numeric id.
func matchProduct(item map[string]interface{}, products []inventory.Product) *inventory.Product {
	name := asString(item[FieldName])
	if name == "" {
		name = asString(item["product_name"])
	}
	code := asString(item[FieldCode])
	if code == "" {
		code = asString(item["product_code"])
	}
	// The service echoes whichever identifier it was trained on in
	// Номенклатура, so a numeric value there is an id too.
	id := uint(asFloat(item["product_id"]))
	if id == 0 {
		id = uint(asFloat(item[FieldName]))
	}

	for i := range products {
		if name != "" && products[i].Name == name {
			return &products[i]
		}
	}
	for i := range products {
		if code != "" && products[i].Code == code {
			return &products[i]
		}
	}
	if id != 0 {
		for i := range products {
			if products[i].ID == id {
				return &products[i]
			}
		}
	}
	return nil
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		// The service reports MAPE as a percentage string ("5%").
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(n), "%"), 64)
		if err == nil {
			return f
		}
	}
	return 0
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}
