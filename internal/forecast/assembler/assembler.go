package assembler

import (
	"fmt"
	"math"

	inventory "github.com/prognoza/forecast-platform/internal/inventory/domain"
)

// Event field names expected by the ML service. The service is trained
// on 1C-style exports, hence the Russian keys.
const (
	FieldPeriod   = "Период"
	FieldName     = "Номенклатура"
	FieldQuantity = "Количество"
	FieldCode     = "Код"
	FieldCategory = "ВидНоменклатуры"
	FieldType     = "Type"
	FieldAddress  = "Адрес_точки"
	FieldPrice    = "Цена"

	TypeSale   = "Продажа"
	TypeSupply = "Поставка"
)

const productPageSize = 500

// Assembler turns an organization's operation history into the ML
// request payload.
type Assembler struct {
	products   inventory.ProductRepository
	operations inventory.OperationRepository
}

// NewAssembler creates a new payload assembler
func NewAssembler(products inventory.ProductRepository, operations inventory.OperationRepository) *Assembler {
	return &Assembler{products: products, operations: operations}
}

// BuildPayload fetches the organization's history and returns the
// request array: a DaysCount header element followed by one event per
// operation, newest first.
func (a *Assembler) BuildPayload(orgID uint, daysCount int) ([]map[string]interface{}, error) {
	operations, err := a.operations.FindAllByOrganization(orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch operations: %w", err)
	}

	productMap, err := a.loadProducts(orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	payload := make([]map[string]interface{}, 0, len(operations)+1)
	payload = append(payload, map[string]interface{}{"DaysCount": daysCount})

	for i := range operations {
		payload = append(payload, a.buildEvent(&operations[i], productMap))
	}

	return payload, nil
}

func (a *Assembler) loadProducts(orgID uint) (map[uint]*inventory.Product, error) {
	productMap := make(map[uint]*inventory.Product)
	for offset := 0; ; offset += productPageSize {
		page, err := a.products.FindAll(orgID, productPageSize, offset)
		if err != nil {
			return nil, err
		}
		for i := range page {
			p := page[i]
			productMap[p.ID] = &p
		}
		if len(page) < productPageSize {
			return productMap, nil
		}
	}
}

func (a *Assembler) buildEvent(op *inventory.Operation, products map[uint]*inventory.Product) map[string]interface{} {
	opType := TypeSupply
	if op.IsSale() {
		opType = TypeSale
	}

	name := fmt.Sprintf("Product %d", op.ProductID)
	code := fmt.Sprintf("CODE-%d", op.ProductID)
	category := "Прочее"
	if p, ok := products[op.ProductID]; ok {
		name = p.Name
		code = p.Code
		if p.Category != "" {
			category = p.Category
		}
	}

	var period interface{}
	if op.Date != nil {
		period = op.Date.Format("2006-01-02")
	}

	event := map[string]interface{}{
		FieldPeriod:   period,
		FieldName:     name,
		FieldQuantity: RoundQuantity(op.Quantity),
		FieldCode:     code,
		FieldCategory: category,
		FieldType:     opType,
		FieldAddress:  fmt.Sprintf("Location %d", op.LocationID),
	}

	// Цена is present only on supply events; sales omit it entirely.
	if opType == TypeSupply {
		if op.CostPrice != nil {
			event[FieldPrice] = *op.CostPrice
		} else {
			event[FieldPrice] = nil
		}
	}

	return event
}

// RoundQuantity rounds half away from zero and floors at zero. The ML
// service expects whole non-negative counts.
func RoundQuantity(q float64) int {
	rounded := math.Round(q)
	if rounded < 0 {
		return 0
	}
	return int(rounded)
}
