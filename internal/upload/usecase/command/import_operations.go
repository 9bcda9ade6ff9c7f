package command

import (
	"fmt"
	"io"
	"strings"
	"time"

	inventory "github.com/prognoza/forecast-platform/internal/inventory/domain"
	"github.com/prognoza/forecast-platform/internal/upload/parser"
	"github.com/prognoza/forecast-platform/pkg/logger"
)

const productPageSize = 500

// ImportOperationsCommand represents a file import for an organization
type ImportOperationsCommand struct {
	OrganizationID uint
	Filename       string
	File           io.Reader
}

// ImportResult reports what happened to each uploaded row.
type ImportResult struct {
	Imported int               `json:"imported"`
	Skipped  int               `json:"skipped"`
	Created  int               `json:"created_products"`
	Errors   []parser.RowError `json:"errors,omitempty"`
}

// ImportOperationsHandler turns uploaded files into operation history.
// Products referenced by unknown names or codes are created on the fly
// so that imported history is immediately forecastable.
type ImportOperationsHandler struct {
	products   inventory.ProductRepository
	operations inventory.OperationRepository
}

// NewImportOperationsHandler creates a new import operations handler
func NewImportOperationsHandler(products inventory.ProductRepository, operations inventory.OperationRepository) *ImportOperationsHandler {
	return &ImportOperationsHandler{products: products, operations: operations}
}

// Handle executes the import
func (h *ImportOperationsHandler) Handle(cmd ImportOperationsCommand) (*ImportResult, error) {
	records, rowErrors, err := parser.Parse(cmd.File, cmd.Filename)
	if err != nil {
		return nil, err
	}

	byCode, byName, err := h.loadProducts(cmd.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	result := &ImportResult{Errors: rowErrors}
	var operations []inventory.Operation

	for _, record := range records {
		product, err := h.resolveProduct(cmd.OrganizationID, record, byCode, byName, result)
		if err != nil {
			result.Errors = append(result.Errors, parser.RowError{Line: record.Line, Message: err.Error()})
			continue
		}

		date := record.Date
		if date == nil {
			now := time.Now()
			date = &now
		}

		operations = append(operations, inventory.Operation{
			OrganizationID: cmd.OrganizationID,
			ProductID:      product.ID,
			Kind:           record.Kind,
			Quantity:       record.Quantity,
			Date:           date,
			CostPrice:      record.Price,
			CreatedAt:      time.Now(),
		})
	}

	if len(operations) > 0 {
		if err := h.operations.CreateBatch(operations); err != nil {
			return nil, fmt.Errorf("failed to save operations: %w", err)
		}
	}

	result.Imported = len(operations)
	result.Skipped = len(result.Errors)

	logger.Logger.Info().
		Uint("organization_id", cmd.OrganizationID).
		Str("filename", cmd.Filename).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Int("created_products", result.Created).
		Msg("File import finished")

	return result, nil
}

func (h *ImportOperationsHandler) resolveProduct(
	orgID uint,
	record parser.Record,
	byCode, byName map[string]*inventory.Product,
	result *ImportResult,
) (*inventory.Product, error) {
	if record.ProductCode != "" {
		if p, ok := byCode[strings.ToLower(record.ProductCode)]; ok {
			return p, nil
		}
	}
	if record.ProductName != "" {
		if p, ok := byName[strings.ToLower(record.ProductName)]; ok {
			return p, nil
		}
	}

	code := record.ProductCode
	if code == "" {
		code = fmt.Sprintf("IMP-%d", len(byCode)+1)
	}
	name := record.ProductName
	if name == "" {
		name = code
	}

	product := &inventory.Product{
		OrganizationID: orgID,
		Name:           name,
		Code:           code,
		Category:       "Прочее",
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := h.products.Create(product); err != nil {
		return nil, fmt.Errorf("failed to create product %q", name)
	}

	byCode[strings.ToLower(code)] = product
	byName[strings.ToLower(name)] = product
	result.Created++
	return product, nil
}

func (h *ImportOperationsHandler) loadProducts(orgID uint) (map[string]*inventory.Product, map[string]*inventory.Product, error) {
	byCode := make(map[string]*inventory.Product)
	byName := make(map[string]*inventory.Product)
	for offset := 0; ; offset += productPageSize {
		page, err := h.products.FindAll(orgID, productPageSize, offset)
		if err != nil {
			return nil, nil, err
		}
		for i := range page {
			p := page[i]
			byCode[strings.ToLower(p.Code)] = &p
			byName[strings.ToLower(p.Name)] = &p
		}
		if len(page) < productPageSize {
			return byCode, byName, nil
		}
	}
}
