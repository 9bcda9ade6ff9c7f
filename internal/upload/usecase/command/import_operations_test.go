package command

import (
	"strings"
	"testing"

	inventory "github.com/prognoza/forecast-platform/internal/inventory/domain"
)

type fakeProductRepo struct {
	products []inventory.Product
	nextID   uint
}

func (r *fakeProductRepo) Create(product *inventory.Product) error {
	r.nextID++
	product.ID = r.nextID
	r.products = append(r.products, *product)
	return nil
}

func (r *fakeProductRepo) FindByID(orgID, id uint) (*inventory.Product, error) { return nil, nil }
func (r *fakeProductRepo) FindByCode(orgID uint, code string) (*inventory.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) FindAll(orgID uint, limit, offset int) ([]inventory.Product, error) {
	if offset >= len(r.products) {
		return nil, nil
	}
	end := offset + limit
	if end > len(r.products) {
		end = len(r.products)
	}
	return r.products[offset:end], nil
}

func (r *fakeProductRepo) Update(product *inventory.Product) error { return nil }
func (r *fakeProductRepo) UpdateQuantity(orgID, id uint, quantity int) (*inventory.Product, error) {
	return nil, nil
}
func (r *fakeProductRepo) Delete(orgID, id uint) error { return nil }
func (r *fakeProductRepo) Count(orgID uint) (int64, error) {
	return int64(len(r.products)), nil
}

type fakeOperationRepo struct {
	batches [][]inventory.Operation
}

func (r *fakeOperationRepo) Create(op *inventory.Operation) error { return nil }
func (r *fakeOperationRepo) CreateBatch(ops []inventory.Operation) error {
	r.batches = append(r.batches, ops)
	return nil
}
func (r *fakeOperationRepo) FindAllByOrganization(orgID uint) ([]inventory.Operation, error) {
	return nil, nil
}
func (r *fakeOperationRepo) FindByProduct(orgID, productID uint, limit, offset int) ([]inventory.Operation, error) {
	return nil, nil
}
func (r *fakeOperationRepo) Count(orgID uint) (int64, error) { return 0, nil }

func TestImportMatchesExistingProductsByCodeAndName(t *testing.T) {
	products := &fakeProductRepo{
		products: []inventory.Product{
			{ID: 1, Name: "Молоко 3.2%", Code: "MLK-1"},
			{ID: 2, Name: "Хлеб", Code: "BRD-1"},
		},
		nextID: 2,
	}
	operations := &fakeOperationRepo{}

	csvData := strings.Join([]string{
		"Номенклатура,Код,Количество,Тип",
		"что угодно,mlk-1,5,Продажа",
		"хлеб,,3,Поставка",
	}, "\n")

	h := NewImportOperationsHandler(products, operations)
	result, err := h.Handle(ImportOperationsCommand{
		OrganizationID: 1,
		Filename:       "operations.csv",
		File:           strings.NewReader(csvData),
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if result.Imported != 2 || result.Skipped != 0 || result.Created != 0 {
		t.Errorf("unexpected result: %+v", result)
	}

	if len(operations.batches) != 1 {
		t.Fatalf("expected one operation batch, got %d", len(operations.batches))
	}
	batch := operations.batches[0]
	if batch[0].ProductID != 1 {
		t.Errorf("expected code match to product 1, got %d", batch[0].ProductID)
	}
	if batch[1].ProductID != 2 {
		t.Errorf("expected name match to product 2, got %d", batch[1].ProductID)
	}
	if batch[1].Kind != inventory.OperationSupply {
		t.Errorf("expected supply kind, got %q", batch[1].Kind)
	}
}

func TestImportCreatesMissingProducts(t *testing.T) {
	products := &fakeProductRepo{}
	operations := &fakeOperationRepo{}

	csvData := strings.Join([]string{
		"Номенклатура,Количество",
		"Новый товар,4",
		"Новый товар,2",
	}, "\n")

	h := NewImportOperationsHandler(products, operations)
	result, err := h.Handle(ImportOperationsCommand{
		OrganizationID: 1,
		Filename:       "operations.csv",
		File:           strings.NewReader(csvData),
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if result.Created != 1 {
		t.Errorf("expected one auto-created product, got %d", result.Created)
	}
	if result.Imported != 2 {
		t.Errorf("expected both rows imported, got %d", result.Imported)
	}

	created := products.products[0]
	if created.Name != "Новый товар" {
		t.Errorf("unexpected product name %q", created.Name)
	}
	if !strings.HasPrefix(created.Code, "IMP-") {
		t.Errorf("expected generated import code, got %q", created.Code)
	}
	if created.Category != "Прочее" {
		t.Errorf("expected default category, got %q", created.Category)
	}

	// Both rows must land on the same auto-created product.
	batch := operations.batches[0]
	if batch[0].ProductID != batch[1].ProductID {
		t.Errorf("rows resolved to different products: %d vs %d", batch[0].ProductID, batch[1].ProductID)
	}
}

func TestImportReportsRowErrorsAsSkipped(t *testing.T) {
	products := &fakeProductRepo{}
	operations := &fakeOperationRepo{}

	csvData := strings.Join([]string{
		"Номенклатура,Количество",
		"Молоко,abc",
		"Молоко,5",
	}, "\n")

	h := NewImportOperationsHandler(products, operations)
	result, err := h.Handle(ImportOperationsCommand{
		OrganizationID: 1,
		Filename:       "operations.csv",
		File:           strings.NewReader(csvData),
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if result.Imported != 1 || result.Skipped != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(result.Errors) != 1 || result.Errors[0].Message != "invalid quantity" {
		t.Errorf("unexpected errors: %+v", result.Errors)
	}
}

func TestImportDefaultsMissingDates(t *testing.T) {
	products := &fakeProductRepo{}
	operations := &fakeOperationRepo{}

	csvData := "Номенклатура,Количество\nМолоко,5\n"

	h := NewImportOperationsHandler(products, operations)
	if _, err := h.Handle(ImportOperationsCommand{
		OrganizationID: 1,
		Filename:       "operations.csv",
		File:           strings.NewReader(csvData),
	}); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	op := operations.batches[0][0]
	if op.Date == nil {
		t.Error("expected missing dates to default to the import time")
	}
}
