package command

import (
	"errors"
	"testing"

	"github.com/prognoza/forecast-platform/internal/inventory/domain"
)

type fakeProductRepo struct {
	products map[uint]*domain.Product
	byCode   map[string]*domain.Product
}

func newFakeProductRepo(products ...*domain.Product) *fakeProductRepo {
	r := &fakeProductRepo{
		products: make(map[uint]*domain.Product),
		byCode:   make(map[string]*domain.Product),
	}
	for _, p := range products {
		r.products[p.ID] = p
		r.byCode[p.Code] = p
	}
	return r
}

func (r *fakeProductRepo) Create(product *domain.Product) error {
	product.ID = uint(len(r.products) + 1)
	r.products[product.ID] = product
	r.byCode[product.Code] = product
	return nil
}

func (r *fakeProductRepo) FindByID(orgID, id uint) (*domain.Product, error) {
	if p, ok := r.products[id]; ok && p.OrganizationID == orgID {
		return p, nil
	}
	return nil, errors.New("record not found")
}

func (r *fakeProductRepo) FindByCode(orgID uint, code string) (*domain.Product, error) {
	if p, ok := r.byCode[code]; ok && p.OrganizationID == orgID {
		return p, nil
	}
	return nil, errors.New("record not found")
}

func (r *fakeProductRepo) FindAll(orgID uint, limit, offset int) ([]domain.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) Update(product *domain.Product) error { return nil }

func (r *fakeProductRepo) UpdateQuantity(orgID, id uint, quantity int) (*domain.Product, error) {
	p, err := r.FindByID(orgID, id)
	if err != nil {
		return nil, err
	}
	updated := *p
	updated.Quantity = quantity
	return &updated, nil
}

func (r *fakeProductRepo) Delete(orgID, id uint) error { return nil }

func (r *fakeProductRepo) Count(orgID uint) (int64, error) {
	return int64(len(r.products)), nil
}

type fakeOperationRepo struct {
	created []*domain.Operation
	err     error
}

func (r *fakeOperationRepo) Create(op *domain.Operation) error {
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, op)
	return nil
}
func (r *fakeOperationRepo) CreateBatch(ops []domain.Operation) error { return nil }
func (r *fakeOperationRepo) FindAllByOrganization(orgID uint) ([]domain.Operation, error) {
	return nil, nil
}
func (r *fakeOperationRepo) FindByProduct(orgID, productID uint, limit, offset int) ([]domain.Operation, error) {
	return nil, nil
}
func (r *fakeOperationRepo) Count(orgID uint) (int64, error) { return 0, nil }

func TestCreateProductValidation(t *testing.T) {
	h := NewCreateProductHandler(newFakeProductRepo())

	tests := []struct {
		name string
		cmd  CreateProductCommand
	}{
		{"missing organization", CreateProductCommand{Name: "Молоко", Code: "MLK-1"}},
		{"missing name", CreateProductCommand{OrganizationID: 1, Code: "MLK-1"}},
		{"missing code", CreateProductCommand{OrganizationID: 1, Name: "Молоко"}},
		{"negative price", CreateProductCommand{OrganizationID: 1, Name: "Молоко", Code: "MLK-1", Price: -1}},
		{"negative quantity", CreateProductCommand{OrganizationID: 1, Name: "Молоко", Code: "MLK-1", Quantity: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := h.Handle(tt.cmd); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCreateProductDefaultsCategoryAndRejectsDuplicateCode(t *testing.T) {
	repo := newFakeProductRepo()
	h := NewCreateProductHandler(repo)

	product, err := h.Handle(CreateProductCommand{
		OrganizationID: 1,
		Name:           "Молоко 3.2%",
		Code:           "MLK-1",
		Price:          89.90,
		Quantity:       10,
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if product.Category != "Прочее" {
		t.Errorf("expected default category, got %q", product.Category)
	}

	if _, err := h.Handle(CreateProductCommand{
		OrganizationID: 1,
		Name:           "Другое молоко",
		Code:           "MLK-1",
	}); err == nil {
		t.Error("expected duplicate code rejection")
	}
}

func TestRecordOperationRequiresKnownProduct(t *testing.T) {
	operations := &fakeOperationRepo{}
	h := NewRecordOperationHandler(newFakeProductRepo(), operations)

	_, err := h.Handle(RecordOperationCommand{
		OrganizationID: 1,
		ProductID:      99,
		Kind:           domain.OperationSale,
		Quantity:       5,
	})
	if err == nil {
		t.Error("expected error for unknown product")
	}
	if len(operations.created) != 0 {
		t.Error("no operation must be recorded for unknown products")
	}
}

func TestRecordOperationDefaultsDate(t *testing.T) {
	product := &domain.Product{ID: 1, OrganizationID: 1, Name: "Молоко", Code: "MLK-1"}
	operations := &fakeOperationRepo{}
	h := NewRecordOperationHandler(newFakeProductRepo(product), operations)

	op, err := h.Handle(RecordOperationCommand{
		OrganizationID: 1,
		ProductID:      1,
		Kind:           domain.OperationSupply,
		Quantity:       7,
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if op.Date == nil {
		t.Error("expected missing date to default to now")
	}
	if len(operations.created) != 1 {
		t.Errorf("expected one recorded operation, got %d", len(operations.created))
	}
}

func TestRecordOperationRejectsUnknownKind(t *testing.T) {
	product := &domain.Product{ID: 1, OrganizationID: 1, Name: "Молоко", Code: "MLK-1"}
	h := NewRecordOperationHandler(newFakeProductRepo(product), &fakeOperationRepo{})

	if _, err := h.Handle(RecordOperationCommand{
		OrganizationID: 1,
		ProductID:      1,
		Kind:           "transfer",
		Quantity:       1,
	}); err == nil {
		t.Error("expected error for unknown operation kind")
	}
}

func TestUpdateQuantityRecordsDelta(t *testing.T) {
	product := &domain.Product{ID: 1, OrganizationID: 1, Name: "Молоко", Code: "MLK-1", Quantity: 10}
	operations := &fakeOperationRepo{}
	h := NewUpdateQuantityHandler(newFakeProductRepo(product), operations)

	updated, err := h.Handle(UpdateQuantityCommand{
		OrganizationID: 1,
		ProductID:      1,
		Quantity:       4,
		Kind:           domain.OperationSale,
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if updated.Quantity != 4 {
		t.Errorf("expected quantity 4, got %d", updated.Quantity)
	}
	if len(operations.created) != 1 {
		t.Fatalf("expected one history row, got %d", len(operations.created))
	}
	if operations.created[0].Quantity != 6 {
		t.Errorf("expected recorded delta 6, got %v", operations.created[0].Quantity)
	}
}

func TestUpdateQuantityHistoryFailureKeepsStockChange(t *testing.T) {
	product := &domain.Product{ID: 1, OrganizationID: 1, Name: "Молоко", Code: "MLK-1", Quantity: 10}
	operations := &fakeOperationRepo{err: errors.New("db down")}
	h := NewUpdateQuantityHandler(newFakeProductRepo(product), operations)

	updated, err := h.Handle(UpdateQuantityCommand{
		OrganizationID: 1,
		ProductID:      1,
		Quantity:       12,
		Kind:           domain.OperationSupply,
	})

	if err == nil {
		t.Error("expected history failure to be reported")
	}
	if updated == nil || updated.Quantity != 12 {
		t.Errorf("expected the stock change to survive, got %+v", updated)
	}
}
