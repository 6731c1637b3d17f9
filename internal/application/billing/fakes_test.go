package billing_test

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/skladpro/warehouse-api/internal/application/billing"
	"github.com/skladpro/warehouse-api/internal/domain"
	"github.com/skladpro/warehouse-api/internal/domain/entity"
	"github.com/skladpro/warehouse-api/internal/domain/repository"
)

// ─────────────────────────────────────────────────────────────────────────────
// In-memory store with snapshot/rollback, standing in for PostgreSQL. The tx
// runner restores the snapshot when the callback fails, which is what the
// all-or-nothing assertions below lean on.
// ─────────────────────────────────────────────────────────────────────────────

type memStore struct {
	products  map[string]*entity.Product
	movements []*entity.StockMovement
	invoices  map[string]*entity.Invoice
	items     []*entity.InvoiceItem
	users     map[string]*entity.User
}

func newMemStore() *memStore {
	return &memStore{
		products: map[string]*entity.Product{},
		invoices: map[string]*entity.Invoice{},
		users:    map[string]*entity.User{},
	}
}

func (s *memStore) clone() *memStore {
	c := newMemStore()
	for id, p := range s.products {
		cp := *p
		c.products[id] = &cp
	}
	for _, m := range s.movements {
		cm := *m
		c.movements = append(c.movements, &cm)
	}
	for id, inv := range s.invoices {
		ci := *inv
		c.invoices[id] = &ci
	}
	for _, it := range s.items {
		ci := *it
		c.items = append(c.items, &ci)
	}
	for id, u := range s.users {
		cu := *u
		c.users[id] = &cu
	}
	return c
}

func (s *memStore) restore(snap *memStore) {
	s.products = snap.products
	s.movements = snap.movements
	s.invoices = snap.invoices
	s.items = snap.items
	s.users = snap.users
}

// fakeTxRunner implements billing.BillingTxRunner over a memStore. conflicts
// makes the first N commits fail with a concurrency conflict, to exercise the
// retry policy.
type fakeTxRunner struct {
	store     *memStore
	conflicts int
}

func (r *fakeTxRunner) RunBilling(_ context.Context, fn func(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	snap := r.store.clone()
	err := fn(&fakeMovementRepo{store: r.store}, &fakeProductRepo{store: r.store}, &fakeInvoiceRepo{store: r.store})
	if err == nil && r.conflicts > 0 {
		r.conflicts--
		err = domain.ErrConcurrencyConflict
	}
	if err != nil {
		r.store.restore(snap)
	}
	return err
}

// ── Repositories ─────────────────────────────────────────────────────────────

type fakeProductRepo struct{ store *memStore }

func (r *fakeProductRepo) Create(p *entity.Product) error {
	for _, existing := range r.store.products {
		if existing.SKU == p.SKU {
			return domain.ErrDuplicateSKU
		}
	}
	cp := *p
	r.store.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.store.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) GetBySKU(sku string) (*entity.Product, error) {
	for _, p := range r.store.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	return r.GetByID(id)
}

func (r *fakeProductRepo) List(repository.ProductFilter) ([]*entity.Product, error) { return nil, nil }
func (r *fakeProductRepo) Count(repository.ProductFilter) (int, error)              { return 0, nil }
func (r *fakeProductRepo) TotalValue(repository.ProductFilter) (decimal.Decimal, error) {
	return decimal.Zero, nil
}
func (r *fakeProductRepo) Search(string, int) ([]*entity.Product, error) { return nil, nil }

func (r *fakeProductRepo) Update(p *entity.Product) error {
	if _, ok := r.store.products[p.ID]; !ok {
		return domain.ErrProductNotFound
	}
	cp := *p
	r.store.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) UpdateQuantity(id string, quantity int) error {
	p, ok := r.store.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Quantity = quantity
	return nil
}

func (r *fakeProductRepo) Delete(id string) error {
	// Mirrors the schema: invoice items pin their product (RESTRICT), the
	// movement history follows it out (CASCADE).
	for _, it := range r.store.items {
		if it.ProductID == id {
			return domain.ErrReferencedByInvoice
		}
	}
	delete(r.store.products, id)
	kept := r.store.movements[:0]
	for _, m := range r.store.movements {
		if m.ProductID != id {
			kept = append(kept, m)
		}
	}
	r.store.movements = kept
	return nil
}

type fakeMovementRepo struct{ store *memStore }

func (r *fakeMovementRepo) Create(m *entity.StockMovement) error {
	cm := *m
	r.store.movements = append(r.store.movements, &cm)
	return nil
}

func (r *fakeMovementRepo) ListByProduct(productID string, limit int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for i := len(r.store.movements) - 1; i >= 0 && len(out) < limit; i-- {
		if r.store.movements[i].ProductID == productID {
			cm := *r.store.movements[i]
			out = append(out, &cm)
		}
	}
	return out, nil
}

type fakeInvoiceRepo struct{ store *memStore }

func (r *fakeInvoiceRepo) Create(inv *entity.Invoice) error {
	for _, existing := range r.store.invoices {
		if existing.Number == inv.Number {
			return domain.ErrDuplicateInvoiceNumber
		}
	}
	ci := *inv
	r.store.invoices[inv.ID] = &ci
	return nil
}

func (r *fakeInvoiceRepo) CreateItem(item *entity.InvoiceItem) error {
	ci := *item
	r.store.items = append(r.store.items, &ci)
	return nil
}

func (r *fakeInvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	inv, ok := r.store.invoices[id]
	if !ok {
		return nil, nil
	}
	ci := *inv
	return &ci, nil
}

func (r *fakeInvoiceRepo) List(limit, offset int) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, inv := range r.store.invoices {
		ci := *inv
		out = append(out, &ci)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeInvoiceRepo) Count() (int, error) {
	return len(r.store.invoices), nil
}

func (r *fakeInvoiceRepo) ItemsByInvoice(invoiceID string) ([]*entity.InvoiceItem, error) {
	var out []*entity.InvoiceItem
	for _, it := range r.store.items {
		if it.InvoiceID == invoiceID {
			ci := *it
			out = append(out, &ci)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeInvoiceRepo) LastNumberWithPrefix(prefix string) (string, error) {
	last := ""
	for _, inv := range r.store.invoices {
		if strings.HasPrefix(inv.Number, prefix) && inv.Number > last {
			last = inv.Number
		}
	}
	return last, nil
}

func (r *fakeInvoiceRepo) UpdatePDFPath(id, path string) error {
	inv, ok := r.store.invoices[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.PDFPath = path
	return nil
}

type fakeUserRepo struct{ store *memStore }

func (r *fakeUserRepo) Create(u *entity.User) error {
	cu := *u
	r.store.users[u.ID] = &cu
	return nil
}

func (r *fakeUserRepo) GetByID(id string) (*entity.User, error) {
	u, ok := r.store.users[id]
	if !ok {
		return nil, nil
	}
	cu := *u
	return &cu, nil
}

func (r *fakeUserRepo) GetByUsername(username string) (*entity.User, error) {
	for _, u := range r.store.users {
		if u.Username == username {
			cu := *u
			return &cu, nil
		}
	}
	return nil, nil
}

// ── Renderer and artifact store ──────────────────────────────────────────────

// fakeRenderer records the last document it saw and can be told to fail.
type fakeRenderer struct {
	fail    bool
	lastDoc *billing.Document
}

func (r *fakeRenderer) Render(_ context.Context, doc billing.Document) ([]byte, error) {
	if r.fail {
		return nil, errors.New("render exploded")
	}
	d := doc
	r.lastDoc = &d
	return []byte("%PDF-fake"), nil
}

type fakeArtifacts struct {
	saved map[string][]byte
}

func (a *fakeArtifacts) Save(filename string, data []byte) (string, error) {
	if a.saved == nil {
		a.saved = map[string][]byte{}
	}
	path := "invoices/" + filename
	a.saved[path] = data
	return path, nil
}

func (a *fakeArtifacts) Open(path string) ([]byte, error) {
	data, ok := a.saved[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}
