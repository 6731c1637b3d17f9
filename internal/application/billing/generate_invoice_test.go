package billing_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skladpro/warehouse-api/internal/application/billing"
	"github.com/skladpro/warehouse-api/internal/application/dto"
	"github.com/skladpro/warehouse-api/internal/application/inventory"
	"github.com/skladpro/warehouse-api/internal/domain"
	"github.com/skladpro/warehouse-api/internal/domain/entity"
)

type generatorFixture struct {
	store     *memStore
	runner    *fakeTxRunner
	renderer  *fakeRenderer
	artifacts *fakeArtifacts
	uc        *billing.GenerateInvoiceUseCase
}

func newGeneratorFixture() *generatorFixture {
	store := newMemStore()
	runner := &fakeTxRunner{store: store}
	renderer := &fakeRenderer{}
	artifacts := &fakeArtifacts{}
	ledger := inventory.NewLedger(nil, nil) // ApplyInTx only, no pool access
	uc := billing.NewGenerateInvoiceUseCase(
		runner, ledger,
		&fakeInvoiceRepo{store: store},
		&fakeProductRepo{store: store},
		&fakeUserRepo{store: store},
		renderer, artifacts,
	)
	return &generatorFixture{store: store, runner: runner, renderer: renderer, artifacts: artifacts, uc: uc}
}

func (f *generatorFixture) addProduct(id, sku, name string, price string, quantity int) {
	f.store.products[id] = &entity.Product{
		ID:       id,
		Name:     name,
		SKU:      sku,
		Price:    decimal.RequireFromString(price),
		Quantity: quantity,
	}
}

func todayNumber(seq int) string {
	return fmt.Sprintf("INV-%s-%04d", time.Now().Format("20060102"), seq)
}

func TestGenerate_WritesOffStockAndSnapshotsPrice(t *testing.T) {
	f := newGeneratorFixture()
	f.addProduct("p1", "A-1", "Болт М8", "125.50", 10)
	f.store.users["u1"] = &entity.User{ID: "u1", Username: "storekeeper", FullName: "Иван Петров"}

	resp, err := f.uc.Generate(context.Background(), "u1", []dto.InvoiceLineRequest{
		{ProductID: "p1", Quantity: 4},
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, todayNumber(1), resp.Number)
	assert.Equal(t, 6, f.store.products["p1"].Quantity)

	require.Len(t, f.store.movements, 1)
	mov := f.store.movements[0]
	assert.Equal(t, entity.MovementTypeOut, mov.Type)
	assert.Equal(t, 4, mov.Quantity)
	assert.Equal(t, "Списание по накладной №"+resp.Number, mov.Reason)
	assert.Equal(t, "u1", mov.CreatedBy)

	require.Len(t, resp.Items, 1)
	assert.True(t, resp.Items[0].Price.Equal(decimal.RequireFromString("125.50")))
	assert.True(t, resp.GrandTotal.Equal(decimal.RequireFromString("502.00")),
		"grand total should be 4 * 125.50, got %s", resp.GrandTotal)

	// Rendering happened after commit and its path landed on the invoice.
	assert.NotEmpty(t, resp.PDFPath)
	assert.Contains(t, resp.PDFPath, "invoice_"+resp.Number)
	inv := f.store.invoices[resp.ID]
	require.NotNil(t, inv)
	assert.Equal(t, resp.PDFPath, inv.PDFPath)

	require.NotNil(t, f.renderer.lastDoc)
	assert.Equal(t, resp.Number, f.renderer.lastDoc.Number)
	assert.Equal(t, "Иван Петров", f.renderer.lastDoc.CreatorName)
	assert.True(t, f.renderer.lastDoc.GrandTotal.Equal(resp.GrandTotal))
}

func TestGenerate_InsufficientStockCommitsNothing(t *testing.T) {
	f := newGeneratorFixture()
	f.addProduct("p1", "A-1", "Гайка М8", "10.00", 3)

	resp, err := f.uc.Generate(context.Background(), "", []dto.InvoiceLineRequest{
		{ProductID: "p1", Quantity: 4},
	})
	require.Error(t, err)
	assert.Nil(t, resp)

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "p1", insufficient.ProductID)
	assert.Equal(t, 3, insufficient.Available)

	assert.Equal(t, 3, f.store.products["p1"].Quantity)
	assert.Empty(t, f.store.invoices)
	assert.Empty(t, f.store.items)
	assert.Empty(t, f.store.movements)
}

func TestGenerate_RepeatedProductLinesCannotOverdraw(t *testing.T) {
	f := newGeneratorFixture()
	f.addProduct("p1", "A-1", "Шайба", "1.00", 5)

	// Each line alone is coverable; together they overdraw. The ledger keeps a
	// running balance inside the transaction, so the second apply fails and
	// everything rolls back.
	resp, err := f.uc.Generate(context.Background(), "", []dto.InvoiceLineRequest{
		{ProductID: "p1", Quantity: 3},
		{ProductID: "p1", Quantity: 3},
	})
	require.Error(t, err)
	assert.Nil(t, resp)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 5, f.store.products["p1"].Quantity)
	assert.Empty(t, f.store.invoices)
	assert.Empty(t, f.store.movements)
}

func TestGenerate_ValidationBeforeAnyWrite(t *testing.T) {
	f := newGeneratorFixture()
	f.addProduct("p1", "A-1", "Втулка", "2.00", 10)

	_, err := f.uc.Generate(context.Background(), "", nil)
	assert.ErrorIs(t, err, domain.ErrEmptyInvoice)

	_, err = f.uc.Generate(context.Background(), "", []dto.InvoiceLineRequest{
		{ProductID: "p1", Quantity: 0},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.uc.Generate(context.Background(), "", []dto.InvoiceLineRequest{
		{ProductID: "", Quantity: 1},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Empty(t, f.store.invoices)
	assert.Empty(t, f.store.movements)
}

func TestGenerate_UnknownProductCommitsNothing(t *testing.T) {
	f := newGeneratorFixture()
	f.addProduct("p1", "A-1", "Скоба", "2.00", 10)

	resp, err := f.uc.Generate(context.Background(), "", []dto.InvoiceLineRequest{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "missing", Quantity: 1},
	})
	require.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Nil(t, resp)
	assert.Equal(t, 10, f.store.products["p1"].Quantity)
	assert.Empty(t, f.store.invoices)
}

func TestGenerate_DailySequenceIncrements(t *testing.T) {
	f := newGeneratorFixture()
	f.addProduct("p1", "A-1", "Хомут", "3.00", 100)
	f.store.invoices["old"] = &entity.Invoice{ID: "old", Number: todayNumber(7), CreatedAt: time.Now()}

	resp, err := f.uc.Generate(context.Background(), "", []dto.InvoiceLineRequest{
		{ProductID: "p1", Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, todayNumber(8), resp.Number)
}

func TestGenerate_LaterPriceChangeDoesNotTouchSnapshot(t *testing.T) {
	f := newGeneratorFixture()
	f.addProduct("p1", "A-1", "Переходник", "99.90", 10)

	resp, err := f.uc.Generate(context.Background(), "", []dto.InvoiceLineRequest{
		{ProductID: "p1", Quantity: 2},
	})
	require.NoError(t, err)

	f.store.products["p1"].Price = decimal.RequireFromString("150.00")

	require.Len(t, f.store.items, 1)
	assert.True(t, f.store.items[0].Price.Equal(decimal.RequireFromString("99.90")))
	assert.True(t, resp.Items[0].Price.Equal(decimal.RequireFromString("99.90")))
}

func TestGenerate_RenderFailureLeavesInvoiceCommitted(t *testing.T) {
	f := newGeneratorFixture()
	f.addProduct("p1", "A-1", "Кронштейн", "20.00", 10)
	f.renderer.fail = true

	resp, err := f.uc.Generate(context.Background(), "", []dto.InvoiceLineRequest{
		{ProductID: "p1", Quantity: 2},
	})
	require.Error(t, err)
	require.NotNil(t, resp, "the committed invoice must still be returned")

	var rendering *domain.RenderingFailedError
	require.ErrorAs(t, err, &rendering)
	assert.Equal(t, resp.ID, rendering.InvoiceID)

	// Stock effects and the invoice survive the rendering failure.
	assert.Equal(t, 8, f.store.products["p1"].Quantity)
	require.Len(t, f.store.movements, 1)
	inv := f.store.invoices[resp.ID]
	require.NotNil(t, inv)
	assert.Empty(t, inv.PDFPath)
	assert.Empty(t, resp.PDFPath)
}

func TestGenerate_RetriesSerializationConflicts(t *testing.T) {
	f := newGeneratorFixture()
	f.addProduct("p1", "A-1", "Планка", "5.00", 10)
	f.runner.conflicts = 2 // two aborted attempts, third succeeds

	resp, err := f.uc.Generate(context.Background(), "", []dto.InvoiceLineRequest{
		{ProductID: "p1", Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, todayNumber(1), resp.Number)
	assert.Equal(t, 9, f.store.products["p1"].Quantity)
	require.Len(t, f.store.movements, 1)
}

func TestGenerate_GivesUpAfterBoundedRetries(t *testing.T) {
	f := newGeneratorFixture()
	f.addProduct("p1", "A-1", "Планка", "5.00", 10)
	f.runner.conflicts = 3 // more conflicts than attempts

	resp, err := f.uc.Generate(context.Background(), "", []dto.InvoiceLineRequest{
		{ProductID: "p1", Quantity: 1},
	})
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	assert.Equal(t, 10, f.store.products["p1"].Quantity)
	assert.Empty(t, f.store.invoices)
}

func TestGetInvoice_EnrichesItemsWithProductData(t *testing.T) {
	f := newGeneratorFixture()
	f.addProduct("p1", "A-1", "Фланец", "40.00", 10)
	f.addProduct("p2", "B-2", "Прокладка", "2.50", 10)

	generated, err := f.uc.Generate(context.Background(), "", []dto.InvoiceLineRequest{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p2", Quantity: 4},
	})
	require.NoError(t, err)

	resp, err := f.uc.GetInvoice(context.Background(), generated.ID)
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "Фланец", resp.Items[0].ProductName)
	assert.Equal(t, "A-1", resp.Items[0].SKU)
	assert.Equal(t, "Прокладка", resp.Items[1].ProductName)
	assert.True(t, resp.GrandTotal.Equal(decimal.RequireFromString("50.00")))
}

func TestGetInvoice_NotFound(t *testing.T) {
	f := newGeneratorFixture()
	_, err := f.uc.GetInvoice(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGenerate_RendererReceivesAllLines(t *testing.T) {
	f := newGeneratorFixture()
	f.addProduct("p1", "A-1", "Опора", "10.00", 10)
	f.addProduct("p2", "B-2", "Упор", "7.30", 10)

	_, err := f.uc.Generate(context.Background(), "", []dto.InvoiceLineRequest{
		{ProductID: "p2", Quantity: 2},
		{ProductID: "p1", Quantity: 1},
	})
	require.NoError(t, err)

	require.NotNil(t, f.renderer.lastDoc)
	require.Len(t, f.renderer.lastDoc.Lines, 2)
	// Lines keep the request order, not the lock order.
	assert.Equal(t, "B-2", f.renderer.lastDoc.Lines[0].SKU)
	assert.Equal(t, "A-1", f.renderer.lastDoc.Lines[1].SKU)
	assert.True(t, f.renderer.lastDoc.Lines[0].LineTotal.Equal(decimal.RequireFromString("14.60")))
}

func TestPDFUseCase_RenderAndDownload(t *testing.T) {
	f := newGeneratorFixture()
	f.addProduct("p1", "A-1", "Ролик", "12.00", 10)
	f.renderer.fail = true

	generated, genErr := f.uc.Generate(context.Background(), "", []dto.InvoiceLineRequest{
		{ProductID: "p1", Quantity: 1},
	})
	require.Error(t, genErr)
	require.NotNil(t, generated)

	pdfUC := billing.NewPDFUseCase(f.uc, &fakeInvoiceRepo{store: f.store}, f.artifacts)

	// Re-render after the transient failure clears.
	f.renderer.fail = false
	path, err := pdfUC.Render(context.Background(), generated.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, path)
	assert.Equal(t, path, f.store.invoices[generated.ID].PDFPath)

	data, filename, err := pdfUC.Download(context.Background(), generated.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), data)
	assert.Equal(t, "invoice_"+generated.Number+".pdf", filename)
}

func TestGenerate_ConcurrentSequentialDaysShareNothing(t *testing.T) {
	f := newGeneratorFixture()
	f.addProduct("p1", "A-1", "Ось", "5.00", 100)
	// Yesterday's numbers must not influence today's sequence.
	yesterday := time.Now().AddDate(0, 0, -1)
	f.store.invoices["y"] = &entity.Invoice{
		ID:        "y",
		Number:    fmt.Sprintf("INV-%s-0042", yesterday.Format("20060102")),
		CreatedAt: yesterday,
	}

	resp, err := f.uc.Generate(context.Background(), "", []dto.InvoiceLineRequest{
		{ProductID: "p1", Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, todayNumber(1), resp.Number)
}

func TestListInvoices_TotalSpansAllPages(t *testing.T) {
	f := newGeneratorFixture()
	f.addProduct("p1", "A-1", "Винт", "1.00", 100)

	for i := 0; i < 3; i++ {
		_, err := f.uc.Generate(context.Background(), "", []dto.InvoiceLineRequest{
			{ProductID: "p1", Quantity: 1},
		})
		require.NoError(t, err)
	}

	resp, err := f.uc.ListInvoices(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Len(t, resp.Invoices, 2, "the page honors the limit")
	assert.Equal(t, 3, resp.Total, "the total counts every invoice, not the page")
}

func TestGenerate_ErrorsAreComparableWithIs(t *testing.T) {
	insufficient := &domain.InsufficientStockError{ProductID: "p", Available: 2}
	assert.True(t, errors.Is(insufficient, domain.ErrInsufficientStock))

	rendering := &domain.RenderingFailedError{InvoiceID: "i", Err: errors.New("x")}
	assert.True(t, errors.Is(rendering, domain.ErrRenderingFailed))
}
