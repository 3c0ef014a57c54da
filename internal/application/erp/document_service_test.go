package erp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/markethub/backend/internal/domain/erp"
	"github.com/markethub/backend/internal/domain/order"
	"github.com/markethub/backend/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// In-memory fakes
// ---------------------------------------------------------------------------

type fakeOrderRepo struct {
	orders map[uuid.UUID]*order.Order

	// docs mirrors the filtering of the SQL NOT EXISTS candidate query
	docs *fakeDocumentRepo
}

func newFakeOrderRepo(orders ...*order.Order) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: make(map[uuid.UUID]*order.Order)}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

func (r *fakeOrderRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*order.Order, error) {
	o, ok := r.orders[id]
	if !ok || o.TenantID != tenantID {
		return nil, order.ErrOrderNotFound
	}
	return o, nil
}

func (r *fakeOrderRepo) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]order.Order, error) {
	found := make([]order.Order, 0, len(ids))
	for _, id := range ids {
		if o, err := r.FindByID(ctx, tenantID, id); err == nil {
			found = append(found, *o)
		}
	}
	return found, nil
}

func (r *fakeOrderRepo) FindWithoutActiveDocument(ctx context.Context, tenantID uuid.UUID) ([]order.Order, error) {
	eligible := make([]order.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if o.TenantID != tenantID {
			continue
		}
		if r.docs != nil {
			if _, err := r.docs.FindActiveByOrder(ctx, tenantID, o.ID); err == nil {
				continue
			}
		}
		eligible = append(eligible, *o)
	}
	return eligible, nil
}

type fakeDocumentRepo struct {
	docs map[uuid.UUID]*erp.SalesDocument
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[uuid.UUID]*erp.SalesDocument)}
}

func (r *fakeDocumentRepo) Create(_ context.Context, doc *erp.SalesDocument) error {
	for _, existing := range r.docs {
		if existing.TenantID == doc.TenantID && existing.OrderID == doc.OrderID &&
			existing.Status != erp.DocumentStatusCancelled {
			return erp.ErrDocumentAlreadyExists
		}
	}
	r.docs[doc.ID] = doc
	return nil
}

func (r *fakeDocumentRepo) Save(_ context.Context, doc *erp.SalesDocument) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *fakeDocumentRepo) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	doc, ok := r.docs[id]
	if !ok || doc.TenantID != tenantID {
		return erp.ErrDocumentNotFound
	}
	delete(r.docs, id)
	return nil
}

func (r *fakeDocumentRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*erp.SalesDocument, error) {
	doc, ok := r.docs[id]
	if !ok || doc.TenantID != tenantID {
		return nil, erp.ErrDocumentNotFound
	}
	return doc, nil
}

func (r *fakeDocumentRepo) FindActiveByOrder(_ context.Context, tenantID, orderID uuid.UUID) (*erp.SalesDocument, error) {
	for _, doc := range r.docs {
		if doc.TenantID == tenantID && doc.OrderID == orderID && doc.Status != erp.DocumentStatusCancelled {
			return doc, nil
		}
	}
	return nil, erp.ErrDocumentNotFound
}

func (r *fakeDocumentRepo) FindAll(_ context.Context, tenantID uuid.UUID, filter erp.DocumentFilter) ([]erp.SalesDocument, int64, error) {
	matched := make([]erp.SalesDocument, 0, len(r.docs))
	for _, doc := range r.docs {
		if doc.TenantID != tenantID {
			continue
		}
		if filter.Status != nil && doc.Status != *filter.Status {
			continue
		}
		matched = append(matched, *doc)
	}
	return matched, int64(len(matched)), nil
}

func (r *fakeDocumentRepo) FindSendable(_ context.Context, tenantID uuid.UUID) ([]erp.SalesDocument, error) {
	sendable := make([]erp.SalesDocument, 0, len(r.docs))
	for _, doc := range r.docs {
		if doc.TenantID == tenantID && doc.CanSend() {
			sendable = append(sendable, *doc)
		}
	}
	return sendable, nil
}

func (r *fakeDocumentRepo) CountByStatus(_ context.Context, tenantID uuid.UUID) (erp.StatusCounts, error) {
	var counts erp.StatusCounts
	for _, doc := range r.docs {
		if doc.TenantID != tenantID {
			continue
		}
		switch doc.Status {
		case erp.DocumentStatusPending:
			counts.Pending++
		case erp.DocumentStatusSent:
			counts.Sent++
		case erp.DocumentStatusFailed:
			counts.Failed++
		case erp.DocumentStatusCancelled:
			counts.Cancelled++
		}
	}
	return counts, nil
}

type fakeTemplateRepo struct {
	templates map[uuid.UUID]*erp.SalesTemplate
}

func newFakeTemplateRepo(templates ...*erp.SalesTemplate) *fakeTemplateRepo {
	r := &fakeTemplateRepo{templates: make(map[uuid.UUID]*erp.SalesTemplate)}
	for _, tmpl := range templates {
		r.templates[tmpl.ErpConfigID] = tmpl
	}
	return r
}

func (r *fakeTemplateRepo) Save(_ context.Context, tmpl *erp.SalesTemplate) error {
	r.templates[tmpl.ErpConfigID] = tmpl
	return nil
}

func (r *fakeTemplateRepo) FindByConfig(_ context.Context, tenantID, erpConfigID uuid.UUID) (*erp.SalesTemplate, error) {
	tmpl, ok := r.templates[erpConfigID]
	if !ok || tmpl.TenantID != tenantID {
		return nil, erp.ErrTemplateNotFound
	}
	return tmpl, nil
}

func (r *fakeTemplateRepo) FindActive(_ context.Context, tenantID uuid.UUID) (*erp.SalesTemplate, error) {
	for _, tmpl := range r.templates {
		if tmpl.TenantID == tenantID && tmpl.IsActive {
			return tmpl, nil
		}
	}
	return nil, erp.ErrTemplateNotFound
}

type fakeSender struct {
	erpDocumentID string
	err           error
	calls         int
}

func (s *fakeSender) Send(context.Context, *erp.SalesDocument) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.erpDocumentID, nil
}

type fakeCountsCache struct {
	cached      *erp.StatusCounts
	sets        int
	invalidates int
}

func (c *fakeCountsCache) Get(context.Context, uuid.UUID) (*erp.StatusCounts, error) {
	return c.cached, nil
}

func (c *fakeCountsCache) Set(_ context.Context, _ uuid.UUID, counts erp.StatusCounts) error {
	c.cached = &counts
	c.sets++
	return nil
}

func (c *fakeCountsCache) Invalidate(context.Context, uuid.UUID) error {
	c.cached = nil
	c.invalidates++
	return nil
}

var (
	_ order.Repository       = (*fakeOrderRepo)(nil)
	_ erp.DocumentRepository = (*fakeDocumentRepo)(nil)
	_ erp.TemplateRepository = (*fakeTemplateRepo)(nil)
	_ erp.Sender             = (*fakeSender)(nil)
	_ CountsCache            = (*fakeCountsCache)(nil)
)

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

type serviceFixture struct {
	tenantID uuid.UUID
	orderID  uuid.UUID
	orders   *fakeOrderRepo
	docs     *fakeDocumentRepo
	sender   *fakeSender
	counts   *fakeCountsCache
	service  *DocumentService
}

func serviceTestOrder(tenantID uuid.UUID) *order.Order {
	return &order.Order{
		TenantEntity:       shared.NewTenantEntity(tenantID),
		Marketplace:        order.MarketplaceNaver,
		MarketplaceOrderID: "2024123112345",
		BuyerName:          "김철수",
		ReceiverName:       "김영희",
		OrderedAt:          time.Date(2024, 12, 31, 9, 30, 0, 0, time.UTC),
		TotalAmount:        decimal.NewFromInt(52900),
		DeliveryFee:        decimal.NewFromInt(3500),
		Items: []order.Item{
			{
				ProductName:           "겨울 패딩",
				OptionName:            "블랙 / L",
				Quantity:              2,
				UnitPrice:             decimal.NewFromInt(24700),
				TotalPrice:            decimal.NewFromInt(49400),
				ErpProductCode:        "01809",
				CommissionAmount:      decimal.NewFromInt(2470),
				DeliveryCommissionAmt: decimal.NewFromInt(300),
			},
		},
	}
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	tenantID := uuid.New()

	tmpl := erp.NewSalesTemplate(tenantID, uuid.New())
	tmpl.DefaultHeader = map[string]string{
		erp.HeaderFieldCustomerCode: "00101",
		erp.HeaderFieldCustomerName: "마켓허브",
	}
	require.NoError(t, tmpl.ApplyPreset(erp.PresetSimpleSale))

	o := serviceTestOrder(tenantID)
	f := &serviceFixture{
		tenantID: tenantID,
		orderID:  o.ID,
		orders:   newFakeOrderRepo(o),
		docs:     newFakeDocumentRepo(),
		sender:   &fakeSender{erpDocumentID: "20241231-42"},
		counts:   &fakeCountsCache{},
	}
	f.orders.docs = f.docs
	f.service = NewDocumentService(f.docs, newFakeTemplateRepo(tmpl), f.orders, f.sender, f.counts, zap.NewNop())
	return f
}

// ---------------------------------------------------------------------------
// Generation
// ---------------------------------------------------------------------------

func TestGenerate(t *testing.T) {
	f := newServiceFixture(t)

	result, err := f.service.Generate(context.Background(), f.tenantID, f.orderID)
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, erp.DocumentStatusPending, doc.Status)
	assert.Equal(t, "00101", doc.CustomerCode)
	assert.Len(t, doc.Lines, 2)
	assert.True(t, doc.TotalAmount.Equal(decimal.NewFromInt(52900)))
	assert.Empty(t, result.Warnings)
	assert.Len(t, f.docs.docs, 1)
	assert.Equal(t, 1, f.counts.invalidates)
}

func TestGenerate_DuplicateRejected(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.service.Generate(ctx, f.tenantID, f.orderID)
	require.NoError(t, err)

	_, err = f.service.Generate(ctx, f.tenantID, f.orderID)
	assert.ErrorIs(t, err, erp.ErrDocumentAlreadyExists)
	assert.Len(t, f.docs.docs, 1, "failed duplicate must not leave a second document behind")
}

func TestGenerate_OrderNotFound(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Generate(context.Background(), f.tenantID, uuid.New())
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestGenerate_NoActiveTemplate(t *testing.T) {
	f := newServiceFixture(t)
	f.service = NewDocumentService(f.docs, newFakeTemplateRepo(), f.orders, f.sender, f.counts, zap.NewNop())

	_, err := f.service.Generate(context.Background(), f.tenantID, f.orderID)
	assert.ErrorIs(t, err, erp.ErrTemplateNotFound)
}

func TestGenerateBatch_PartialFailure(t *testing.T) {
	f := newServiceFixture(t)
	missingID := uuid.New()

	result, err := f.service.GenerateBatch(context.Background(), f.tenantID, []uuid.UUID{f.orderID, missingID})
	require.NoError(t, err)

	require.Len(t, result.Results, 2)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.FailCount)

	assert.True(t, result.Results[0].Success)
	assert.Equal(t, f.orderID, result.Results[0].OrderID)
	assert.NotEqual(t, uuid.Nil, result.Results[0].DocumentID)

	assert.False(t, result.Results[1].Success)
	assert.Equal(t, missingID, result.Results[1].OrderID)
	assert.NotEmpty(t, result.Results[1].Error)
}

func TestGenerateAllEligible_SkipsDocumentedOrders(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	second := serviceTestOrder(f.tenantID)
	f.orders.orders[second.ID] = second

	// The first order already has an active document and must not be a
	// candidate again.
	_, err := f.service.Generate(ctx, f.tenantID, f.orderID)
	require.NoError(t, err)

	result, err := f.service.GenerateAllEligible(ctx, f.tenantID)
	require.NoError(t, err)

	require.Len(t, result.Results, 1)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 0, result.FailCount)
	assert.Equal(t, second.ID, result.Results[0].OrderID)
	assert.Len(t, f.docs.docs, 2)

	// A second pass finds no candidates left.
	result, err = f.service.GenerateAllEligible(ctx, f.tenantID)
	require.NoError(t, err)
	assert.Empty(t, result.Results)
}

func TestRegenerate_CancelsCurrentAndCreatesNew(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	first, err := f.service.Generate(ctx, f.tenantID, f.orderID)
	require.NoError(t, err)

	second, err := f.service.Regenerate(ctx, f.tenantID, f.orderID)
	require.NoError(t, err)

	assert.Len(t, f.docs.docs, 2, "the cancelled record is retained")
	assert.Equal(t, erp.DocumentStatusCancelled, f.docs.docs[first.Document.ID].Status)
	assert.Equal(t, erp.DocumentStatusPending, f.docs.docs[second.Document.ID].Status)
	assert.NotEqual(t, first.Document.ID, second.Document.ID)
}

func TestRegenerate_WithoutCurrentDocument(t *testing.T) {
	f := newServiceFixture(t)

	result, err := f.service.Regenerate(context.Background(), f.tenantID, f.orderID)
	require.NoError(t, err)
	assert.Equal(t, erp.DocumentStatusPending, result.Document.Status)
}

func TestRegenerate_SentRejected(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	first, err := f.service.Generate(ctx, f.tenantID, f.orderID)
	require.NoError(t, err)
	_, err = f.service.Send(ctx, f.tenantID, first.Document.ID)
	require.NoError(t, err)

	_, err = f.service.Regenerate(ctx, f.tenantID, f.orderID)
	require.Error(t, err)
	assert.Len(t, f.docs.docs, 1)
	assert.Equal(t, erp.DocumentStatusSent, f.docs.docs[first.Document.ID].Status)
}

// ---------------------------------------------------------------------------
// Sending
// ---------------------------------------------------------------------------

func TestSend(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	generated, err := f.service.Generate(ctx, f.tenantID, f.orderID)
	require.NoError(t, err)

	doc, err := f.service.Send(ctx, f.tenantID, generated.Document.ID)
	require.NoError(t, err)

	assert.Equal(t, erp.DocumentStatusSent, doc.Status)
	require.NotNil(t, doc.ErpDocumentID)
	assert.Equal(t, "20241231-42", *doc.ErpDocumentID)
	assert.Equal(t, 1, f.sender.calls)
}

func TestSend_FailureMarksFailedAndKeepsLines(t *testing.T) {
	f := newServiceFixture(t)
	f.sender.err = errors.New("ecount: zone lookup timed out")
	ctx := context.Background()

	generated, err := f.service.Generate(ctx, f.tenantID, f.orderID)
	require.NoError(t, err)
	linesBefore := len(generated.Document.Lines)

	doc, err := f.service.Send(ctx, f.tenantID, generated.Document.ID)
	require.NoError(t, err, "a transmission failure is a state change, not a service error")

	assert.Equal(t, erp.DocumentStatusFailed, doc.Status)
	assert.Equal(t, "ecount: zone lookup timed out", doc.ErrorMessage)
	assert.Len(t, doc.Lines, linesBefore)

	// The failed document can be retried once the ERP recovers.
	f.sender.err = nil
	doc, err = f.service.Send(ctx, f.tenantID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, erp.DocumentStatusSent, doc.Status)
	assert.Empty(t, doc.ErrorMessage)
}

func TestSend_CancelledRejected(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	generated, err := f.service.Generate(ctx, f.tenantID, f.orderID)
	require.NoError(t, err)
	_, err = f.service.Cancel(ctx, f.tenantID, generated.Document.ID)
	require.NoError(t, err)

	_, err = f.service.Send(ctx, f.tenantID, generated.Document.ID)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
	assert.Equal(t, 0, f.sender.calls)
}

func TestSendSelected_PerDocumentIsolation(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	generated, err := f.service.Generate(ctx, f.tenantID, f.orderID)
	require.NoError(t, err)
	missingID := uuid.New()

	result, err := f.service.SendSelected(ctx, f.tenantID, []uuid.UUID{generated.Document.ID, missingID})
	require.NoError(t, err)

	require.Len(t, result.Results, 2)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.FailCount)
	assert.Equal(t, erp.DocumentStatusSent, result.Results[0].Status)
	assert.False(t, result.Results[1].Success)
}

func TestSendAllPending(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	second := serviceTestOrder(f.tenantID)
	f.orders.orders[second.ID] = second

	first, err := f.service.Generate(ctx, f.tenantID, f.orderID)
	require.NoError(t, err)
	_, err = f.service.Generate(ctx, f.tenantID, second.ID)
	require.NoError(t, err)

	// One of the two is already sent, only the other remains sendable.
	_, err = f.service.Send(ctx, f.tenantID, first.Document.ID)
	require.NoError(t, err)
	f.sender.calls = 0

	result, err := f.service.SendAllPending(ctx, f.tenantID)
	require.NoError(t, err)

	assert.Len(t, result.Results, 1)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, f.sender.calls)
}

// ---------------------------------------------------------------------------
// Lifecycle and queries
// ---------------------------------------------------------------------------

func TestDelete_SentRejected(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	generated, err := f.service.Generate(ctx, f.tenantID, f.orderID)
	require.NoError(t, err)
	_, err = f.service.Send(ctx, f.tenantID, generated.Document.ID)
	require.NoError(t, err)

	err = f.service.Delete(ctx, f.tenantID, generated.Document.ID)
	require.Error(t, err)
	assert.Len(t, f.docs.docs, 1)
}

func TestDelete(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	generated, err := f.service.Generate(ctx, f.tenantID, f.orderID)
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, f.tenantID, generated.Document.ID))
	assert.Empty(t, f.docs.docs)
}

func TestList_StatusFilter(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	second := serviceTestOrder(f.tenantID)
	f.orders.orders[second.ID] = second

	first, err := f.service.Generate(ctx, f.tenantID, f.orderID)
	require.NoError(t, err)
	_, err = f.service.Generate(ctx, f.tenantID, second.ID)
	require.NoError(t, err)
	_, err = f.service.Send(ctx, f.tenantID, first.Document.ID)
	require.NoError(t, err)

	sent := erp.DocumentStatusSent
	docs, total, err := f.service.List(ctx, f.tenantID, erp.DocumentFilter{Status: &sent})
	require.NoError(t, err)

	assert.Equal(t, int64(1), total)
	require.Len(t, docs, 1)
	assert.Equal(t, first.Document.ID, docs[0].ID)
}

func TestCounts_CacheReadThrough(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.service.Generate(ctx, f.tenantID, f.orderID)
	require.NoError(t, err)

	// Miss populates the cache from the repository.
	counts, err := f.service.Counts(ctx, f.tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Pending)
	assert.Equal(t, 1, f.counts.sets)

	// Hit serves the cached value without recounting.
	stale := erp.StatusCounts{Pending: 99}
	f.counts.cached = &stale
	counts, err = f.service.Counts(ctx, f.tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(99), counts.Pending)
	assert.Equal(t, 1, f.counts.sets)
}

func TestPreview_DoesNotPersist(t *testing.T) {
	f := newServiceFixture(t)

	preview, err := f.service.Preview(context.Background(), f.tenantID, f.orderID)
	require.NoError(t, err)

	assert.Len(t, preview.Lines, 2)
	assert.True(t, preview.TotalAmount.Equal(decimal.NewFromInt(52900)))
	assert.Equal(t, "00101", preview.CustomerCode)
	assert.Empty(t, f.docs.docs, "preview must not create a document")
}
