package erp

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/markethub/backend/internal/domain/erp"
	"github.com/markethub/backend/internal/domain/order"
	"github.com/markethub/backend/internal/domain/shared"
)

// CountsCache caches the per-status document counts behind the dashboard
// endpoint. Get returns (nil, nil) on a cache miss. The cache is best
// effort, every error is survivable.
type CountsCache interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*erp.StatusCounts, error)
	Set(ctx context.Context, tenantID uuid.UUID, counts erp.StatusCounts) error
	Invalidate(ctx context.Context, tenantID uuid.UUID) error
}

// DocumentService orchestrates sales document generation and delivery
type DocumentService struct {
	docRepo      erp.DocumentRepository
	templateRepo erp.TemplateRepository
	orderRepo    order.Repository
	sender       erp.Sender
	counts       CountsCache
	logger       *zap.Logger
}

// NewDocumentService creates a new DocumentService. counts may be nil when
// no cache is configured.
func NewDocumentService(
	docRepo erp.DocumentRepository,
	templateRepo erp.TemplateRepository,
	orderRepo order.Repository,
	sender erp.Sender,
	counts CountsCache,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		docRepo:      docRepo,
		templateRepo: templateRepo,
		orderRepo:    orderRepo,
		sender:       sender,
		counts:       counts,
		logger:       logger,
	}
}

// ---------------------------------------------------------------------------
// Generation
// ---------------------------------------------------------------------------

// Generate builds and persists a sales document for one order. A second
// generate for the same order is rejected while a non-cancelled document
// exists; the uniqueness check is enforced atomically by the repository.
func (s *DocumentService) Generate(ctx context.Context, tenantID, orderID uuid.UUID) (*GenerateResult, error) {
	o, err := s.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	return s.generateForOrder(ctx, tenantID, o)
}

func (s *DocumentService) generateForOrder(ctx context.Context, tenantID uuid.UUID, o *order.Order) (*GenerateResult, error) {
	tmpl, err := s.templateRepo.FindActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	built, err := erp.BuildDocumentLines(o, tmpl)
	if err != nil {
		return nil, err
	}

	customerCode, customerName := tmpl.CustomerFor(o.Marketplace)
	doc := erp.NewSalesDocument(tenantID, o, customerCode, customerName, built.Lines, built.TotalAmount)

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}
	s.invalidateCounts(ctx, tenantID)

	s.logger.Info("sales document generated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("order_id", o.ID.String()),
		zap.String("document_id", doc.ID.String()),
		zap.Int("lines", len(doc.Lines)),
		zap.Int("warnings", len(built.Warnings)),
	)

	return &GenerateResult{Document: doc, Warnings: built.Warnings}, nil
}

// GenerateBatch generates documents for many orders with per-order
// isolation. Orders are fetched in one query; one order failing never
// aborts the rest, and every input id yields exactly one result entry.
func (s *DocumentService) GenerateBatch(ctx context.Context, tenantID uuid.UUID, orderIDs []uuid.UUID) (*BatchResult, error) {
	orders, err := s.orderRepo.FindByIDs(ctx, tenantID, orderIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*order.Order, len(orders))
	for i := range orders {
		byID[orders[i].ID] = &orders[i]
	}

	results := make([]BatchItemResult, len(orderIDs))
	for i, orderID := range orderIDs {
		o, ok := byID[orderID]
		if !ok {
			results[i] = BatchItemResult{OrderID: orderID, Error: order.ErrOrderNotFound.Error()}
			continue
		}
		results[i] = s.generateOne(ctx, tenantID, o)
	}

	return newBatchResult(results), nil
}

// GenerateAllEligible generates documents for every order of the tenant
// that has no non-cancelled document yet.
func (s *DocumentService) GenerateAllEligible(ctx context.Context, tenantID uuid.UUID) (*BatchResult, error) {
	orders, err := s.orderRepo.FindWithoutActiveDocument(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	results := make([]BatchItemResult, len(orders))
	for i := range orders {
		results[i] = s.generateOne(ctx, tenantID, &orders[i])
	}

	return newBatchResult(results), nil
}

func (s *DocumentService) generateOne(ctx context.Context, tenantID uuid.UUID, o *order.Order) BatchItemResult {
	result := BatchItemResult{OrderID: o.ID}

	generated, err := s.generateForOrder(ctx, tenantID, o)
	if err != nil {
		result.Success = false
		result.Error = err.Error()
	} else {
		result.Success = true
		result.DocumentID = generated.Document.ID
		result.Status = generated.Document.Status
		result.Warnings = generated.Warnings
	}

	return result
}

// Regenerate cancels the current document of the order, if any, and
// generates a fresh one. The cancelled record is retained for audit. A
// SENT document cannot be regenerated over.
func (s *DocumentService) Regenerate(ctx context.Context, tenantID, orderID uuid.UUID) (*GenerateResult, error) {
	current, err := s.docRepo.FindActiveByOrder(ctx, tenantID, orderID)
	if err != nil && !errors.Is(err, erp.ErrDocumentNotFound) {
		return nil, err
	}

	if current != nil {
		if err := current.Cancel(); err != nil {
			return nil, err
		}
		if err := s.docRepo.Save(ctx, current); err != nil {
			return nil, err
		}
		s.logger.Info("sales document cancelled for regeneration",
			zap.String("tenant_id", tenantID.String()),
			zap.String("document_id", current.ID.String()),
		)
	}

	return s.Generate(ctx, tenantID, orderID)
}

// ---------------------------------------------------------------------------
// Sending
// ---------------------------------------------------------------------------

// Send transmits one document to the ERP. A transmission failure is a
// state change, not a service error: the document comes back FAILED with
// the error recorded, its lines intact, and sending may be retried.
func (s *DocumentService) Send(ctx context.Context, tenantID, documentID uuid.UUID) (*erp.SalesDocument, error) {
	doc, err := s.docRepo.FindByID(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	if !doc.CanSend() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot send document in status "+doc.Status.String())
	}

	erpDocumentID, sendErr := s.sender.Send(ctx, doc)
	if sendErr != nil {
		if err := doc.MarkFailed(sendErr.Error()); err != nil {
			return nil, err
		}
		if err := s.docRepo.Save(ctx, doc); err != nil {
			return nil, err
		}
		s.invalidateCounts(ctx, tenantID)
		s.logger.Warn("sales document send failed",
			zap.String("tenant_id", tenantID.String()),
			zap.String("document_id", doc.ID.String()),
			zap.Error(sendErr),
		)
		return doc, nil
	}

	if err := doc.MarkSent(erpDocumentID); err != nil {
		return nil, err
	}
	if err := s.docRepo.Save(ctx, doc); err != nil {
		return nil, err
	}
	s.invalidateCounts(ctx, tenantID)

	s.logger.Info("sales document sent",
		zap.String("tenant_id", tenantID.String()),
		zap.String("document_id", doc.ID.String()),
		zap.String("erp_document_id", erpDocumentID),
	)
	return doc, nil
}

// SendSelected sends a chosen set of documents sequentially with
// per-document isolation.
func (s *DocumentService) SendSelected(ctx context.Context, tenantID uuid.UUID, documentIDs []uuid.UUID) (*BatchResult, error) {
	results := make([]BatchItemResult, len(documentIDs))

	for i, documentID := range documentIDs {
		results[i] = s.sendOne(ctx, tenantID, documentID)
	}

	return newBatchResult(results), nil
}

// SendAllPending sends every PENDING and FAILED document of the tenant
func (s *DocumentService) SendAllPending(ctx context.Context, tenantID uuid.UUID) (*BatchResult, error) {
	docs, err := s.docRepo.FindSendable(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	results := make([]BatchItemResult, len(docs))
	for i := range docs {
		results[i] = s.sendOne(ctx, tenantID, docs[i].ID)
	}

	return newBatchResult(results), nil
}

func (s *DocumentService) sendOne(ctx context.Context, tenantID, documentID uuid.UUID) BatchItemResult {
	result := BatchItemResult{DocumentID: documentID}

	doc, err := s.Send(ctx, tenantID, documentID)
	switch {
	case err != nil:
		result.Success = false
		result.Error = err.Error()
	case doc.Status != erp.DocumentStatusSent:
		result.Success = false
		result.Status = doc.Status
		result.OrderID = doc.OrderID
		result.Error = doc.ErrorMessage
	default:
		result.Success = true
		result.Status = doc.Status
		result.OrderID = doc.OrderID
	}

	return result
}

// ---------------------------------------------------------------------------
// Lifecycle and queries
// ---------------------------------------------------------------------------

// Cancel cancels a PENDING or FAILED document. Cancelled records stay
// queryable and free their order for regeneration.
func (s *DocumentService) Cancel(ctx context.Context, tenantID, documentID uuid.UUID) (*erp.SalesDocument, error) {
	doc, err := s.docRepo.FindByID(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	if err := doc.Cancel(); err != nil {
		return nil, err
	}
	if err := s.docRepo.Save(ctx, doc); err != nil {
		return nil, err
	}
	s.invalidateCounts(ctx, tenantID)
	return doc, nil
}

// Delete removes a PENDING or FAILED document entirely
func (s *DocumentService) Delete(ctx context.Context, tenantID, documentID uuid.UUID) error {
	doc, err := s.docRepo.FindByID(ctx, tenantID, documentID)
	if err != nil {
		return err
	}
	if !doc.CanDelete() {
		return shared.NewDomainError("INVALID_STATE", "Cannot delete document in status "+doc.Status.String())
	}
	if err := s.docRepo.Delete(ctx, tenantID, documentID); err != nil {
		return err
	}
	s.invalidateCounts(ctx, tenantID)
	return nil
}

// Get retrieves one document by id
func (s *DocumentService) Get(ctx context.Context, tenantID, documentID uuid.UUID) (*erp.SalesDocument, error) {
	return s.docRepo.FindByID(ctx, tenantID, documentID)
}

// List lists documents with filtering and pagination
func (s *DocumentService) List(ctx context.Context, tenantID uuid.UUID, filter erp.DocumentFilter) ([]erp.SalesDocument, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	return s.docRepo.FindAll(ctx, tenantID, filter)
}

// Counts returns the per-status document counts, served from the cache
// when fresh enough.
func (s *DocumentService) Counts(ctx context.Context, tenantID uuid.UUID) (erp.StatusCounts, error) {
	if s.counts != nil {
		cached, err := s.counts.Get(ctx, tenantID)
		if err != nil {
			s.logger.Warn("counts cache read failed", zap.Error(err))
		} else if cached != nil {
			return *cached, nil
		}
	}

	counts, err := s.docRepo.CountByStatus(ctx, tenantID)
	if err != nil {
		return erp.StatusCounts{}, err
	}

	if s.counts != nil {
		if err := s.counts.Set(ctx, tenantID, counts); err != nil {
			s.logger.Warn("counts cache write failed", zap.Error(err))
		}
	}
	return counts, nil
}

// Preview runs line building for an order without persisting anything
func (s *DocumentService) Preview(ctx context.Context, tenantID, orderID uuid.UUID) (*PreviewResponse, error) {
	tmpl, err := s.templateRepo.FindActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	o, err := s.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	built, err := erp.BuildDocumentLines(o, tmpl)
	if err != nil {
		return nil, err
	}

	customerCode, customerName := tmpl.CustomerFor(o.Marketplace)
	return &PreviewResponse{
		OrderID:      orderID,
		CustomerCode: customerCode,
		CustomerName: customerName,
		Lines:        ToDocumentLineResponses(built.Lines),
		TotalAmount:  built.TotalAmount,
		Warnings:     built.Warnings,
	}, nil
}

func (s *DocumentService) invalidateCounts(ctx context.Context, tenantID uuid.UUID) {
	if s.counts == nil {
		return
	}
	if err := s.counts.Invalidate(ctx, tenantID); err != nil {
		s.logger.Warn("counts cache invalidation failed", zap.Error(err))
	}
}
