package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gatewaydomain "github.com/taxops/fbrgate/internal/gateway/domain"
	"github.com/taxops/fbrgate/internal/invoice/domain"
	tenantdomain "github.com/taxops/fbrgate/internal/tenant/domain"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Validate sends the draft to the gateway validation endpoint. On success
// the invoice is promoted to Validated and the exact payload is frozen for
// submission. A gateway rejection keeps the invoice in Draft and reports
// the per-item detail; an unrecognized response shape is an error, never a
// silent success.
func (s *Service) Validate(ctx context.Context, id string) (domain.Invoice, error) {
	invoice, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	switch invoice.Status {
	case domain.StatusSubmitted:
		return domain.Invoice{}, domain.ErrAlreadyFinal
	case domain.StatusValidated:
		return invoice, nil
	}
	if len(invoice.Items) == 0 {
		return domain.Invoice{}, domain.ErrNoItems
	}

	tenant, err := s.tenants.GetByID(ctx, invoice.TenantID.String())
	if err != nil {
		return domain.Invoice{}, err
	}

	payload := buildPayload(invoice, tenant)
	decoded, err := s.gateway.Validate(ctx, tenant.GatewayCredentials(), payload)
	if err != nil {
		s.recordValidation("transport_error")
		return domain.Invoice{}, err
	}

	switch decoded.Kind {
	case gatewaydomain.KindSuccess:
		// fall through below
	case gatewaydomain.KindValidationFailure:
		s.recordValidation("rejected")
		return domain.Invoice{}, &domain.ValidationFailedError{Items: decoded.ItemErrors}
	default:
		s.recordValidation("unknown_shape")
		return domain.Invoice{}, domain.ErrUnknownGateway
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return domain.Invoice{}, err
	}

	invoice.Status = domain.StatusValidated
	invoice.RawResponse = datatypes.JSON(decoded.Raw)
	invoice.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, &invoice); err != nil {
		return domain.Invoice{}, err
	}
	if err := s.repo.SaveDraftPayload(ctx, s.db, &domain.DraftPayload{
		InvoiceID: invoice.ID,
		Payload:   datatypes.JSON(raw),
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return domain.Invoice{}, err
	}

	s.recordValidation("ok")
	s.log.Info("invoice validated",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("reference_no", invoice.ReferenceNo),
	)
	return invoice, nil
}

// Submit runs the ordered submission sequence, reachable only from
// Validated:
//
//  1. gateway submit, which must yield a non-empty invoice number;
//  2. finalize the local record with the issued number;
//  3. best-effort removal of the frozen draft payload.
//
// A failure in step 1 or 2 leaves the invoice Validated so the operator
// can retry without re-validating. Step 3 failures are logged only.
func (s *Service) Submit(ctx context.Context, id string) (domain.SubmitResult, error) {
	invoice, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	switch invoice.Status {
	case domain.StatusSubmitted:
		return domain.SubmitResult{}, domain.ErrAlreadyFinal
	case domain.StatusDraft:
		return domain.SubmitResult{}, domain.ErrNotValidated
	}
	if len(invoice.Items) == 0 {
		return domain.SubmitResult{}, domain.ErrNoItems
	}

	tenant, err := s.tenants.GetByID(ctx, invoice.TenantID.String())
	if err != nil {
		return domain.SubmitResult{}, err
	}

	payload, err := s.submissionPayload(ctx, invoice, tenant)
	if err != nil {
		return domain.SubmitResult{}, err
	}

	decoded, err := s.gateway.Submit(ctx, tenant.GatewayCredentials(), payload)
	if err != nil {
		s.recordSubmission("transport_error")
		return domain.SubmitResult{}, err
	}

	switch decoded.Kind {
	case gatewaydomain.KindSuccess:
		if decoded.InvoiceNumber == "" {
			s.recordSubmission("missing_number")
			return domain.SubmitResult{}, domain.ErrMissingNumber
		}
	case gatewaydomain.KindValidationFailure:
		s.recordSubmission("rejected")
		return domain.SubmitResult{}, fmt.Errorf("%w: %s", domain.ErrSubmissionRejected, firstMessage(decoded.ItemErrors))
	default:
		s.recordSubmission("unknown_shape")
		return domain.SubmitResult{}, domain.ErrUnknownGateway
	}

	now := time.Now().UTC()
	invoice.Status = domain.StatusSubmitted
	invoice.FBRInvoiceNumber = decoded.InvoiceNumber
	invoice.RawResponse = datatypes.JSON(decoded.Raw)
	invoice.SubmittedAt = &now
	invoice.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, &invoice); err != nil {
		s.recordSubmission("persist_error")
		return domain.SubmitResult{}, err
	}

	if err := s.repo.DeleteDraftPayload(ctx, s.db, invoice.ID); err != nil {
		s.log.Warn("draft payload cleanup failed",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err),
		)
	}

	s.recordSubmission("ok")
	s.log.Info("invoice submitted",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("fbr_invoice_number", decoded.InvoiceNumber),
	)
	return domain.SubmitResult{Invoice: invoice, InvoiceNumber: decoded.InvoiceNumber}, nil
}

// submissionPayload replays the payload frozen at validation time,
// rebuilding it only when the snapshot is missing.
func (s *Service) submissionPayload(ctx context.Context, invoice domain.Invoice, tenant tenantdomain.Tenant) (gatewaydomain.InvoicePayload, error) {
	snapshot, err := s.repo.FindDraftPayload(ctx, s.db, invoice.ID)
	if err != nil {
		return gatewaydomain.InvoicePayload{}, err
	}
	if snapshot != nil {
		var payload gatewaydomain.InvoicePayload
		if err := json.Unmarshal(snapshot.Payload, &payload); err == nil {
			return payload, nil
		}
		s.log.Warn("frozen draft payload unreadable, rebuilding",
			zap.String("invoice_id", invoice.ID.String()),
		)
	}
	return buildPayload(invoice, tenant), nil
}

func (s *Service) recordValidation(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordValidation(outcome)
	}
}

func (s *Service) recordSubmission(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordSubmission(outcome)
	}
}

func firstMessage(items []gatewaydomain.ItemError) string {
	if len(items) == 0 {
		return "no detail"
	}
	return items[0].Message
}
