package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
	"github.com/xavierca1/crebit-marketplace/internal/infra/queue"
)

type ReportUseCase struct {
	Reports   entity.ReportRepository
	Purchases entity.PurchaseRepository
	Companies entity.CompanyRepository
	Queue     QueueProducerInterface
	Logger    logrus.FieldLogger
	Now       func() time.Time
}

func NewReportUseCase(
	reports entity.ReportRepository,
	purchases entity.PurchaseRepository,
	companies entity.CompanyRepository,
	queue QueueProducerInterface,
	logger logrus.FieldLogger,
) *ReportUseCase {
	return &ReportUseCase{
		Reports:   reports,
		Purchases: purchases,
		Companies: companies,
		Queue:     queue,
		Logger:    logger,
		Now:       time.Now,
	}
}

// Create files a report against a lead the company bought.
func (uc *ReportUseCase) Create(ctx context.Context, input CreateReportInput) (*entity.Report, error) {
	if errs := ValidateCreateReportInput(input); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	if _, err := uc.Purchases.FindByCompanyAndLead(ctx, input.CompanyID, input.LeadID); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, classify(entity.ErrForbidden, "report")
		}
		return nil, classify(err, "failed to load purchase")
	}

	report := entity.NewReport(input.CompanyID, input.LeadID, input.Reason, input.Comment)
	if err := uc.Reports.Create(ctx, report); err != nil {
		return nil, classify(err, "failed to create report")
	}

	uc.Logger.WithFields(logrus.Fields{
		"report_id":  report.ID,
		"company_id": report.CompanyID,
		"lead_id":    report.LeadID,
		"reason":     report.Reason,
	}).Info("report created")
	return report, nil
}

func (uc *ReportUseCase) MarkInReview(ctx context.Context, reportID string) error {
	if err := uc.Reports.MarkInReview(ctx, reportID); err != nil {
		return classify(err, "failed to mark report in review")
	}
	return nil
}

// Resolve applies an approved or rejected decision once. Approval refunds the
// purchase price to the reporting company in the same transaction.
func (uc *ReportUseCase) Resolve(ctx context.Context, reportID string, decision entity.ReportStatus) (*entity.ReportResolution, error) {
	if !decision.IsDecision() {
		return nil, ValidationErrors{{Field: "decision", Message: "must be approved or rejected"}}
	}

	var res *entity.ReportResolution
	err := withConflictRetry(ctx, func() error {
		var err error
		res, err = uc.Reports.Resolve(ctx, reportID, decision, uc.Now())
		return err
	})
	if err != nil {
		return nil, classify(err, "failed to resolve report")
	}

	uc.Logger.WithFields(logrus.Fields{
		"report_id":      reportID,
		"decision":       decision,
		"refunded_cents": res.RefundedCents,
	}).Info("report resolved")

	if company, err := uc.Companies.FindByID(ctx, res.Report.CompanyID); err == nil {
		message := fmt.Sprintf("Tu reporte del lead %s fue rechazado.", res.Report.LeadID)
		if decision == entity.ReportApproved {
			message = fmt.Sprintf("Tu reporte del lead %s fue aprobado. Reembolso: $%s.", res.Report.LeadID, formatPesos(res.RefundedCents))
		}
		publishNotification(ctx, uc.Queue, uc.Logger, queue.NotificationPayload{
			UserID:  company.UserID,
			Email:   company.Email,
			Kind:    queue.KindReport,
			Message: message,
			Link:    "/reportes",
		})
	}
	return res, nil
}
