package usecase

import (
	"context"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
)

type CompanyUseCase struct {
	Companies entity.CompanyRepository
}

func NewCompanyUseCase(companies entity.CompanyRepository) *CompanyUseCase {
	return &CompanyUseCase{Companies: companies}
}

// ByUser resolves the company owned by an authenticated user.
func (uc *CompanyUseCase) ByUser(ctx context.Context, userID string) (*entity.Company, error) {
	if userID == "" {
		return nil, classify(entity.ErrUnauthenticated, "company")
	}
	company, err := uc.Companies.FindByUserID(ctx, userID)
	if err != nil {
		return nil, classify(err, "failed to load company")
	}
	return company, nil
}

// ChangePlan moves a company to another tier. Purchases keep the plan recorded
// when they were made; the free tier applies from the next purchase.
func (uc *CompanyUseCase) ChangePlan(ctx context.Context, companyID string, plan entity.Plan) (*entity.Company, error) {
	if !plan.Valid() {
		return nil, ValidationErrors{{Field: "plan", Message: "must be freemium, basic, professional or enterprise"}}
	}
	company, err := uc.Companies.UpdatePlan(ctx, companyID, plan)
	if err != nil {
		return nil, classify(err, "failed to change plan")
	}
	return company, nil
}
