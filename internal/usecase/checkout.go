package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
)

const referencePrefix = "crebit-"

// BuildReference produces crebit-<companyID>-<unixMillis>.
func BuildReference(companyID string, at time.Time) string {
	return referencePrefix + companyID + "-" + strconv.FormatInt(at.UnixMilli(), 10)
}

// ParseReference extracts the company id from a checkout reference. Company ids are
// UUIDs and contain dashes, so the id is everything between the prefix and the last dash.
func ParseReference(reference string) (string, error) {
	rest, ok := strings.CutPrefix(reference, referencePrefix)
	if !ok {
		return "", entity.ErrMalformedReference
	}
	i := strings.LastIndex(rest, "-")
	if i <= 0 || i == len(rest)-1 {
		return "", entity.ErrMalformedReference
	}
	companyID, suffix := rest[:i], rest[i+1:]
	if _, err := strconv.ParseUint(suffix, 10, 64); err != nil {
		return "", entity.ErrMalformedReference
	}
	if _, err := uuid.Parse(companyID); err != nil {
		return "", entity.ErrMalformedReference
	}
	return companyID, nil
}

func sha256Hex(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "")))
	return hex.EncodeToString(sum[:])
}

// IntegritySignature is the widget checksum: sha256(reference + amount + currency + secret).
func IntegritySignature(reference string, amountInCents int64, currency, secret string) string {
	return sha256Hex(reference, strconv.FormatInt(amountInCents, 10), currency, secret)
}

type CreateCheckoutUseCase struct {
	Companies       entity.CompanyRepository
	PublicKey       string
	IntegritySecret string
	Currency        string
	Logger          logrus.FieldLogger
	Now             func() time.Time
}

func NewCreateCheckoutUseCase(companies entity.CompanyRepository, publicKey, integritySecret, currency string, logger logrus.FieldLogger) *CreateCheckoutUseCase {
	return &CreateCheckoutUseCase{
		Companies:       companies,
		PublicKey:       publicKey,
		IntegritySecret: integritySecret,
		Currency:        currency,
		Logger:          logger,
		Now:             time.Now,
	}
}

func (uc *CreateCheckoutUseCase) Execute(ctx context.Context, input CreateCheckoutInput) (*CreateCheckoutOutput, error) {
	if input.UserID == "" {
		return nil, classify(entity.ErrUnauthenticated, "checkout")
	}
	if input.AmountInCents <= 0 {
		return nil, classify(entity.ErrInvalidAmount, "checkout")
	}
	if uc.IntegritySecret == "" {
		return nil, &TechnicalError{Code: "CHECKOUT_NOT_CONFIGURED", Message: "integrity secret not configured"}
	}

	company, err := uc.Companies.FindByUserID(ctx, input.UserID)
	if err != nil {
		return nil, classify(err, "failed to load company")
	}

	reference := BuildReference(company.ID, uc.Now())
	out := &CreateCheckoutOutput{
		Reference:     reference,
		Signature:     IntegritySignature(reference, input.AmountInCents, uc.Currency, uc.IntegritySecret),
		AmountInCents: input.AmountInCents,
		Currency:      uc.Currency,
		PublicKey:     uc.PublicKey,
	}

	uc.Logger.WithFields(logrus.Fields{
		"company_id":      company.ID,
		"reference":       reference,
		"amount_in_cents": input.AmountInCents,
	}).Info("checkout created")
	return out, nil
}
