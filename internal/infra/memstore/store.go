// Package memstore keeps every repository in process memory behind one mutex.
// Each repository call is atomic, which gives the same guarantees as the
// Postgres transactions for a single instance.
package memstore

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
)

type Store struct {
	mu sync.Mutex

	companies     map[string]*entity.Company
	leads         map[string]*entity.Lead
	purchases     map[string]*entity.Purchase
	leadPurchase  map[string]string
	recharges     map[string]*entity.Recharge
	subscriptions map[string]*entity.Subscription
	reports       map[string]*entity.Report
	notifications []*entity.Notification
	configs       []*entity.AppConfig
	ledger        []entity.LedgerEntry
}

func New() *Store {
	return &Store{
		companies:     map[string]*entity.Company{},
		leads:         map[string]*entity.Lead{},
		purchases:     map[string]*entity.Purchase{},
		leadPurchase:  map[string]string{},
		recharges:     map[string]*entity.Recharge{},
		subscriptions: map[string]*entity.Subscription{},
		reports:       map[string]*entity.Report{},
	}
}

// AddCompany seeds a company; an empty ID gets a fresh UUID.
func (s *Store) AddCompany(c *entity.Company) *entity.Company {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	cp := *c
	s.companies[c.ID] = &cp
	return c
}

func (s *Store) AddLead(l *entity.Lead) *entity.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *l
	s.leads[l.ID] = &cp
	return l
}

// Ledger returns the balance movements of a company in insertion order.
func (s *Store) Ledger(companyID string) []entity.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.LedgerEntry
	for _, e := range s.ledger {
		if e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) Companies() *CompanyRepository { return &CompanyRepository{s} }
func (s *Store) Leads() *LeadRepository { return &LeadRepository{s} }
func (s *Store) Purchases() *PurchaseRepository { return &PurchaseRepository{s} }
func (s *Store) Recharges() *RechargeRepository { return &RechargeRepository{s} }
func (s *Store) Subscriptions() *SubscriptionRepository { return &SubscriptionRepository{s} }
func (s *Store) Reports() *ReportRepository { return &ReportRepository{s} }
func (s *Store) Notifications() *NotificationRepository { return &NotificationRepository{s} }
func (s *Store) Config() *ConfigRepository { return &ConfigRepository{s} }

// credit and debit must be called with mu held.
func (s *Store) credit(change entity.BalanceChange) (int64, error) {
	if change.AmountCents <= 0 {
		return 0, entity.ErrInvalidAmount
	}
	c, ok := s.companies[change.CompanyID]
	if !ok {
		return 0, entity.ErrNotFound
	}
	c.BalanceCents += change.AmountCents
	s.appendLedger(change, change.AmountCents, c.BalanceCents)
	return c.BalanceCents, nil
}

func (s *Store) debit(change entity.BalanceChange) (int64, error) {
	if change.AmountCents <= 0 {
		return 0, entity.ErrInvalidAmount
	}
	c, ok := s.companies[change.CompanyID]
	if !ok {
		return 0, entity.ErrNotFound
	}
	if c.BalanceCents < change.AmountCents {
		return 0, entity.ErrInsufficientFunds
	}
	c.BalanceCents -= change.AmountCents
	s.appendLedger(change, -change.AmountCents, c.BalanceCents)
	return c.BalanceCents, nil
}

// checkpoint captures the rows a purchase mutates and returns a function that
// restores them. Must be called with mu held.
func (s *Store) checkpoint(c *entity.Company, sub *entity.Subscription) func() {
	company := *c
	ledgerLen := len(s.ledger)
	var subscription entity.Subscription
	if sub != nil {
		subscription = *sub
	}
	return func() {
		*c = company
		s.ledger = s.ledger[:ledgerLen]
		if sub != nil {
			*sub = subscription
		}
	}
}

func (s *Store) appendLedger(change entity.BalanceChange, signed, after int64) {
	s.ledger = append(s.ledger, entity.LedgerEntry{
		ID:                uuid.New().String(),
		CompanyID:         change.CompanyID,
		AmountCents:       signed,
		BalanceAfterCents: after,
		Kind:              change.Kind,
		ReferenceID:       change.ReferenceID,
		Description:       change.Description,
		CreatedAt:         time.Now(),
	})
}

func sortByCreated[T any](items []T, created func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool { return created(items[i]).Before(created(items[j])) })
}
