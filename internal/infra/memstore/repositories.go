package memstore

import (
	"context"
	"maps"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
)

type CompanyRepository struct{ s *Store }

func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.companies[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *CompanyRepository) FindByUserID(ctx context.Context, userID string) (*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.companies {
		if c.UserID == userID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r *CompanyRepository) UpdatePlan(ctx context.Context, id string, plan entity.Plan) (*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.companies[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	c.Plan = plan
	cp := *c
	return &cp, nil
}

func (r *CompanyRepository) Credit(ctx context.Context, change entity.BalanceChange) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.credit(change)
}

func (r *CompanyRepository) Debit(ctx context.Context, change entity.BalanceChange) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.debit(change)
}

type LeadRepository struct{ s *Store }

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	r.s.AddLead(lead)
	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.leads[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *LeadRepository) ListOffered(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.Lead
	for _, l := range r.s.leads {
		if !l.Purchasable() {
			continue
		}
		if filter.Vertical != nil && l.Vertical != *filter.Vertical {
			continue
		}
		if filter.Risk != nil && l.Risk != *filter.Risk {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, from, to entity.LeadStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.leads[id]
	if !ok {
		return entity.ErrNotFound
	}
	if l.Status != from || l.Sold {
		return entity.ErrInvalidTransition
	}
	l.Status = to
	return nil
}

type PurchaseRepository struct{ s *Store }

// Purchase validates every condition before mutating anything, and restores the
// company, subscription and ledger if a mutation still fails.
func (r *PurchaseRepository) Purchase(ctx context.Context, req entity.PurchaseRequest) (*entity.PurchaseReceipt, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	lead, ok := r.s.leads[req.LeadID]
	if !ok || !lead.Purchasable() {
		return nil, entity.ErrLeadUnavailable
	}
	if _, sold := r.s.leadPurchase[req.LeadID]; sold {
		return nil, entity.ErrLeadUnavailable
	}
	company, ok := r.s.companies[req.CompanyID]
	if !ok {
		return nil, entity.ErrNotFound
	}
	if !company.Active {
		return nil, entity.ErrForbidden
	}

	var sub *entity.Subscription
	if req.SubscriptionID != "" {
		sub, ok = r.s.subscriptions[req.SubscriptionID]
		if !ok || sub.CompanyID != req.CompanyID {
			return nil, entity.ErrQuotaExceeded
		}
		probe := *sub
		if err := probe.ConsumeQuota(req.Now); err != nil {
			return nil, err
		}
	}

	free := company.HasFreeLead() && lead.PriceCents > 0
	price := lead.PriceCents
	if free {
		price = 0
	}
	if price > company.BalanceCents {
		return nil, entity.ErrInsufficientFunds
	}

	purchase := &entity.Purchase{
		ID:          uuid.New().String(),
		CompanyID:   req.CompanyID,
		LeadID:      req.LeadID,
		PriceCents:  price,
		Plan:        company.Plan,
		PurchasedAt: req.Now,
	}

	rollback := r.s.checkpoint(company, sub)
	if price > 0 {
		if _, err := r.s.debit(entity.BalanceChange{
			CompanyID:   req.CompanyID,
			AmountCents: price,
			Kind:        entity.LedgerPurchase,
			ReferenceID: purchase.ID,
			Description: "lead " + req.LeadID,
		}); err != nil {
			rollback()
			return nil, err
		}
	}
	if sub != nil {
		if err := sub.ConsumeQuota(req.Now); err != nil {
			rollback()
			return nil, err
		}
	}
	if free {
		company.FreeLeadsUsed++
	}
	company.PurchasedLeads++

	soldAt := req.Now
	lead.Status = entity.LeadSold
	lead.Sold = true
	lead.SoldAt = &soldAt
	lead.BuyerCompanyID = req.CompanyID

	r.s.purchases[purchase.ID] = purchase
	r.s.leadPurchase[req.LeadID] = purchase.ID

	cp := *purchase
	return &entity.PurchaseReceipt{Purchase: &cp, BalanceCents: company.BalanceCents, FreeLead: free}, nil
}

func (r *PurchaseRepository) FindByID(ctx context.Context, id string) (*entity.Purchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.purchases[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *PurchaseRepository) FindByCompanyAndLead(ctx context.Context, companyID, leadID string) (*entity.Purchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.leadPurchase[leadID]
	if !ok || r.s.purchases[id].CompanyID != companyID {
		return nil, entity.ErrNotFound
	}
	cp := *r.s.purchases[id]
	return &cp, nil
}

func (r *PurchaseRepository) MarkConverted(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.purchases[id]
	if !ok {
		return entity.ErrNotFound
	}
	p.Converted = true
	if l, ok := r.s.leads[p.LeadID]; ok {
		l.Converted = true
	}
	return nil
}

type RechargeRepository struct{ s *Store }

func (r *RechargeRepository) Apply(ctx context.Context, rc *entity.Recharge) (bool, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.companies[rc.CompanyID]
	if !ok {
		return false, 0, entity.ErrNotFound
	}
	if _, seen := r.s.recharges[rc.GatewayTransactionID]; seen {
		return false, c.BalanceCents, nil
	}
	balance, err := r.s.credit(entity.BalanceChange{
		CompanyID:   rc.CompanyID,
		AmountCents: rc.AmountCents,
		Kind:        entity.LedgerRecharge,
		ReferenceID: rc.GatewayTransactionID,
		Description: rc.Reference,
	})
	if err != nil {
		return false, 0, err
	}
	cp := *rc
	r.s.recharges[rc.GatewayTransactionID] = &cp
	return true, balance, nil
}

type SubscriptionRepository struct{ s *Store }

func (r *SubscriptionRepository) Create(ctx context.Context, sub *entity.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *sub
	r.s.subscriptions[sub.ID] = &cp
	return nil
}

func (r *SubscriptionRepository) Update(ctx context.Context, sub *entity.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.subscriptions[sub.ID]
	if !ok {
		return entity.ErrNotFound
	}
	cur.Name = sub.Name
	cur.Criteria = sub.Criteria
	cur.MaxDailyPurchases = sub.MaxDailyPurchases
	cur.DailyPurchases = min(cur.DailyPurchases, sub.MaxDailyPurchases)
	cur.Active = sub.Active
	cur.AutoPurchase = sub.AutoPurchase
	cur.UpdatedAt = sub.UpdatedAt
	return nil
}

func (r *SubscriptionRepository) FindByID(ctx context.Context, id string) (*entity.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sub, ok := r.s.subscriptions[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

func (r *SubscriptionRepository) ListByCompany(ctx context.Context, companyID string) ([]*entity.Subscription, error) {
	return r.filter(func(s *entity.Subscription) bool { return s.CompanyID == companyID }), nil
}

func (r *SubscriptionRepository) ListActiveByCompany(ctx context.Context, companyID string) ([]*entity.Subscription, error) {
	return r.filter(func(s *entity.Subscription) bool { return s.CompanyID == companyID && s.Active }), nil
}

func (r *SubscriptionRepository) ListActiveAutoPurchase(ctx context.Context) ([]*entity.Subscription, error) {
	return r.filter(func(s *entity.Subscription) bool { return s.Active && s.AutoPurchase }), nil
}

func (r *SubscriptionRepository) filter(keep func(*entity.Subscription) bool) []*entity.Subscription {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Subscription
	for _, sub := range r.s.subscriptions {
		if keep(sub) {
			cp := *sub
			out = append(out, &cp)
		}
	}
	sortByCreated(out, func(s *entity.Subscription) time.Time { return s.CreatedAt })
	return out
}

func (r *SubscriptionRepository) SetActive(ctx context.Context, id string, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sub, ok := r.s.subscriptions[id]
	if !ok {
		return entity.ErrNotFound
	}
	sub.Active = active
	sub.UpdatedAt = time.Now()
	return nil
}

func (r *SubscriptionRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.subscriptions[id]; !ok {
		return entity.ErrNotFound
	}
	delete(r.s.subscriptions, id)
	return nil
}

func (r *SubscriptionRepository) ResetExpiredWindows(ctx context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, sub := range r.s.subscriptions {
		if sub.WindowStartedAt != nil && entity.WindowExpired(sub.WindowStartedAt, now) {
			sub.WindowStartedAt = nil
			sub.DailyPurchases = 0
			n++
		}
	}
	return n, nil
}

type ReportRepository struct{ s *Store }

func (r *ReportRepository) Create(ctx context.Context, report *entity.Report) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rep := range r.s.reports {
		if rep.CompanyID == report.CompanyID && rep.LeadID == report.LeadID && rep.Status.BlocksNewReport() {
			return entity.ErrAlreadyReported
		}
	}
	cp := *report
	r.s.reports[report.ID] = &cp
	return nil
}

func (r *ReportRepository) FindByID(ctx context.Context, id string) (*entity.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rep, ok := r.s.reports[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := *rep
	return &cp, nil
}

func (r *ReportRepository) MarkInReview(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rep, ok := r.s.reports[id]
	if !ok {
		return entity.ErrNotFound
	}
	if rep.Status != entity.ReportPending {
		return entity.ErrInvalidTransition
	}
	rep.Status = entity.ReportInReview
	return nil
}

func (r *ReportRepository) Resolve(ctx context.Context, id string, decision entity.ReportStatus, now time.Time) (*entity.ReportResolution, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rep, ok := r.s.reports[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	if !rep.Status.CanResolve() {
		return nil, entity.ErrAlreadyResolved
	}

	res := &entity.ReportResolution{}
	if decision == entity.ReportApproved {
		pid, ok := r.s.leadPurchase[rep.LeadID]
		if !ok || r.s.purchases[pid].CompanyID != rep.CompanyID {
			return nil, entity.ErrNotFound
		}
		purchase := r.s.purchases[pid]
		if purchase.RefundedAt != nil {
			return nil, entity.ErrAlreadyResolved
		}
		if price := purchase.PriceCents; price > 0 {
			balance, err := r.s.credit(entity.BalanceChange{
				CompanyID:   rep.CompanyID,
				AmountCents: price,
				Kind:        entity.LedgerRefund,
				ReferenceID: pid,
				Description: "report " + id,
			})
			if err != nil {
				return nil, err
			}
			res.RefundedCents = price
			res.BalanceCents = balance
		}
		refundedAt := now
		purchase.RefundedAt = &refundedAt
	}

	resolvedAt := now
	rep.Status = decision
	rep.ResolvedAt = &resolvedAt
	cp := *rep
	res.Report = &cp
	return res, nil
}

type NotificationRepository struct{ s *Store }

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *n
	r.s.notifications = append(r.s.notifications, &cp)
	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*entity.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Notification
	for i := len(r.s.notifications) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if n := r.s.notifications[i]; n.UserID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range r.s.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

type ConfigRepository struct{ s *Store }

func (r *ConfigRepository) Latest(ctx context.Context) (*entity.AppConfig, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if len(r.s.configs) == 0 {
		return nil, entity.ErrNotFound
	}
	return cloneConfig(r.s.configs[len(r.s.configs)-1]), nil
}

func (r *ConfigRepository) Save(ctx context.Context, cfg *entity.AppConfig) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.configs {
		if c.Version >= cfg.Version {
			return entity.ErrStorageConflict
		}
	}
	r.s.configs = append(r.s.configs, cloneConfig(cfg))
	return nil
}

func cloneConfig(c *entity.AppConfig) *entity.AppConfig {
	cp := *c
	cp.LeadPrices = maps.Clone(c.LeadPrices)
	cp.CommissionRates = maps.Clone(c.CommissionRates)
	return &cp
}
