package main

import (
	"database/sql"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
	"github.com/xavierca1/crebit-marketplace/internal/infra/database"
	"github.com/xavierca1/crebit-marketplace/internal/infra/memstore"
)

type repositories struct {
	Companies     entity.CompanyRepository
	Leads         entity.LeadRepository
	Purchases     entity.PurchaseRepository
	Recharges     entity.RechargeRepository
	Subscriptions entity.SubscriptionRepository
	Reports       entity.ReportRepository
	Notifications entity.NotificationRepository
	Config        entity.ConfigRepository
}

func postgresRepositories(db *sql.DB) repositories {
	return repositories{
		Companies:     database.NewCompanyRepository(db),
		Leads:         database.NewLeadRepository(db),
		Purchases:     database.NewPurchaseRepository(db),
		Recharges:     database.NewRechargeRepository(db),
		Subscriptions: database.NewSubscriptionRepository(db),
		Reports:       database.NewReportRepository(db),
		Notifications: database.NewNotificationRepository(db),
		Config:        database.NewConfigRepository(db),
	}
}

func memoryRepositories(store *memstore.Store) repositories {
	return repositories{
		Companies:     store.Companies(),
		Leads:         store.Leads(),
		Purchases:     store.Purchases(),
		Recharges:     store.Recharges(),
		Subscriptions: store.Subscriptions(),
		Reports:       store.Reports(),
		Notifications: store.Notifications(),
		Config:        store.Config(),
	}
}
