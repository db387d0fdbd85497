// Package app assembles the loyalty services over one record store. The
// HTTP router and the command line share the same wiring.
package app

import (
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/loyalty-bot-backend/internal/config"
	"github.com/tbourn/loyalty-bot-backend/internal/http/handlers"
	"github.com/tbourn/loyalty-bot-backend/internal/notify"
	"github.com/tbourn/loyalty-bot-backend/internal/repo"
	"github.com/tbourn/loyalty-bot-backend/internal/services"
)

// App holds the wired services and their shared in-process state.
type App struct {
	Store     *repo.SheetStore
	Vendors   *services.VendorDirectory
	Tickets   *services.TicketStore
	Sessions  *services.PurchaseSessions
	Issuer    *services.Issuer
	Redeemer  *services.Redeemer
	Purchases *services.PurchaseService
	Customers *services.CustomerService
	Reports   *services.ReportService
	Admin     *services.AdminService
	Sweeper   *services.Sweeper
	Replays   *repo.Replays
}

// New wires every service over db. A nil notifier falls back to
// notify.LogNotifier; nil metrics are discarded.
func New(db *gorm.DB, cfg config.Config, n notify.Notifier, m services.Metrics) *App {
	if n == nil {
		n = notify.LogNotifier{}
	}
	l := cfg.Loyalty

	store := repo.NewSheetStore(db)
	store.Latency = cfg.StoreLatency

	rows := &services.RowGuard{}
	vendors := &services.VendorDirectory{
		Store:     store,
		AdminID:   l.AdminID,
		AdminName: l.AdminName,
		TTL:       l.VendorCacheTTL,
		Metrics:   m,
	}
	tickets := services.NewTicketStore(l.TicketTTL)
	sessions := services.NewPurchaseSessions(l.SessionTTL)

	issuer := &services.Issuer{
		Tickets:      tickets,
		Notifier:     n,
		DeepLinkBase: l.DeepLinkBase,
		Threshold:    l.RewardThreshold,
		SaleValue:    l.SaleValue,
		Metrics:      m,
	}
	redeemer := &services.Redeemer{
		Store:     store,
		Tickets:   tickets,
		Vendors:   vendors,
		Notifier:  n,
		Threshold: l.RewardThreshold,
		SaleValue: l.SaleValue,
		Metrics:   m,
		Rows:      rows,
	}
	customers := &services.CustomerService{
		Store:     store,
		Vendors:   vendors,
		Threshold: l.RewardThreshold,
		Location:  time.Local,
		Rows:      rows,
	}

	return &App{
		Store:     store,
		Vendors:   vendors,
		Tickets:   tickets,
		Sessions:  sessions,
		Issuer:    issuer,
		Redeemer:  redeemer,
		Customers: customers,
		Purchases: &services.PurchaseService{
			Store:     store,
			Vendors:   vendors,
			Sessions:  sessions,
			Issuer:    issuer,
			Threshold: l.RewardThreshold,
			Metrics:   m,
		},
		Reports: &services.ReportService{
			Store:     store,
			Vendors:   vendors,
			Tickets:   tickets,
			Sessions:  sessions,
			Threshold: l.RewardThreshold,
			SaleValue: l.SaleValue,
			Location:  time.Local,
		},
		Admin: &services.AdminService{
			Vendors:   vendors,
			Tickets:   tickets,
			Sessions:  sessions,
			Pending:   services.NewPendingInputs(),
			Customers: customers,
			Metrics:   m,
		},
		Sweeper: &services.Sweeper{
			Tickets:  tickets,
			Sessions: sessions,
			Interval: l.SweepInterval,
			Metrics:  m,
		},
		Replays: &repo.Replays{DB: db, TTL: cfg.IdempotencyTTL},
	}
}

// Services exposes the app to the HTTP handlers.
func (a *App) Services() handlers.Services {
	return handlers.Services{
		Vendors:     a.Vendors,
		Customers:   a.Customers,
		Purchases:   a.Purchases,
		Redemptions: a.Redeemer,
		Reports:     a.Reports,
		Admin:       a.Admin,
		Replays:     a.Replays,
	}
}

// NewNotifier picks the delivery transport: a webhook when one is
// configured, the log otherwise.
func NewNotifier(cfg config.NotifyConfig) notify.Notifier {
	switch {
	case cfg.WebhookURL == "":
		log.Warn().Msg("NOTIFY_WEBHOOK_URL not set; deliveries are only logged")
		return notify.LogNotifier{}
	case cfg.SafeClient:
		return notify.NewSafeWebhookNotifier(cfg.WebhookURL, cfg.Timeout)
	default:
		return notify.NewWebhookNotifier(cfg.WebhookURL, cfg.Timeout)
	}
}
