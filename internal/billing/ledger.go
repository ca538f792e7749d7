// Package billing tracks per-user credits and usage counters.
package billing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/BerylCAtieno/smart-doc-analysis/internal/models"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/repository"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/utils"
)

var ErrInsufficientCredits = errors.New("insufficient credits")

const (
	KindQuestion = "question"
	KindReport   = "report"
	KindCredit   = "credit"
)

type Options struct {
	InitialCredits   float64
	PricePerQuestion float64
	PricePerReport   float64
}

// Ledger serializes every balance change behind one mutex, so concurrent
// requests never double-spend.
type Ledger struct {
	repo    repository.LedgerRepository
	logger  *utils.Logger
	opts    Options
	mu      sync.Mutex
	nowFunc func() time.Time
}

func NewLedger(repo repository.LedgerRepository, opts Options, logger *utils.Logger) *Ledger {
	return &Ledger{
		repo:    repo,
		logger:  logger,
		opts:    opts,
		nowFunc: time.Now,
	}
}

func (l *Ledger) Pricing() models.Pricing {
	return models.Pricing{
		PricePerQuestion: l.opts.PricePerQuestion,
		PricePerReport:   l.opts.PricePerReport,
	}
}

// BillQuestion charges user for one answered question. Unsuccessful
// questions are recorded at zero cost.
func (l *Ledger) BillQuestion(ctx context.Context, user, query, correlationID string, success bool) error {
	return l.bill(ctx, user, KindQuestion, query, correlationID, l.opts.PricePerQuestion, success)
}

// BillReport charges user for one generated report. Unsuccessful reports
// are recorded at zero cost.
func (l *Ledger) BillReport(ctx context.Context, user, label, correlationID string, success bool) error {
	return l.bill(ctx, user, KindReport, label, correlationID, l.opts.PricePerReport, success)
}

// CanAffordReport reports whether user's balance covers one report.
func (l *Ledger) CanAffordReport(ctx context.Context, user string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, err := l.getOrCreate(ctx, user)
	if err != nil {
		return false, err
	}
	return account.CreditsCents >= models.DollarsToCents(l.opts.PricePerReport), nil
}

func (l *Ledger) bill(ctx context.Context, user, kind, label, correlationID string, price float64, success bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, err := l.getOrCreate(ctx, user)
	if err != nil {
		return err
	}

	cost := int64(0)
	if success {
		cost = models.DollarsToCents(price)
	}
	if account.CreditsCents < cost {
		l.logger.Warn("Insufficient credits", "user", user, "kind", kind, "balance", account.CreditsBalance())
		return fmt.Errorf("%w: balance $%.2f, price $%.2f", ErrInsufficientCredits, account.CreditsBalance(), price)
	}

	charge := repository.Charge{
		Event:        l.event(user, kind, label, correlationID, cost, success),
		DeltaCredits: -cost,
		DeltaSpent:   cost,
	}
	if success {
		switch kind {
		case KindQuestion:
			charge.Questions = 1
		case KindReport:
			charge.Reports = 1
		}
	}

	if err := l.repo.Apply(ctx, charge); err != nil {
		return fmt.Errorf("failed to record %s charge: %w", kind, err)
	}

	l.logger.Info("Usage billed", "user", user, "kind", kind, "correlation_id", correlationID, "amount", models.CentsToDollars(cost), "success", success)
	return nil
}

func (l *Ledger) AddCredits(ctx context.Context, user string, amount float64, reason string) error {
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive, got %.2f", amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.getOrCreate(ctx, user); err != nil {
		return err
	}

	cents := models.DollarsToCents(amount)
	charge := repository.Charge{
		Event:        l.event(user, KindCredit, reason, utils.CorrelationID("credit"), cents, true),
		DeltaCredits: cents,
	}
	if err := l.repo.Apply(ctx, charge); err != nil {
		return fmt.Errorf("failed to add credits: %w", err)
	}

	l.logger.Info("Credits added", "user", user, "amount", amount, "reason", reason)
	return nil
}

func (l *Ledger) GetOrCreateUser(ctx context.Context, user string) (*models.UserAccount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.getOrCreate(ctx, user)
}

func (l *Ledger) GetUsageSummary(ctx context.Context, user string) (*models.UsageSummary, error) {
	account, err := l.GetOrCreateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	return &models.UsageSummary{
		CreditsBalance:   account.CreditsBalance(),
		QuestionsAsked:   account.QuestionsAsked,
		ReportsGenerated: account.ReportsGenerated,
		TotalSpent:       models.CentsToDollars(account.SpentCents),
		Pricing:          l.Pricing(),
	}, nil
}

// getOrCreate must be called with l.mu held.
func (l *Ledger) getOrCreate(ctx context.Context, user string) (*models.UserAccount, error) {
	if user == "" {
		return nil, fmt.Errorf("user is required")
	}

	account, err := l.repo.GetUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account != nil {
		return account, nil
	}

	now := l.nowFunc().UTC()
	account = &models.UserAccount{
		UserID:       user,
		CreditsCents: models.DollarsToCents(l.opts.InitialCredits),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := l.repo.CreateUser(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	l.logger.Info("Billing account created", "user", user, "credits", l.opts.InitialCredits)
	return account, nil
}

func (l *Ledger) event(user, kind, label, correlationID string, cents int64, success bool) models.UsageEvent {
	return models.UsageEvent{
		ID:            utils.GenerateID(),
		UserID:        user,
		Kind:          kind,
		Label:         label,
		CorrelationID: correlationID,
		AmountCents:   cents,
		Success:       success,
		CreatedAt:     l.nowFunc().UTC(),
	}
}
