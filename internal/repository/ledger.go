package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/BerylCAtieno/smart-doc-analysis/internal/models"
	"github.com/jmoiron/sqlx"
)

// Charge is one debit or credit applied to an account.
type Charge struct {
	Event        models.UsageEvent
	DeltaCredits int64
	DeltaSpent   int64
	Questions    int
	Reports      int
}

type LedgerRepository interface {
	GetUser(ctx context.Context, userID string) (*models.UserAccount, error)
	CreateUser(ctx context.Context, user *models.UserAccount) error
	Apply(ctx context.Context, charge Charge) error
	ListEvents(ctx context.Context, userID string) ([]models.UsageEvent, error)
}

type ledgerRepository struct {
	db *sqlx.DB
}

func NewLedgerRepository(db *sqlx.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) GetUser(ctx context.Context, userID string) (*models.UserAccount, error) {
	var user models.UserAccount

	query := `
		SELECT user_id, credits_cents, questions_asked, reports_generated, spent_cents, created_at, updated_at
		FROM billing_users
		WHERE user_id = ?
	`

	err := r.db.GetContext(ctx, &user, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *ledgerRepository) CreateUser(ctx context.Context, user *models.UserAccount) error {
	query := `
		INSERT INTO billing_users (user_id, credits_cents, questions_asked, reports_generated, spent_cents, created_at, updated_at)
		VALUES (:user_id, :credits_cents, :questions_asked, :reports_generated, :spent_cents, :created_at, :updated_at)
		ON CONFLICT (user_id) DO NOTHING
	`

	_, err := r.db.NamedExecContext(ctx, query, user)
	return err
}

// Apply updates the account counters and records the usage event atomically.
func (r *ledgerRepository) Apply(ctx context.Context, charge Charge) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	update := `
		UPDATE billing_users
		SET credits_cents = credits_cents + ?,
		    spent_cents = spent_cents + ?,
		    questions_asked = questions_asked + ?,
		    reports_generated = reports_generated + ?,
		    updated_at = ?
		WHERE user_id = ?
	`
	res, err := tx.ExecContext(ctx, update,
		charge.DeltaCredits,
		charge.DeltaSpent,
		charge.Questions,
		charge.Reports,
		time.Now().UTC(),
		charge.Event.UserID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}

	insert := `
		INSERT INTO usage_events (id, user_id, kind, label, correlation_id, amount_cents, success, created_at)
		VALUES (:id, :user_id, :kind, :label, :correlation_id, :amount_cents, :success, :created_at)
	`
	if _, err := tx.NamedExecContext(ctx, insert, charge.Event); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *ledgerRepository) ListEvents(ctx context.Context, userID string) ([]models.UsageEvent, error) {
	events := []models.UsageEvent{}

	query := `
		SELECT id, user_id, kind, label, correlation_id, amount_cents, success, created_at
		FROM usage_events
		WHERE user_id = ?
		ORDER BY rowid
	`

	if err := r.db.SelectContext(ctx, &events, query, userID); err != nil {
		return nil, err
	}

	return events, nil
}
