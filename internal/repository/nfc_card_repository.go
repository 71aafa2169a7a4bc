package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hadirku/presensi-api/internal/models"
)

// NFCCardRepository persists physical card registrations.
type NFCCardRepository struct {
	db *sqlx.DB
}

// NewNFCCardRepository constructs the repository.
func NewNFCCardRepository(db *sqlx.DB) *NFCCardRepository {
	return &NFCCardRepository{db: db}
}

const cardColumns = `id, user_id, nim, short_id, is_active, issued_at`

// Register deactivates any prior active card for the user and inserts the
// new registration in one transaction, keeping the one-active-card invariant.
func (r *NFCCardRepository) Register(ctx context.Context, card *models.NFCCard) (*models.NFCCard, error) {
	if card.ID == "" {
		card.ID = uuid.NewString()
	}
	if card.IssuedAt.IsZero() {
		card.IssuedAt = time.Now().UTC()
	}
	card.IsActive = true

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin card registration: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx,
		`UPDATE nfc_cards SET is_active = FALSE WHERE user_id = $1 AND is_active`, card.UserID); err != nil {
		return nil, fmt.Errorf("deactivate prior cards: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO nfc_cards (%s) VALUES ($1, $2, $3, $4, $5, $6) RETURNING %s`, cardColumns, cardColumns)
	var stored models.NFCCard
	if err := tx.GetContext(ctx, &stored, query,
		card.ID, card.UserID, card.NIM, card.ShortID, card.IsActive, card.IssuedAt); err != nil {
		return nil, fmt.Errorf("insert card: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit card registration: %w", err)
	}
	committed = true
	return &stored, nil
}

// GetByShortID fetches a registration by its tag alias.
func (r *NFCCardRepository) GetByShortID(ctx context.Context, shortID string) (*models.NFCCard, error) {
	query := fmt.Sprintf(`SELECT %s FROM nfc_cards WHERE short_id = $1`, cardColumns)
	var card models.NFCCard
	if err := r.db.GetContext(ctx, &card, query, shortID); err != nil {
		return nil, err
	}
	return &card, nil
}

// GetActiveByUser fetches the user's current active registration.
func (r *NFCCardRepository) GetActiveByUser(ctx context.Context, userID string) (*models.NFCCard, error) {
	query := fmt.Sprintf(`SELECT %s FROM nfc_cards WHERE user_id = $1 AND is_active`, cardColumns)
	var card models.NFCCard
	if err := r.db.GetContext(ctx, &card, query, userID); err != nil {
		return nil, err
	}
	return &card, nil
}

// ShortIDExists reports whether a tag alias is already taken.
func (r *NFCCardRepository) ShortIDExists(ctx context.Context, shortID string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM nfc_cards WHERE short_id = $1)`, shortID); err != nil {
		return false, fmt.Errorf("check short id: %w", err)
	}
	return exists, nil
}

// Deactivate marks a registration inactive. Idempotent.
func (r *NFCCardRepository) Deactivate(ctx context.Context, cardID string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE nfc_cards SET is_active = FALSE WHERE id = $1`, cardID); err != nil {
		return fmt.Errorf("deactivate card: %w", err)
	}
	return nil
}
