package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"venuebooking/internal/domain"
)

const invitationColumns = `id, token, event_id, performer_email, created_at, expires_at, claimed`

type eventInvitationRepository struct {
	DB *sql.DB
}

func NewEventInvitationRepository(db *sql.DB) domain.EventInvitationRepository {
	return &eventInvitationRepository{
		DB: db,
	}
}

func scanInvitation(row rowScanner) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	if err := row.Scan(&inv.ID, &inv.Token, &inv.EventID, &inv.PerformerEmail, &inv.CreatedAt, &inv.ExpiresAt, &inv.Claimed); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *eventInvitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	query := `
		INSERT INTO invitations (id, token, event_id, performer_email, created_at, expires_at, claimed)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.DB.ExecContext(ctx, query,
		inv.ID, inv.Token, inv.EventID, inv.PerformerEmail, inv.CreatedAt, inv.ExpiresAt, inv.Claimed,
	)
	return err
}

func (r *eventInvitationRepository) ListByEventID(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM invitations WHERE event_id = $1`, eventID).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `SELECT ` + invitationColumns + `
		FROM invitations
		WHERE event_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	limit := sql.NullInt64{Int64: int64(params.Limit()), Valid: params.Limit() > 0}
	rows, err := r.DB.QueryContext(ctx, query, eventID, limit, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	invs := make([]*domain.Invitation, 0)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, 0, err
		}
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return invs, total, nil
}

// Redeem locks the invitation row, claims it with a conditional update and
// inserts the booking in the same transaction, so two concurrent redemptions
// of one token cannot both produce a booking.
func (r *eventInvitationRepository) Redeem(ctx context.Context, token string, now time.Time, build domain.BookingBuilder) (booking *domain.Booking, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	inv, err := scanInvitation(tx.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE token = $1 FOR UPDATE`, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("lock invitation: %w", err)
	}
	if err = inv.RedeemCheck(now); err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx, `UPDATE invitations SET claimed = TRUE WHERE id = $1 AND claimed = FALSE`, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("claim invitation: %w", err)
	}
	claimed, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("claim invitation: %w", err)
	}
	if claimed != 1 {
		return nil, domain.ErrAlreadyClaimed
	}
	inv.Claimed = true

	event, err := scanEvent(tx.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, inv.EventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	booking = build(inv, event)
	if err = insertBooking(ctx, tx, booking); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyClaimed
		}
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit redemption: %w", err)
	}
	return booking, nil
}
