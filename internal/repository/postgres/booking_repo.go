package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"venuebooking/internal/domain"
)

const bookingColumns = `id, event_id, performer_name, performer_email, performer_id, event_title, event_date,
		event_start_time, event_end_time, notes, status, invitation_token, created_at, approved_at`

type bookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(db *sql.DB) domain.BookingRepository {
	return &bookingRepository{
		DB: db,
	}
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	b := &domain.Booking{}
	var status string
	var approvedNull sql.NullTime
	err := row.Scan(
		&b.ID, &b.EventID, &b.PerformerName, &b.PerformerEmail, &b.PerformerID, &b.EventTitle, &b.EventDate,
		&b.EventStartTime, &b.EventEndTime, &b.Notes, &status, &b.InvitationToken, &b.CreatedAt, &approvedNull,
	)
	if err != nil {
		return nil, err
	}
	b.Status = domain.BookingStatus(status)
	if approvedNull.Valid {
		b.ApprovedAt = &approvedNull.Time
	}
	return b, nil
}

// insertBooking is shared with the invitation redemption transaction.
func insertBooking(ctx context.Context, tx *sql.Tx, b *domain.Booking) error {
	query := `
		INSERT INTO bookings (id, event_id, performer_name, performer_email, performer_id, event_title, event_date,
			event_start_time, event_end_time, notes, status, invitation_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := tx.ExecContext(ctx, query,
		b.ID, b.EventID, b.PerformerName, b.PerformerEmail, b.PerformerID, b.EventTitle, b.EventDate,
		b.EventStartTime, b.EventEndTime, b.Notes, string(b.Status), b.InvitationToken, b.CreatedAt,
	)
	return err
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE id = $1
	`
	b, err := scanBooking(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) ListByStatus(ctx context.Context, status domain.BookingStatus) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = $1
		ORDER BY created_at
	`
	return r.list(ctx, query, string(status))
}

func (r *bookingRepository) ListByEventAndStatus(ctx context.Context, eventID string, status domain.BookingStatus) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE event_id = $1 AND status = $2
		ORDER BY created_at
	`
	return r.list(ctx, query, eventID, string(status))
}

func (r *bookingRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Booking, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) GetApprovedByEventID(ctx context.Context, eventID string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE event_id = $1 AND status = 'approved'
	`
	b, err := scanBooking(r.DB.QueryRowContext(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) Approve(ctx context.Context, id string, approvedAt time.Time) (*domain.Booking, error) {
	query := `
		UPDATE bookings
		SET status = 'approved', approved_at = COALESCE(approved_at, $2)
		WHERE id = $1
		RETURNING ` + bookingColumns
	b, err := scanBooking(r.DB.QueryRowContext(ctx, query, id, approvedAt))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrSlotTaken
		}
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	return err
}
