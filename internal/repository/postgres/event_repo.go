package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"venuebooking/internal/domain"
)

const eventColumns = `id, title, date, start_time, end_time, description, performer_email, admin_id,
		status, calendar_event_id, booked_performer_id, booked_at, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var status string
	var calNull, performerNull sql.NullString
	var bookedNull, updatedNull sql.NullTime
	err := row.Scan(
		&e.ID, &e.Title, &e.Date, &e.StartTime, &e.EndTime, &e.Description, &e.PerformerEmail, &e.AdminID,
		&status, &calNull, &performerNull, &bookedNull, &e.CreatedAt, &updatedNull,
	)
	if err != nil {
		return nil, err
	}
	e.Status = domain.EventStatus(status)
	if calNull.Valid {
		e.CalendarEventID = &calNull.String
	}
	if performerNull.Valid {
		e.BookedPerformerID = &performerNull.String
	}
	if bookedNull.Valid {
		e.BookedAt = &bookedNull.Time
	}
	if updatedNull.Valid {
		e.UpdatedAt = &updatedNull.Time
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (id, title, date, start_time, end_time, description, performer_email, admin_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`
	result, err := r.DB.ExecContext(ctx, query,
		e.ID, e.Title, e.Date, e.StartTime, e.EndTime, e.Description, e.PerformerEmail, e.AdminID, string(e.Status), e.CreatedAt,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrEventExists
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1
	`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, status domain.EventStatus) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE ($1::text = '' OR status = $1)
		ORDER BY date, start_time
	`
	rows, err := r.DB.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET title = $2, date = $3, start_time = $4, end_time = $5, description = $6, performer_email = $7, updated_at = $8
		WHERE id = $1
	`
	result, err := r.DB.ExecContext(ctx, query,
		e.ID, e.Title, e.Date, e.StartTime, e.EndTime, e.Description, e.PerformerEmail, e.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireOneRow(result)
}

func (r *eventRepository) Rekey(ctx context.Context, oldID string, e *domain.Event) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// The row lock blocks booking inserts, whose foreign key check needs a key-share lock.
	var locked string
	if err = tx.QueryRowContext(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, oldID).Scan(&locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	var referenced bool
	if err = tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE event_id = $1)`, oldID).Scan(&referenced); err != nil {
		return err
	}
	if referenced {
		return domain.ErrEventInUse
	}

	query := `
		UPDATE events
		SET id = $2, title = $3, date = $4, start_time = $5, end_time = $6, description = $7, performer_email = $8, updated_at = $9
		WHERE id = $1
	`
	if _, err = tx.ExecContext(ctx, query,
		oldID, e.ID, e.Title, e.Date, e.StartTime, e.EndTime, e.Description, e.PerformerEmail, e.UpdatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEventExists
		}
		return err
	}
	if _, err = tx.ExecContext(ctx, `UPDATE invitations SET event_id = $2 WHERE event_id = $1`, oldID, e.ID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return requireOneRow(result)
}

func (r *eventRepository) MarkBooked(ctx context.Context, id, performerID string, bookedAt time.Time) error {
	query := `
		UPDATE events
		SET status = 'booked', booked_performer_id = $2, booked_at = $3
		WHERE id = $1
	`
	result, err := r.DB.ExecContext(ctx, query, id, performerID, bookedAt)
	if err != nil {
		return err
	}
	return requireOneRow(result)
}

func (r *eventRepository) SetCalendarEventID(ctx context.Context, id, calendarEventID string) (bool, error) {
	query := `
		UPDATE events
		SET calendar_event_id = $2
		WHERE id = $1 AND calendar_event_id IS NULL
	`
	result, err := r.DB.ExecContext(ctx, query, id, calendarEventID)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 1 {
		return true, nil
	}
	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, domain.ErrNotFound
	}
	return false, nil
}

func (r *eventRepository) ListCalendarEventIDs(ctx context.Context) ([]string, error) {
	query := `SELECT calendar_event_id FROM events WHERE calendar_event_id IS NOT NULL`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func requireOneRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
