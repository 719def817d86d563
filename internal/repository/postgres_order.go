package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/teatri-al/theatre-ticketing/internal/domain"
)

type PostgresOrderRepository struct {
	db *pgxpool.Pool
}

func NewPostgresOrderRepository(db *pgxpool.Pool) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		db: db,
	}
}

// CreateWithHolds writes the order, its items and one HELD lock per seat in
// one transaction. Seat exclusivity rests on the partial unique index over
// (event_id, seat_id) for HELD and SOLD locks: a racing hold loses with a
// unique violation, which surfaces as domain.ErrSeatsTaken, and the whole
// transaction rolls back.
func (p *PostgresOrderRepository) CreateWithHolds(
	ctx context.Context,
	order *domain.Order,
	holdDuration time.Duration) error {

	seatIDs := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		seatIDs = append(seatIDs, item.SeatID)
	}

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		// A hold that has expired but was not swept yet must not block the
		// seat. Releasing it here keeps the unique index clear for the
		// insert below; the sweep does the same thing venue-wide.
		query := `
			UPDATE seat_locks
			SET status = 'RELEASED'
			WHERE event_id = $1
				AND seat_id = ANY($2)
				AND status = 'HELD'
				AND expires_at <= NOW()
		`

		_, err := tx.Exec(ctx, query, order.EventID, seatIDs)
		if err != nil {
			return err
		}

		query = `
			INSERT INTO orders (event_id, email, full_name, phone, currency, total_amount, status, public_token)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at
		`

		err = tx.QueryRow(
			ctx,
			query,
			order.EventID,
			order.Email,
			order.FullName,
			order.Phone,
			order.Currency,
			order.TotalAmount,
			order.Status,
			order.PublicToken).Scan(&order.ID, &order.CreatedAt)

		if err != nil {
			return err
		}

		rows := make([][]any, 0, len(order.Items))
		for i := range order.Items {
			order.Items[i].OrderID = order.ID
			rows = append(rows, []any{
				order.ID,
				order.Items[i].SeatID,
				order.Items[i].SeatLabel,
				order.Items[i].Price,
			})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"order_items"},
			[]string{"order_id", "seat_id", "seat_label", "price"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return err
		}

		query = `
			INSERT INTO seat_locks (event_id, seat_id, order_id, status, expires_at)
			SELECT $1, unnest($2::text[]), $3, 'HELD', NOW() + make_interval(secs => $4)
		`

		_, err = tx.Exec(ctx, query, order.EventID, seatIDs, order.ID, holdDuration.Seconds())

		return err
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.ErrSeatsTaken
		}

		return err
	}

	return nil
}

func (p *PostgresOrderRepository) GetByIdWithItems(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `
		SELECT id, event_id, email, full_name, phone, currency, total_amount, status,
			public_token, payment_ref, paid_at, email_sent_at, last_email_error, created_at
		FROM orders
		WHERE id = $1
	`

	var order domain.Order

	err := p.db.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.EventID,
		&order.Email,
		&order.FullName,
		&order.Phone,
		&order.Currency,
		&order.TotalAmount,
		&order.Status,
		&order.PublicToken,
		&order.PaymentRef,
		&order.PaidAt,
		&order.EmailSentAt,
		&order.LastEmailError,
		&order.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	items, err := p.retrieveOrderItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	locks, err := p.retrieveOrderLocks(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Locks = locks

	return &order, nil
}

func (p *PostgresOrderRepository) retrieveOrderItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, seat_id, seat_label, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY seat_id
	`

	rows, err := p.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)

	for rows.Next() {
		var item domain.OrderItem

		err = rows.Scan(&item.ID, &item.OrderID, &item.SeatID, &item.SeatLabel, &item.Price)
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (p *PostgresOrderRepository) retrieveOrderLocks(ctx context.Context, orderID uuid.UUID) ([]domain.SeatLock, error) {
	query := `
		SELECT id, event_id, seat_id, order_id, status, expires_at, created_at
		FROM seat_locks
		WHERE order_id = $1
		ORDER BY seat_id
	`

	rows, err := p.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locks := make([]domain.SeatLock, 0)

	for rows.Next() {
		var lock domain.SeatLock

		err = rows.Scan(
			&lock.ID,
			&lock.EventID,
			&lock.SeatID,
			&lock.OrderID,
			&lock.Status,
			&lock.ExpiresAt,
			&lock.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		locks = append(locks, lock)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return locks, nil
}

func (p *PostgresOrderRepository) GetActiveLocksByEvent(
	ctx context.Context,
	eventID uuid.UUID,
	now time.Time) ([]domain.SeatLock, error) {

	query := `
		SELECT id, event_id, seat_id, order_id, status, expires_at, created_at
		FROM seat_locks
		WHERE event_id = $1
			AND (status = 'SOLD' OR (status = 'HELD' AND expires_at > $2))
	`

	rows, err := p.db.Query(ctx, query, eventID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locks := make([]domain.SeatLock, 0)

	for rows.Next() {
		var lock domain.SeatLock

		err = rows.Scan(
			&lock.ID,
			&lock.EventID,
			&lock.SeatID,
			&lock.OrderID,
			&lock.Status,
			&lock.ExpiresAt,
			&lock.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		locks = append(locks, lock)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return locks, nil
}

// PromoteToSold marks the order PAID and flips its HELD locks to SOLD. The
// first payment reference and timestamp stick; applying the same promotion
// again changes nothing, so redelivered notifications are harmless.
func (p *PostgresOrderRepository) PromoteToSold(ctx context.Context, orderID uuid.UUID, paymentRef string) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			UPDATE orders
			SET status = 'PAID',
				payment_ref = COALESCE(payment_ref, $2),
				paid_at = COALESCE(paid_at, NOW())
			WHERE id = $1
		`

		tag, err := tx.Exec(ctx, query, orderID, paymentRef)
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return domain.ErrRecordNotFound
		}

		// Only HELD locks flip. A lock already RELEASED by the sweep stays
		// released; re-selling a seat someone else may now hold would break
		// the exclusivity index.
		query = `
			UPDATE seat_locks
			SET status = 'SOLD'
			WHERE order_id = $1 AND status = 'HELD'
		`

		_, err = tx.Exec(ctx, query, orderID)

		return err
	})
}

func (p *PostgresOrderRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) error {
	query := `UPDATE orders SET status = $2 WHERE id = $1`

	tag, err := p.db.Exec(ctx, query, orderID, status)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (p *PostgresOrderRepository) MarkEmailSent(ctx context.Context, orderID uuid.UUID, sentAt time.Time) error {
	query := `UPDATE orders SET email_sent_at = $2, last_email_error = NULL WHERE id = $1`

	_, err := p.db.Exec(ctx, query, orderID, sentAt)

	return err
}

func (p *PostgresOrderRepository) RecordEmailError(ctx context.Context, orderID uuid.UUID, message string) error {
	query := `UPDATE orders SET last_email_error = $2 WHERE id = $1`

	_, err := p.db.Exec(ctx, query, orderID, message)

	return err
}

// ReleaseExpired reclaims timed-out holds, then expires PENDING orders that
// no longer hold any seat. Both statements are plain conditional updates, so
// concurrent sweeps or racing hold attempts settle on row locks.
func (p *PostgresOrderRepository) ReleaseExpired(ctx context.Context, now time.Time) (domain.SweepResult, error) {
	var result domain.SweepResult

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			UPDATE seat_locks
			SET status = 'RELEASED'
			WHERE status = 'HELD' AND expires_at <= $1
		`

		tag, err := tx.Exec(ctx, query, now)
		if err != nil {
			return err
		}
		result.LocksReleased = tag.RowsAffected()

		query = `
			UPDATE orders
			SET status = 'EXPIRED'
			WHERE status = 'PENDING'
				AND EXISTS (
					SELECT 1
					FROM seat_locks l
					WHERE l.order_id = orders.id
				)
				AND NOT EXISTS (
					SELECT 1
					FROM seat_locks l
					WHERE l.order_id = orders.id AND l.status IN ('HELD', 'SOLD')
				)
		`

		tag, err = tx.Exec(ctx, query)
		if err != nil {
			return err
		}
		result.OrdersExpired = tag.RowsAffected()

		return nil
	})

	if err != nil {
		return domain.SweepResult{}, err
	}

	return result, nil
}

func runInTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	var txOptions pgx.TxOptions

	tx, err := db.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}

	err = fn(tx)
	if err == nil {
		return tx.Commit(ctx)
	}

	rollbackErr := tx.Rollback(ctx)
	if rollbackErr != nil {
		return errors.Join(err, rollbackErr)
	}

	return err
}
