package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/teatri-al/theatre-ticketing/internal/domain"
)

type PostgresEventRepository struct {
	db *pgxpool.Pool
}

func NewPostgresEventRepository(db *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{
		db: db,
	}
}

func (p *PostgresEventRepository) GetUpcoming(ctx context.Context) ([]domain.Event, error) {
	query := `
		SELECT id, title, description, start_date, end_date, location, image, created_at
		FROM events
		WHERE end_date >= NOW()
		ORDER BY start_date ASC
	`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]domain.Event, 0)

	for rows.Next() {
		var event domain.Event

		err = rows.Scan(
			&event.ID,
			&event.Title,
			&event.Description,
			&event.StartDate,
			&event.EndDate,
			&event.Location,
			&event.Image,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

func (p *PostgresEventRepository) GetById(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	query := `
		SELECT id, title, description, start_date, end_date, location, image, created_at
		FROM events
		WHERE id = $1
	`

	var event domain.Event

	err := p.db.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.StartDate,
		&event.EndDate,
		&event.Location,
		&event.Image,
		&event.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &event, nil
}

func (p *PostgresEventRepository) GetByIdWithPriceAreas(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	event, err := p.GetById(ctx, id)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, event_id, name, selectors, sale_status, price, priority, color, created_at
		FROM price_areas
		WHERE event_id = $1
		ORDER BY priority DESC, created_at ASC
	`

	rows, err := p.db.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	areas := make([]domain.PriceArea, 0)

	for rows.Next() {
		var area domain.PriceArea

		err = rows.Scan(
			&area.ID,
			&area.EventID,
			&area.Name,
			&area.Selectors,
			&area.SaleStatus,
			&area.Price,
			&area.Priority,
			&area.Color,
			&area.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		areas = append(areas, area)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	event.PriceAreas = areas

	return event, nil
}

func (p *PostgresEventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (title, description, start_date, end_date, location, image)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	return p.db.QueryRow(
		ctx,
		query,
		event.Title,
		event.Description,
		event.StartDate,
		event.EndDate,
		event.Location,
		event.Image).Scan(&event.ID, &event.CreatedAt)
}
