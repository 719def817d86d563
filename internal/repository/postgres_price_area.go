package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/teatri-al/theatre-ticketing/internal/domain"
)

type PostgresPriceAreaRepository struct {
	db *pgxpool.Pool
}

func NewPostgresPriceAreaRepository(db *pgxpool.Pool) *PostgresPriceAreaRepository {
	return &PostgresPriceAreaRepository{
		db: db,
	}
}

func (p *PostgresPriceAreaRepository) GetByEventId(ctx context.Context, eventID uuid.UUID) ([]domain.PriceArea, error) {
	query := `
		SELECT id, event_id, name, selectors, sale_status, price, priority, color, created_at
		FROM price_areas
		WHERE event_id = $1
		ORDER BY priority DESC, created_at ASC
	`

	rows, err := p.db.Query(ctx, query, eventID)
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

	return areas, nil
}

func (p *PostgresPriceAreaRepository) Create(ctx context.Context, area *domain.PriceArea) error {
	query := `
		INSERT INTO price_areas (event_id, name, selectors, sale_status, price, priority, color)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	return p.db.QueryRow(
		ctx,
		query,
		area.EventID,
		area.Name,
		area.Selectors,
		area.SaleStatus,
		area.Price,
		area.Priority,
		area.Color).Scan(&area.ID, &area.CreatedAt)
}

func (p *PostgresPriceAreaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM price_areas WHERE id = $1`

	tag, err := p.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}
