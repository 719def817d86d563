package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/teatri-al/theatre-ticketing/internal/domain"
)

type PostgresSeatRepository struct {
	db *pgxpool.Pool
}

func NewPostgresSeatRepository(db *pgxpool.Pool) *PostgresSeatRepository {
	return &PostgresSeatRepository{
		db: db,
	}
}

func (p *PostgresSeatRepository) GetAll(ctx context.Context) ([]domain.Seat, error) {
	query := `
		SELECT section, seat_row, seat_number, pos_x, pos_y
		FROM seats
		ORDER BY pos_y, pos_x
	`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.Seat, 0)

	for rows.Next() {
		var seat domain.Seat

		err = rows.Scan(
			&seat.ID.Section,
			&seat.ID.Row,
			&seat.ID.Number,
			&seat.X,
			&seat.Y,
		)
		if err != nil {
			return nil, err
		}

		seats = append(seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}

func (p *PostgresSeatRepository) CreateBatch(ctx context.Context, seats []domain.Seat) error {
	rows := make([][]any, 0, len(seats))
	for _, seat := range seats {
		rows = append(rows, []any{
			seat.ID.String(),
			seat.ID.Section,
			seat.ID.Row,
			seat.ID.Number,
			seat.X,
			seat.Y,
		})
	}

	_, err := p.db.CopyFrom(
		ctx,
		pgx.Identifier{"seats"},
		[]string{"id", "section", "seat_row", "seat_number", "pos_x", "pos_y"},
		pgx.CopyFromRows(rows),
	)

	return err
}
