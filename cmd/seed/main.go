// Command seed loads the venue layout and a demo event with pricing rules
// into the database. Running it against a seeded database is safe: it skips
// anything that already exists.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/teatri-al/theatre-ticketing/internal/domain"
	"github.com/teatri-al/theatre-ticketing/internal/repository"
)

func main() {
	var dsn string
	var withDemoEvent bool

	flag.StringVar(&dsn, "db-dsn", "", "PostgreSQL DSN")
	flag.BoolVar(&withDemoEvent, "demo-event", true, "Seed a demo event with pricing rules")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if dsn == "" {
		logger.Error("the -db-dsn flag is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	err = seed(ctx, db, logger, withDemoEvent)
	if err != nil {
		logger.Error("seeding failed", "error", err)
		os.Exit(1)
	}

	logger.Info("seeding complete")
}

func seed(ctx context.Context, db *pgxpool.Pool, logger *slog.Logger, withDemoEvent bool) error {
	seatRepo := repository.NewPostgresSeatRepository(db)

	seats, err := seatRepo.GetAll(ctx)
	if err != nil {
		return err
	}

	if len(seats) == 0 {
		layout := domain.DefaultLayout()

		err = seatRepo.CreateBatch(ctx, layout)
		if err != nil {
			return err
		}

		logger.Info("seeded venue layout", "seats", len(layout))
	} else {
		logger.Info("venue layout already present", "seats", len(seats))
	}

	if !withDemoEvent {
		return nil
	}

	eventRepo := repository.NewPostgresEventRepository(db)

	existing, err := eventRepo.GetUpcoming(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info("upcoming events already present, skipping demo event")
		return nil
	}

	start := time.Now().AddDate(0, 1, 0).Truncate(time.Hour)

	event := &domain.Event{
		Title:       "Hamleti",
		Description: "Shakespeare's Hamlet, performed in Albanian.",
		StartDate:   start,
		EndDate:     start.Add(3 * time.Hour),
		Location:    "Teatri Kombetar, Tirana",
	}

	err = eventRepo.Create(ctx, event)
	if err != nil {
		return err
	}

	priceAreaRepo := repository.NewPostgresPriceAreaRepository(db)

	rules := []domain.PriceArea{
		{
			EventID:    event.ID,
			Name:       "Premium",
			Selectors:  `{"rows":["A","B","C","D","E"]}`,
			SaleStatus: domain.SaleStatusForSale,
			Price:      decimal.NewNullDecimal(decimal.NewFromInt(1000)),
			Priority:   10,
			Color:      "#c0902f",
		},
		{
			EventID:    event.ID,
			Name:       "Standard",
			Selectors:  `{"rows":["F","G","H","J","K","L","M","N","P","Q","R"]}`,
			SaleStatus: domain.SaleStatusForSale,
			Price:      decimal.NewNullDecimal(decimal.NewFromInt(500)),
			Priority:   5,
			Color:      "#2f7fc0",
		},
		{
			EventID:    event.ID,
			Name:       "Boxes",
			Selectors:  `{"sections":["Llozha Djathtas","Llozha Majtas"]}`,
			SaleStatus: domain.SaleStatusForSale,
			Price:      decimal.NewNullDecimal(decimal.NewFromInt(1200)),
			Priority:   5,
			Color:      "#7f2fc0",
		},
	}

	for i := range rules {
		err = priceAreaRepo.Create(ctx, &rules[i])
		if err != nil {
			return err
		}
	}

	logger.Info("seeded demo event", "event_id", event.ID, "rules", len(rules))

	return nil
}
