package domain

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SaleStatus string

const (
	SaleStatusForSale       SaleStatus = "FOR_SALE"
	SaleStatusNotForSale    SaleStatus = "NOT_FOR_SALE"
	SaleStatusAdminReserved SaleStatus = "ADMIN_RESERVED"
)

// PriceArea is an admin-defined pricing rule for one event: a selector, a
// sale status, an optional price and a priority. Rules are created and
// deleted, never updated in place.
type PriceArea struct {
	ID         uuid.UUID
	EventID    uuid.UUID
	Name       string
	Selectors  string // selector payload as stored, JSON
	SaleStatus SaleStatus
	Price      decimal.NullDecimal
	Priority   int
	Color      string
	CreatedAt  time.Time
}

// SeatMatcher is one selector clause.
type SeatMatcher interface {
	Matches(seat SeatID) bool
}

// RowSelector matches seats whose row is in the list. Seats without a row
// never match.
type RowSelector []string

func (s RowSelector) Matches(seat SeatID) bool {
	return seat.Row != "" && slices.Contains(s, seat.Row)
}

// SectionSelector matches seats by section (block) membership.
type SectionSelector []string

func (s SectionSelector) Matches(seat SeatID) bool {
	return slices.Contains(s, seat.Section)
}

// SeatIDSelector matches an explicit list of canonical seat tokens.
type SeatIDSelector []string

func (s SeatIDSelector) Matches(seat SeatID) bool {
	return slices.Contains(s, seat.String())
}

// SeatNumberSelector matches seats by their number within the row or box.
type SeatNumberSelector []string

func (s SeatNumberSelector) Matches(seat SeatID) bool {
	return slices.Contains(s, seat.Number)
}

// AndSelector matches when every clause matches. A selector with no clauses
// matches every seat: an admin rule with an empty selector payload is a
// global override, not a dead rule.
type AndSelector []SeatMatcher

func (s AndSelector) Matches(seat SeatID) bool {
	for _, clause := range s {
		if !clause.Matches(seat) {
			return false
		}
	}
	return true
}

type selectorPayload struct {
	Rows        []string `json:"rows,omitempty"`
	Blocks      []string `json:"blocks,omitempty"`
	Sections    []string `json:"sections,omitempty"`
	Seats       []string `json:"seats,omitempty"`
	SeatNumbers []string `json:"seatNumbers,omitempty"`
}

// ParseSelector decodes a stored selector payload into its clauses. Both
// "blocks" and "sections" keys address the seat's section.
func ParseSelector(raw string) (AndSelector, error) {
	if raw == "" {
		return AndSelector{}, nil
	}

	var payload selectorPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, err
	}

	var sel AndSelector
	if len(payload.Rows) > 0 {
		sel = append(sel, RowSelector(payload.Rows))
	}
	if len(payload.Blocks) > 0 {
		sel = append(sel, SectionSelector(payload.Blocks))
	}
	if len(payload.Sections) > 0 {
		sel = append(sel, SectionSelector(payload.Sections))
	}
	if len(payload.Seats) > 0 {
		sel = append(sel, SeatIDSelector(payload.Seats))
	}
	if len(payload.SeatNumbers) > 0 {
		sel = append(sel, SeatNumberSelector(payload.SeatNumbers))
	}

	return sel, nil
}

// SeatPrice is the outcome of resolving the pricing rules for one seat.
type SeatPrice struct {
	Status   SaleStatus
	Price    decimal.NullDecimal
	RuleID   *uuid.UUID
	AreaName string
	Color    string
}

// ResolvePrice finds the rule governing a seat: rules are evaluated by
// priority descending and the first whose selector matches wins. A rule with
// a malformed selector payload is skipped with a diagnostic. When nothing
// matches the seat is not for sale.
//
// The function is deterministic and has no side effects beyond logging; it
// serves both seat-map rendering and order creation, so client-submitted
// prices are never needed.
func ResolvePrice(seat SeatID, areas []PriceArea, logger *slog.Logger) SeatPrice {
	sorted := slices.Clone(areas)
	slices.SortStableFunc(sorted, func(a, b PriceArea) int {
		return b.Priority - a.Priority
	})

	for _, area := range sorted {
		sel, err := ParseSelector(area.Selectors)
		if err != nil {
			if logger != nil {
				logger.Warn("skipping price rule with malformed selectors",
					"rule_id", area.ID, "rule", area.Name, "error", err)
			}
			continue
		}

		if sel.Matches(seat) {
			ruleID := area.ID
			return SeatPrice{
				Status:   area.SaleStatus,
				Price:    area.Price,
				RuleID:   &ruleID,
				AreaName: area.Name,
				Color:    area.Color,
			}
		}
	}

	return SeatPrice{Status: SaleStatusNotForSale}
}

type PriceAreaRepository interface {
	// GetByEventId returns the event's rules ordered by priority descending.
	GetByEventId(ctx context.Context, eventID uuid.UUID) ([]PriceArea, error)
	Create(ctx context.Context, area *PriceArea) error
	Delete(ctx context.Context, id uuid.UUID) error
}
