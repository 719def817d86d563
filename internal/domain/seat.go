package domain

import (
	"context"
	"fmt"
	"strings"
)

// MainFloorSection is the section assigned to seats encoded as plain
// "<row>-<number>" tokens.
const MainFloorSection = "Platea"

const sideMarker = "Side"

// SeatID identifies a single seat in the venue. It is a value object built
// once when the layout is defined; the rest of the system passes SeatID
// values around instead of re-splitting tokens at runtime.
type SeatID struct {
	Section string
	Row     string // empty for sections without rows, e.g. side galleries
	Number  string
}

// ParseSeatID decodes a seat token into its structured form. Token shapes,
// matching what the layout generator emits:
//
//   - "A-12"                 main floor, row A seat 12
//   - "Side-Left-40"         side gallery, no row
//   - "Llozha Djathtas-17-2" box 17, seat 2 (section may contain spaces)
//   - "Llozha-Djathtas-17-2" dashed form of the same box seat
//
// Any other shape falls back to "everything but the last token is the
// section, the last token is the seat number".
func ParseSeatID(token string) (SeatID, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return SeatID{}, fmt.Errorf("empty seat token")
	}

	parts := strings.Split(token, "-")
	for _, part := range parts {
		if part == "" {
			return SeatID{}, fmt.Errorf("malformed seat token %q", token)
		}
	}

	switch {
	case len(parts) == 1:
		return SeatID{}, fmt.Errorf("malformed seat token %q", token)

	// A first part containing a space is a section name, not a row letter,
	// so row-less sectioned seats ("Llozha 1-3") keep their section.
	case len(parts) == 2 && !strings.Contains(parts[0], " "):
		return SeatID{Section: MainFloorSection, Row: parts[0], Number: parts[1]}, nil

	case len(parts) == 3 && parts[0] == sideMarker:
		return SeatID{Section: sideMarker + "-" + parts[1], Number: parts[2]}, nil

	case len(parts) == 3:
		return SeatID{Section: parts[0], Row: parts[1], Number: parts[2]}, nil

	case len(parts) == 4:
		return SeatID{Section: parts[0] + " " + parts[1], Row: parts[2], Number: parts[3]}, nil

	default:
		return SeatID{Section: strings.Join(parts[:len(parts)-1], " "), Number: parts[len(parts)-1]}, nil
	}
}

// String returns the canonical token for the seat. ParseSeatID inverts it.
func (s SeatID) String() string {
	switch {
	case s.Section == MainFloorSection && s.Row != "":
		return s.Row + "-" + s.Number
	case s.Row != "":
		return s.Section + "-" + s.Row + "-" + s.Number
	default:
		return s.Section + "-" + s.Number
	}
}

// Label is the display form frozen onto order items and tickets.
func (s SeatID) Label() string {
	return s.String()
}

// Seat is a physical seat of the venue, with optional map geometry.
// Seats are immutable once the layout is created.
type Seat struct {
	ID SeatID
	X  int
	Y  int
}

type SeatRepository interface {
	GetAll(ctx context.Context) ([]Seat, error)
	CreateBatch(ctx context.Context, seats []Seat) error
}
