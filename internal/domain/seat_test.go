package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseSeatID(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		want    SeatID
		wantErr bool
	}{
		{
			name:  "main floor row and number",
			token: "A-12",
			want:  SeatID{Section: MainFloorSection, Row: "A", Number: "12"},
		},
		{
			name:  "left side gallery",
			token: "Side-Left-40",
			want:  SeatID{Section: "Side-Left", Number: "40"},
		},
		{
			name:  "right side gallery",
			token: "Side-Right-3",
			want:  SeatID{Section: "Side-Right", Number: "3"},
		},
		{
			name:  "box seat with space in section",
			token: "Llozha Djathtas-17-2",
			want:  SeatID{Section: "Llozha Djathtas", Row: "17", Number: "2"},
		},
		{
			name:  "dashed box seat decodes to the same seat",
			token: "Llozha-Djathtas-17-2",
			want:  SeatID{Section: "Llozha Djathtas", Row: "17", Number: "2"},
		},
		{
			name:  "single word box section",
			token: "Loggia-5-2",
			want:  SeatID{Section: "Loggia", Row: "5", Number: "2"},
		},
		{
			name:  "row-less section with space keeps its section",
			token: "Llozha 1-3",
			want:  SeatID{Section: "Llozha 1", Number: "3"},
		},
		{
			name:  "unknown long shape falls back to section plus number",
			token: "Upper-Circle-Far-Left-9",
			want:  SeatID{Section: "Upper Circle Far Left", Number: "9"},
		},
		{
			name:    "empty token",
			token:   "",
			wantErr: true,
		},
		{
			name:    "token without a number part",
			token:   "A",
			wantErr: true,
		},
		{
			name:    "token with empty part",
			token:   "A--2",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSeatID(tt.token)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSeatID(%q) expected error, got %+v", tt.token, got)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseSeatID(%q) unexpected error: %v", tt.token, err)
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseSeatID(%q) mismatch (-want +got):\n%s", tt.token, diff)
			}
		})
	}
}

// Every token the layout generator produces must survive a decode/encode
// round trip unchanged.
func TestSeatIDRoundTripOverLayout(t *testing.T) {
	seats := DefaultLayout()
	if len(seats) == 0 {
		t.Fatal("DefaultLayout returned no seats")
	}

	seen := make(map[string]bool, len(seats))

	for _, seat := range seats {
		token := seat.ID.String()

		if seen[token] {
			t.Errorf("duplicate token %q in layout", token)
		}
		seen[token] = true

		got, err := ParseSeatID(token)
		if err != nil {
			t.Fatalf("ParseSeatID(%q): %v", token, err)
		}

		if got != seat.ID {
			t.Errorf("round trip of %q: got %+v, want %+v", token, got, seat.ID)
		}
	}
}

func TestSeatIDString(t *testing.T) {
	tests := []struct {
		name string
		seat SeatID
		want string
	}{
		{
			name: "main floor omits the section",
			seat: SeatID{Section: MainFloorSection, Row: "C", Number: "4"},
			want: "C-4",
		},
		{
			name: "side gallery",
			seat: SeatID{Section: "Side-Right", Number: "57"},
			want: "Side-Right-57",
		},
		{
			name: "box seat keeps the spaced section",
			seat: SeatID{Section: "Llozha Majtas", Row: "24", Number: "1"},
			want: "Llozha Majtas-24-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.seat.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
