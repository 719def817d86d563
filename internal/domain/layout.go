package domain

import "strconv"

// Venue layout of the main hall. Defined once here; every SeatID in the
// system originates from this generator or from an admin seat picker that
// uses the same tokens.

type numberRange struct {
	start, end int
}

var plateaRows = []struct {
	row   string
	seats int
}{
	{"A", 28}, {"B", 30}, {"C", 32}, {"D", 32}, {"E", 32}, {"F", 32},
	{"G", 32}, {"H", 32}, {"J", 32}, {"K", 32}, {"L", 32}, {"M", 32},
	{"N", 32}, {"P", 32}, {"Q", 32}, {"R", 32},
}

var boxSections = []struct {
	section string
	boxes   []struct {
		name  string
		seats int
	}
}{
	{
		section: "Llozha Djathtas",
		boxes: []struct {
			name  string
			seats int
		}{
			{"17", 3}, {"18", 3}, {"19", 3}, {"20", 3},
			{"21", 3}, {"22", 3}, {"23", 2}, {"24", 2},
		},
	},
	{
		section: "Llozha Majtas",
		boxes: []struct {
			name  string
			seats int
		}{
			{"17", 3}, {"18", 3}, {"19", 3}, {"20", 3},
			{"21", 3}, {"22", 3}, {"23", 2}, {"24", 2},
		},
	},
}

var sideGalleries = []struct {
	section string
	numbers []numberRange
}{
	{"Side-Left", []numberRange{{1, 8}, {40, 47}}},
	{"Side-Right", []numberRange{{1, 8}, {50, 57}}},
}

var balconyRows = []struct {
	row     string
	numbers []numberRange
}{
	{"S", []numberRange{{1, 31}}},
	{"T", []numberRange{{1, 33}}},
	{"U", []numberRange{{1, 33}}},
	{"V", []numberRange{{1, 33}}},
	{"W", []numberRange{{1, 33}}},
	{"X", []numberRange{{7, 19}}},
	{"Y", []numberRange{{1, 6}, {20, 25}}},
	{"Z", []numberRange{{1, 6}, {20, 25}}},
}

// DefaultLayout generates every seat of the venue: the Platea floor, the
// first-balcony boxes, the side galleries and the second-balcony rows.
func DefaultLayout() []Seat {
	var seats []Seat

	for rowIdx, row := range plateaRows {
		for n := 1; n <= row.seats; n++ {
			seats = append(seats, Seat{
				ID: SeatID{Section: MainFloorSection, Row: row.row, Number: strconv.Itoa(n)},
				X:  n * 30,
				Y:  rowIdx * 30,
			})
		}
	}

	for _, sec := range boxSections {
		for _, box := range sec.boxes {
			for n := 1; n <= box.seats; n++ {
				seats = append(seats, Seat{
					ID: SeatID{Section: sec.section, Row: box.name, Number: strconv.Itoa(n)},
				})
			}
		}
	}

	for _, gallery := range sideGalleries {
		for _, r := range gallery.numbers {
			for n := r.start; n <= r.end; n++ {
				seats = append(seats, Seat{
					ID: SeatID{Section: gallery.section, Number: strconv.Itoa(n)},
				})
			}
		}
	}

	// Second-balcony rows carry plain row-number tokens, same as the floor.
	for rowIdx, row := range balconyRows {
		for _, r := range row.numbers {
			for n := r.start; n <= r.end; n++ {
				seats = append(seats, Seat{
					ID: SeatID{Section: MainFloorSection, Row: row.row, Number: strconv.Itoa(n)},
					X:  n * 30,
					Y:  (len(plateaRows) + rowIdx) * 30,
				})
			}
		}
	}

	return seats
}
