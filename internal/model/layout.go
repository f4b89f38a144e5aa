package model

import "fmt"

// CellSlot is one occupiable region of a grid template, in track units.
type CellSlot struct {
	Row     int
	Col     int
	RowSpan int
	ColSpan int
}

// GridLayout is an immutable grid template.
type GridLayout struct {
	Name  string
	Icon  string
	Rows  int
	Cols  int
	Cells []CellSlot
}

// DefaultLayoutIndex selects the 2x2 grid.
const DefaultLayoutIndex = 4

func slot(row, col, rowSpan, colSpan int) CellSlot {
	return CellSlot{Row: row, Col: col, RowSpan: rowSpan, ColSpan: colSpan}
}

func uniform(name, icon string, rows, cols int) GridLayout {
	l := GridLayout{Name: name, Icon: icon, Rows: rows, Cols: cols}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			l.Cells = append(l.Cells, slot(r, c, 1, 1))
		}
	}
	return l
}

// Layouts is the static template catalog. Order is part of the contract:
// layout indexes are persisted in settings.
var Layouts = []GridLayout{
	uniform("2 columns", "▮▮", 1, 2),
	uniform("2 rows", "▬▬", 2, 1),
	uniform("3 columns", "▮▮▮", 1, 3),
	uniform("3 rows", "▬▬▬", 3, 1),
	uniform("4 grid", "⊞", 2, 2),
	{Name: "Top 1 / bottom 2", Icon: "▬+▮▮", Rows: 2, Cols: 2, Cells: []CellSlot{
		slot(0, 0, 1, 2), slot(1, 0, 1, 1), slot(1, 1, 1, 1),
	}},
	{Name: "Top 2 / bottom 1", Icon: "▮▮+▬", Rows: 2, Cols: 2, Cells: []CellSlot{
		slot(0, 0, 1, 1), slot(0, 1, 1, 1), slot(1, 0, 1, 2),
	}},
	{Name: "Left 1 / right 2", Icon: "▮+▮▮", Rows: 2, Cols: 2, Cells: []CellSlot{
		slot(0, 0, 2, 1), slot(0, 1, 1, 1), slot(1, 1, 1, 1),
	}},
	{Name: "Left 2 / right 1", Icon: "▮▮+▮", Rows: 2, Cols: 2, Cells: []CellSlot{
		slot(0, 0, 1, 1), slot(1, 0, 1, 1), slot(0, 1, 2, 1),
	}},
	{Name: "Top 1 / bottom 3", Icon: "▬+▮▮▮", Rows: 2, Cols: 3, Cells: []CellSlot{
		slot(0, 0, 1, 3), slot(1, 0, 1, 1), slot(1, 1, 1, 1), slot(1, 2, 1, 1),
	}},
	{Name: "Top 3 / bottom 1", Icon: "▮▮▮+▬", Rows: 2, Cols: 3, Cells: []CellSlot{
		slot(0, 0, 1, 1), slot(0, 1, 1, 1), slot(0, 2, 1, 1), slot(1, 0, 1, 3),
	}},
	uniform("6 grid", "⊞⊞", 2, 3),
	uniform("9 grid", "⊞⊞⊞", 3, 3),
}

// LayoutByIndex looks a template up in the catalog.
func LayoutByIndex(index int) (GridLayout, error) {
	if index < 0 || index >= len(Layouts) {
		return GridLayout{}, fmt.Errorf("layout index out of range: %d", index)
	}
	return Layouts[index], nil
}

// LayoutIndexByName returns the catalog index of the named layout, or -1.
func LayoutIndexByName(name string) int {
	for i, l := range Layouts {
		if l.Name == name {
			return i
		}
	}
	return -1
}

// AspectRatio describes the canvas proportions.
type AspectRatio struct {
	Name  string
	Label string
	W     int
	H     int
}

// IsLandscape reports whether the ratio is wider than tall.
func (a AspectRatio) IsLandscape() bool {
	return a.W > a.H
}

// AspectRatios is the canvas ratio catalog; 9:16 is the default.
var AspectRatios = []AspectRatio{
	{Name: "9:16", Label: "Story (portrait)", W: 9, H: 16},
	{Name: "16:9", Label: "Widescreen", W: 16, H: 9},
	{Name: "4:5", Label: "Feed post", W: 4, H: 5},
	{Name: "1:1", Label: "Square", W: 1, H: 1},
	{Name: "3:4", Label: "Classic portrait", W: 3, H: 4},
	{Name: "4:3", Label: "Classic landscape", W: 4, H: 3},
}

// AspectByIndex looks a ratio up, falling back to the default on a bad index.
func AspectByIndex(index int) AspectRatio {
	if index < 0 || index >= len(AspectRatios) {
		return AspectRatios[0]
	}
	return AspectRatios[index]
}

// AspectIndexByName returns the catalog index of a ratio such as "4:5", or -1.
func AspectIndexByName(name string) int {
	for i, a := range AspectRatios {
		if a.Name == name {
			return i
		}
	}
	return -1
}
