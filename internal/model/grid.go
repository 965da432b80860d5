package model

// Empty marks an unoccupied grid cell.
const Empty = 0

// Grid is a dense occupancy map of the packing space. Each cell holds Empty
// or the 1-based rank of the block covering it.
type Grid struct {
	width  int
	height int
	cells  []int // row-major, len = width*height
}

// NewGrid returns an all-empty grid. Zero-sized grids are allowed.
func NewGrid(width, height int) (*Grid, error) {
	if width < 0 || height < 0 {
		return nil, NewError(ErrCodeInvalidDimension, "grid size %dx%d is negative", width, height)
	}
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]int, width*height),
	}, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Area returns the total number of cells.
func (g *Grid) Area() int { return g.width * g.height }

// InBounds reports whether (x, y) addresses a cell.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// Get returns the label at (x, y).
func (g *Grid) Get(x, y int) (int, error) {
	if !g.InBounds(x, y) {
		return 0, NewError(ErrCodeOutOfBounds, "cell (%d,%d) outside %dx%d grid", x, y, g.width, g.height)
	}
	return g.cells[y*g.width+x], nil
}

// Set writes label at (x, y).
func (g *Grid) Set(x, y, label int) error {
	if !g.InBounds(x, y) {
		return NewError(ErrCodeOutOfBounds, "cell (%d,%d) outside %dx%d grid", x, y, g.width, g.height)
	}
	g.cells[y*g.width+x] = label
	return nil
}

// At returns the label at (x, y) without bounds reporting. Callers must
// check InBounds first.
func (g *Grid) At(x, y int) int {
	return g.cells[y*g.width+x]
}

// CanPlace reports whether a w×h footprint anchored at (x, y) lies inside the
// grid and covers only empty cells.
func (g *Grid) CanPlace(x, y, w, h int) bool {
	if x < 0 || y < 0 || w <= 0 || h <= 0 || x+w > g.width || y+h > g.height {
		return false
	}
	for dy := 0; dy < h; dy++ {
		row := (y + dy) * g.width
		for dx := 0; dx < w; dx++ {
			if g.cells[row+x+dx] != Empty {
				return false
			}
		}
	}
	return true
}

// Fill writes label into every cell of the w×h footprint anchored at (x, y).
func (g *Grid) Fill(x, y, w, h, label int) error {
	if x < 0 || y < 0 || x+w > g.width || y+h > g.height {
		return NewError(ErrCodeOutOfBounds, "footprint %dx%d at (%d,%d) outside %dx%d grid", w, h, x, y, g.width, g.height)
	}
	for dy := 0; dy < h; dy++ {
		row := (y + dy) * g.width
		for dx := 0; dx < w; dx++ {
			g.cells[row+x+dx] = label
		}
	}
	return nil
}

// EmptyCount returns the number of unoccupied cells.
func (g *Grid) EmptyCount() int {
	n := 0
	for _, c := range g.cells {
		if c == Empty {
			n++
		}
	}
	return n
}

// FilledCount returns the number of occupied cells.
func (g *Grid) FilledCount() int {
	return g.Area() - g.EmptyCount()
}

// Row returns a copy of row y, or nil if y is out of range.
func (g *Grid) Row(y int) []int {
	if y < 0 || y >= g.height {
		return nil
	}
	row := make([]int, g.width)
	copy(row, g.cells[y*g.width:(y+1)*g.width])
	return row
}

// Rows returns a copy of the grid as a slice of rows.
func (g *Grid) Rows() [][]int {
	rows := make([][]int, g.height)
	for y := range rows {
		rows[y] = g.Row(y)
	}
	return rows
}

// Clone returns an independent copy of the grid.
func (g *Grid) Clone() *Grid {
	cells := make([]int, len(g.cells))
	copy(cells, g.cells)
	return &Grid{width: g.width, height: g.height, cells: cells}
}

// GridFromRows builds a grid from row-major labels. All rows must share a length.
func GridFromRows(rows [][]int) (*Grid, error) {
	height := len(rows)
	width := 0
	if height > 0 {
		width = len(rows[0])
	}
	g, err := NewGrid(width, height)
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		if len(row) != width {
			return nil, NewError(ErrCodeInvalidDimension, "row %d has %d cells, want %d", y, len(row), width)
		}
		copy(g.cells[y*width:], row)
	}
	return g, nil
}
