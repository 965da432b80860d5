package engine

import "github.com/piwi3910/BlockPack/internal/model"

// ExtractRegions returns the bounding box of every labelled area in grid, in
// the order each label is first met scanning rows top to bottom. Each area is
// grown from its first cell by repeatedly stepping right and down onto cells
// with the same label; a label met again later is merged into its existing
// box so there is exactly one region per label.
func ExtractRegions(grid *model.Grid) []model.Region {
	if grid == nil || grid.Area() == 0 {
		return nil
	}

	w, h := grid.Width(), grid.Height()
	visited := make([]bool, w*h)
	index := make(map[int]int) // label -> position in regions
	var regions []model.Region

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			label := grid.At(x, y)
			if label == model.Empty || visited[y*w+x] {
				continue
			}
			r := flood(grid, visited, x, y, label)
			if i, ok := index[label]; ok {
				regions[i] = merge(regions[i], r)
				continue
			}
			index[label] = len(regions)
			regions = append(regions, r)
		}
	}
	return regions
}

// flood marks the cells reachable from (x, y) through right and down steps on
// the same label and returns their bounding box.
func flood(grid *model.Grid, visited []bool, x, y, label int) model.Region {
	w := grid.Width()
	r := model.Region{Label: label, MinX: x, MinY: y, MaxX: x, MaxY: y}
	stack := [][2]int{{x, y}}
	visited[y*w+x] = true

	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cx, cy := c[0], c[1]

		r.MinX = min(r.MinX, cx)
		r.MinY = min(r.MinY, cy)
		r.MaxX = max(r.MaxX, cx)
		r.MaxY = max(r.MaxY, cy)

		for _, n := range [2][2]int{{cx + 1, cy}, {cx, cy + 1}} {
			nx, ny := n[0], n[1]
			if !grid.InBounds(nx, ny) || visited[ny*w+nx] || grid.At(nx, ny) != label {
				continue
			}
			visited[ny*w+nx] = true
			stack = append(stack, n)
		}
	}
	return r
}

func merge(a, b model.Region) model.Region {
	return model.Region{
		Label: a.Label,
		MinX:  min(a.MinX, b.MinX),
		MinY:  min(a.MinY, b.MinY),
		MaxX:  max(a.MaxX, b.MaxX),
		MaxY:  max(a.MaxY, b.MaxY),
	}
}
