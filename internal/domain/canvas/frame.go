package canvas

import "gonum.org/v1/gonum/floats"

// Handle geometry below the selection frame
const (
	DefaultFramePadding = 10.0
	HandleSize          = 24.0
	HandleGap           = 8.0
)

// Frame is the selection outline over all selected windows, in canvas coordinates
type Frame struct {
	Bounds Rect `json:"bounds"`
	Handle Rect `json:"handle"`
}

// computeFrame unions the live rectangles of the selected windows.
// Windows without a live rectangle are left out; nil means nothing to draw.
func computeFrame(ids []string, geo *Geometry, padding float64) *Frame {
	if len(ids) == 0 {
		return nil
	}

	lefts := make([]float64, 0, len(ids))
	tops := make([]float64, 0, len(ids))
	rights := make([]float64, 0, len(ids))
	bottoms := make([]float64, 0, len(ids))
	for _, id := range ids {
		r, err := geo.WindowCanvasRect(id)
		if err != nil {
			continue
		}
		lefts = append(lefts, r.Left)
		tops = append(tops, r.Top)
		rights = append(rights, r.Right())
		bottoms = append(bottoms, r.Bottom())
	}
	if len(lefts) == 0 {
		return nil
	}

	left, top := floats.Min(lefts), floats.Min(tops)
	bounds := Rect{
		Left:   left,
		Top:    top,
		Width:  floats.Max(rights) - left,
		Height: floats.Max(bottoms) - top,
	}.Inset(padding)

	return &Frame{
		Bounds: bounds,
		Handle: Rect{
			Left:   bounds.Left + bounds.Width/2 - HandleSize/2,
			Top:    bounds.Bottom() + HandleGap,
			Width:  HandleSize,
			Height: HandleSize,
		},
	}
}
