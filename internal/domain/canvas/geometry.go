package canvas

import (
	"errors"
	"fmt"
)

// ErrNotMounted is returned when the canvas or a window wrapper has no live rectangle
var ErrNotMounted = errors.New("element not mounted")

// Point is a position in some coordinate space
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by d
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Sub returns the delta from q to p
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Rect is an axis-aligned rectangle
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right edge
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom edge
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Contains checks if a point is within the rectangle
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right() &&
		p.Y >= r.Top && p.Y <= r.Bottom()
}

// Inset grows the rectangle by pad on every side
func (r Rect) Inset(pad float64) Rect {
	return Rect{
		Left:   r.Left - pad,
		Top:    r.Top - pad,
		Width:  r.Width + 2*pad,
		Height: r.Height + 2*pad,
	}
}

// Layout reports live on-screen rectangles in viewport coordinates.
// Implementations must answer from current layout on every call.
type Layout interface {
	CanvasRect() (Rect, error)
	WindowRect(id string) (Rect, error)
}

// Geometry converts between window-local and canvas coordinates
type Geometry struct {
	layout Layout
}

// NewGeometry creates a converter over the given layout
func NewGeometry(layout Layout) *Geometry {
	return &Geometry{layout: layout}
}

// ToCanvas converts a point local to window id into canvas coordinates
func (g *Geometry) ToCanvas(id string, local Point) (Point, error) {
	wrapper, err := g.layout.WindowRect(id)
	if err != nil {
		return Point{}, fmt.Errorf("window %s: %w", id, err)
	}
	canvas, err := g.layout.CanvasRect()
	if err != nil {
		return Point{}, fmt.Errorf("canvas: %w", err)
	}
	return Point{
		X: local.X + wrapper.Left - canvas.Left,
		Y: local.Y + wrapper.Top - canvas.Top,
	}, nil
}

// ViewportToCanvas converts a host viewport point into canvas coordinates
func (g *Geometry) ViewportToCanvas(p Point) (Point, error) {
	canvas, err := g.layout.CanvasRect()
	if err != nil {
		return Point{}, fmt.Errorf("canvas: %w", err)
	}
	return Point{X: p.X - canvas.Left, Y: p.Y - canvas.Top}, nil
}

// WindowCanvasRect returns window id's live rectangle in canvas coordinates
func (g *Geometry) WindowCanvasRect(id string) (Rect, error) {
	wrapper, err := g.layout.WindowRect(id)
	if err != nil {
		return Rect{}, fmt.Errorf("window %s: %w", id, err)
	}
	canvas, err := g.layout.CanvasRect()
	if err != nil {
		return Rect{}, fmt.Errorf("canvas: %w", err)
	}
	wrapper.Left -= canvas.Left
	wrapper.Top -= canvas.Top
	return wrapper, nil
}
