package canvas

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownWindow = errors.New("unknown window")
	ErrDuplicateID   = errors.New("duplicate window id")
	ErrInvalidSize   = errors.New("invalid window size")
	ErrMissingID     = errors.New("window id is required")
)

// Size is a window's dimensions; Auto means content-determined
type Size struct {
	Width  float64
	Height float64
	Auto   bool
}

// AutoSize returns a content-determined size
func AutoSize() Size { return Size{Auto: true} }

// FixedSize returns a concrete pixel size
func FixedSize(width, height float64) Size {
	return Size{Width: width, Height: height}
}

// Valid reports whether the size is all-auto or all-positive
func (s Size) Valid() bool {
	if s.Auto {
		return s.Width == 0 && s.Height == 0
	}
	return s.Width > 0 && s.Height > 0
}

type sizeJSON struct {
	Width  json.RawMessage `json:"width"`
	Height json.RawMessage `json:"height"`
}

var autoLiteral = []byte(`"auto"`)

// MarshalJSON renders "auto" or pixel numbers
func (s Size) MarshalJSON() ([]byte, error) {
	if s.Auto {
		return []byte(`{"width":"auto","height":"auto"}`), nil
	}
	return json.Marshal(struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}{s.Width, s.Height})
}

// UnmarshalJSON accepts "auto" or numbers for both fields, never a mix
func (s *Size) UnmarshalJSON(data []byte) error {
	var raw sizeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	wAuto := bytes.Equal(bytes.TrimSpace(raw.Width), autoLiteral)
	hAuto := bytes.Equal(bytes.TrimSpace(raw.Height), autoLiteral)
	if wAuto != hAuto {
		return fmt.Errorf("%w: width and height must both be auto", ErrInvalidSize)
	}
	if wAuto {
		*s = AutoSize()
		return nil
	}
	var out Size
	if err := json.Unmarshal(raw.Width, &out.Width); err != nil {
		return fmt.Errorf("%w: width: %v", ErrInvalidSize, err)
	}
	if err := json.Unmarshal(raw.Height, &out.Height); err != nil {
		return fmt.Errorf("%w: height: %v", ErrInvalidSize, err)
	}
	if !out.Valid() {
		return fmt.Errorf("%w: %vx%v", ErrInvalidSize, out.Width, out.Height)
	}
	*s = out
	return nil
}

// Window is one embedded document on the canvas
type Window struct {
	ID       string `json:"id"`
	Title    string `json:"title,omitempty"`
	Source   string `json:"src"`
	Position Point  `json:"position"`
	Size     Size   `json:"size"`
}

// WindowStore is the authoritative id → window mapping.
// Records are replaced whole; callers never hold pointers into the store.
type WindowStore struct {
	windows map[string]Window
	order   []string
}

// NewWindowStore creates a store from an initial window set
func NewWindowStore(initial []Window) (*WindowStore, error) {
	s := &WindowStore{
		windows: make(map[string]Window, len(initial)),
		order:   make([]string, 0, len(initial)),
	}
	for _, w := range initial {
		if w.ID == "" {
			return nil, ErrMissingID
		}
		if _, exists := s.windows[w.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, w.ID)
		}
		if !w.Size.Valid() {
			return nil, fmt.Errorf("window %s: %w", w.ID, ErrInvalidSize)
		}
		s.windows[w.ID] = w
		s.order = append(s.order, w.ID)
	}
	return s, nil
}

// Get retrieves a window by id
func (s *WindowStore) Get(id string) (Window, bool) {
	w, ok := s.windows[id]
	return w, ok
}

// Has reports whether id names a window
func (s *WindowStore) Has(id string) bool {
	_, ok := s.windows[id]
	return ok
}

// Len returns the number of windows
func (s *WindowStore) Len() int { return len(s.windows) }

// List returns all windows in creation order
func (s *WindowStore) List() []Window {
	out := make([]Window, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.windows[id])
	}
	return out
}

// Move sets a window's position
func (s *WindowStore) Move(id string, pos Point) bool {
	w, ok := s.windows[id]
	if !ok {
		return false
	}
	w.Position = pos
	s.windows[id] = w
	return true
}

// Resize sets a window's size to concrete pixel values.
// Unknown ids and non-positive sizes leave the store unchanged.
func (s *WindowStore) Resize(id string, width, height float64) bool {
	w, ok := s.windows[id]
	if !ok {
		return false
	}
	size := FixedSize(width, height)
	if !size.Valid() {
		return false
	}
	w.Size = size
	s.windows[id] = w
	return true
}

// Positions snapshots the current position of each id that exists
func (s *WindowStore) Positions(ids []string) map[string]Point {
	out := make(map[string]Point, len(ids))
	for _, id := range ids {
		if w, ok := s.windows[id]; ok {
			out[id] = w.Position
		}
	}
	return out
}
