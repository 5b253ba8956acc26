package layout

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/AgentOS/canvas/internal/domain/canvas"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported layout format")
	ErrInvalidDimension  = errors.New("invalid window dimension")
	ErrNoMatches         = errors.New("no layout files matched")
)

// Format identifies a layout file encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// Layout is an initial window set for one canvas
type Layout struct {
	Name    string          `json:"name"`
	Path    string          `json:"path,omitempty"`
	Windows []canvas.Window `json:"windows"`
}

type file struct {
	Name    string       `yaml:"name" toml:"name" json:"name"`
	Windows []fileWindow `yaml:"windows" toml:"windows" json:"windows"`
}

// fileWindow keeps width/height untyped since both accept "auto"
type fileWindow struct {
	ID     string      `yaml:"id" toml:"id" json:"id"`
	Title  string      `yaml:"title" toml:"title" json:"title"`
	Src    string      `yaml:"src" toml:"src" json:"src"`
	X      float64     `yaml:"x" toml:"x" json:"x"`
	Y      float64     `yaml:"y" toml:"y" json:"y"`
	Width  interface{} `yaml:"width" toml:"width" json:"width"`
	Height interface{} `yaml:"height" toml:"height" json:"height"`
}

var titlePolicy = bluemonday.StrictPolicy()

// SanitizeTitle strips markup from a window title
func SanitizeTitle(title string) string {
	return strings.TrimSpace(titlePolicy.Sanitize(title))
}

// FormatFromPath picks the format by file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Parse decodes a layout document and validates its windows
func Parse(data []byte, format Format) (*Layout, error) {
	var f file
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &f)
	case FormatTOML:
		err = toml.Unmarshal(data, &f)
	case FormatJSON:
		err = sonic.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s layout: %w", format, err)
	}

	windows := make([]canvas.Window, 0, len(f.Windows))
	for i, fw := range f.Windows {
		size, err := windowSize(fw.Width, fw.Height)
		if err != nil {
			return nil, fmt.Errorf("window %d (%q): %w", i, fw.ID, err)
		}
		windows = append(windows, canvas.Window{
			ID:       fw.ID,
			Title:    SanitizeTitle(fw.Title),
			Source:   fw.Src,
			Position: canvas.Point{X: fw.X, Y: fw.Y},
			Size:     size,
		})
	}

	if _, err := canvas.NewWindowStore(windows); err != nil {
		return nil, err
	}
	return &Layout{Name: f.Name, Windows: windows}, nil
}

// Load reads one layout file. The name defaults to the file's base name.
func Load(path string) (*Layout, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}

	l, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	l.Path = path
	if l.Name == "" {
		l.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return l, nil
}

// Glob returns the files matching pattern in lexical order. Patterns support
// "**" for recursive matching.
func Glob(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoMatches, pattern)
	}
	sort.Strings(matches)
	return matches, nil
}

// LoadGlob loads every layout file matching pattern, failing on the first
// bad file
func LoadGlob(pattern string) ([]*Layout, error) {
	matches, err := Glob(pattern)
	if err != nil {
		return nil, err
	}

	layouts := make([]*Layout, 0, len(matches))
	for _, path := range matches {
		l, err := Load(path)
		if err != nil {
			return nil, err
		}
		layouts = append(layouts, l)
	}
	return layouts, nil
}

func windowSize(width, height interface{}) (canvas.Size, error) {
	wAuto, w, err := dimension(width)
	if err != nil {
		return canvas.Size{}, fmt.Errorf("width: %w", err)
	}
	hAuto, h, err := dimension(height)
	if err != nil {
		return canvas.Size{}, fmt.Errorf("height: %w", err)
	}

	switch {
	case wAuto && hAuto:
		return canvas.AutoSize(), nil
	case wAuto || hAuto:
		return canvas.Size{}, fmt.Errorf("%w: width and height must both be auto", ErrInvalidDimension)
	}
	size := canvas.FixedSize(w, h)
	if !size.Valid() {
		return canvas.Size{}, fmt.Errorf("%w: %vx%v", ErrInvalidDimension, w, h)
	}
	return size, nil
}

// dimension accepts "auto" or any numeric type the decoders produce
func dimension(v interface{}) (auto bool, px float64, err error) {
	switch n := v.(type) {
	case nil:
		return false, 0, fmt.Errorf("%w: missing", ErrInvalidDimension)
	case string:
		if strings.EqualFold(strings.TrimSpace(n), "auto") {
			return true, 0, nil
		}
		return false, 0, fmt.Errorf("%w: %q", ErrInvalidDimension, n)
	case int:
		px = float64(n)
	case int64:
		px = float64(n)
	case uint64:
		px = float64(n)
	case float64:
		px = n
	default:
		return false, 0, fmt.Errorf("%w: %T", ErrInvalidDimension, v)
	}
	if math.IsNaN(px) || math.IsInf(px, 0) {
		return false, 0, fmt.Errorf("%w: %v", ErrInvalidDimension, px)
	}
	return false, px, nil
}
