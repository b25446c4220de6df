// Package formats provides board setup file parsers.
package formats

import (
	"fmt"

	"github.com/vovakirdan/khet/internal/games/khet/core"
	"gopkg.in/yaml.v3"
)

// YAMLBoard represents the YAML structure for a board file.
type YAMLBoard struct {
	ID       string            `yaml:"id"`
	Name     string            `yaml:"name"`
	Size     YAMLSize          `yaml:"size"`
	Surface  []string          `yaml:"surface,omitempty"`
	Guns     []YAMLGun         `yaml:"guns"`
	Pieces   []YAMLPiece       `yaml:"pieces"`
	Metadata map[string]string `yaml:"metadata,omitempty"`
}

// YAMLSize represents board dimensions.
type YAMLSize struct {
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// YAMLGun represents a laser gun in YAML format.
type YAMLGun struct {
	X     int    `yaml:"x"`
	Y     int    `yaml:"y"`
	Dir   string `yaml:"dir"`
	Color string `yaml:"color,omitempty"`
}

// YAMLPiece represents a single placement record in YAML format.
type YAMLPiece struct {
	X int    `yaml:"x"`
	Y int    `yaml:"y"`
	T string `yaml:"t"`           // Kind
	C string `yaml:"c"`           // Color
	O string `yaml:"o,omitempty"` // Orientation
}

// Board represents a parsed board file ready for use.
type Board struct {
	ID       string
	Name     string
	Width    int
	Height   int
	Surface  []string
	Guns     []core.LaserGun
	Pieces   []core.Placement
	Metadata map[string]string
}

// ParseYAML parses a YAML board file. Unknown kinds, colors, directions
// and orientations are errors; placement rules are checked later when
// the board is built.
func ParseYAML(data []byte) (Board, error) {
	var yb YAMLBoard
	if err := yaml.Unmarshal(data, &yb); err != nil {
		return Board{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if yb.ID == "" {
		return Board{}, fmt.Errorf("board has no id")
	}

	board := Board{
		ID:       yb.ID,
		Name:     yb.Name,
		Width:    yb.Size.W,
		Height:   yb.Size.H,
		Surface:  yb.Surface,
		Guns:     make([]core.LaserGun, 0, len(yb.Guns)),
		Pieces:   make([]core.Placement, 0, len(yb.Pieces)),
		Metadata: yb.Metadata,
	}

	for i, g := range yb.Guns {
		dir, ok := core.ParseDir(g.Dir)
		if !ok {
			return Board{}, fmt.Errorf("gun %d: unknown direction %q", i, g.Dir)
		}
		color, ok := core.ParseColor(g.Color)
		if !ok {
			return Board{}, fmt.Errorf("gun %d: unknown color %q", i, g.Color)
		}
		board.Guns = append(board.Guns, core.Gun(g.X, g.Y, dir, color))
	}

	for i, p := range yb.Pieces {
		kind, ok := core.ParseKind(p.T)
		if !ok {
			return Board{}, fmt.Errorf("piece %d: unknown kind %q", i, p.T)
		}
		color, ok := core.ParseColor(p.C)
		if !ok {
			return Board{}, fmt.Errorf("piece %d: unknown color %q", i, p.C)
		}
		orient, ok := core.ParseOrientation(p.O)
		if !ok {
			return Board{}, fmt.Errorf("piece %d: unknown orientation %q", i, p.O)
		}
		board.Pieces = append(board.Pieces, core.Placement{
			X:           p.X,
			Y:           p.Y,
			Kind:        kind,
			Color:       color,
			Orientation: orient,
		})
	}

	return board, nil
}

// EncodeYAML writes a board back to the YAML format.
func EncodeYAML(b Board) ([]byte, error) {
	yb := YAMLBoard{
		ID:       b.ID,
		Name:     b.Name,
		Size:     YAMLSize{W: b.Width, H: b.Height},
		Surface:  b.Surface,
		Metadata: b.Metadata,
	}
	for _, g := range b.Guns {
		yb.Guns = append(yb.Guns, YAMLGun{X: g.Pos.X, Y: g.Pos.Y, Dir: g.Dir.String(), Color: g.Color.String()})
	}
	for _, p := range b.Pieces {
		yp := YAMLPiece{X: p.X, Y: p.Y, T: p.Kind.String(), C: p.Color.String()}
		if p.Kind.Oriented() {
			yp.O = p.Orientation.String()
		}
		yb.Pieces = append(yb.Pieces, yp)
	}
	data, err := yaml.Marshal(&yb)
	if err != nil {
		return nil, fmt.Errorf("yaml marshal: %w", err)
	}
	return data, nil
}

// FormatExtensions returns supported file extensions.
func FormatExtensions() []string {
	return []string{".yaml", ".yml"}
}
