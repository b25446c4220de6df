// Package levels provides board setup loading for Khet.
// This package depends on core but core does not depend on levels.
package levels

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vovakirdan/khet/internal/games/khet/core"
	"github.com/vovakirdan/khet/internal/games/khet/levels/formats"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Level represents a complete board definition.
type Level struct {
	ID       string
	Name     string
	Width    int
	Height   int
	Surface  []string
	Guns     []core.LaserGun
	Pieces   []core.Placement
	Metadata map[string]string
	FilePath string // Empty for built-in boards
}

// Builtin reports whether the level ships with the binary.
func (l *Level) Builtin() bool {
	return l.FilePath == ""
}

// ToBoard builds and validates a Board from the level.
func (l *Level) ToBoard() (*core.Board, error) {
	if l.Width <= 0 || l.Height <= 0 {
		return nil, core.ValidationError{
			Code:    core.CodeOutOfBounds,
			Message: fmt.Sprintf("board %s has invalid size %dx%d", l.ID, l.Width, l.Height),
		}
	}

	for i, g := range l.Guns {
		if g.Pos.X < 0 || g.Pos.X >= l.Width || g.Pos.Y < 0 || g.Pos.Y >= l.Height {
			return nil, core.ValidationError{
				Code:    core.CodeBadGun,
				Message: fmt.Sprintf("gun %d at %s is outside the %dx%d board", i, g.Pos, l.Width, l.Height),
			}
		}
	}

	var surface *core.Surface
	if len(l.Surface) > 0 {
		s, err := core.NewSurface(l.Surface)
		if err != nil {
			return nil, err
		}
		surface = s
	}

	return core.NewBoardFromSetup(l.Width, l.Height, surface, l.Guns, l.Pieces)
}

// Loader handles loading boards from the built-in set and a directory.
type Loader struct {
	Root string // Optional directory of extra boards
}

// NewLoader creates a new board loader. An empty root loads only the
// built-in boards.
func NewLoader(root string) *Loader {
	return &Loader{Root: root}
}

// LoadAll loads the built-in boards and every board file under Root.
// A file whose id matches a built-in board replaces it.
// Returns levels sorted by ID for deterministic ordering.
func (l *Loader) LoadAll() ([]Level, error) {
	byID := make(map[string]Level)

	builtin, err := Builtin()
	if err != nil {
		return nil, err
	}
	for _, lvl := range builtin {
		byID[lvl.ID] = lvl
	}

	if l.Root != "" {
		err := filepath.WalkDir(l.Root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				return nil
			}

			ext := strings.ToLower(filepath.Ext(path))
			if !isSupportedExtension(ext) {
				return nil
			}

			level, err := l.LoadFile(path)
			if err != nil {
				// Skip invalid files
				return nil
			}

			byID[level.ID] = level
			return nil
		})

		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("walking directory %s: %w", l.Root, err)
		}
	}

	levels := make([]Level, 0, len(byID))
	for _, lvl := range byID {
		levels = append(levels, lvl)
	}

	// Sort by ID for determinism
	sort.Slice(levels, func(i, j int) bool {
		return levels[i].ID < levels[j].ID
	})

	return levels, nil
}

// LoadFile loads a single board file.
func (l *Loader) LoadFile(path string) (Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Level{}, fmt.Errorf("reading file %s: %w", path, err)
	}

	level, err := parse(data, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return Level{}, fmt.Errorf("parsing file %s: %w", path, err)
	}
	level.FilePath = path
	return level, nil
}

// LoadByID loads a specific board by ID.
func (l *Loader) LoadByID(id string) (Level, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return Level{}, err
	}

	for _, lvl := range levels {
		if lvl.ID == id {
			return lvl, nil
		}
	}

	return Level{}, fmt.Errorf("board not found: %s", id)
}

// ListIDs returns all board IDs in sorted order.
func (l *Loader) ListIDs() ([]string, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(levels))
	for i, lvl := range levels {
		ids[i] = lvl.ID
	}
	return ids, nil
}

// Builtin returns the boards embedded in the binary, sorted by ID.
func Builtin() ([]Level, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, fmt.Errorf("reading built-in boards: %w", err)
	}

	var levels []Level
	for _, e := range entries {
		data, err := builtinFS.ReadFile("builtin/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("reading built-in board %s: %w", e.Name(), err)
		}
		level, err := parse(data, strings.ToLower(filepath.Ext(e.Name())))
		if err != nil {
			return nil, fmt.Errorf("parsing built-in board %s: %w", e.Name(), err)
		}
		levels = append(levels, level)
	}

	sort.Slice(levels, func(i, j int) bool {
		return levels[i].ID < levels[j].ID
	})
	return levels, nil
}

// FromBoard captures a board as a level, e.g. after pieces were rotated.
func FromBoard(id, name string, b *core.Board) Level {
	return Level{
		ID:      id,
		Name:    name,
		Width:   b.W,
		Height:  b.H,
		Surface: b.Surface.Rows(),
		Guns:    b.Guns(),
		Pieces:  b.Placements(),
	}
}

// Encode serializes a level in the YAML board format.
func Encode(l Level) ([]byte, error) {
	return formats.EncodeYAML(formats.Board{
		ID:       l.ID,
		Name:     l.Name,
		Width:    l.Width,
		Height:   l.Height,
		Surface:  l.Surface,
		Guns:     l.Guns,
		Pieces:   l.Pieces,
		Metadata: l.Metadata,
	})
}

// isSupportedExtension checks if extension is supported.
func isSupportedExtension(ext string) bool {
	for _, supported := range formats.FormatExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}

// parse routes to the correct parser and converts the result.
func parse(data []byte, ext string) (Level, error) {
	var (
		parsed formats.Board
		err    error
	)
	switch ext {
	case ".yaml", ".yml":
		parsed, err = formats.ParseYAML(data)
	default:
		return Level{}, fmt.Errorf("unsupported extension: %s", ext)
	}
	if err != nil {
		return Level{}, err
	}

	return Level{
		ID:       parsed.ID,
		Name:     parsed.Name,
		Width:    parsed.Width,
		Height:   parsed.Height,
		Surface:  parsed.Surface,
		Guns:     parsed.Guns,
		Pieces:   parsed.Pieces,
		Metadata: parsed.Metadata,
	}, nil
}
