package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// Mapping lists source/destination collection pairs for a bulk sync.
//
//	from = "youtube"
//	to = "spotify"
//	create = true
//
//	[[pair]]
//	source = "PLxxxxxxxx"
//	dest = "house case"
type Mapping struct {
	From   string        `toml:"from" validate:"required,oneof=spotify youtube youtube-public"`
	To     string        `toml:"to" validate:"required,oneof=spotify youtube"`
	Create bool          `toml:"create"`
	Pairs  []MappingPair `toml:"pair" validate:"required,min=1,dive"`
}

// MappingPair names one source collection and its destination. An empty Dest reuses Source.
type MappingPair struct {
	Source string `toml:"source" validate:"required"`
	Dest   string `toml:"dest"`
}

// DestName returns the destination collection name or ID.
func (p MappingPair) DestName() string {
	if p.Dest == "" {
		return p.Source
	}
	return p.Dest
}

// LoadMapping reads and validates a mapping file.
func LoadMapping(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}
	return ParseMapping(data)
}

// ParseMapping decodes a TOML mapping, fills defaults and validates it.
func ParseMapping(data []byte) (*Mapping, error) {
	var m Mapping
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse mapping: %w", err)
	}
	if err := defaults.Set(&m); err != nil {
		return nil, fmt.Errorf("failed to set defaults: %w", err)
	}
	if err := validator.New().Struct(&m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if m.From == m.To {
		return nil, fmt.Errorf("%w: from and to are both %s", ErrInvalidConfig, m.From)
	}
	return &m, nil
}
