// Package registry maps asset symbols to their display metadata.
package registry

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
)

var (
	ErrDuplicateSymbol = errors.New("duplicate registry symbol")
	ErrMissingField    = errors.New("registry entry missing required field")
)

// Asset is the display metadata of one tracked symbol.
type Asset struct {
	Symbol   string `toml:"symbol"`
	Name     string `toml:"name"`
	Short    string `toml:"short"`
	Category string `toml:"category"`
	Ticker   string `toml:"ticker"` // market-data provider symbol
}

// ShortName falls back to Name when no short name is set.
func (a Asset) ShortName() string {
	if a.Short != "" {
		return a.Short
	}
	return a.Name
}

// Registry is an ordered, read-only symbol lookup.
type Registry struct {
	assets []Asset
	index  map[string]int
}

// New validates assets and builds a registry preserving their order.
func New(assets []Asset) (*Registry, error) {
	r := &Registry{
		assets: make([]Asset, 0, len(assets)),
		index:  make(map[string]int, len(assets)),
	}
	for _, a := range assets {
		if a.Symbol == "" || a.Name == "" || a.Category == "" {
			return nil, fmt.Errorf("%w: %+v", ErrMissingField, a)
		}
		if _, dup := r.index[a.Symbol]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSymbol, a.Symbol)
		}
		r.index[a.Symbol] = len(r.assets)
		r.assets = append(r.assets, a)
	}
	return r, nil
}

// Lookup returns the asset for symbol.
func (r *Registry) Lookup(symbol string) (Asset, bool) {
	i, ok := r.index[symbol]
	if !ok {
		return Asset{}, false
	}
	return r.assets[i], true
}

func (r *Registry) Len() int { return len(r.assets) }

// Assets returns a copy of the entries in registry order.
func (r *Registry) Assets() []Asset {
	return append([]Asset(nil), r.assets...)
}

// Symbols returns the symbols in registry order.
func (r *Registry) Symbols() []string {
	out := make([]string, len(r.assets))
	for i, a := range r.assets {
		out[i] = a.Symbol
	}
	return out
}

type file struct {
	Assets []Asset `toml:"asset"`
}

// Decode reads a TOML document made of [[asset]] tables.
func Decode(rd io.Reader) (*Registry, error) {
	var f file
	if err := toml.NewDecoder(rd).DisallowUnknownFields().Decode(&f); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}
	return New(f.Assets)
}

// LoadFile reads a registry file from disk.
func LoadFile(path string) (*Registry, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registry %s: %w", path, err)
	}
	defer fh.Close()
	return Decode(fh)
}
