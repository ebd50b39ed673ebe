// Package market loads the static per-market configuration.
package market

import (
	"errors"
	"os"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ErrUnknownMarket is returned by Lookup for ids not in the registry.
var ErrUnknownMarket = errors.New("unknown market")

var validate = validator.New()

// Config is the static configuration of one market.
type Config struct {
	ID        string   `yaml:"id" json:"id" validate:"required"`
	Name      string   `yaml:"name" json:"name" validate:"required"`
	Country   string   `yaml:"country" json:"country,omitempty"`
	Currency  string   `yaml:"currency" json:"currency" validate:"required,len=3"`
	Regulator string   `yaml:"regulator" json:"regulator,omitempty"`
	Operators []string `yaml:"operators" json:"operators,omitempty" validate:"dive,required"`
	Segments  []string `yaml:"segments" json:"segments,omitempty" validate:"dive,required"`
}

type file struct {
	Markets []Config `yaml:"markets"`
}

// Registry is a read-only set of market configurations keyed by id.
type Registry struct {
	markets map[string]Config
}

// Load reads and validates a registry from a YAML file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "market: read %s", path)
	}
	return Parse(data)
}

// Parse builds a registry from YAML bytes. Every entry is validated and
// duplicate ids are rejected.
func Parse(data []byte) (*Registry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "market: parse yaml")
	}

	r := &Registry{markets: make(map[string]Config, len(f.Markets))}
	for i, m := range f.Markets {
		if err := validate.Struct(m); err != nil {
			return nil, eris.Wrapf(err, "market: invalid entry %d (%q)", i, m.ID)
		}
		if _, dup := r.markets[m.ID]; dup {
			return nil, eris.Errorf("market: duplicate id %q", m.ID)
		}
		m.Currency = strings.ToUpper(m.Currency)
		r.markets[m.ID] = m
	}
	return r, nil
}

// NewRegistry builds a registry from in-memory configs without validation.
func NewRegistry(markets ...Config) *Registry {
	r := &Registry{markets: make(map[string]Config, len(markets))}
	for _, m := range markets {
		r.markets[m.ID] = m
	}
	return r
}

// Lookup returns the market with id. Unknown ids fail with ErrUnknownMarket
// and a message listing every valid id.
func (r *Registry) Lookup(id string) (Config, error) {
	m, ok := r.markets[id]
	if !ok {
		return Config{}, eris.Wrapf(ErrUnknownMarket, "market: %q (valid: %s)", id, strings.Join(r.IDs(), ", "))
	}
	return m, nil
}

// IDs returns the registered market ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.markets))
	for id := range r.markets {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// All returns every market sorted by id.
func (r *Registry) All() []Config {
	out := make([]Config, 0, len(r.markets))
	for _, id := range r.IDs() {
		out = append(out, r.markets[id])
	}
	return out
}
