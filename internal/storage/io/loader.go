package io

import (
	"context"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/sidequests/questd/internal/model"
)

// Genesis is the validated bootstrap configuration of a ledger instance:
// the initial admin, out-of-band capability bindings and the display
// metadata of the fungible reward currency.
type Genesis struct {
	Admin    string
	Minters  []string
	Pausers  []string
	Currency Currency
}

// Currency is the display metadata of the fungible reward asset (asset 0).
type Currency struct {
	Symbol string
	Name   string
}

// GenesisYAMLRepository loads ledger genesis configuration from YAML files.
type GenesisYAMLRepository struct {
	fs fs.FS
}

// NewGenesisYAMLRepository creates a new YAML genesis repository.
func NewGenesisYAMLRepository(filesystem fs.FS) *GenesisYAMLRepository {
	return &GenesisYAMLRepository{fs: filesystem}
}

// GetGenesis loads a genesis configuration from a YAML file and returns a
// validated domain value.
func (r *GenesisYAMLRepository) GetGenesis(ctx context.Context, path string) (Genesis, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return Genesis{}, fmt.Errorf("reading genesis file: %w", err)
	}

	if ctx.Err() != nil {
		return Genesis{}, ctx.Err()
	}

	var cfg genesisConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Genesis{}, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Genesis{}, fmt.Errorf("invalid genesis: %w", err)
	}

	return cfg.toDomain(), nil
}

// genesisConfig represents the YAML structure of the genesis file.
type genesisConfig struct {
	Admin    string         `yaml:"admin"`
	Minters  []string       `yaml:"minters"`
	Pausers  []string       `yaml:"pausers"`
	Currency currencyConfig `yaml:"currency"`
}

type currencyConfig struct {
	Symbol string `yaml:"symbol"`
	Name   string `yaml:"name"`
}

func (c genesisConfig) validate() error {
	if c.Admin == "" {
		return fmt.Errorf("admin is required: %w", model.ErrNotValid)
	}
	for _, m := range c.Minters {
		if m == "" {
			return fmt.Errorf("minter principals must not be empty: %w", model.ErrNotValid)
		}
	}
	for _, p := range c.Pausers {
		if p == "" {
			return fmt.Errorf("pauser principals must not be empty: %w", model.ErrNotValid)
		}
	}
	return nil
}

func (c genesisConfig) toDomain() Genesis {
	g := Genesis{
		Admin:   c.Admin,
		Minters: c.Minters,
		Pausers: c.Pausers,
		Currency: Currency{
			Symbol: c.Currency.Symbol,
			Name:   c.Currency.Name,
		},
	}
	if g.Currency.Symbol == "" {
		g.Currency.Symbol = "QST"
	}
	if g.Currency.Name == "" {
		g.Currency.Name = "Quest Token"
	}
	return g
}
