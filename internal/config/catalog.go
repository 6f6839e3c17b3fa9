package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/cimillas/ticket-sale/internal/domain"
	"gopkg.in/yaml.v3"
)

// Catalog is the YAML description of a sale. Prices and account balances
// are major-unit decimal strings, e.g. "0.05".
//
//	authority: admin
//	base_uri: https://example.com/ticket
//	decimals: 2
//	tiers:
//	  regular: {price: "0.05", max_supply: 500}
//	  vip: {price: "0.15", max_supply: 50}
//	accounts:
//	  alice: "10.00"
type Catalog struct {
	Authority string                 `yaml:"authority"`
	BaseURI   string                 `yaml:"base_uri"`
	Decimals  *int32                 `yaml:"decimals"`
	Tiers     map[string]CatalogTier `yaml:"tiers"`
	Accounts  map[string]string      `yaml:"accounts"`
}

type CatalogTier struct {
	Price     string `yaml:"price"`
	MaxSupply *int64 `yaml:"max_supply"`
}

func ReadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes YAML, rejecting unknown keys.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("config: parse catalog: %w", err)
	}
	return &c, nil
}

// Resolve converts the catalog into one tier per ticket type and the funded
// accounts. Tiers the catalog leaves out, and fields a tier leaves out, take
// the defaults scaled to decimals.
func (c *Catalog) Resolve(decimals int32) ([]domain.Tier, map[domain.Identity]domain.Amount, error) {
	entries := make(map[domain.TicketType]CatalogTier, len(c.Tiers))
	for name, entry := range c.Tiers {
		t, err := domain.ParseTicketType(name)
		if err != nil {
			return nil, nil, fmt.Errorf("config: catalog tier %q: %w", name, err)
		}
		entries[t] = entry
	}

	tiers := make([]domain.Tier, 0, len(domain.TicketTypes()))
	for _, t := range domain.TicketTypes() {
		entry := entries[t]
		tier := domain.Tier{Type: t, MaxSupply: domain.DefaultMaxSupply}

		if entry.Price != "" {
			price, err := domain.ParseAmount(entry.Price, decimals)
			if err != nil {
				return nil, nil, fmt.Errorf("config: catalog tier %q price: %w", t, err)
			}
			tier.UnitPrice = price
		} else {
			price, err := domain.DefaultPrice(t, decimals)
			if err != nil {
				return nil, nil, fmt.Errorf("config: set a %s price for %d decimals: %w", t, decimals, err)
			}
			tier.UnitPrice = price
		}

		if entry.MaxSupply != nil {
			if *entry.MaxSupply < 0 {
				return nil, nil, fmt.Errorf("config: catalog tier %q: %w", t, domain.ErrInvalidQuantity)
			}
			tier.MaxSupply = *entry.MaxSupply
		}
		tiers = append(tiers, tier)
	}

	accounts := make(map[domain.Identity]domain.Amount, len(c.Accounts))
	for holder, raw := range c.Accounts {
		id, err := domain.NewIdentity(holder)
		if err != nil {
			return nil, nil, fmt.Errorf("config: catalog account %q: %w", holder, err)
		}
		amount, err := domain.ParseAmount(raw, decimals)
		if err != nil {
			return nil, nil, fmt.Errorf("config: catalog account %q: %w", holder, err)
		}
		accounts[id] = amount
	}
	return tiers, accounts, nil
}
