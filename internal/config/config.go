package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rzbill/vesta/internal/vesting"
	logpkg "github.com/rzbill/vesta/pkg/log"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// Treasury receives protocol fees and the partner share of streams
	// created without a partner.
	Treasury string `json:"treasury" yaml:"treasury"`
	// EscrowPrefix is prepended to a stream id to form its escrow address.
	EscrowPrefix string    `json:"escrowPrefix" yaml:"escrowPrefix"`
	Fees         FeeConfig `json:"fees" yaml:"fees"`
	// Mints are registered at startup.
	Mints            []MintConfig  `json:"mints" yaml:"mints"`
	DefaultListLimit int           `json:"defaultListLimit" yaml:"defaultListLimit"`
	MaxListLimit     int           `json:"maxListLimit" yaml:"maxListLimit"`
	Log              logpkg.Config `json:"log" yaml:"log"`
}

// FeeConfig holds fee rates as decimal percentages ("0.25" is 0.25%).
type FeeConfig struct {
	Treasury         string `json:"treasury" yaml:"treasury"`
	Partner          string `json:"partner" yaml:"partner"`
	WithdrawTreasury string `json:"withdrawTreasury" yaml:"withdrawTreasury"`
	WithdrawPartner  string `json:"withdrawPartner" yaml:"withdrawPartner"`
}

// MintConfig declares an asset to register at startup.
type MintConfig struct {
	Name     string `json:"name" yaml:"name"`
	Decimals uint8  `json:"decimals" yaml:"decimals"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Treasury:         "treasury",
		EscrowPrefix:     "escrow:",
		Fees:             FeeConfig{Treasury: "0", Partner: "0", WithdrawTreasury: "0", WithdrawPartner: "0"},
		DefaultListLimit: 100,
		MaxListLimit:     1000,
		Log:              logpkg.Config{Level: "info", Format: "text"},
	}
}

// Policy converts the configured percentages to a basis-point fee policy.
func (f FeeConfig) Policy() (vesting.FeePolicy, error) {
	var p vesting.FeePolicy
	for _, fld := range []struct {
		name string
		in   string
		out  *uint32
	}{
		{"treasury", f.Treasury, &p.TreasuryBps},
		{"partner", f.Partner, &p.PartnerBps},
		{"withdrawTreasury", f.WithdrawTreasury, &p.WithdrawTreasuryBps},
		{"withdrawPartner", f.WithdrawPartner, &p.WithdrawPartnerBps},
	} {
		bps, err := ParsePercent(fld.in)
		if err != nil {
			return vesting.FeePolicy{}, fmt.Errorf("fees.%s: %w", fld.name, err)
		}
		*fld.out = bps
	}
	return p, p.Validate()
}

// Validate checks the configuration is usable by the server.
func (c Config) Validate() error {
	var errs []error
	if err := vesting.Address(c.Treasury).Validate(); err != nil {
		errs = append(errs, fmt.Errorf("treasury: %w", err))
	}
	if c.EscrowPrefix == "" {
		errs = append(errs, errors.New("escrowPrefix must not be empty"))
	}
	if _, err := c.Fees.Policy(); err != nil {
		errs = append(errs, err)
	}
	if c.DefaultListLimit <= 0 || c.MaxListLimit < c.DefaultListLimit {
		errs = append(errs, fmt.Errorf("list limits %d/%d invalid", c.DefaultListLimit, c.MaxListLimit))
	}
	for _, m := range c.Mints {
		if err := vesting.Address(m.Name).Validate(); err != nil {
			errs = append(errs, fmt.Errorf("mint %q: %w", m.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Load reads configuration from a JSON or YAML file (by extension) over the
// defaults. If path is empty, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	default:
		err = json.Unmarshal(b, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
