package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rzbill/vesta/internal/vesting"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	p, err := cfg.Fees.Policy()
	if err != nil || p != (vesting.FeePolicy{}) {
		t.Fatalf("default fees = %+v, %v", p, err)
	}
}

func TestLoadYAML(t *testing.T) {
	file := filepath.Join(t.TempDir(), "vesta.yaml")
	data := []byte(`treasury: platform
fees:
  treasury: "0.25"
  partner: "0.25"
mints:
  - name: usdc
    decimals: 6
log:
  level: debug
`)
	if err := os.WriteFile(file, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Treasury != "platform" || cfg.Log.Level != "debug" || len(cfg.Mints) != 1 || cfg.Mints[0].Decimals != 6 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.EscrowPrefix != "escrow:" {
		t.Fatalf("defaults not preserved: %q", cfg.EscrowPrefix)
	}
	p, err := cfg.Fees.Policy()
	if err != nil || p.TreasuryBps != 25 || p.PartnerBps != 25 {
		t.Fatalf("policy = %+v, %v", p, err)
	}
}

func TestLoadJSON(t *testing.T) {
	file := filepath.Join(t.TempDir(), "vesta.json")
	if err := os.WriteFile(file, []byte(`{"treasury":"t2","maxListLimit":50}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Treasury != "t2" || cfg.MaxListLimit != 50 || cfg.DefaultListLimit != 100 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("max below default limit should fail validation")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("VESTA_TREASURY", "ops-treasury")
	t.Setenv("VESTA_FEE_TREASURY_PERCENT", "1.5")
	t.Setenv("VESTA_MINTS", "usdc:6, wsol:9")
	t.Setenv("VESTA_MAX_LIST_LIMIT", "10")
	cfg := Default()
	FromEnv(&cfg)
	if cfg.Treasury != "ops-treasury" || cfg.MaxListLimit != 10 {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if len(cfg.Mints) != 2 || cfg.Mints[1] != (MintConfig{Name: "wsol", Decimals: 9}) {
		t.Fatalf("mints = %+v", cfg.Mints)
	}
	p, err := cfg.Fees.Policy()
	if err != nil || p.TreasuryBps != 150 {
		t.Fatalf("policy = %+v, %v", p, err)
	}
}

func TestParsePercent(t *testing.T) {
	good := map[string]uint32{"": 0, "0": 0, "0.25": 25, "1": 100, "99.99": 9999, "100": 10000}
	for in, want := range good {
		got, err := ParsePercent(in)
		if err != nil || got != want {
			t.Fatalf("ParsePercent(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	for _, in := range []string{"-1", "100.01", "0.001", "abc"} {
		if _, err := ParsePercent(in); !errors.Is(err, vesting.ErrInvalidArgument) {
			t.Fatalf("ParsePercent(%q) err = %v", in, err)
		}
	}
	if got := FormatPercent(25); got != "0.25" {
		t.Fatalf("FormatPercent(25) = %s", got)
	}
}
