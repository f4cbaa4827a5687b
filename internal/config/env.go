package config

import (
	"os"
	"strconv"
	"strings"
)

// FromEnv overlays VESTA_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	str := map[string]*string{
		"VESTA_TREASURY":                  &cfg.Treasury,
		"VESTA_ESCROW_PREFIX":             &cfg.EscrowPrefix,
		"VESTA_FEE_TREASURY_PERCENT":      &cfg.Fees.Treasury,
		"VESTA_FEE_PARTNER_PERCENT":       &cfg.Fees.Partner,
		"VESTA_FEE_WITHDRAW_TREASURY_PCT": &cfg.Fees.WithdrawTreasury,
		"VESTA_FEE_WITHDRAW_PARTNER_PCT":  &cfg.Fees.WithdrawPartner,
		"VESTA_LOG_LEVEL":                 &cfg.Log.Level,
		"VESTA_LOG_FORMAT":                &cfg.Log.Format,
	}
	for k, dst := range str {
		if v := os.Getenv(k); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("VESTA_DEFAULT_LIST_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DefaultListLimit = n
		}
	}
	if v := os.Getenv("VESTA_MAX_LIST_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxListLimit = n
		}
	}
	// VESTA_MINTS=usdc:6,wsol:9
	if v := os.Getenv("VESTA_MINTS"); v != "" {
		cfg.Mints = nil
		for _, p := range strings.Split(v, ",") {
			name, dec, _ := strings.Cut(strings.TrimSpace(p), ":")
			if name == "" {
				continue
			}
			m := MintConfig{Name: name}
			if n, err := strconv.ParseUint(dec, 10, 8); err == nil {
				m.Decimals = uint8(n)
			}
			cfg.Mints = append(cfg.Mints, m)
		}
	}
}
