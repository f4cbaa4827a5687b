// Package config loads vesta's server configuration: Default() values,
// optionally overridden by a JSON or YAML file via Load and then by VESTA_*
// environment variables via FromEnv.
//
//	cfg, err := config.Load("/etc/vesta.yaml")
//	if err != nil { ... }
//	config.FromEnv(&cfg)
//	if err := cfg.Validate(); err != nil { ... }
//
// Fee rates are written as decimal percentages and converted to integer
// basis points by FeeConfig.Policy.
package config
