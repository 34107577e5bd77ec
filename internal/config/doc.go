// Package config loads and validates dinger's TOML configuration.
//
// Configuration resolution order: an explicit --config path, then
// ~/.config/dinger/config.toml, then ./dinger.toml. Missing files fall back
// to repository defaults so the CLI works out of the box against the public
// Stats API.
package config
