// Package config loads the gateway configuration.
//
// Sources are layered, later ones winning: built-in defaults, an optional
// .env file, an optional YAML file (MCUGW_CONFIG, or config.yaml in the
// working directory) and MCUGW_* environment variables. The result is
// validated before it is returned and is not modified afterwards.
package config
