// Package config loads agilitext settings.
//
// Settings come from, lowest priority first:
//
//  1. built-in defaults (Defaults)
//  2. config.toml in $XDG_CONFIG_HOME/agilitext or ~/.config/agilitext,
//     or the file given with WithFile
//  3. environment variables prefixed AGILITEXT_, with dots replaced by
//     underscores (AGILITEXT_LOG_LEVEL=debug)
//  4. command line flags bound through Loader.Viper
//
// WriteDefault renders the defaults as a commented TOML file.
package config
