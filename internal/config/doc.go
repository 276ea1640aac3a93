// Package config handles loading and saving dvx's configuration file.
//
// # Overview
//
// dvx remembers the Dataverse environments the user has connected to, which
// one was active last, and a couple of UI preferences (keybinding style,
// theme). Everything lives in a single TOML file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/dvx/config.toml (default)
//  3. If the config file doesn't exist, start with defaults
//
// Missing config files are NOT an error - dvx works out of the box with only
// a --env flag, and writes the file on first environment switch.
//
// # TOML Format
//
// Example config.toml:
//
//	environments = ["https://org.crm.dynamics.com"]
//	current_env = "https://org.crm.dynamics.com"
//	vim = true
//	theme = "Dracula"
//
// All fields are optional. Tilde expansion is performed on the config path.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors
package config
