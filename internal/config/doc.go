// Package config loads khidmat's startup configuration.
//
// # Resolution Order
//
// Load layers three sources, later ones winning field by field:
//
//  1. Built-in defaults (see Default)
//  2. The TOML file, ~/.config/khidmat/config.toml unless a path is given
//  3. KHIDMAT_* variables from a .env file (./.env unless a path is given)
//  4. KHIDMAT_* variables from the process environment
//
// A missing config file or default .env file is not an error. An explicitly
// named .env file that cannot be read is.
//
// # TOML Format
//
//	api_url = "https://portal.example.org/api"
//	token_file = "~/.config/khidmat/token"
//	page_size = 25
//	search_debounce = "500ms"
//	request_timeout = "30s"
//	refresh_every = "1m"
//	session_refresh = "5m"
//	retry_max = 3
//	log_level = "debug"
//	log_file = "~/.local/state/khidmat/khidmat.log"
//
// Durations use Go duration syntax. refresh_every = "0s" (the default)
// disables list auto-refresh.
//
// # Environment
//
// Every key has an upper-case KHIDMAT_ counterpart, for example
// KHIDMAT_API_URL, KHIDMAT_TOKEN and KHIDMAT_PAGE_SIZE.
//
// # Tokens
//
// The bearer token comes from token (or KHIDMAT_TOKEN). When that is empty,
// Config.ResolveToken reads token_file. Paths starting with ~ are expanded.
package config
