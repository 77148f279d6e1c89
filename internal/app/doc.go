// Package app is khidmat's composition root.
//
// Open turns Options into an Env in this order:
//
//  1. config.Load reads config.toml, .env and KHIDMAT_* variables
//  2. logging.New opens the log file (or stderr for CLI commands)
//  3. portal.NewClient builds the retrying REST client with the bearer token
//  4. access.Resolve asks /auth/me for the capability set, falling back to
//     the token's claims, and seeds the session Provider
//  5. the Permission Gate pairs catalog.Policy with that Provider
//  6. notices go to an in-memory Board for the UI and to the log
//
// Run then starts the session poller and hands the Env to ui.Run. CLI
// commands call Open directly and build list controllers with
// Env.Controller.
//
// The session poller re-resolves capabilities every session_refresh
// (default 5m). A failed refresh keeps the previous capabilities, so a
// flaky /auth/me never locks the user out mid-session, and is retried
// after 10s, 20s, then every 30s until it succeeds.
package app
