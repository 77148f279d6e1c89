// Package ui is khidmat's terminal interface, built on Bubble Tea.
//
// # Layout
//
// Every screen shares a two-line header: the session bar (user, role,
// scope and the newest notice) and a command bar listing the keys that are
// valid right now. Commands the session may not perform are not offered.
// Below that sits one of three screens:
//
//   - the list of the active entity, with paging, search, sort and filters
//   - the activity log, a filtered tail of khidmat's own log file
//   - the weekly duty roster, available from the duty-roster list
//
// Entity picking, filters, record detail, create/edit forms and delete
// confirmation open as modals over the current screen.
//
// # Data Flow
//
// The model owns one listing.Controller at a time. A fetch calls
// Controller.Begin on the update loop, runs Controller.Load in a command and
// hands the result back through Controller.Complete, which drops responses
// that were superseded. Switching entity stops the old controller, so its
// late responses are ignored too.
//
// Search keystrokes go through a listing.Settler: each change schedules a
// settle message and only the newest generation reaches the controller.
// The settler is reset, not replaced, on entity switch, so ticks from the
// previous list never match.
//
// # Preferences
//
// Theme, the last opened entity and per-entity page sizes are written to
// the prefs file through a listing.Debouncer once changes go quiet, and on
// quit.
package ui
