// Package cli provides the interactive GophStore command-line client.
//
// It wires configuration, the local preference store, the fetch gateway and
// the application services into a REPL. Each former app screen is a group of
// commands:
//   - Login / Logout (with optional remember-me)
//   - Products: paged list, debounced search, filter field, POS search
//   - Product form: create/edit, field updates, image add/remove, save
//   - Portfolio: the paged public character list
//   - Settings: dark mode, language, request log
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
