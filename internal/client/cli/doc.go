// Package cli provides the interactive contacts command-line client.
//
// It wires configuration, local storage, the postal and geocoding clients,
// optional photo storage and an interactive REPL. App.Run blocks until the
// user exits, while a session watcher renews the login in the background and
// reports when it expires.
//
// Commands:
//   - register, login, logout, whoami, account, deleteaccount
//   - add, edit, list [term] [asc|desc], show, delete
//   - cep, findaddr, map, photo
//
// See App and runREPL for details.
package cli
