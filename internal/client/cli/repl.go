package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Account(ctx context.Context) error
	DeleteAccount(ctx context.Context) error

	Add(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error

	LookupCEP(ctx context.Context, args []string) error
	FindAddress(ctx context.Context, args []string) error
	Map(ctx context.Context) error
	Photo(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: register, login, cep, findaddr, help, exit"
	helpLoggedIn  = "Available commands: add, edit, list [term] [asc|desc], show, delete, " +
		"cep, findaddr, map, photo, whoami, account, deleteaccount, logout, help, exit"
)

// commands that need a valid session.
var protected = map[string]bool{
	"logout": true, "whoami": true, "account": true, "deleteaccount": true,
	"add": true, "edit": true, "list": true, "l": true, "show": true,
	"delete": true, "map": true, "photo": true,
}

// runREPL starts a read–eval–print loop for the contacts CLI.
//
// It reads a line from r, parses the first token as the command, and
// dispatches to methods on 'a' with the remaining tokens as arguments.
// Command errors are reported through userMessage. The loop exits on EOF,
// when ctx is cancelled, or when the user types "exit" or "quit".
//
// The prompt shows the current status returned by statusFn.
func runREPL(ctx context.Context, a execIface, statusFn func(context.Context) string, r *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}

		status := statusFn(ctx)
		if status != "" {
			fmt.Fprintf(w, "contacts (%s)> ", status)
		} else {
			fmt.Fprint(w, "contacts> ")
		}

		line, err := r.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(w)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if protected[cmd] && !a.isLoggedIn(ctx) {
			fmt.Fprintln(w, "Please log in first.")
			continue
		}

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				fmt.Fprintln(w, helpLoggedIn)
			} else {
				fmt.Fprintln(w, helpLoggedOut)
			}

		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "whoami":
			cmdErr = a.WhoAmI(ctx)
		case "account":
			cmdErr = a.Account(ctx)
		case "deleteaccount":
			cmdErr = a.DeleteAccount(ctx)

		case "add":
			cmdErr = a.Add(ctx)
		case "edit":
			cmdErr = a.Edit(ctx, args)
		case "l", "list":
			cmdErr = a.List(ctx, args)
		case "show":
			cmdErr = a.Show(ctx, args)
		case "delete":
			cmdErr = a.Delete(ctx, args)

		case "cep":
			cmdErr = a.LookupCEP(ctx, args)
		case "findaddr":
			cmdErr = a.FindAddress(ctx, args)
		case "map":
			cmdErr = a.Map(ctx)
		case "photo":
			cmdErr = a.Photo(ctx, args)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if cmdErr != nil {
			if msg := userMessage(cmdErr); msg != "" {
				fmt.Fprintln(w, msg)
			}
		}
	}
}
