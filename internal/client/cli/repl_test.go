package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/dragoncontacts/internal/common"
)

type fakeExec struct {
	loggedIn bool
	err      error

	calls []string
	args  [][]string
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return f.err
}

func (f *fakeExec) isLoggedIn(context.Context) bool { return f.loggedIn }

func (f *fakeExec) Register(context.Context) error { return f.record("register", nil) }
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login", nil)
}
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout", nil)
}
func (f *fakeExec) WhoAmI(context.Context) error        { return f.record("whoami", nil) }
func (f *fakeExec) Account(context.Context) error       { return f.record("account", nil) }
func (f *fakeExec) DeleteAccount(context.Context) error { return f.record("deleteaccount", nil) }
func (f *fakeExec) Add(context.Context) error           { return f.record("add", nil) }
func (f *fakeExec) Edit(_ context.Context, args []string) error {
	return f.record("edit", args)
}
func (f *fakeExec) List(_ context.Context, args []string) error {
	return f.record("list", args)
}
func (f *fakeExec) Show(_ context.Context, args []string) error {
	return f.record("show", args)
}
func (f *fakeExec) Delete(_ context.Context, args []string) error {
	return f.record("delete", args)
}
func (f *fakeExec) LookupCEP(_ context.Context, args []string) error {
	return f.record("cep", args)
}
func (f *fakeExec) FindAddress(_ context.Context, args []string) error {
	return f.record("findaddr", args)
}
func (f *fakeExec) Map(context.Context) error { return f.record("map", nil) }
func (f *fakeExec) Photo(_ context.Context, args []string) error {
	return f.record("photo", args)
}

func noStatus(context.Context) string { return "" }

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	input := strings.Join([]string{
		"help",
		"list",
		"login",
		"help",
		"add",
		"list ana desc",
		"show 123",
		"",
		"cep 01001-000",
		"foobar",
		"logout",
		"exit",
		"add",
	}, "\n")

	exec := &fakeExec{}
	var out bytes.Buffer
	runREPL(context.Background(), exec, noStatus, rdr(input), &out)

	assert.Equal(t, []string{"login", "add", "list", "show", "cep", "logout"}, exec.calls)
	assert.Equal(t, []string{"ana", "desc"}, exec.args[2])
	assert.Equal(t, []string{"123"}, exec.args[3])

	s := out.String()
	assert.Contains(t, s, helpLoggedOut)
	assert.Contains(t, s, helpLoggedIn)
	assert.Contains(t, s, "Please log in first.")
	assert.Contains(t, s, "Unknown command: foobar")
	assert.Contains(t, s, "Bye!")
}

func TestRunREPL_ReportsCommandErrors(t *testing.T) {
	exec := &fakeExec{loggedIn: true, err: common.ErrDuplicateCpf}
	var out bytes.Buffer

	runREPL(context.Background(), exec, noStatus, rdr("add\nquit\n"), &out)

	assert.Contains(t, out.String(), "A contact with this CPF already exists.")
}

func TestRunREPL_StaleResponseIsSilent(t *testing.T) {
	exec := &fakeExec{err: common.ErrStaleResponse}
	var out bytes.Buffer

	runREPL(context.Background(), exec, noStatus, rdr("findaddr 01001000\n"), &out)

	assert.Equal(t, []string{"findaddr"}, exec.calls)
	assert.Equal(t, "contacts> contacts> \n", out.String())
}

func TestRunREPL_PromptShowsStatus(t *testing.T) {
	var out bytes.Buffer
	runREPL(context.Background(), &fakeExec{}, func(context.Context) string { return "Ana" }, rdr("exit\n"), &out)

	assert.True(t, strings.HasPrefix(out.String(), "contacts (Ana)> "))
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{loggedIn: true}
	var out bytes.Buffer
	runREPL(ctx, exec, noStatus, rdr("add\n"), &out)

	assert.Empty(t, exec.calls)
	assert.Empty(t, out.String())
}

func TestRunREPL_LastLineWithoutNewline(t *testing.T) {
	exec := &fakeExec{loggedIn: true}
	var out bytes.Buffer
	runREPL(context.Background(), exec, noStatus, rdr("map"), &out)

	assert.Equal(t, []string{"map"}, exec.calls)
}
