package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubExec struct {
	loggedIn bool
	calls    []string
}

func (s *stubExec) isLoggedIn() bool { return s.loggedIn }

func (s *stubExec) record(name string) error {
	s.calls = append(s.calls, name)
	return nil
}

func (s *stubExec) Register(context.Context) error { return s.record("register") }
func (s *stubExec) Login(context.Context) error    { return s.record("login") }
func (s *stubExec) Whoami(context.Context) error   { return s.record("whoami") }
func (s *stubExec) Audit(context.Context) error    { return s.record("audit") }
func (s *stubExec) Refresh(context.Context) error  { return s.record("refresh") }
func (s *stubExec) Logout(context.Context) error   { return s.record("logout") }

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	lines := &[]string{}
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		*lines = append(*lines, fmt.Sprintln(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return lines
}

func runWithInput(t *testing.T, a execIface, input string) {
	t.Helper()
	scanner := bufio.NewScanner(strings.NewReader(input))
	runREPL(context.Background(), a, func() string { return "status" }, scanner)
}

func TestREPL_DispatchesCommands(t *testing.T) {
	captureOutput(t)
	s := &stubExec{}

	runWithInput(t, s, "register\nlogin\nwhoami\naudit\nrefresh\nlogout\nexit\n")

	assert.Equal(t, []string{"register", "login", "whoami", "audit", "refresh", "logout"}, s.calls)
}

func TestREPL_UnknownCommand(t *testing.T) {
	lines := captureOutput(t)
	s := &stubExec{}

	runWithInput(t, s, "bogus\nquit\n")

	assert.Empty(t, s.calls)
	joined := strings.Join(*lines, "")
	assert.Contains(t, joined, "Unknown command: bogus")
}

func TestREPL_HelpDependsOnLoginState(t *testing.T) {
	lines := captureOutput(t)
	runWithInput(t, &stubExec{loggedIn: false}, "help\nexit\n")
	assert.Contains(t, strings.Join(*lines, ""), "register, login")

	lines = captureOutput(t)
	runWithInput(t, &stubExec{loggedIn: true}, "help\nexit\n")
	assert.Contains(t, strings.Join(*lines, ""), "whoami, audit, refresh, logout")
}

func TestREPL_ExitsOnEOF(t *testing.T) {
	captureOutput(t)
	s := &stubExec{}

	runWithInput(t, s, "login\n")

	assert.Equal(t, []string{"login"}, s.calls)
}
