package cmd

import (
	"fmt"
	"io"
	"sync"

	"github.com/mvaldes/invctl/internal/ports"
)

// console is the CLI's stand-in for view navigation: redirects become
// printed instructions on stderr.
type console struct {
	mu  sync.Mutex
	out io.Writer
}

var (
	_ ports.Navigator = (*console)(nil)
	_ ports.Notifier  = (*console)(nil)
)

func newConsole(out io.Writer) *console {
	return &console{out: out}
}

func (c *console) ToSignIn(returnURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if returnURL != "" {
		_, _ = fmt.Fprintf(c.out, "Sign in required. Run `invctl login` and retry %s.\n", returnURL)
		return
	}
	_, _ = fmt.Fprintln(c.out, "Sign in required. Run `invctl login`.")
}

func (c *console) ToSafeView(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.out, "Access denied (%s).\n", reason)
}

func (c *console) SessionExpired(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.out, "Session expired (%s). Run `invctl login` to sign in again.\n", reason)
}
