// Package tor talks to a local Tor daemon: the control port for identity
// rotation (SIGNAL NEWNYM) and the SOCKS port for the data path.
package tor

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// Default Tor endpoints on localhost.
const (
	DefaultSOCKSAddr   = "127.0.0.1:9050"
	DefaultControlAddr = "127.0.0.1:9051"
)

// Controller speaks the Tor control protocol over one short-lived TCP
// connection per command. It implements engine.IdentityRotator.
type Controller struct {
	Addr     string
	Password string // empty for cookieless AUTHENTICATE ""
	Timeout  time.Duration
}

// NewController returns a controller for the given control-port address.
func NewController(addr, password string) *Controller {
	if addr == "" {
		addr = DefaultControlAddr
	}
	return &Controller{Addr: addr, Password: password, Timeout: 5 * time.Second}
}

// Rotate requests a new Tor circuit (new egress IP). It authenticates,
// sends SIGNAL NEWNYM, and checks the 250 replies — a dead or refusing
// control port surfaces as an error instead of being silently dropped.
func (c *Controller) Rotate(ctx context.Context) error {
	d := net.Dialer{Timeout: c.Timeout}
	conn, err := d.DialContext(ctx, "tcp", c.Addr)
	if err != nil {
		return fmt.Errorf("tor control dial %s: %w", c.Addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	} else {
		conn.SetDeadline(time.Now().Add(c.Timeout))
	}

	tp := textproto.NewConn(conn)
	defer tp.Close()

	if err := c.command(tp, fmt.Sprintf("AUTHENTICATE %q", c.Password)); err != nil {
		return fmt.Errorf("tor authenticate: %w", err)
	}
	if err := c.command(tp, "SIGNAL NEWNYM"); err != nil {
		return fmt.Errorf("tor newnym: %w", err)
	}
	// Best effort; the daemon closes the connection either way.
	if err := tp.PrintfLine("QUIT"); err != nil {
		slog.Debug("tor quit", slog.Any("error", err))
	}
	return nil
}

// command sends one control line and expects a 250 reply.
func (c *Controller) command(tp *textproto.Conn, line string) error {
	if err := tp.PrintfLine("%s", line); err != nil {
		return err
	}
	reply, err := tp.ReadLine()
	if err != nil {
		return err
	}
	if !strings.HasPrefix(reply, "250") {
		return fmt.Errorf("unexpected reply: %s", reply)
	}
	return nil
}

// SOCKSDialer builds a context-aware dialer through the given socks5://
// proxy URL, for wiring into an http.Transport.
func SOCKSDialer(proxyURL string) (proxy.ContextDialer, error) {
	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy URL: %w", err)
	}
	if u.Scheme != "socks5" && u.Scheme != "socks5h" {
		return nil, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}

	var auth *proxy.Auth
	if u.User != nil {
		pw, _ := u.User.Password()
		auth = &proxy.Auth{User: u.User.Username(), Password: pw}
	}

	d, err := proxy.SOCKS5("tcp", u.Host, auth, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("socks5 dialer: %w", err)
	}
	cd, ok := d.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("socks5 dialer does not support contexts")
	}
	return cd, nil
}
