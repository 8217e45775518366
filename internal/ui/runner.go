package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"koi_orders/internal/api"
	"koi_orders/internal/config"
	"koi_orders/internal/draft"
	"koi_orders/internal/session"
	"koi_orders/internal/store"

	"go.uber.org/zap"
)

type screen int

const (
	screenQuit screen = iota
	screenLogin
	screenRegister
	screenDraft
	screenOrders
	screenReview
	screenSend
	screenProfile
)

// Runner drives the interactive screens. One screen is active at a time;
// each screen reads commands until it returns the next screen, so every
// user action runs exactly one request sequence to completion.
type Runner struct {
	cfg     config.Config
	logger  *zap.Logger
	client  *api.Client
	session *session.Session
	store   *store.Store
	draft   *draft.Draft

	in  *bufio.Scanner
	out io.Writer

	// Set by the 401/403 hook; screens check it after every API call and
	// bail out to the login screen without printing the call's error.
	authFailed bool
}

func NewRunner(cfg config.Config, logger *zap.Logger, client *api.Client, sess *session.Session, st *store.Store, dr *draft.Draft) *Runner {
	r := &Runner{
		cfg:     cfg,
		logger:  logger.Named("ui"),
		client:  client,
		session: sess,
		store:   st,
		draft:   dr,
		in:      bufio.NewScanner(os.Stdin),
		out:     os.Stdout,
	}
	client.OnAuthFailure(func() {
		r.authFailed = true
	})
	return r
}

func (r *Runner) Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	current := screenDraft
	if !r.session.LoggedIn() {
		current = screenLogin
	}

	for current != screenQuit && ctx.Err() == nil {
		r.session.Refresh()
		r.printHeader()
		current = r.run(ctx, current)
	}
	return nil
}

func (r *Runner) run(ctx context.Context, s screen) screen {
	switch s {
	case screenLogin:
		return r.loginScreen(ctx)
	case screenRegister:
		return r.registerScreen(ctx)
	case screenDraft:
		return r.draftScreen(ctx)
	case screenOrders:
		return r.ordersScreen(ctx)
	case screenReview:
		return r.reviewScreen(ctx)
	case screenSend:
		return r.sendScreen(ctx)
	case screenProfile:
		return r.profileScreen(ctx)
	}
	return screenQuit
}

func (r *Runner) printHeader() {
	fmt.Fprintln(r.out)
	if !r.session.LoggedIn() {
		fmt.Fprintln(r.out, "== KOI Orders ==")
		return
	}
	who := ""
	if u := r.session.User(); u != nil && u.Email != "" {
		who = " " + u.Email
	}
	fmt.Fprintf(r.out, "== KOI Orders == [%s]%s\n", r.session.Initial(), who)
}

// prompt reads one trimmed line; false means stdin is closed.
func (r *Runner) prompt(label string) (string, bool) {
	fmt.Fprint(r.out, label)
	if !r.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(r.in.Text()), true
}

// redirected drains the auth-failure flag set by the API hook. The caller
// returns to the login screen and skips its own error display.
func (r *Runner) redirected() bool {
	if !r.authFailed {
		return false
	}
	r.authFailed = false
	fmt.Fprintln(r.out, "Session expired, please log in again.")
	return true
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}
