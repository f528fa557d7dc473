package tui

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vitashop/vitashop/internal/auth"
	"github.com/vitashop/vitashop/internal/config"
	"github.com/vitashop/vitashop/internal/router"
	"github.com/vitashop/vitashop/internal/session"
	"github.com/vitashop/vitashop/internal/testutil"
	"github.com/vitashop/vitashop/internal/tokens"
	"github.com/vitashop/vitashop/internal/util"
	"github.com/vitashop/vitashop/internal/validation"
)

// settle is how long run waits for a command before treating it as a
// timer and dropping it.
const settle = 250 * time.Millisecond

// testEnv wires the app to a real token store, auth store and router with
// a scripted repository behind the controller.
type testEnv struct {
	app    *App
	repo   *testutil.FakeRepository
	tokens *tokens.Store
	auth   *auth.Store
	router *router.Router
}

type envOption func(*envConfig)

type envConfig struct {
	signedOut bool
	repoFrom  func(*tokens.Store) session.Repository
}

func signedOut() envOption {
	return func(c *envConfig) { c.signedOut = true }
}

// withRepositoryFrom builds the controller's repository from the env's
// token store.
func withRepositoryFrom(fn func(*tokens.Store) session.Repository) envOption {
	return func(c *envConfig) { c.repoFrom = fn }
}

// newTestEnv creates a signed-in environment. The window is set to 120x40
// and marked ready, but Init has not run.
func newTestEnv(t *testing.T, repo *testutil.FakeRepository, opts ...envOption) *testEnv {
	t.Helper()

	cfg := envConfig{}
	for _, o := range opts {
		o(&cfg)
	}
	if repo == nil {
		repo = &testutil.FakeRepository{}
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := util.NewFixedClock(time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC))

	db := testutil.NewTestDB(t)
	tokenStore := tokens.NewStore(db, clock, logger)
	authStore := auth.NewStore(tokenStore, logger)
	if !cfg.signedOut {
		err := authStore.Login(context.Background(), "access-1", "refresh-1", auth.User{Email: "ada@example.com", Name: "Ada Obi"})
		if err != nil {
			t.Fatalf("signing in: %v", err)
		}
	}

	var backend session.Repository = repo
	if cfg.repoFrom != nil {
		backend = cfg.repoFrom(tokenStore)
	}

	rt := router.New(authStore, logger)
	ctrl := session.New(backend, session.Options{
		Validator: validation.New(clock),
		Retry: session.RetryPolicy{
			MaxAttempts:    2,
			InitialBackoff: time.Millisecond,
			MaxBackoff:     time.Millisecond,
		},
		Session:        authStore,
		Navigator:      rt,
		Logger:         logger,
		OnUnauthorized: func() { _ = rt.Navigate(router.PathLogin) },
	})

	app := New(Deps{
		Config:     config.Default(),
		Controller: ctrl,
		Router:     rt,
		Account:    authStore,
		Logger:     logger,
	})
	app.width = 120
	app.height = 40
	app.ready = true

	return &testEnv{app: app, repo: repo, tokens: tokenStore, auth: authStore, router: rt}
}

// start runs Init and everything it triggers.
func (e *testEnv) start(t *testing.T) {
	t.Helper()
	e.run(t, e.app.Init())
}

// run executes cmd and feeds every message it produces back into the app
// until nothing is left. Commands that outlast settle, such as the notice
// timer, are dropped.
func (e *testEnv) run(t *testing.T, cmd tea.Cmd) {
	t.Helper()

	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 200 {
			t.Fatal("command loop did not settle")
		}

		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}

		msg, ok := execCmd(c)
		if !ok || msg == nil {
			continue
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		_, next := e.app.Update(msg)
		queue = append(queue, next)
	}
}

// press sends one key and runs what it triggers.
func (e *testEnv) press(t *testing.T, msg tea.KeyMsg) {
	t.Helper()
	_, cmd := e.app.Update(msg)
	e.run(t, cmd)
}

// typeText sends s one rune at a time.
func (e *testEnv) typeText(t *testing.T, s string) {
	t.Helper()
	for _, r := range s {
		e.press(t, keyMsg(string(r)))
	}
}

func execCmd(c tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- c() }()

	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(settle):
		return nil, false
	}
}

// keyMsg creates a tea.KeyMsg for a regular character key.
func keyMsg(key string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

// specialKeyMsg creates a tea.KeyMsg for a special key type.
func specialKeyMsg(keyType tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: keyType}
}
