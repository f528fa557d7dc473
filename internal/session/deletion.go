package session

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vitashop/vitashop/internal/router"
)

// DeletionState is one of DeletionIdle, DeletionConfirmRequested,
// DeletionDeleting or DeletionDone.
type DeletionState interface {
	deletionState() string
}

type (
	DeletionIdle             struct{}
	DeletionConfirmRequested struct{}
	DeletionDeleting         struct{}
	DeletionDone             struct{}
)

func (DeletionIdle) deletionState() string             { return "idle" }
func (DeletionConfirmRequested) deletionState() string { return "confirm_requested" }
func (DeletionDeleting) deletionState() string         { return "deleting" }
func (DeletionDone) deletionState() string             { return "done" }

// AccountDeleter performs the destructive backend call.
type AccountDeleter interface {
	DeleteAccount(ctx context.Context) error
}

// SessionStore is signed out after a confirmed deletion.
type SessionStore interface {
	Logout(ctx context.Context) error
}

// Navigator moves the application to another route.
type Navigator interface {
	Navigate(path string) error
}

type deleteResultMsg struct {
	attempt uint64
	err     error
}

// DeletionFlow guards account deletion behind an explicit confirmation.
// A confirmed deletion is attempted exactly once.
type DeletionFlow struct {
	repo    AccountDeleter
	session SessionStore
	nav     Navigator
	logger  *slog.Logger
	ctx     context.Context

	state   DeletionState
	err     string
	attempt uint64
}

// NewDeletionFlow creates an idle deletion flow.
func NewDeletionFlow(ctx context.Context, repo AccountDeleter, session SessionStore, nav Navigator, logger *slog.Logger) *DeletionFlow {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DeletionFlow{
		repo:    repo,
		session: session,
		nav:     nav,
		logger:  logger,
		ctx:     ctx,
		state:   DeletionIdle{},
	}
}

// State returns the current deletion state.
func (f *DeletionFlow) State() DeletionState {
	return f.state
}

// Error returns the message of the last failed attempt.
func (f *DeletionFlow) Error() string {
	return f.err
}

// Pending reports whether a confirmation is open or a deletion is running.
func (f *DeletionFlow) Pending() bool {
	switch f.state.(type) {
	case DeletionConfirmRequested, DeletionDeleting:
		return true
	}
	return false
}

// RequestConfirm opens the confirmation prompt.
func (f *DeletionFlow) RequestConfirm() bool {
	if _, ok := f.state.(DeletionIdle); !ok {
		return false
	}
	f.state = DeletionConfirmRequested{}
	f.err = ""
	return true
}

// Dismiss closes the confirmation prompt without side effects.
func (f *DeletionFlow) Dismiss() bool {
	if _, ok := f.state.(DeletionConfirmRequested); !ok {
		return false
	}
	f.state = DeletionIdle{}
	return true
}

// Confirm issues the deletion. It does nothing unless a confirmation is
// open, so repeated presses while deleting are ignored.
func (f *DeletionFlow) Confirm() tea.Cmd {
	if _, ok := f.state.(DeletionConfirmRequested); !ok {
		return nil
	}

	f.attempt++
	attempt := f.attempt
	f.state = DeletionDeleting{}
	f.logger.Info("deleting account", "attempt", attempt)

	ctx, repo := f.ctx, f.repo
	return func() tea.Msg {
		return deleteResultMsg{attempt: attempt, err: repo.DeleteAccount(ctx)}
	}
}

// Update applies a deletion result.
func (f *DeletionFlow) Update(msg tea.Msg) tea.Cmd {
	res, ok := msg.(deleteResultMsg)
	if !ok {
		return nil
	}
	if _, deleting := f.state.(DeletionDeleting); !deleting || res.attempt != f.attempt {
		return nil
	}

	if res.err != nil {
		f.logger.Warn("account deletion failed", "attempt", res.attempt, "error", res.err)
		f.state = DeletionIdle{}
		f.err = message(res.err, MsgDeleteFailed)
		return nil
	}

	f.state = DeletionDone{}
	f.err = ""
	f.logger.Info("account deleted")

	// The session must be cleared before any route is entered.
	if err := f.session.Logout(f.ctx); err != nil {
		f.logger.Error("logout after account deletion", "error", err)
	}
	if err := f.nav.Navigate(router.PathHome); err != nil {
		f.logger.Error("navigating after account deletion", "error", err)
	}
	return nil
}
