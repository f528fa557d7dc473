package tui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vitashop/vitashop/internal/auth"
	"github.com/vitashop/vitashop/internal/config"
	"github.com/vitashop/vitashop/internal/media"
	"github.com/vitashop/vitashop/internal/models"
	"github.com/vitashop/vitashop/internal/router"
	"github.com/vitashop/vitashop/internal/session"
	"github.com/vitashop/vitashop/internal/tui/components"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// MaxContentWidth is the maximum width for content display
const MaxContentWidth = 120

// Account exposes who is signed in for the header.
type Account interface {
	State() auth.State
}

// Deps are the collaborators the app drives.
type Deps struct {
	Config     *config.Config
	Controller *session.Controller
	Router     *router.Router
	Account    Account
	Logger     *slog.Logger
}

// App is the main Bubble Tea application model.
type App struct {
	cfg     *config.Config
	ctrl    *session.Controller
	router  *router.Router
	account Account
	logger  *slog.Logger

	// UI state
	theme       *Theme
	styles      components.Styles
	keys        KeyMap
	width       int
	height      int
	ready       bool
	quitting    bool
	showConfirm bool

	// path is the route the app last acted on.
	path string

	form      *components.Form
	picker    *components.Input
	pickerErr string
}

// New creates a new App instance.
func New(deps Deps) *App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}

	theme := NewTheme(cfg.Display.ColorScheme)
	return &App{
		cfg:     cfg,
		ctrl:    deps.Controller,
		router:  deps.Router,
		account: deps.Account,
		logger:  deps.Logger,
		theme:   theme,
		styles:  theme.Components(),
		keys:    DefaultKeyMap(),
	}
}

// Init implements tea.Model. It opens the profile, which the router sends
// to the sign-in screen when nobody is signed in.
func (a *App) Init() tea.Cmd {
	return a.navigate(router.PathProfile)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		return a, nil

	case tea.KeyMsg:
		cmd = a.handleKeyPress(msg)

	default:
		cmd = a.ctrl.Update(msg)
	}

	return a, tea.Batch(cmd, a.sync())
}

// navigate changes route and reacts to wherever the router ended up.
func (a *App) navigate(path string) tea.Cmd {
	if err := a.router.Navigate(path); err != nil {
		a.logger.Error("navigation failed", "path", path, "error", err)
	}
	return a.sync()
}

// sync follows route changes made by the app or by the controller and
// keeps the edit form in step with the controller.
func (a *App) sync() tea.Cmd {
	var cmd tea.Cmd

	if cur := a.router.Current(); cur != a.path {
		prev := a.path
		a.path = cur
		a.picker, a.pickerErr = nil, ""
		a.logger.Debug("route changed", "from", prev, "to", cur)

		if prev == router.PathProfile {
			a.ctrl.Deactivate()
		}
		if cur == router.PathProfile {
			cmd = a.ctrl.Activate()
		}
	}

	a.syncForm()
	return cmd
}

func (a *App) syncForm() {
	snap := a.ctrl.Snapshot()
	if !snap.Editing {
		a.form = nil
		return
	}

	if a.form == nil {
		a.form = newProfileForm(snap.Draft)
	}
	a.form.SetDisabled(snap.Saving)
	a.form.SetError(snap.General)
	for _, f := range a.form.Fields() {
		f.SetError(snap.FieldError(models.Field(f.Key())))
	}
}

// screen reports what is currently shown.
func (a *App) screen() screen {
	switch a.path {
	case router.PathLogin:
		return screenLogin
	case router.PathProfile:
	default:
		return screenHome
	}

	if a.picker != nil {
		return screenPicture
	}
	switch a.ctrl.Deletion().State().(type) {
	case session.DeletionConfirmRequested:
		return screenConfirmDelete
	case session.DeletionDeleting:
		return screenDeleting
	}

	switch a.ctrl.State().(type) {
	case session.LoadFailed:
		return screenLoadFailed
	case session.Viewing:
		return screenViewing
	case session.Editing:
		return screenEditing
	default:
		return screenLoading
	}
}

// handleKeyPress processes key press events.
func (a *App) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	// Quit confirmation takes priority
	if a.showConfirm {
		switch {
		case a.keys.Yes.Matches(msg) || msg.String() == "enter":
			a.quitting = true
			return tea.Quit
		case a.keys.No.Matches(msg):
			a.showConfirm = false
		}
		return nil
	}

	if a.keys.ForceQuit.Matches(msg) {
		a.showConfirm = true
		return nil
	}

	switch a.screen() {
	case screenPicture:
		return a.handlePictureKeys(msg)
	case screenEditing:
		return a.handleFormKeys(msg)
	case screenConfirmDelete:
		switch {
		case a.keys.Yes.Matches(msg):
			return a.ctrl.ConfirmDeletion()
		case a.keys.No.Matches(msg):
			a.ctrl.DismissDeletion()
		}
		return nil
	}

	if a.keys.Quit.Matches(msg) {
		a.showConfirm = true
		return nil
	}

	switch a.screen() {
	case screenHome:
		if a.keys.Open.Matches(msg) {
			return a.navigate(router.PathProfile)
		}
	case screenLoadFailed:
		if a.keys.Retry.Matches(msg) {
			return a.ctrl.Activate()
		}
	case screenViewing:
		switch {
		case a.keys.Edit.Matches(msg):
			a.ctrl.BeginEdit()
		case a.keys.Picture.Matches(msg):
			a.openPicker()
		case a.keys.Delete.Matches(msg):
			a.ctrl.RequestDeletion()
		}
	}
	return nil
}

// handleFormKeys handles key presses while editing.
func (a *App) handleFormKeys(msg tea.KeyMsg) tea.Cmd {
	if a.form == nil {
		return nil
	}
	if a.keys.EditPicture.Matches(msg) {
		a.openPicker()
		return nil
	}

	switch a.form.HandleKey(msg.String()) {
	case components.ActionChanged:
		f := a.form.Focused()
		a.ctrl.SetField(models.Field(f.Key()), f.Value())
	case components.ActionSubmit:
		return a.ctrl.Save()
	case components.ActionCancel:
		a.ctrl.Cancel()
		a.form = nil
	}
	return nil
}

func (a *App) openPicker() {
	a.picker = components.NewInput("picture", "Picture file").
		WithWidth(40).
		WithMaxLength(1024).
		WithPlaceholder("/path/to/photo.jpg")
	a.picker.Focus(true)
	a.pickerErr = ""
}

// handlePictureKeys handles the picture path prompt.
func (a *App) handlePictureKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		a.picker, a.pickerErr = nil, ""
		return nil
	case "enter":
		path := a.picker.Value()
		if path == "" {
			return nil
		}
		file, err := media.Open(path)
		if err != nil {
			a.logger.Info("picture could not be read", "path", path, "error", err)
			a.pickerErr = "Could not read " + path
			return nil
		}
		a.picker, a.pickerErr = nil, ""
		return a.ctrl.SelectPicture(file)
	default:
		a.picker.HandleKey(msg.String())
		return nil
	}
}

// Run starts the TUI application.
func Run(ctx context.Context, deps Deps) error {
	app := New(deps)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
