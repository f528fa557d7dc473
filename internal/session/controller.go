// Package session drives the profile screen: loading the profile, editing a
// draft, saving it, uploading a picture and deleting the account.
//
// The controller follows the Bubble Tea model. Operations return a tea.Cmd
// that performs the network call off the event loop, and the result comes
// back as a message passed to Update. All state changes happen on the
// goroutine that calls the operations and Update, so the controller needs no
// locking and is not safe for concurrent use.
//
// Every mutating request takes a number from one increasing sequence. The
// controller remembers the sequence of the last response applied to the
// editable fields and to the picture, and a response only writes a domain
// it is newer for. Responses from an earlier activation are dropped.
package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vitashop/vitashop/internal/api"
	"github.com/vitashop/vitashop/internal/media"
	"github.com/vitashop/vitashop/internal/models"
	"github.com/vitashop/vitashop/internal/validation"
)

// Repository is the backend the controller talks to.
type Repository interface {
	FetchProfile(ctx context.Context) (*models.Profile, error)
	SaveProfile(ctx context.Context, payload models.ProfilePayload) (*models.Profile, error)
	UploadPicture(ctx context.Context, file media.File) (*models.Profile, error)
	AccountDeleter
}

// State is one of Inactive, Loading, LoadFailed, Viewing or Editing.
type State interface {
	Name() string
}

type (
	// Inactive is the state before activation and after deactivation.
	Inactive struct{}

	// Loading waits for the profile. Attempt counts fetches made so far.
	Loading struct {
		Attempt int
	}

	// LoadFailed is a non-interactive error state left by re-activating.
	LoadFailed struct {
		Err error
	}

	Viewing struct{}

	Editing struct {
		Draft  models.Draft
		Saving bool
	}
)

func (Inactive) Name() string   { return "inactive" }
func (Loading) Name() string    { return "loading" }
func (LoadFailed) Name() string { return "load_failed" }
func (Viewing) Name() string    { return "viewing" }
func (Editing) Name() string    { return "editing" }

// Options configures a Controller.
type Options struct {
	Validator *validation.Validator
	Retry     RetryPolicy
	Session   SessionStore
	Navigator Navigator
	Logger    *slog.Logger

	// OnUnauthorized runs whenever the backend rejects the bearer token.
	OnUnauthorized func()

	// Context is used for every request. Defaults to context.Background.
	Context context.Context
}

// Controller is the profile session state machine.
type Controller struct {
	repo           Repository
	validator      *validation.Validator
	retry          RetryPolicy
	logger         *slog.Logger
	onUnauthorized func()
	ctx            context.Context
	deletion       *DeletionFlow

	state   State
	profile *models.Profile
	errors  models.ErrorSet
	general string

	notice    string
	noticeSeq uint64

	active     bool
	activation uint64

	seq          uint64
	fieldsSeq    uint64
	pictureSeq   uint64
	latestUpload uint64
	uploading    bool
}

type (
	fetchResultMsg struct {
		activation uint64
		attempt    int
		profile    *models.Profile
		err        error
	}

	retryFetchMsg struct {
		activation uint64
		attempt    int
	}

	saveResultMsg struct {
		activation uint64
		seq        uint64
		profile    *models.Profile
		err        error
	}

	uploadResultMsg struct {
		activation uint64
		seq        uint64
		profile    *models.Profile
		err        error
	}

	noticeExpiredMsg struct {
		activation uint64
		seq        uint64
	}
)

// New creates an inactive controller.
func New(repo Repository, opts Options) *Controller {
	if opts.Validator == nil {
		opts.Validator = validation.New(nil)
	}
	if opts.Retry == (RetryPolicy{}) {
		opts.Retry = DefaultRetryPolicy()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}

	return &Controller{
		repo:           repo,
		validator:      opts.Validator,
		retry:          opts.Retry,
		logger:         opts.Logger,
		onUnauthorized: opts.OnUnauthorized,
		ctx:            opts.Context,
		deletion:       NewDeletionFlow(opts.Context, repo, opts.Session, opts.Navigator, opts.Logger),
		state:          Inactive{},
	}
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Profile returns a copy of the loaded profile, or nil.
func (c *Controller) Profile() *models.Profile {
	return c.profile.Clone()
}

// Deletion returns the account deletion flow.
func (c *Controller) Deletion() *DeletionFlow {
	return c.deletion
}

// Uploading reports whether the latest picture upload is still in flight.
func (c *Controller) Uploading() bool {
	return c.uploading
}

// Notice returns the transient success message, if any.
func (c *Controller) Notice() string {
	return c.notice
}

// FieldError returns the error for field f. A field error takes priority
// over the general banner when describing f.
func (c *Controller) FieldError(f models.Field) string {
	return c.errors.Get(f)
}

// GeneralError returns the banner error. It is independent of field errors.
func (c *Controller) GeneralError() string {
	if c.general != "" {
		return c.general
	}
	return c.errors.Get(models.FieldGeneral)
}

// Activate loads the profile. It starts from Inactive or LoadFailed and is
// ignored while a load is already running or the profile is loaded.
func (c *Controller) Activate() tea.Cmd {
	switch c.state.(type) {
	case Inactive, LoadFailed:
	default:
		return nil
	}

	c.active = true
	c.activation++
	c.state = Loading{Attempt: 1}
	c.profile = nil
	c.errors = nil
	c.general = ""
	c.fieldsSeq, c.pictureSeq = 0, 0
	c.latestUpload, c.uploading = 0, false

	c.logger.Debug("activating profile session", "activation", c.activation)
	return c.fetch(1)
}

// Deactivate stops applying the results of outstanding calls and cancels
// pending retries and notice timers. A running deletion still completes.
func (c *Controller) Deactivate() {
	if !c.active {
		return
	}

	c.active = false
	c.activation++
	c.state = Inactive{}
	c.profile = nil
	c.errors = nil
	c.general = ""
	c.notice = ""
	c.uploading = false
	// An open prompt belongs to this screen; a running deletion does not.
	c.deletion.Dismiss()

	c.logger.Debug("profile session deactivated")
}

// BeginEdit enters Editing with a draft seeded from the profile.
func (c *Controller) BeginEdit() bool {
	if _, ok := c.state.(Viewing); !ok || c.deletion.Pending() {
		return false
	}

	c.state = Editing{Draft: models.DraftFromProfile(c.profile)}
	c.errors = nil
	c.general = ""
	return true
}

// Cancel discards the draft and returns to Viewing. It is ignored while
// saving.
func (c *Controller) Cancel() bool {
	ed, ok := c.state.(Editing)
	if !ok || ed.Saving {
		return false
	}

	c.state = Viewing{}
	c.errors = nil
	c.general = ""
	return true
}

// SetField updates one draft field and clears its error.
func (c *Controller) SetField(f models.Field, value string) bool {
	ed, ok := c.state.(Editing)
	if !ok || ed.Saving {
		return false
	}
	if !ed.Draft.Set(f, value) {
		return false
	}

	c.state = ed
	if c.errors.Has(f) {
		errs := c.errors.Clone()
		delete(errs, f)
		c.errors = errs
	}
	return true
}

// Draft returns the working draft while editing.
func (c *Controller) Draft() (models.Draft, bool) {
	ed, ok := c.state.(Editing)
	return ed.Draft, ok
}

// Dirty reports whether the draft differs from the loaded profile.
func (c *Controller) Dirty() bool {
	ed, ok := c.state.(Editing)
	return ok && !ed.Draft.Equal(models.DraftFromProfile(c.profile))
}

// Save validates the draft and submits it. Local errors stop the save
// before any request. A second Save while one is running does nothing.
func (c *Controller) Save() tea.Cmd {
	ed, ok := c.state.(Editing)
	if !ok || ed.Saving {
		return nil
	}

	if errs := c.validator.Validate(ed.Draft); !errs.Empty() {
		c.errors = errs
		c.general = ""
		c.logger.Debug("save blocked by validation", "fields", errs.Fields())
		return nil
	}

	c.errors = nil
	c.general = ""
	c.seq++
	seq, activation := c.seq, c.activation
	ed.Saving = true
	c.state = ed

	payload := ed.Draft.Payload()
	ctx, repo := c.ctx, c.repo
	c.logger.Debug("saving profile", "seq", seq)

	return func() tea.Msg {
		p, err := repo.SaveProfile(ctx, payload)
		return saveResultMsg{activation: activation, seq: seq, profile: p, err: err}
	}
}

// SelectPicture uploads f after the type and size check. It is allowed
// while viewing or editing, and a newer selection supersedes any upload
// still in flight.
func (c *Controller) SelectPicture(f media.File) tea.Cmd {
	switch c.state.(type) {
	case Viewing, Editing:
	default:
		return nil
	}

	if err := CheckPicture(f); err != nil {
		c.general = err.Error()
		c.logger.Info("picture rejected", "mime", f.MIME, "size", f.Size, "error", err)
		return nil
	}

	c.general = ""
	c.seq++
	seq, activation := c.seq, c.activation
	c.latestUpload = seq
	c.uploading = true

	ctx, repo := c.ctx, c.repo
	c.logger.Debug("uploading picture", "seq", seq, "mime", f.MIME, "size", f.Size)

	return func() tea.Msg {
		p, err := repo.UploadPicture(ctx, f)
		return uploadResultMsg{activation: activation, seq: seq, profile: p, err: err}
	}
}

// RequestDeletion opens the delete confirmation. Only allowed while viewing.
func (c *Controller) RequestDeletion() bool {
	if _, ok := c.state.(Viewing); !ok {
		return false
	}
	return c.deletion.RequestConfirm()
}

// DismissDeletion closes the delete confirmation.
func (c *Controller) DismissDeletion() bool {
	return c.deletion.Dismiss()
}

// ConfirmDeletion deletes the account.
func (c *Controller) ConfirmDeletion() tea.Cmd {
	return c.deletion.Confirm()
}

// Update applies a message produced by one of the controller's commands.
// Unrelated messages are ignored.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	// Deletion outlives the screen: the account is gone either way.
	if m, ok := msg.(deleteResultMsg); ok {
		return c.deletion.Update(m)
	}

	switch m := msg.(type) {
	case fetchResultMsg:
		if c.stale(m.activation) {
			return nil
		}
		return c.handleFetch(m)

	case retryFetchMsg:
		if c.stale(m.activation) {
			return nil
		}
		if _, ok := c.state.(Loading); !ok {
			return nil
		}
		return c.fetch(m.attempt)

	case saveResultMsg:
		if c.stale(m.activation) {
			return nil
		}
		return c.handleSave(m)

	case uploadResultMsg:
		if c.stale(m.activation) {
			return nil
		}
		return c.handleUpload(m)

	case noticeExpiredMsg:
		if !c.stale(m.activation) && m.seq == c.noticeSeq {
			c.notice = ""
		}
	}

	return nil
}

func (c *Controller) stale(activation uint64) bool {
	return !c.active || activation != c.activation
}

func (c *Controller) fetch(attempt int) tea.Cmd {
	activation := c.activation
	ctx, repo := c.ctx, c.repo

	return func() tea.Msg {
		p, err := repo.FetchProfile(ctx)
		return fetchResultMsg{activation: activation, attempt: attempt, profile: p, err: err}
	}
}

func (c *Controller) handleFetch(m fetchResultMsg) tea.Cmd {
	if _, ok := c.state.(Loading); !ok {
		return nil
	}

	if m.err == nil {
		c.profile = m.profile
		c.state = Viewing{}
		c.logger.Debug("profile loaded", "attempt", m.attempt)
		return nil
	}

	switch KindOf(m.err) {
	case KindNotFound:
		if m.attempt < c.retry.maxAttempts() {
			wait := c.retry.Backoff(m.attempt)
			next, activation := m.attempt+1, c.activation
			c.state = Loading{Attempt: next}
			c.logger.Info("profile not provisioned yet, retrying", "attempt", m.attempt, "wait", wait)
			return tea.Tick(wait, func(time.Time) tea.Msg {
				return retryFetchMsg{activation: activation, attempt: next}
			})
		}
		c.fail(ErrNotProvisioned, MsgLoadFailed)

	case KindUnauthorized:
		c.fail(m.err, MsgLoadFailed)
		c.unauthorized()

	default:
		c.fail(m.err, MsgLoadFailed)
	}

	return nil
}

func (c *Controller) fail(err error, fallback string) {
	c.state = LoadFailed{Err: err}
	c.general = message(err, fallback)
	c.logger.Warn("profile load failed", "kind", KindOf(err).String(), "error", err)
}

func (c *Controller) handleSave(m saveResultMsg) tea.Cmd {
	ed, ok := c.state.(Editing)
	if !ok || !ed.Saving {
		return nil
	}

	if m.err == nil {
		c.applySaved(m.seq, m.profile)
		c.state = Viewing{}
		c.errors = nil
		c.general = ""
		c.logger.Info("profile saved", "seq", m.seq)
		return c.showNotice(MsgProfileUpdated)
	}

	ed.Saving = false
	c.state = ed

	var rejected *api.ValidationRejectedError
	switch {
	case errors.As(m.err, &rejected):
		c.errors = rejected.Fields.Displayable()
		c.general = ""
		c.logger.Info("profile save rejected", "seq", m.seq, "fields", rejected.Fields.Fields())

	case KindOf(m.err) == KindUnauthorized:
		c.errors = nil
		c.general = MsgSessionExpired
		c.logger.Warn("profile save unauthorized", "seq", m.seq)
		c.unauthorized()

	default:
		c.errors = nil
		c.general = message(m.err, MsgSaveFailed)
		c.logger.Warn("profile save failed", "seq", m.seq, "error", m.err)
	}

	return nil
}

// applySaved writes a save response. The picture is owned by uploads: it is
// taken from the save only when no upload is in flight and no newer write
// has already set it.
func (c *Controller) applySaved(seq uint64, saved *models.Profile) {
	if saved == nil || seq <= c.fieldsSeq {
		return
	}

	next := saved.Clone()
	if c.uploading || seq <= c.pictureSeq {
		if c.profile != nil {
			next.ProfilePicture = c.profile.Clone().ProfilePicture
		}
	} else {
		c.pictureSeq = seq
	}

	c.profile = next
	c.fieldsSeq = seq
}

func (c *Controller) handleUpload(m uploadResultMsg) tea.Cmd {
	if m.seq != c.latestUpload {
		c.logger.Debug("discarding superseded upload", "seq", m.seq, "latest", c.latestUpload)
		return nil
	}
	c.uploading = false

	if m.err != nil {
		c.general = message(m.err, MsgUploadFailed)
		c.logger.Warn("picture upload failed", "seq", m.seq, "error", m.err)
		if KindOf(m.err) == KindUnauthorized {
			c.unauthorized()
		}
		return nil
	}

	if m.profile == nil || c.profile == nil || m.seq <= c.pictureSeq {
		return nil
	}

	c.profile.ProfilePicture = m.profile.Clone().ProfilePicture
	c.pictureSeq = m.seq
	c.general = ""
	c.logger.Info("picture uploaded", "seq", m.seq)
	return c.showNotice(MsgPictureUpdated)
}

func (c *Controller) showNotice(text string) tea.Cmd {
	c.noticeSeq++
	seq, activation := c.noticeSeq, c.activation
	c.notice = text

	return tea.Tick(noticeAfter, func(time.Time) tea.Msg {
		return noticeExpiredMsg{activation: activation, seq: seq}
	})
}

func (c *Controller) unauthorized() {
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}
