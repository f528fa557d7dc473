package testutil

import (
	"context"
	"sync"

	"github.com/vitashop/vitashop/internal/media"
	"github.com/vitashop/vitashop/internal/models"
)

// Result is a canned repository response.
type Result struct {
	Profile *models.Profile
	Err     error
}

// FakeRepository is a scriptable profile backend. Fetch results are consumed
// in order and the last one repeats. It is safe for concurrent use.
type FakeRepository struct {
	mu sync.Mutex

	FetchResults []Result
	SaveFunc     func(models.ProfilePayload) (*models.Profile, error)
	UploadFunc   func(media.File) (*models.Profile, error)
	DeleteErr    error

	FetchCalls  int
	Saved       []models.ProfilePayload
	Uploaded    []media.File
	DeleteCalls int

	// Log receives "delete_account" when DeleteAccount runs.
	Log *EventLog
}

// FetchProfile returns the next scripted fetch result.
func (f *FakeRepository) FetchProfile(context.Context) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.FetchCalls++
	if len(f.FetchResults) == 0 {
		return FixtureProfile(), nil
	}

	r := f.FetchResults[0]
	if len(f.FetchResults) > 1 {
		f.FetchResults = f.FetchResults[1:]
	}
	return r.Profile.Clone(), r.Err
}

// SaveProfile records the payload and runs SaveFunc.
func (f *FakeRepository) SaveProfile(_ context.Context, payload models.ProfilePayload) (*models.Profile, error) {
	f.mu.Lock()
	f.Saved = append(f.Saved, payload)
	fn := f.SaveFunc
	f.mu.Unlock()

	if fn == nil {
		return FixtureProfile(), nil
	}
	return fn(payload)
}

// UploadPicture records the file and runs UploadFunc.
func (f *FakeRepository) UploadPicture(_ context.Context, file media.File) (*models.Profile, error) {
	f.mu.Lock()
	f.Uploaded = append(f.Uploaded, file)
	fn := f.UploadFunc
	f.mu.Unlock()

	if fn == nil {
		return FixtureProfile(), nil
	}
	return fn(file)
}

// DeleteAccount counts the call and returns DeleteErr.
func (f *FakeRepository) DeleteAccount(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.DeleteCalls++
	f.Log.Add("delete_account")
	return f.DeleteErr
}

// Calls returns the call counts.
func (f *FakeRepository) Calls() (fetch, save, upload, del int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.FetchCalls, len(f.Saved), len(f.Uploaded), f.DeleteCalls
}

// EventLog records side effects in the order they happen. A nil log drops
// events.
type EventLog struct {
	mu     sync.Mutex
	events []string
}

// Add appends an event.
func (l *EventLog) Add(event string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

// Events returns a copy of the recorded events.
func (l *EventLog) Events() []string {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

// FakeSession records logouts and whether the session was still signed in
// when something observed it.
type FakeSession struct {
	Log       *EventLog
	LogoutErr error

	mu       sync.Mutex
	signedIn bool
	logouts  int
}

// NewFakeSession creates a signed-in session.
func NewFakeSession(log *EventLog) *FakeSession {
	return &FakeSession{Log: log, signedIn: true}
}

// Logout signs out.
func (s *FakeSession) Logout(context.Context) error {
	s.mu.Lock()
	s.signedIn = false
	s.logouts++
	s.mu.Unlock()

	s.Log.Add("logout")
	return s.LogoutErr
}

// IsAuthenticated reports whether Logout has not run yet.
func (s *FakeSession) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signedIn
}

// Logouts returns how many times Logout ran.
func (s *FakeSession) Logouts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logouts
}

// FakeNavigator records navigations together with the auth state seen at
// the time.
type FakeNavigator struct {
	Log  *EventLog
	Auth interface{ IsAuthenticated() bool }

	mu    sync.Mutex
	paths []string
	authd []bool
}

// Navigate records path.
func (n *FakeNavigator) Navigate(path string) error {
	n.mu.Lock()
	n.paths = append(n.paths, path)
	if n.Auth != nil {
		n.authd = append(n.authd, n.Auth.IsAuthenticated())
	}
	n.mu.Unlock()

	n.Log.Add("navigate:" + path)
	return nil
}

// Paths returns every navigated path.
func (n *FakeNavigator) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

// AuthenticatedAtNavigation returns the auth state observed on each
// navigation.
func (n *FakeNavigator) AuthenticatedAtNavigation() []bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]bool(nil), n.authd...)
}
