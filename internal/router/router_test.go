package router

import (
	"io"
	"log/slog"
	"slices"
	"testing"
)

type fakeAuth bool

func (f *fakeAuth) IsAuthenticated() bool { return bool(*f) }

func newRouter(signedIn bool) (*Router, *fakeAuth) {
	auth := fakeAuth(signedIn)
	return New(&auth, slog.New(slog.NewTextHandler(io.Discard, nil))), &auth
}

func TestNavigate_Guard(t *testing.T) {
	tests := []struct {
		name     string
		signedIn bool
		path     string
		want     string
	}{
		{"signed in reaches profile", true, PathProfile, PathProfile},
		{"signed out redirected to login", false, PathProfile, PathLogin},
		{"home is public", false, PathHome, PathHome},
		{"login is public", false, PathLogin, PathLogin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newRouter(tt.signedIn)
			if err := r.Navigate(tt.path); err != nil {
				t.Fatalf("Navigate: %v", err)
			}
			if got := r.Current(); got != tt.want {
				t.Errorf("Current = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNavigate_UnknownRoute(t *testing.T) {
	r, _ := newRouter(true)
	if err := r.Navigate("/checkout"); err == nil {
		t.Error("expected error for unknown route")
	}
	if r.Current() != PathHome {
		t.Errorf("route changed on error: %q", r.Current())
	}
}

func TestNavigate_GuardFollowsAuthChanges(t *testing.T) {
	r, auth := newRouter(true)

	r.Navigate(PathProfile)
	*auth = false
	r.Navigate(PathProfile)

	want := []string{PathHome, PathProfile, PathLogin}
	if got := r.History(); !slices.Equal(got, want) {
		t.Errorf("History = %v, want %v", got, want)
	}
}

func TestOnNavigate(t *testing.T) {
	r, _ := newRouter(false)

	var seen []string
	r.OnNavigate(func(path string) { seen = append(seen, path) })

	r.Navigate(PathProfile)
	r.Navigate(PathHome)

	want := []string{PathLogin, PathHome}
	if !slices.Equal(seen, want) {
		t.Errorf("listener saw %v, want %v", seen, want)
	}
}
