package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap defines all key bindings for the application.
type KeyMap struct {
	// Profile actions
	Edit    Key
	Picture Key
	Delete  Key
	Retry   Key
	Open    Key

	// Picture selection while editing, where letters go to the form
	EditPicture Key

	// Dialogs
	Yes Key
	No  Key

	Quit      Key
	ForceQuit Key
}

// Key represents a key binding.
type Key struct {
	Keys    []string
	Help    string
	Enabled bool
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Edit: Key{
			Keys:    []string{"e"},
			Help:    "edit",
			Enabled: true,
		},
		Picture: Key{
			Keys:    []string{"p"},
			Help:    "picture",
			Enabled: true,
		},
		Delete: Key{
			Keys:    []string{"D"},
			Help:    "delete account",
			Enabled: true,
		},
		Retry: Key{
			Keys:    []string{"r"},
			Help:    "retry",
			Enabled: true,
		},
		Open: Key{
			Keys:    []string{"enter", "o"},
			Help:    "open profile",
			Enabled: true,
		},
		EditPicture: Key{
			Keys:    []string{"ctrl+p"},
			Help:    "picture",
			Enabled: true,
		},
		Yes: Key{
			Keys:    []string{"y", "Y"},
			Help:    "yes",
			Enabled: true,
		},
		No: Key{
			Keys:    []string{"n", "N", "esc"},
			Help:    "no",
			Enabled: true,
		},
		Quit: Key{
			Keys:    []string{"q"},
			Help:    "quit",
			Enabled: true,
		},
		ForceQuit: Key{
			Keys:    []string{"ctrl+c"},
			Help:    "quit",
			Enabled: true,
		},
	}
}

// Matches checks if a key message matches this key binding.
func (k Key) Matches(msg tea.KeyMsg) bool {
	if !k.Enabled {
		return false
	}

	keyStr := msg.String()
	for _, key := range k.Keys {
		if keyStr == key {
			return true
		}
	}
	return false
}

// Label is the key and help text as shown in the footer, e.g. "[e]edit".
func (k Key) Label() string {
	if len(k.Keys) == 0 {
		return ""
	}
	return "[" + k.Keys[0] + "]" + k.Help
}

// screen identifies what the app is showing.
type screen int

const (
	screenHome screen = iota
	screenLogin
	screenLoading
	screenLoadFailed
	screenViewing
	screenEditing
	screenConfirmDelete
	screenDeleting
	screenPicture
)

// StatusBarHelp returns the footer help for a screen.
func (km KeyMap) StatusBarHelp(s screen) string {
	var keys []Key
	switch s {
	case screenHome:
		keys = []Key{km.Open, km.Quit}
	case screenLogin, screenLoading, screenDeleting:
		keys = []Key{km.Quit}
	case screenLoadFailed:
		keys = []Key{km.Retry, km.Quit}
	case screenViewing:
		keys = []Key{km.Edit, km.Picture, km.Delete, km.Quit}
	case screenEditing:
		return "[tab]next [ctrl+s]save [esc]cancel [ctrl+p]picture"
	case screenConfirmDelete:
		keys = []Key{km.Yes, km.No}
	case screenPicture:
		return "[enter]upload [esc]cancel"
	}

	labels := make([]string, 0, len(keys))
	for _, k := range keys {
		labels = append(labels, k.Label())
	}
	return strings.Join(labels, " ")
}
