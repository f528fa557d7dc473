// Package components holds the form widgets used by the profile screen.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are the lipgloss styles the widgets render with.
type Styles struct {
	Label lipgloss.Style
	Value lipgloss.Style
	Focus lipgloss.Style
	Muted lipgloss.Style
	Error lipgloss.Style
	Title lipgloss.Style
	Help  lipgloss.Style
}

// DefaultStyles returns the green phosphor palette.
func DefaultStyles() Styles {
	return Styles{
		Label: lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Width(24),
		Value: lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")),
		Focus: lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")),
		Muted: lipgloss.NewStyle().Foreground(lipgloss.Color("#006600")),
		Error: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444")),
		Title: lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true),
		Help:  lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")),
	}
}

// Field is a focusable form widget identified by a key.
type Field interface {
	Key() string
	Value() string
	SetValue(string)
	SetError(string)
	Focus(bool)
	IsFocused() bool
	// HandleKey reports whether the key changed the value.
	HandleKey(key string) bool
	Render(Styles) string
}

var (
	_ Field = (*Input)(nil)
	_ Field = (*Select)(nil)
)

// Input is a single-line text input. Editing works on runes so names with
// accents or other non-ASCII letters edit correctly.
type Input struct {
	key         string
	label       string
	value       []rune
	placeholder string
	width       int
	maxLength   int
	cursorPos   int
	focused     bool
	err         string
}

// NewInput creates a new input field.
func NewInput(key, label string) *Input {
	return &Input{
		key:       key,
		label:     label,
		width:     24,
		maxLength: 120,
	}
}

// Key returns the field key.
func (i *Input) Key() string { return i.key }

// Value returns the current value.
func (i *Input) Value() string { return string(i.value) }

// SetValue replaces the value and moves the cursor to the end.
func (i *Input) SetValue(v string) {
	i.value = []rune(v)
	i.cursorPos = len(i.value)
}

// SetError sets the message shown next to the field.
func (i *Input) SetError(e string) { i.err = e }

// Error returns the message shown next to the field.
func (i *Input) Error() string { return i.err }

// WithPlaceholder sets the placeholder text.
func (i *Input) WithPlaceholder(p string) *Input {
	i.placeholder = p
	return i
}

// WithWidth sets the input width.
func (i *Input) WithWidth(w int) *Input {
	i.width = w
	return i
}

// WithMaxLength sets the maximum input length in runes.
func (i *Input) WithMaxLength(m int) *Input {
	i.maxLength = m
	return i
}

// Focus sets the focus state.
func (i *Input) Focus(focused bool) {
	i.focused = focused
	if i.cursorPos > len(i.value) {
		i.cursorPos = len(i.value)
	}
}

// IsFocused returns the focus state.
func (i *Input) IsFocused() bool { return i.focused }

// HandleKey handles a key press.
func (i *Input) HandleKey(key string) bool {
	if !i.focused {
		return false
	}

	switch key {
	case "backspace":
		if i.cursorPos > 0 {
			i.value = append(i.value[:i.cursorPos-1], i.value[i.cursorPos:]...)
			i.cursorPos--
			return true
		}
	case "delete":
		if i.cursorPos < len(i.value) {
			i.value = append(i.value[:i.cursorPos], i.value[i.cursorPos+1:]...)
			return true
		}
	case "left":
		if i.cursorPos > 0 {
			i.cursorPos--
		}
	case "right":
		if i.cursorPos < len(i.value) {
			i.cursorPos++
		}
	case "home", "ctrl+a":
		i.cursorPos = 0
	case "end", "ctrl+e":
		i.cursorPos = len(i.value)
	case "ctrl+u":
		if len(i.value) > 0 {
			i.SetValue("")
			return true
		}
	default:
		r := []rune(key)
		if key == "space" {
			r = []rune{' '}
		}
		if len(r) != 1 || len(i.value) >= i.maxLength {
			return false
		}
		i.value = append(i.value[:i.cursorPos], append(r, i.value[i.cursorPos:]...)...)
		i.cursorPos++
		return true
	}
	return false
}

// Render renders the input field.
func (i *Input) Render(st Styles) string {
	var display string
	width := len(i.value)
	switch {
	case len(i.value) == 0 && i.placeholder != "" && !i.focused:
		display = st.Muted.Render(i.placeholder)
		width = len([]rune(i.placeholder))
	case i.focused:
		before := string(i.value[:i.cursorPos])
		after := string(i.value[i.cursorPos:])
		display = st.Focus.Render(before + "_" + after)
		width++
	default:
		display = st.Value.Render(string(i.value))
	}

	if width < i.width {
		display += strings.Repeat(" ", i.width-width)
	}

	result := st.Label.Render(i.label+":") + " " + display
	if i.err != "" {
		result += " " + st.Error.Render(i.err)
	}
	return result
}

// Option is one choice of a Select.
type Option struct {
	Value string
	Label string
}

// Select picks one value from a fixed list of options.
type Select struct {
	key      string
	label    string
	options  []Option
	selected int
	focused  bool
	err      string
}

// NewSelect creates a select positioned on the first option.
func NewSelect(key, label string, options []Option) *Select {
	return &Select{key: key, label: label, options: options}
}

// Key returns the field key.
func (s *Select) Key() string { return s.key }

// Value returns the selected value.
func (s *Select) Value() string {
	if s.selected >= 0 && s.selected < len(s.options) {
		return s.options[s.selected].Value
	}
	return ""
}

// SetValue selects the option holding v. Unknown values leave the
// selection unchanged.
func (s *Select) SetValue(v string) {
	for i, opt := range s.options {
		if opt.Value == v {
			s.selected = i
			return
		}
	}
}

// SetError sets the message shown next to the field.
func (s *Select) SetError(e string) { s.err = e }

// Focus sets the focus state.
func (s *Select) Focus(focused bool) { s.focused = focused }

// IsFocused returns the focus state.
func (s *Select) IsFocused() bool { return s.focused }

// HandleKey moves the selection with left and right.
func (s *Select) HandleKey(key string) bool {
	if !s.focused {
		return false
	}

	switch key {
	case "left", "h":
		if s.selected > 0 {
			s.selected--
			return true
		}
	case "right", "l", " ", "space":
		if s.selected < len(s.options)-1 {
			s.selected++
			return true
		}
	}
	return false
}

// Render renders the select.
func (s *Select) Render(st Styles) string {
	var b strings.Builder
	b.WriteString(st.Label.Render(s.label + ":"))
	b.WriteString(" ")

	for i, opt := range s.options {
		if i > 0 {
			b.WriteString(" ")
		}
		switch {
		case i == s.selected && s.focused:
			b.WriteString(st.Focus.Bold(true).Render("[" + opt.Label + "]"))
		case i == s.selected:
			b.WriteString(st.Value.Bold(true).Render("(" + opt.Label + ")"))
		default:
			b.WriteString(st.Muted.Render(" " + opt.Label + " "))
		}
	}

	if s.err != "" {
		b.WriteString(" " + st.Error.Render(s.err))
	}
	return b.String()
}

// Action is what a key press asked the form to do.
type Action int

const (
	ActionNone Action = iota
	// ActionChanged means the focused field's value changed.
	ActionChanged
	ActionSubmit
	ActionCancel
)

// Form is an ordered set of fields with one focused at a time.
type Form struct {
	title      string
	fields     []Field
	focusIndex int
	err        string
	disabled   bool
}

// NewForm creates a new form.
func NewForm(title string) *Form {
	return &Form{title: title}
}

// AddField appends a field. The first field added takes focus.
func (f *Form) AddField(field Field) *Form {
	f.fields = append(f.fields, field)
	if len(f.fields) == 1 {
		field.Focus(true)
	}
	return f
}

// Fields returns the fields in order.
func (f *Form) Fields() []Field { return f.fields }

// Focused returns the focused field, or nil for an empty form.
func (f *Form) Focused() Field {
	if len(f.fields) == 0 {
		return nil
	}
	return f.fields[f.focusIndex]
}

// Field returns the field with the given key.
func (f *Form) Field(key string) Field {
	for _, field := range f.fields {
		if field.Key() == key {
			return field
		}
	}
	return nil
}

// SetDisabled stops the form from changing values. Navigation and cancel
// keys are ignored too.
func (f *Form) SetDisabled(d bool) { f.disabled = d }

// SetError sets the form-level message.
func (f *Form) SetError(err string) { f.err = err }

// HandleKey handles form navigation and forwards other keys to the
// focused field.
func (f *Form) HandleKey(key string) Action {
	if f.disabled {
		return ActionNone
	}

	switch key {
	case "tab", "down":
		f.move(1)
	case "shift+tab", "up":
		f.move(-1)
	case "ctrl+s":
		return ActionSubmit
	case "esc":
		return ActionCancel
	case "enter":
		if f.focusIndex == len(f.fields)-1 {
			return ActionSubmit
		}
		f.move(1)
	default:
		if field := f.Focused(); field != nil && field.HandleKey(key) {
			return ActionChanged
		}
	}
	return ActionNone
}

func (f *Form) move(delta int) {
	if len(f.fields) == 0 {
		return
	}
	f.fields[f.focusIndex].Focus(false)
	f.focusIndex = (f.focusIndex + delta + len(f.fields)) % len(f.fields)
	f.fields[f.focusIndex].Focus(true)
}

// Render renders the form.
func (f *Form) Render(st Styles) string {
	var b strings.Builder

	b.WriteString(st.Title.Render(fmt.Sprintf("=== %s ===", f.title)))
	b.WriteString("\n\n")

	for _, field := range f.fields {
		b.WriteString(field.Render(st))
		b.WriteString("\n")
	}

	if f.err != "" {
		b.WriteString("\n")
		b.WriteString(st.Error.Render("Error: " + f.err))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if f.disabled {
		b.WriteString(st.Muted.Render("Saving..."))
	} else {
		b.WriteString(st.Help.Render("Tab/Down:Next  Shift+Tab/Up:Prev  Ctrl+S:Save  Esc:Cancel"))
	}
	return b.String()
}
