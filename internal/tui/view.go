package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vitashop/vitashop/internal/models"
	"github.com/vitashop/vitashop/internal/session"
	"github.com/vitashop/vitashop/internal/tui/components"
	"github.com/vitashop/vitashop/internal/util"
)

// chromeLines is the height of header, status line and footer.
const chromeLines = 6

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initializing..."
	}

	if a.quitting {
		return a.theme.Title.Render("VitaShop closing...")
	}

	var b strings.Builder

	b.WriteString(a.renderHeader())
	b.WriteString("\n")
	b.WriteString(a.renderStatusLine())
	b.WriteString("\n")

	height := ContentHeight(a.height, chromeLines)
	if a.showConfirm {
		b.WriteString(a.renderDialog(height, "CONFIRM EXIT", "Are you sure you want to exit?", "[Y]es  [N]o"))
	} else {
		b.WriteString(a.renderContent(height))
	}

	b.WriteString("\n")
	b.WriteString(a.renderFooter())

	return b.String()
}

// renderHeader renders the top header bar.
func (a *App) renderHeader() string {
	title := fmt.Sprintf("VITASHOP HEALTH PROFILE v%s", Version)

	who := "signed out"
	if a.account != nil {
		if st := a.account.State(); st.IsAuthenticated {
			who = "signed in"
			if st.User != nil && st.User.Email != "" {
				who = st.User.Email
			}
		}
	}

	spacing := max(a.width-lipgloss.Width(title)-lipgloss.Width(who)-4, 1)

	header := a.theme.Header.Render(title) +
		strings.Repeat(" ", spacing) +
		a.theme.Header.Render(who)

	return header + "\n" + a.theme.DrawDoubleLine(a.width)
}

// renderStatusLine shows the transient notice, the general error or the
// upload indicator.
func (a *App) renderStatusLine() string {
	if a.screen() == screenEditing {
		// The form shows its own errors.
		if a.ctrl.Uploading() {
			return a.theme.Alert.Render("Uploading picture...")
		}
		if n := a.ctrl.Notice(); n != "" {
			return a.theme.Success.Render(n)
		}
		return a.theme.Muted.Render("Editing")
	}

	var parts []string
	if n := a.ctrl.Notice(); n != "" {
		parts = append(parts, a.theme.Success.Render(n))
	}
	if g := a.ctrl.GeneralError(); g != "" {
		parts = append(parts, a.theme.AlertCrit.Render(g))
	}
	if a.ctrl.Uploading() {
		parts = append(parts, a.theme.Alert.Render("Uploading picture..."))
	}
	if len(parts) == 0 {
		return a.theme.Muted.Render("Ready")
	}
	return strings.Join(parts, a.theme.StatusDivider.String())
}

// renderContent renders the main content area for the current screen.
func (a *App) renderContent(height int) string {
	width := ContentWidth(a.width, 40, MaxContentWidth)

	var content string
	switch a.screen() {
	case screenHome:
		content = a.renderHome()
	case screenLogin:
		content = a.renderLogin()
	case screenLoading:
		content = a.renderLoading()
	case screenLoadFailed:
		content = a.renderLoadFailed()
	case screenViewing:
		content = a.renderProfile(width)
	case screenEditing:
		content = a.renderForm()
	case screenPicture:
		content = a.renderPicker()
	case screenConfirmDelete:
		return a.renderDialog(height, "DELETE ACCOUNT",
			"This permanently deletes your account and health profile.\nThis cannot be undone.",
			"[Y]es, delete  [N]o")
	case screenDeleting:
		return a.renderDialog(height, "DELETE ACCOUNT", "Deleting account...", "")
	}

	style := lipgloss.NewStyle().
		Width(a.width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Top)

	return style.Render(lipgloss.NewStyle().Width(width).Render(content))
}

func (a *App) renderHome() string {
	var b strings.Builder
	b.WriteString(a.theme.Title.Render("═══ WELCOME ═══"))
	b.WriteString("\n\n")

	if _, ok := a.ctrl.Deletion().State().(session.DeletionDone); ok {
		b.WriteString(a.theme.Base.Render("Your account has been deleted."))
		b.WriteString("\n\n")
	}
	b.WriteString(a.theme.Label.Render("Press Enter to open your health profile."))
	return b.String()
}

func (a *App) renderLogin() string {
	var b strings.Builder
	b.WriteString(a.theme.Title.Render("═══ SIGN IN REQUIRED ═══"))
	b.WriteString("\n\n")
	b.WriteString(a.theme.Base.Render("Sign in from the command line, then start VitaShop again:"))
	b.WriteString("\n\n")
	b.WriteString(a.theme.Accent.Render("  vitashop login -email you@example.com -access-token <token>"))
	return b.String()
}

func (a *App) renderLoading() string {
	attempt := 1
	if l, ok := a.ctrl.State().(session.Loading); ok {
		attempt = l.Attempt
	}

	msg := "Loading profile..."
	if attempt > 1 {
		msg = fmt.Sprintf("Setting up your profile... (attempt %d)", attempt)
	}
	return a.theme.Title.Render("═══ HEALTH PROFILE ═══") + "\n\n" + a.theme.Base.Render(msg)
}

func (a *App) renderLoadFailed() string {
	msg := a.ctrl.GeneralError()
	if msg == "" {
		msg = session.MsgLoadFailed
	}
	return a.theme.Title.Render("═══ HEALTH PROFILE ═══") + "\n\n" +
		a.theme.Error.Render(msg) + "\n\n" +
		a.theme.Label.Render("Press r to try again.")
}

// renderProfile renders the loaded profile.
func (a *App) renderProfile(width int) string {
	p := a.ctrl.Profile()
	if p == nil {
		return ""
	}

	personal := a.theme.Rows([][2]string{
		{"Full Name", p.DisplayName()},
		{"Date of Birth", a.formatDate(p.DateOfBirth)},
		{"Age", orDash(intText(p.Age))},
		{"Gender", genderText(p.Gender)},
		{"City", orDash(deref(p.City))},
		{"Emergency Phone", orDash(deref(p.EmergencyContactPhone))},
	})

	health := a.theme.Rows([][2]string{
		{"Allergies", orDash(strings.Join(p.Allergies, ", "))},
		{"Genotype", orDash(string(deref(p.Genotype)))},
		{"Blood Group", orDash(string(deref(p.BloodGroup)))},
		{"Height", measure(p.HeightDisplay, p.HeightCM, "cm")},
		{"Weight", measure(p.WeightDisplay, p.WeightKG, "kg")},
		{"BMI", bmiText(p)},
	})

	panelWidth := max(width/2-2, 36)
	left := a.theme.Panel("PERSONAL", personal, panelWidth)
	right := a.theme.Panel("HEALTH", health, panelWidth)

	picture := "No picture"
	if p.ProfilePicture != nil && *p.ProfilePicture != "" {
		picture = Truncate(*p.ProfilePicture, width-16)
	}

	var b strings.Builder
	b.WriteString(a.theme.Title.Render("═══ HEALTH PROFILE ═══"))
	b.WriteString("\n\n")
	b.WriteString(SideBySide(left, right, width, 2))
	b.WriteString("\n\n")
	b.WriteString(a.theme.Rows([][2]string{{"Picture", picture}}))
	if e := a.ctrl.Deletion().Error(); e != "" {
		b.WriteString("\n\n")
		b.WriteString(a.theme.Error.Render(e))
	}
	return b.String()
}

func (a *App) renderForm() string {
	if a.form == nil {
		return ""
	}
	out := a.form.Render(a.styles)
	if a.ctrl.Dirty() {
		out += "\n" + a.theme.Warning.Render("Unsaved changes")
	}
	return out
}

func (a *App) renderPicker() string {
	var b strings.Builder
	b.WriteString(a.theme.Title.Render("═══ PROFILE PICTURE ═══"))
	b.WriteString("\n\n")
	b.WriteString(a.picker.Render(a.styles))
	b.WriteString("\n\n")
	if a.pickerErr != "" {
		b.WriteString(a.theme.Error.Render(a.pickerErr))
		b.WriteString("\n\n")
	}
	b.WriteString(a.theme.Muted.Render("JPEG, PNG or WebP, up to 5 MB."))
	return b.String()
}

// renderDialog renders a centered confirmation box.
func (a *App) renderDialog(height int, title, body, choices string) string {
	content := a.theme.Title.Render(title) + "\n\n" + a.theme.Base.Render(body)
	if choices != "" {
		content += "\n\n" + a.theme.Label.Render(choices)
	}

	style := lipgloss.NewStyle().
		Width(a.width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center)

	return style.Render(a.theme.Box.Render(content))
}

// renderFooter renders the bottom status bar.
func (a *App) renderFooter() string {
	help := a.keys.StatusBarHelp(a.screen())
	if a.showConfirm {
		help = a.keys.StatusBarHelp(screenConfirmDelete)
	}
	return a.theme.DrawHorizontalLine(a.width) + "\n" + a.theme.Footer.Render(help)
}

func (a *App) formatDate(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	t, err := time.Parse(util.DateFormat, *s)
	if err != nil {
		return *s
	}
	return t.Format(a.cfg.Display.DateFormat)
}

// newProfileForm builds the edit form seeded from a draft.
func newProfileForm(d models.Draft) *components.Form {
	form := components.NewForm("EDIT PROFILE")
	for _, f := range models.EditableFields {
		var field components.Field
		switch f {
		case models.FieldGender:
			field = components.NewSelect(string(f), f.Label(), genderOptions())
		case models.FieldGenotype:
			field = components.NewSelect(string(f), f.Label(), enumOptions(models.Genotypes))
		case models.FieldBloodGroup:
			field = components.NewSelect(string(f), f.Label(), enumOptions(models.BloodGroups))
		case models.FieldDateOfBirth:
			field = components.NewInput(string(f), f.Label()).WithPlaceholder("YYYY-MM-DD").WithMaxLength(10)
		case models.FieldAllergies:
			field = components.NewInput(string(f), f.Label()).WithPlaceholder(`comma separated, \, inside an entry`).WithWidth(40)
		case models.FieldHeightCM, models.FieldWeightKG:
			field = components.NewInput(string(f), f.Label()).WithMaxLength(8)
		default:
			field = components.NewInput(string(f), f.Label())
		}
		field.SetValue(d.Get(f))
		form.AddField(field)
	}
	return form
}

func genderOptions() []components.Option {
	opts := []components.Option{{Value: "", Label: "Not set"}}
	for _, g := range models.Genders {
		opts = append(opts, components.Option{Value: string(g), Label: g.String()})
	}
	return opts
}

func enumOptions[T ~string](values []T) []components.Option {
	opts := []components.Option{{Value: "", Label: "-"}}
	for _, v := range values {
		opts = append(opts, components.Option{Value: string(v), Label: string(v)})
	}
	return opts
}

func genderText(g *models.Gender) string {
	if g == nil {
		return "-"
	}
	return g.String()
}

func bmiText(p *models.Profile) string {
	if p.BMI == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f (%s)", *p.BMI, p.BMILabel())
}

func measure(display *string, value *float64, unit string) string {
	if display != nil && *display != "" {
		return *display
	}
	if value == nil {
		return "-"
	}
	return strconv.FormatFloat(*value, 'f', -1, 64) + " " + unit
}

func intText(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
