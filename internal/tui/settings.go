package tui

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studyboard/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	usersPerPage    *string
	pageSeconds     *string
	progressSeconds *string
	refreshSeconds  *string
	progressTitle   *string
	progressDate    *string
	progressTotal   *string
	progressExam    *string
	progressScore   *string
}

func newSettingsModel(s *store.Store) settingsModel {
	upp, ps, prs, rs := "", "", "", ""
	pt, pd, ptot, pe, psc := "", "", "", "", ""
	return settingsModel{
		store:           s,
		usersPerPage:    &upp,
		pageSeconds:     &ps,
		progressSeconds: &prs,
		refreshSeconds:  &rs,
		progressTitle:   &pt,
		progressDate:    &pd,
		progressTotal:   &ptot,
		progressExam:    &pe,
		progressScore:   &psc,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

type settingsSavedMsg struct{}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Enter) {
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.usersPerPage = s.getVal("users_per_page", "3")
	*s.pageSeconds = s.getVal("page_seconds", "10")
	*s.progressSeconds = s.getVal("progress_seconds", "5")
	*s.refreshSeconds = s.getVal("refresh_seconds", "5")
	*s.progressTitle = s.getVal("progress_title", "")
	*s.progressDate = s.getVal("progress_update_date", "")
	*s.progressTotal = s.getVal("progress_total_time", "")
	*s.progressExam = s.getVal("progress_exam_date", "")
	*s.progressScore = s.getVal("progress_test_score", "")

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Users per page").Value(s.usersPerPage).Validate(positiveInt),
			huh.NewInput().Title("Seconds per page").Value(s.pageSeconds).Validate(positiveInt),
			huh.NewInput().Title("Progress panel seconds").Value(s.progressSeconds).Validate(positiveInt),
			huh.NewInput().Title("Refresh every (seconds)").Value(s.refreshSeconds).Validate(positiveInt),
		).Title("Overlay"),
		huh.NewGroup(
			huh.NewInput().Title("Title").Description("Leave empty to skip the panel").Value(s.progressTitle),
			huh.NewInput().Title("Update date").Value(s.progressDate),
			huh.NewInput().Title("Total time").Value(s.progressTotal),
			huh.NewInput().Title("Exam date").Value(s.progressExam),
			huh.NewInput().Title("Test score").Value(s.progressScore),
		).Title("Progress panel"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			return s, tea.Batch(s.refresh(), func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Save failed: %v", err), isError: true}
			})
		}
		return s, tea.Batch(s.refresh(), func() tea.Msg { return settingsSavedMsg{} })
	}

	return s, cmd
}

// saveSettings writes every form field and stops at the first failure.
func (s settingsModel) saveSettings() error {
	values := []struct {
		key   string
		value *string
	}{
		{"users_per_page", s.usersPerPage},
		{"page_seconds", s.pageSeconds},
		{"progress_seconds", s.progressSeconds},
		{"refresh_seconds", s.refreshSeconds},
		{"progress_title", s.progressTitle},
		{"progress_update_date", s.progressDate},
		{"progress_total_time", s.progressTotal},
		{"progress_exam_date", s.progressExam},
		{"progress_test_score", s.progressScore},
	}
	for _, v := range values {
		if err := s.store.SetSetting(v.key, *v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(k)
	if err != nil {
		return fallback
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case "page_seconds", "progress_seconds", "refresh_seconds":
		if secs, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%d s", secs)
		}
	}
	if v == "" {
		return "(not set)"
	}
	return v
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return errors.New("enter a whole number above zero")
	}
	return nil
}
