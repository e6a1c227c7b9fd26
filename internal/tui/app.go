package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studyboard/internal/export"
	"github.com/sadopc/studyboard/internal/store"
	"github.com/sadopc/studyboard/internal/weekly"
)

const (
	defaultUsersPerPage = 3
	defaultPageEvery    = 10 * time.Second
	defaultProgress     = 5 * time.Second
	defaultRefresh      = 5 * time.Second
)

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	now    func() time.Time
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	leaderboard leaderboardModel
	weekly      weeklyModel
	settings    settingsModel

	rot          rotation
	progress     progress
	perPage      int
	refreshEvery time.Duration
	lastLoad     time.Time
	loading      bool

	help       help.Model
	status     string
	chatStatus ChatStatusMsg
}

func NewApp(s *store.Store) App {
	h := help.New()
	h.ShowAll = false

	return App{
		store:        s,
		now:          time.Now,
		activeView:   viewLeaderboard,
		leaderboard:  newLeaderboardModel(),
		weekly:       newWeeklyModel(),
		settings:     newSettingsModel(s),
		rot:          newRotation(defaultPageEvery, defaultProgress),
		perPage:      defaultUsersPerPage,
		refreshEvery: defaultRefresh,
		help:         h,
		chatStatus:   ChatStatusMsg{Text: "Chat off"},
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.loadData(),
		a.settings.refresh(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// loadData reads every profile and the overlay settings in one go.
func (a App) loadData() tea.Cmd {
	s, now := a.store, a.now
	return func() tea.Msg {
		profiles, err := s.ListProfiles()
		if err != nil {
			return boardDataMsg{err: err, at: now()}
		}
		all, err := s.GetAllSettings()
		if err != nil {
			return boardDataMsg{err: err, at: now()}
		}
		settings := make(map[string]string, len(all))
		for _, st := range all {
			settings[st.Key] = st.Value
		}
		return boardDataMsg{profiles: profiles, prefs: loadPrefs(s), settings: settings, at: now()}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.leaderboard.setSize(a.width, contentHeight)
		a.weekly.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If the settings form is capturing input, delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.switchView(viewLeaderboard)
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.switchView(viewWeekly)
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.switchView(viewSettings)
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.switchView((a.activeView + 1) % viewState(len(viewNames)))
			if a.activeView == viewSettings {
				return a, a.settings.refresh()
			}
			return a, nil
		case key.Matches(msg, keys.AutoRotate):
			a.rot.toggle(a.now())
			if a.rot.paused {
				a.status = "Auto-rotate paused"
			} else {
				a.status = "Auto-rotate on"
			}
			return a, nil
		case key.Matches(msg, keys.Refresh):
			a.loading = true
			return a, a.loadData()
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		now := time.Time(msg)
		if !a.loading && now.Sub(a.lastLoad) >= a.refreshEvery {
			a.loading = true
			cmds = append(cmds, a.loadData())
		}
		if a.activeView != viewSettings {
			if a.rot.tick(now) == stepSwitch {
				a.flipBoard()
			}
		}
		return a, tea.Batch(cmds...)

	case boardDataMsg:
		a.loading = false
		a.lastLoad = msg.at
		if msg.err != nil {
			a.status = fmt.Sprintf("Load error: %v", msg.err)
			return a, nil
		}
		a.applySettings(msg.prefs, msg.settings)
		a.leaderboard.setData(msg.profiles, msg.at)
		a.weekly.setData(msg.profiles, weekly.CivilDate(msg.at, a.store.Location()), msg.at)
		a.rot.setPages(a.boardPages())
		return a, nil

	case settingsSavedMsg:
		a.status = "Settings saved"
		a.loading = true
		return a, a.loadData()

	case ChatStatusMsg:
		a.chatStatus = msg
		return a, nil

	case statusMsg:
		a.status = msg.text
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewWeekly:
		a.weekly, cmd = a.weekly.update(msg)
		a.rot.setPages(a.boardPages())
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	return a.activeView == viewSettings && a.settings.formActive
}

func (a *App) switchView(v viewState) {
	a.activeView = v
	a.rot.setPages(a.boardPages())
	a.rot.reset(a.now())
}

// flipBoard hands the screen to the other board once a rotation completes.
func (a *App) flipBoard() {
	if a.activeView == viewLeaderboard {
		a.activeView = viewWeekly
	} else {
		a.activeView = viewLeaderboard
	}
	a.rot.setPages(a.boardPages())
}

func (a App) boardPages() int {
	n := a.leaderboard.count()
	if a.activeView == viewWeekly {
		n = a.weekly.count()
	}
	return pageCount(n, a.perPage)
}

func loadPrefs(s *store.Store) boardPrefs {
	secs := func(k string, fallback time.Duration) time.Duration {
		return time.Duration(s.GetIntSetting(k, int(fallback/time.Second))) * time.Second
	}
	return boardPrefs{
		perPage:       s.GetIntSetting("users_per_page", defaultUsersPerPage),
		pageEvery:     secs("page_seconds", defaultPageEvery),
		progressEvery: secs("progress_seconds", defaultProgress),
		refreshEvery:  secs("refresh_seconds", defaultRefresh),
	}
}

func (a *App) applySettings(prefs boardPrefs, settings map[string]string) {
	a.perPage = prefs.perPage
	a.rot.pageEvery = prefs.pageEvery
	a.rot.progressEvery = prefs.progressEvery
	a.refreshEvery = prefs.refreshEvery
	a.progress = progressFromSettings(settings)
	a.rot.hasProgress = a.progress.configured()
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch {
	case a.activeView != viewSettings && a.rot.showingProgress:
		content = a.progress.view(a.width)
	case a.activeView == viewLeaderboard:
		content = a.leaderboard.view(a.rot.page, a.perPage)
	case a.activeView == viewWeekly:
		content = a.weekly.view(a.rot.page, a.perPage)
	case a.activeView == viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("studyboard")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	chat := warningStyle.Render(" ○ " + a.chatStatus.Text)
	if a.chatStatus.OK {
		chat = successStyle.Render(" ● " + a.chatStatus.Text)
	}

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}
	if a.rot.paused {
		status += warningStyle.Render(" ⏸")
	}

	left := footerStyle.Render(helpView)
	right := chat + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export " + weekly.FormatRange(weekly.WeekStart(a.weekly.target())))
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport writes the week currently shown on the weekly board.
func (a App) doExport(format int) tea.Cmd {
	result := a.weekly.result
	return func() tea.Msg {
		if result.WeekStart == "" {
			return statusMsg{text: "Nothing to export yet", isError: true}
		}
		home, _ := os.UserHomeDir()

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("studyboard-week-%s.csv", result.WeekStart))
			if err := export.ToCSV(result, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(home, fmt.Sprintf("studyboard-week-%s.json", result.WeekStart))
			if err := export.ToJSON(result, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
