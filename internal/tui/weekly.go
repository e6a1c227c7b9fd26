package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/studyboard/internal/weekly"
)

var dayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

type weeklyModel struct {
	width  int
	height int

	profiles []weekly.Profile
	today    time.Time
	updated  time.Time
	offset   int // weeks relative to the current one, negative is the past

	result weekly.Result
	stamps [7]bool
	chart  barchart.Model
}

func newWeeklyModel() weeklyModel {
	return weeklyModel{
		chart: barchart.New(60, 10),
	}
}

func (m *weeklyModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.rebuild()
}

func (m *weeklyModel) setData(profiles []weekly.Profile, today, at time.Time) {
	m.profiles = profiles
	m.today = today
	m.updated = at
	m.rebuild()
}

// target is a date inside the displayed week.
func (m weeklyModel) target() time.Time {
	return weekly.ShiftWeek(m.today, m.offset)
}

func (m weeklyModel) count() int { return len(m.result.Users) }

func (m weeklyModel) update(msg tea.Msg) (weeklyModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Left):
			m.offset--
			m.rebuild()
		case key.Matches(msg, keys.Right):
			if m.offset < 0 {
				m.offset++
				m.rebuild()
			}
		}
	}
	return m, nil
}

func (m *weeklyModel) rebuild() {
	if m.today.IsZero() {
		return
	}
	m.result = weekly.Aggregate(m.profiles, m.target())
	m.stamps = weekly.VisitStamps(m.profiles, weekly.WeekStart(m.target()))
	m.buildChart()
}

func (m *weeklyModel) buildChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 8
	if m.height > 36 {
		chartHeight = 12
	}
	m.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for i, day := range dayNames {
		var values []barchart.BarValue
		for j, u := range m.result.Users {
			secs := u.Daily[i].StudyTimeSeconds
			if secs == 0 {
				continue
			}
			values = append(values, barchart.BarValue{
				Name:  u.Name,
				Value: float64(secs) / 3600.0,
				Style: lipgloss.NewStyle().Foreground(userColors[j%len(userColors)]),
			})
		}
		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}
		bars = append(bars, barchart.BarData{Label: day, Values: values})
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m weeklyModel) view(page, perPage int) string {
	if m.width < 20 {
		return "Terminal too small"
	}
	w := m.width - 4
	inner := w - 6

	title := titleStyle.Render("Weekly Study Time")
	updated := mutedStyle.Render(updatedLine(m.updated))
	gap := inner - lipgloss.Width(title) - lipgloss.Width(updated)
	if gap < 1 {
		gap = 1
	}
	header := title + strings.Repeat(" ", gap) + updated

	weekLabel := weekly.FormatRange(weekly.WeekStart(m.target()))
	if m.offset != 0 {
		weekLabel += mutedStyle.Render(fmt.Sprintf("  (%+d wk)", m.offset))
	}
	rangeLine := boardTitleStyle.Width(inner).Render(weekLabel)

	rows := []string{header, rangeLine, ""}

	if len(m.result.Users) == 0 {
		rows = append(rows, mutedStyle.Width(inner).Align(lipgloss.Center).Render("Waiting for comments..."))
	} else {
		rows = append(rows, m.renderDayHeader())
		start, end := pageSlice(len(m.result.Users), perPage, page)
		for _, u := range m.result.Users[start:end] {
			rows = append(rows, m.renderUser(u))
		}
		rows = append(rows, m.renderTotals())
		if pages := pageCount(len(m.result.Users), perPage); pages > 1 {
			rows = append(rows, mutedStyle.Width(inner).Align(lipgloss.Center).Render(fmt.Sprintf("%d / %d", page+1, pages)))
		}
	}

	rows = append(rows, "", m.renderStamps(), "", m.chart.View())
	rows = append(rows, mutedStyle.Render("  ←/→: change week"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

const weeklyNameWidth = 16

func (m weeklyModel) renderDayHeader() string {
	cells := []string{strings.Repeat(" ", weeklyNameWidth+8)}
	for _, d := range dayNames {
		cells = append(cells, dayHeaderStyle.Render(d))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m weeklyModel) renderUser(u weekly.Breakdown) string {
	name := normalItemStyle.Width(weeklyNameWidth).Render(truncate(u.Name, weeklyNameWidth))
	total := clockStyle.Width(8).Render(weekly.FormatClock(u.TotalSeconds))

	cells := []string{name, total}
	for _, d := range u.Daily {
		cells = append(cells, dayCellStyle.Render(dayCell(d.StudyTimeSeconds)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// renderTotals sums every viewer per day, not only the current page.
func (m weeklyModel) renderTotals() string {
	var week int64
	totals := m.result.DailyTotals()
	for _, secs := range totals {
		week += secs
	}
	cells := []string{
		highlightStyle.Width(weeklyNameWidth).Render("All viewers"),
		clockStyle.Width(8).Render(weekly.FormatClock(week)),
	}
	for _, secs := range totals {
		cells = append(cells, dayCellStyle.Render(dayCell(secs)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m weeklyModel) renderStamps() string {
	cells := []string{mutedStyle.Width(weeklyNameWidth + 8).Render("Visit stamps")}
	for _, stamped := range m.stamps {
		mark := mutedStyle.Render("·")
		if stamped {
			mark = successStyle.Render("●")
		}
		cells = append(cells, dayCellStyle.Render(mark))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// dayCell renders one day's study time; days without study show a dash.
func dayCell(secs int64) string {
	if secs <= 0 {
		return "-"
	}
	return weekly.FormatClock(secs)
}
