package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// WatchFetcher polls a single StatusInfo snapshot, the way `percolated
// stats --watch` scrapes a running server's /metrics endpoint once per
// tick.
type WatchFetcher func() (StatusInfo, error)

// watchModel is a bubbletea model driving `percolated stats --watch`: a
// spinner for liveness, the latest StatusInfo, and a sparkline of the
// match rate (actual matches per tick) built from successive snapshots.
type watchModel struct {
	fetch      WatchFetcher
	interval   time.Duration
	spinner    spinner.Model
	sparkline  *Sparkline
	styles     Styles
	info       StatusInfo
	havePrev   bool
	prevActual int
	err        error
	quitting   bool
}

type watchTickMsg time.Time
type watchFetchedMsg struct {
	info StatusInfo
	err  error
}

// NewWatchModel returns a bubbletea model that polls fetch every interval
// and renders the result as a live dashboard.
func NewWatchModel(fetch WatchFetcher, interval time.Duration, noColor bool) tea.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return &watchModel{
		fetch:     fetch,
		interval:  interval,
		spinner:   s,
		sparkline: NewSparkline(40),
		styles:    GetStyles(noColor),
	}
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchCmd(), m.tickCmd())
}

func (m *watchModel) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return watchTickMsg(t) })
}

func (m *watchModel) fetchCmd() tea.Cmd {
	fetch := m.fetch
	return func() tea.Msg {
		info, err := fetch()
		return watchFetchedMsg{info: info, err: err}
	}
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case watchTickMsg:
		return m, tea.Batch(m.fetchCmd(), m.tickCmd())

	case watchFetchedMsg:
		m.err = msg.err
		if msg.err == nil {
			if m.havePrev {
				delta := msg.info.ActualMatches - m.prevActual
				if delta < 0 {
					delta = 0 // counter reset (server restarted)
				}
				m.sparkline.Add(float64(delta))
			}
			m.prevActual = msg.info.ActualMatches
			m.havePrev = true
			m.info = msg.info
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *watchModel) View() string {
	if m.quitting {
		return ""
	}

	header := fmt.Sprintf("%s %s (q to quit)\n", m.spinner.View(), m.styles.Header.Render("percolated: live stats"))

	if m.err != nil {
		return header + "\n" + m.styles.Error.Render(m.err.Error()) + "\n"
	}

	body := fmt.Sprintf(
		"\n  Registered queries: %d\n  Match calls:        %d\n  Phase 1 candidates: %d\n  Phase 2 matches:    %d\n  Match rate:         %s\n",
		m.info.RegisteredQueries,
		m.info.MatchDocumentCalls,
		m.info.ProspectiveMatches,
		m.info.ActualMatches,
		m.sparkline.Render(),
	)

	return header + body
}
