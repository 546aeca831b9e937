package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/arkavo-org/iroh-go/netx"
)

var (
	downloadTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color("#7D56F4")).
				Padding(0, 1)

	downloadDoneStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#90EE90"))

	downloadErrStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF6B6B"))
)

type progressMsg struct {
	downloaded uint64
	total      uint64
}

type downloadDoneMsg struct {
	data []byte
	err  error
}

type downloadModel struct {
	ticket     string
	bar        progress.Model
	downloaded uint64
	total      uint64
	done       bool
	err        error
	data       []byte
}

func newDownloadModel(ticket string) downloadModel {
	return downloadModel{
		ticket: ticket,
		bar:    progress.New(progress.WithDefaultGradient()),
	}
}

func (m downloadModel) Init() tea.Cmd {
	return nil
}

func (m downloadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - 8
	case progressMsg:
		m.downloaded = msg.downloaded
		m.total = msg.total
	case downloadDoneMsg:
		m.done = true
		m.data = msg.data
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m downloadModel) View() string {
	header := downloadTitleStyle.Render("iroh get") + " " + shorten(m.ticket)
	if m.done {
		if m.err != nil {
			return header + "\n" + downloadErrStyle.Render("download failed: "+m.err.Error()) + "\n"
		}
		return header + "\n" + downloadDoneStyle.Render(fmt.Sprintf("done, %d bytes", len(m.data))) + "\n"
	}

	ratio := 0.0
	if m.total > 0 {
		ratio = float64(m.downloaded) / float64(m.total)
	}
	return fmt.Sprintf("%s\n%s %d/%d bytes\n", header, m.bar.ViewAs(ratio), m.downloaded, m.total)
}

func shorten(s string) string {
	if len(s) <= 24 {
		return s
	}
	return s[:12] + "…" + s[len(s)-8:]
}

// progressOutput keeps the view off stdout so piped content stays clean.
func progressOutput() *os.File {
	return os.Stderr
}

// runDownloadView drives download under a bubbletea progress bar and
// returns the fetched bytes.
func runDownloadView(ticket string, download func(netx.ProgressFunc) ([]byte, error)) ([]byte, error) {
	p := tea.NewProgram(newDownloadModel(ticket), tea.WithOutput(progressOutput()))

	go func() {
		data, err := download(func(downloaded, total uint64) {
			p.Send(progressMsg{downloaded: downloaded, total: total})
		})
		p.Send(downloadDoneMsg{data: data, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m := final.(downloadModel)
	if m.err != nil {
		return nil, m.err
	}
	if !m.done {
		return nil, fmt.Errorf("download aborted")
	}
	return m.data, nil
}
