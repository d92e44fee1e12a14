package preview

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/JonMunkholm/bookimport/internal/sheet"
)

// previewRows caps how many rows the table shows.
const previewRows = 15

/* ----------------------------------------
	MESSAGES
---------------------------------------- */

// fileReadMsg carries a file read from disk.
type fileReadMsg struct {
	name string
	data []byte
}

// parsedMsg reports the outcome of Form.Select.
type parsedMsg struct{ err error }

// confirmedMsg reports the outcome of Form.Confirm.
type confirmedMsg struct {
	result *UploadResult
	err    error
}

// ErrMsg reports a failure that leaves the form unchanged.
type ErrMsg struct{ Err error }

/* ----------------------------------------
	MODEL
---------------------------------------- */

// Model is the bubbletea program for previewing and confirming an import.
type Model struct {
	form    *Form
	timeout time.Duration

	path      string
	status    string
	err       error
	uploading bool
}

// NewModel wraps form. timeout bounds each upload; zero means none.
func NewModel(form *Form, timeout time.Duration) Model {
	return Model{form: form, timeout: timeout}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case fileReadMsg:
		return m, m.selectFile(msg.name, msg.data)

	case parsedMsg:
		m.err = msg.err
		m.status = ""
		if msg.err == nil {
			snap := m.form.Snapshot()
			m.status = fmt.Sprintf("%d rows parsed", len(snap.Rows))
		}
		return m, nil

	case confirmedMsg:
		m.uploading = false
		m.err = msg.err
		if msg.err == nil {
			m.status = fmt.Sprintf("%s (%d inserted)", msg.result.Message, msg.result.Inserted)
		}
		return m, nil

	case ErrMsg:
		m.err = msg.Err
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	state := m.form.State()

	// Typing a path.
	if state == StateEmpty {
		switch msg.Type {
		case tea.KeyEnter:
			path := strings.TrimSpace(m.path)
			if path == "" {
				m.err = ErrNoFile
				return m, nil
			}
			m.err = nil
			m.status = "reading " + path
			return m, readFile(path)
		case tea.KeyBackspace:
			if r := []rune(m.path); len(r) > 0 {
				m.path = string(r[:len(r)-1])
			}
		case tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyRunes, tea.KeySpace:
			m.path += string(msg.Runes)
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "r":
		if m.uploading {
			return m, nil
		}
		m.form.Restart()
		m.path, m.status, m.err = "", "", nil
	case "enter":
		if m.uploading || state != StateParsed {
			return m, nil
		}
		m.uploading = true
		m.err = nil
		m.status = "uploading..."
		return m, m.confirm()
	}
	return m, nil
}

/* ----------------------------------------
	COMMANDS
---------------------------------------- */

func readFile(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return fileReadMsg{name: filepath.Base(path), data: data}
	}
}

func (m Model) selectFile(name string, data []byte) tea.Cmd {
	return func() tea.Msg {
		return parsedMsg{err: m.form.Select(name, data)}
	}
}

func (m Model) confirm() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if m.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, m.timeout)
			defer cancel()
		}
		result, err := m.form.Confirm(ctx)
		return confirmedMsg{result: result, err: err}
	}
}

/* ----------------------------------------
	VIEW
---------------------------------------- */

func (m Model) View() string {
	var b strings.Builder
	snap := m.form.Snapshot()

	b.WriteString("Book import\n\n")

	switch snap.State {
	case StateEmpty:
		if snap.FileName != "" {
			fmt.Fprintf(&b, "File: %s\n", snap.FileName)
		}
		fmt.Fprintf(&b, "Spreadsheet path: %s_\n", m.path)
	case StateParsed, StateConfirmed:
		fmt.Fprintf(&b, "File: %s\n\n", snap.FileName)
		b.WriteString(renderTable(snap.Columns, snap.Rows))
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	if m.err != nil {
		b.WriteString("Error: " + describe(m.err) + "\n")
	}

	b.WriteString("\n")
	switch snap.State {
	case StateEmpty:
		b.WriteString("enter: load file • esc/ctrl+c: quit\n")
	case StateParsed:
		if len(snap.Rows) > 0 {
			b.WriteString("enter: confirm upload • r: restart • q: quit\n")
		} else {
			b.WriteString("r: restart • q: quit\n")
		}
	case StateConfirmed:
		b.WriteString("r: restart • q: quit\n")
	}
	return b.String()
}

// describe shortens client errors for the status line.
func describe(err error) string {
	var terr *TransportError
	if errors.As(err, &terr) && terr.StatusCode != 0 {
		if terr.Body != "" {
			return fmt.Sprintf("server returned %d: %s", terr.StatusCode, terr.Body)
		}
		return fmt.Sprintf("server returned %d", terr.StatusCode)
	}
	return err.Error()
}

// renderTable lays out rows in fixed-width columns, truncating long cells.
func renderTable(columns []string, rows []sheet.Row) string {
	const maxWidth = 24

	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = min(len([]rune(c)), maxWidth)
	}
	shown := rows[:min(len(rows), previewRows)]
	for _, row := range shown {
		for i, c := range columns {
			widths[i] = max(widths[i], min(len([]rune(row[c])), maxWidth))
		}
	}

	var b strings.Builder
	writeLine := func(cell func(i int) string) {
		for i := range columns {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(pad(cell(i), widths[i]))
		}
		b.WriteString("\n")
	}

	writeLine(func(i int) string { return columns[i] })
	writeLine(func(i int) string { return strings.Repeat("-", widths[i]) })
	for _, row := range shown {
		writeLine(func(i int) string { return row[columns[i]] })
	}
	if len(rows) > len(shown) {
		fmt.Fprintf(&b, "... %d more rows\n", len(rows)-len(shown))
	}
	fmt.Fprintf(&b, "%d rows\n", len(rows))
	return b.String()
}

func pad(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		if width <= 1 {
			return string(r[:width])
		}
		return string(r[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-len(r))
}
