package tui

import (
	"fmt"
	"strings"

	"jobtrack/internal/board"
	"jobtrack/internal/statusutil"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (m boardModel) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), tickReload())
}

func (m boardModel) refreshCmd() tea.Cmd {
	return func() tea.Msg { return refreshedMsg{err: m.coord.Refresh(m.ctx)} }
}

func (m boardModel) commitCmd(p board.Pending) tea.Cmd {
	return func() tea.Msg { return settledMsg{out: m.coord.Commit(m.ctx, p)} }
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case refreshedMsg:
		if msg.err != nil {
			m.status.Report(msg.err)
		}
		m.sel = clampSelection(m.coord.Board(), m.sel)
		return m, nil

	case settledMsg:
		if m.pending > 0 {
			m.pending--
		}
		if msg.out.Err == nil {
			m.status.Set("moved " + msg.out.ItemID)
		}
		m.sel = clampSelection(m.coord.Board(), m.sel)
		return m, nil

	case reloadTickMsg:
		// Never overwrite a held card or an unconfirmed drop with a background reload.
		if m.drag == nil && m.pending == 0 {
			return m, tea.Batch(m.refreshCmd(), tickReload())
		}
		return m, tickReload()

	case tea.KeyMsg:
		switch {
		case m.searching:
			return m.updateSearch(msg)
		case m.drag != nil:
			return m.updateDrag(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m boardModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b := m.coord.Board()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Left):
		m.sel = clampSelection(b, selection{Col: m.sel.Col - 1, Item: m.sel.Item})
	case key.Matches(msg, m.keys.Right):
		m.sel = clampSelection(b, selection{Col: m.sel.Col + 1, Item: m.sel.Item})
	case key.Matches(msg, m.keys.Up):
		m.sel = clampSelection(b, selection{Col: m.sel.Col, Item: m.sel.Item - 1})
	case key.Matches(msg, m.keys.Down):
		m.sel = clampSelection(b, selection{Col: m.sel.Col, Item: m.sel.Item + 1})
	case key.Matches(msg, m.keys.Pick):
		sel := clampSelection(b, m.sel)
		a, ok := selectedApplication(b, sel)
		if !ok {
			return m, nil
		}
		loc := board.Location{ColumnID: b.Columns[sel.Col].ID, Index: sel.Item}
		m.sel = sel
		m.drag = &dragState{itemID: a.ID, source: loc, target: loc}
		m.status.Set(fmt.Sprintf("moving %s: arrows to place, enter to drop, esc to cancel", a.Company))
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(m.coord.Params().Search)
		m.search.CursorEnd()
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Detail):
		m.detail = !m.detail
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCmd()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Cancel):
		m.detail = false
	}
	return m, nil
}

// othersIn counts the cards of col that are not id, which bounds the drop index.
func othersIn(col board.Column, id string) int {
	n := 0
	for _, a := range col.Items {
		if a.ID != id {
			n++
		}
	}
	return n
}

func (m boardModel) updateDrag(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := *m.drag
	b := m.coord.Board()
	col := statusutil.Index(d.target.ColumnID)

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.coord.CancelDrag()
		m.drag = nil
		return m, tea.Quit

	case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Right):
		if key.Matches(msg, m.keys.Left) {
			col--
		} else {
			col++
		}
		if col < 0 || col >= len(b.Columns) {
			return m, nil
		}
		d.target.ColumnID = b.Columns[col].ID
		if n := othersIn(b.Columns[col], d.itemID); d.target.Index > n {
			d.target.Index = n
		}

	case key.Matches(msg, m.keys.Up):
		if d.target.Index == 0 {
			return m, nil
		}
		d.target.Index--

	case key.Matches(msg, m.keys.Down):
		c, _ := b.Column(d.target.ColumnID)
		if d.target.Index >= othersIn(c, d.itemID) {
			return m, nil
		}
		d.target.Index++

	case key.Matches(msg, m.keys.Drop):
		m.drag = nil
		if d.target == d.source {
			m.coord.CancelDrag()
			m.status.Set("")
			return m, nil
		}
		target := d.target
		p, ok := m.coord.OnDragEnd(board.DropResult{ItemID: d.itemID, Source: d.source, Destination: &target})
		m.sel = clampSelection(m.coord.Board(), selection{ItemID: d.itemID})
		if !ok {
			m.status.Set("nothing to move")
			return m, nil
		}
		m.pending++
		m.status.Set("saving…")
		return m, m.commitCmd(p)

	case key.Matches(msg, m.keys.Cancel):
		m.drag = nil
		// A drop without a destination puts the card back.
		m.coord.OnDragEnd(board.DropResult{ItemID: d.itemID, Source: d.source})
		m.sel = clampSelection(m.coord.Board(), selection{ItemID: d.itemID})
		m.status.Set("move cancelled")
		return m, m.refreshCmd()

	default:
		return m, nil
	}

	target := d.target
	m.coord.OnDragUpdate(board.DragUpdate{ItemID: d.itemID, Source: d.source, Destination: &target})
	m.drag = &d
	m.sel = clampSelection(m.coord.Board(), selection{ItemID: d.itemID})
	return m, nil
}

func (m boardModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		params := m.coord.Params()
		params.Search = strings.TrimSpace(m.search.Value())
		m.coord.SetParams(params)
		m.sel = selection{}
		return m, m.refreshCmd()
	case "esc", "ctrl+c":
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m boardModel) View() string {
	width := m.width
	if width <= 0 {
		width = 100
	}
	height := m.height
	if height <= 0 {
		height = 30
	}

	b := m.coord.Board()
	params := m.coord.Params()

	title := lipgloss.NewStyle().Bold(true).Render("jobtrack")
	info := fmt.Sprintf("%d applications", b.Count())
	if params.Search != "" {
		info += fmt.Sprintf("  search: %q", params.Search)
	}
	if m.pending > 0 {
		info += fmt.Sprintf("  saving %d", m.pending)
	}
	header := normalizePane(title+"  "+styleMuted().Render(info), width, 1)

	footer := []string{}
	if m.searching {
		footer = append(footer, m.search.View())
	}
	if msg, isErr := m.status.Get(); msg != "" {
		st := styleMuted()
		if isErr {
			st = lipgloss.NewStyle().Foreground(colorError).Bold(true)
		}
		footer = append(footer, st.Render(truncateText(msg, width)))
	}
	footer = append(footer, m.help.View(m.keys))
	footerView := strings.Join(footer, "\n")

	bodyH := height - 1 - lipgloss.Height(footerView)
	if bodyH < 3 {
		bodyH = 3
	}

	dragging := ""
	if m.drag != nil {
		dragging = m.drag.itemID
	}

	var body string
	if a, ok := selectedApplication(b, m.sel); ok && m.detail {
		detailW := width / 3
		if detailW < 24 {
			detailW = 24
		}
		boardW := width - detailW - 2
		left := renderBoard(b, m.sel, dragging, boardW, bodyH)
		right := normalizePane(renderMarkdown(ApplicationMarkdown(a), detailW-1), detailW, bodyH)
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
	} else {
		body = renderBoard(b, m.sel, dragging, width, bodyH)
	}

	return strings.Join([]string{header, body, footerView}, "\n")
}
