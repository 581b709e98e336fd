package tui

import (
	"fmt"
	"strconv"
	"strings"

	"jobtrack/internal/board"
	"jobtrack/internal/model"
	"jobtrack/internal/statusutil"

	"github.com/charmbracelet/lipgloss"
)

type selection struct {
	Col  int
	Item int
	// ItemID is preferred over Item so focus follows a card across re-sorts and moves.
	ItemID string
}

func clampSelection(b board.Board, sel selection) selection {
	if len(b.Columns) == 0 {
		return selection{Col: 0, Item: -1}
	}
	if st, idx, ok := b.Locate(sel.ItemID); ok {
		sel.Col = statusutil.Index(st)
		sel.Item = idx
	} else {
		sel.ItemID = ""
	}

	if sel.Col < 0 {
		sel.Col = 0
	}
	if sel.Col >= len(b.Columns) {
		sel.Col = len(b.Columns) - 1
	}
	items := b.Columns[sel.Col].Items
	if len(items) == 0 {
		sel.Item = -1
		return sel
	}
	if sel.Item < 0 {
		sel.Item = 0
	}
	if sel.Item >= len(items) {
		sel.Item = len(items) - 1
	}
	sel.ItemID = items[sel.Item].ID
	return sel
}

func selectedApplication(b board.Board, sel selection) (model.Application, bool) {
	sel = clampSelection(b, sel)
	if len(b.Columns) == 0 || sel.Item < 0 {
		return model.Application{}, false
	}
	return b.Columns[sel.Col].Items[sel.Item], true
}

// renderBoard draws one column per status. The card with id dragging (if any) is
// highlighted as held.
func renderBoard(b board.Board, sel selection, dragging string, width, height int) string {
	n := len(b.Columns)
	if n == 0 {
		return normalizePane("", width, height)
	}
	sel = clampSelection(b, sel)

	gap := 2
	avail := width - gap*(n-1)
	if avail < n {
		avail = n
	}
	colW := avail / n
	if colW < 12 {
		colW = 12
	}
	innerW := colW - 2

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg).Background(colorControlBg)
	headerSelectedStyle := lipgloss.NewStyle().Bold(true).Foreground(colorSelectedFg).Background(colorSelectedBg)
	cardStyle := lipgloss.NewStyle().Width(colW).Padding(0, 1)
	cardSelectedStyle := cardStyle.Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
	cardHeldStyle := cardStyle.Foreground(colorAccentFg).Background(colorAccent).Bold(true)
	metaStyle := lipgloss.NewStyle().Foreground(colorCardMetaFg)

	renderCard := func(col board.Column, a model.Application, selected bool) string {
		company := strings.TrimSpace(a.Company)
		if company == "" {
			company = "(no company)"
		}
		lines := []string{truncateText(company, innerW)}
		pos := truncateText(strings.TrimSpace(a.Position), innerW)
		if statusutil.IsEndState(col.ID) && !selected {
			pos = styleMuted().Render(pos)
		}
		lines = append(lines, pos)
		salary := strconv.FormatFloat(a.SalaryMin, 'f', -1, 64) + "-" + strconv.FormatFloat(a.SalaryMax, 'f', -1, 64)
		if !selected && a.ID != dragging {
			salary = metaStyle.Render(truncateText(salary, innerW))
		} else {
			salary = truncateText(salary, innerW)
		}
		lines = append(lines, salary)

		inner := normalizePane(strings.Join(lines, "\n"), innerW, 0)
		switch {
		case a.ID == dragging:
			return cardHeldStyle.Render(inner)
		case selected:
			return cardSelectedStyle.Render(inner)
		default:
			return cardStyle.Render(inner)
		}
	}

	rendered := make([]string, 0, n)
	for ci, col := range b.Columns {
		hs := headerStyle
		if ci == sel.Col {
			hs = headerSelectedStyle
		}
		lines := []string{hs.Width(colW).Render(truncateText(fmt.Sprintf("%s (%d)", col.Title, len(col.Items)), colW))}
		if len(col.Items) == 0 {
			lines = append(lines, styleMuted().Render("(empty)"))
		} else {
			lines = append(lines, "")
		}
		for i, a := range col.Items {
			card := renderCard(col, a, ci == sel.Col && i == sel.Item)
			lines = append(lines, strings.Split(card, "\n")...)
			if i < len(col.Items)-1 {
				lines = append(lines, styleMuted().Render(" "+strings.Repeat("─", innerW)+" "))
			}
		}
		rendered = append(rendered, normalizePane(strings.Join(lines, "\n"), colW, height))
	}

	out := rendered[0]
	sep := strings.Repeat(" ", gap)
	for i := 1; i < len(rendered); i++ {
		out = lipgloss.JoinHorizontal(lipgloss.Top, out, sep, rendered[i])
	}
	return normalizePane(out, width, height)
}
