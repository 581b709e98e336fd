package format

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Tabular values know how to lay themselves out as rows.
type Tabular interface {
	TableHeaders() []string
	TableRows() [][]string
}

// Rows is a ready-made Tabular value.
type Rows struct {
	Headers []string
	Data    [][]string
}

func (r Rows) TableHeaders() []string { return r.Headers }
func (r Rows) TableRows() [][]string { return r.Data }

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// WriteTable renders v as a bordered table. Non-Tabular values are shown as a
// two-column field/value table of their JSON form.
func WriteTable(w io.Writer, v any) error {
	t, ok := v.(Tabular)
	if !ok {
		kv, err := fieldRows(v)
		if err != nil {
			return err
		}
		t = kv
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.TableHeaders()...).
		Rows(t.TableRows()...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}

func fieldRows(v any) (Rows, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Rows{}, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return Rows{Headers: []string{"value"}, Data: [][]string{{string(raw)}}}, nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := Rows{Headers: []string{"field", "value"}}
	for _, k := range keys {
		out.Data = append(out.Data, []string{k, Cell(m[k])})
	}
	return out, nil
}

// Cell renders a decoded JSON value for a table cell.
func Cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
