// Package board projects applications into status columns and keeps the
// client-side list cache consistent with a remote store during drag and drop.
package board

import (
	"jobtrack/internal/model"
	"jobtrack/internal/ordering"
	"jobtrack/internal/statusutil"
)

type Column struct {
	ID    model.Status        `json:"id"`
	Title string              `json:"title"`
	Items []model.Application `json:"items"`
}

type Board struct {
	Columns []Column `json:"columns"`
}

// Build groups apps into the fixed status columns, each sorted by order key.
// Applications with an unknown status are not shown.
func Build(apps []model.Application) Board {
	statuses := statusutil.Ordered()
	cols := make([]Column, 0, len(statuses))
	idx := map[model.Status]int{}
	for i, st := range statuses {
		idx[st] = i
		cols = append(cols, Column{ID: st, Title: statusutil.Label(st), Items: []model.Application{}})
	}
	for _, a := range apps {
		i, ok := idx[a.Status]
		if !ok {
			continue
		}
		cols[i].Items = append(cols[i].Items, a)
	}
	for i := range cols {
		ordering.SortByOrderKey(cols[i].Items)
	}
	return Board{Columns: cols}
}

func (b Board) Column(id model.Status) (Column, bool) {
	for _, c := range b.Columns {
		if c.ID == id {
			return c, true
		}
	}
	return Column{}, false
}

// Locate returns the column and index of the application with id.
func (b Board) Locate(id string) (model.Status, int, bool) {
	for _, c := range b.Columns {
		for i, a := range c.Items {
			if a.ID == id {
				return c.ID, i, true
			}
		}
	}
	return "", -1, false
}

func (b Board) Count() int {
	n := 0
	for _, c := range b.Columns {
		n += len(c.Items)
	}
	return n
}
