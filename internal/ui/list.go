package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/taskcal/internal/formatter"
	"github.com/desertthunder/taskcal/internal/models"
)

var _ list.Item = recordItem{}

// recordItem wraps [models.SyncRecord] to implement [list.Item].
type recordItem struct {
	record *models.SyncRecord
}

func (i recordItem) FilterValue() string { return i.record.TaskName }
func (i recordItem) Title() string       { return i.record.TaskName }
func (i recordItem) Description() string {
	due := formatter.FormatDue(i.record)
	if i.record.AllDay {
		due += " (all day)"
	}
	return fmt.Sprintf("due %s • %s", due, i.record.EventID)
}

func recordItems(records []*models.SyncRecord) []list.Item {
	items := make([]list.Item, len(records))
	for i, r := range records {
		items[i] = recordItem{record: r}
	}
	return items
}
