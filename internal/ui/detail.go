package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/khidmat-portal/khidmat/internal/portal"
)

// detailModal shows every field of one record, nested objects flattened to
// dotted keys.
type detailModal struct {
	title string
	lines []detailLine
	view  viewport.Model
	ready bool
}

type detailLine struct {
	key   string
	value string
}

func newDetailModal(title string, rec portal.Record) *detailModal {
	var lines []detailLine
	flattenRecord("", map[string]any(rec), &lines)
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].key < lines[j].key })
	return &detailModal{title: title, lines: lines}
}

func flattenRecord(prefix string, value map[string]any, out *[]detailLine) {
	for k, v := range value {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flattenRecord(path, nested, out)
			continue
		}
		*out = append(*out, detailLine{key: path, value: portal.FormatValue(v)})
	}
}

func (d *detailModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, keys.Escape), key.Matches(km, keys.Detail), km.String() == "q":
			return d, nil, true
		}
	}
	var cmd tea.Cmd
	d.view, cmd = d.view.Update(msg)
	return d, cmd, false
}

func (d *detailModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	w := modalWidth(width, 80)
	h := max(height-10, 3)
	if !d.ready {
		d.view = viewport.New(w-4, h)
		d.ready = true
	}
	d.view.Width = w - 4
	d.view.Height = min(h, max(len(d.lines), 1))

	keyWidth := 0
	for _, l := range d.lines {
		keyWidth = max(keyWidth, len(l.key))
	}
	keyWidth = min(keyWidth, 24)

	var b strings.Builder
	for i, l := range d.lines {
		b.WriteString(styles.MutedText.Render(fit(l.key, keyWidth)))
		b.WriteString("  ")
		value := singleLine(l.value)
		if value == "" {
			b.WriteString(styles.FaintText.Render("-"))
		} else {
			b.WriteString(styles.Text.Render(truncate(value, max(w-keyWidth-8, 8))))
		}
		if i < len(d.lines)-1 {
			b.WriteString("\n")
		}
	}
	d.view.SetContent(b.String())

	footer := styles.FaintText.Render(fmt.Sprintf("%d fields · j/k scroll · esc close", len(d.lines)))
	return placeModal(theme, d.title, d.view.View()+"\n\n"+footer, w, width, height)
}
