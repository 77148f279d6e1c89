package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/khidmat-portal/khidmat/internal/catalog"
	"github.com/khidmat-portal/khidmat/internal/portal"
)

// submitFormMsg carries an edited payload. id is empty for create.
type submitFormMsg struct {
	entity  string
	id      string
	payload map[string]any
}

// readOnlyFields never go back to the server.
var readOnlyFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"deleted_at": true,
}

// formModal edits a record as JSON. It stays open while the request runs so
// a validation failure keeps the payload for correction.
type formModal struct {
	entity     catalog.Entity
	id         string
	editor     textarea.Model
	err        string
	submitting bool
}

func newFormModal(entity catalog.Entity, id string, rec portal.Record) *formModal {
	editor := textarea.New()
	editor.ShowLineNumbers = false
	editor.CharLimit = 0
	editor.SetValue(formTemplate(entity, rec))
	editor.Focus()
	return &formModal{entity: entity, id: id, editor: editor}
}

// formTemplate renders rec without read-only fields, or an object keyed by
// the entity's top-level column fields for a new record.
func formTemplate(entity catalog.Entity, rec portal.Record) string {
	payload := make(map[string]any)
	if rec != nil {
		for k, v := range rec {
			if !readOnlyFields[k] {
				payload[k] = v
			}
		}
	} else {
		for _, c := range entity.Columns {
			field, _, _ := strings.Cut(c.Field, ".")
			if !readOnlyFields[field] && !strings.Contains(c.Field, ".") {
				payload[field] = ""
			}
		}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return "{}"
	}
	return strings.TrimSpace(buf.String())
}

func (f *formModal) title() string {
	if f.id == "" {
		return "New " + f.entity.Noun
	}
	return fmt.Sprintf("Edit %s #%s", f.entity.Noun, f.id)
}

// failed re-enables the form after a rejected submit.
func (f *formModal) failed(message string) {
	f.submitting = false
	f.err = message
}

func (f *formModal) setSize(width, height int) {
	f.editor.SetWidth(max(modalWidth(width, 72)-6, 10))
	f.editor.SetHeight(max(height-14, 4))
}

func (f *formModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, keys.Escape):
			return f, nil, true
		case key.Matches(km, keys.Submit):
			if f.submitting {
				return f, nil, false
			}
			payload, err := parsePayload(f.editor.Value())
			if err != nil {
				f.err = err.Error()
				return f, nil, false
			}
			f.err = ""
			f.submitting = true
			msg := submitFormMsg{entity: f.entity.Name, id: f.id, payload: payload}
			return f, func() tea.Msg { return msg }, false
		}
	}
	if f.submitting {
		return f, nil, false
	}
	var cmd tea.Cmd
	f.editor, cmd = f.editor.Update(msg)
	return f, cmd, false
}

func parsePayload(text string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if payload == nil {
		return nil, fmt.Errorf("payload must be a JSON object")
	}
	return payload, nil
}

func (f *formModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	f.setSize(width, height)

	var b strings.Builder
	b.WriteString(f.editor.View())
	b.WriteString("\n\n")
	switch {
	case f.submitting:
		b.WriteString(styles.WarningText.Render("Saving…"))
	case f.err != "":
		b.WriteString(styles.DangerText.Render(f.err))
	default:
		b.WriteString(styles.FaintText.Render("ctrl+s save · esc cancel"))
	}
	return placeModal(theme, f.title(), b.String(), modalWidth(width, 72), width, height)
}
