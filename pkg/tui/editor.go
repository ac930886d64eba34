package tui

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/unowned-ai/nstil/pkg/form"
	"github.com/unowned-ai/nstil/pkg/journal"
	"github.com/unowned-ai/nstil/pkg/logger"
)

type editorField int

const (
	fieldTitle editorField = iota
	fieldBody
	fieldMood
	fieldSpecific
	fieldType
	fieldTags
	fieldJournal
	fieldCount
)

var fieldLabels = [fieldCount]string{
	fieldTitle:    "Title",
	fieldBody:     "Body",
	fieldMood:     "Mood",
	fieldSpecific: "Feeling",
	fieldType:     "Type",
	fieldTags:     "Tags",
	fieldJournal:  "Journal",
}

// signals collects what the controller reports from the submit goroutine.
type signals struct {
	mu    sync.Mutex
	back  bool
	alert string
}

func (s *signals) GoBack() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.back = true
}

func (s *signals) Alert(title, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alert = title + ": " + message
}

func (s *signals) take() (back bool, alert string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	back, alert = s.back, s.alert
	s.back, s.alert = false, ""
	return back, alert
}

// editor is the entry form screen. All draft state lives in the controller;
// the text widgets mirror it.
type editor struct {
	ctrl    *form.Controller
	sig     *signals
	spaces  []journal.Space
	focus   editorField
	title   textinput.Model
	body    textarea.Model
	tagIn   textinput.Model
	alert   string
	done    bool
	heading string
}

func newEditor(saver form.Saver, entry *journal.Entry, spaces []journal.Space, log logger.Logger) editor {
	sig := &signals{}
	ctrl := form.New(saver, sig, sig, entry, spaces, form.WithLogger(log))
	d := ctrl.Draft()

	ti := textinput.New()
	ti.Placeholder = "Title (optional)"
	ti.CharLimit = journal.MaxTitleLength
	ti.SetValue(d.Title)

	ta := textarea.New()
	ta.Placeholder = "What's on your mind?"
	ta.ShowLineNumbers = false
	ta.CharLimit = journal.MaxBodyLength
	ta.SetHeight(8)
	ta.SetValue(d.Body)

	tags := textinput.New()
	tags.Placeholder = "Add a tag and press enter"
	tags.CharLimit = journal.MaxTagLength

	heading := "New Entry"
	if entry != nil {
		heading = "Edit Entry"
	}

	e := editor{
		ctrl:    ctrl,
		sig:     sig,
		spaces:  spaces,
		title:   ti,
		body:    ta,
		tagIn:   tags,
		heading: heading,
	}
	e.focusField(fieldBody)
	return e
}

func (e *editor) focusField(f editorField) {
	e.focus = (f + fieldCount) % fieldCount
	e.title.Blur()
	e.body.Blur()
	e.tagIn.Blur()
	switch e.focus {
	case fieldTitle:
		e.title.Focus()
	case fieldBody:
		e.body.Focus()
	case fieldTags:
		if !e.ctrl.AtTagCap() {
			e.tagIn.Focus()
		}
	}
}

// setJournals backfills the journal once the list arrives.
func (e *editor) setJournals(spaces []journal.Space) {
	e.spaces = spaces
	e.ctrl.SetJournals(spaces)
}

func (e editor) update(msg tea.Msg) (editor, tea.Cmd) {
	switch msg := msg.(type) {
	case submitDoneMsg:
		back, alert := e.sig.take()
		e.alert = alert
		if back {
			e.done = true
		}
		return e, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+s":
			if !e.ctrl.CanSubmit() {
				if e.ctrl.Draft().JournalID == "" {
					e.alert = "Create a journal first."
				}
				return e, nil
			}
			e.alert = ""
			return e, submitForm(e.ctrl)
		case "tab", "down":
			if msg.String() == "down" && e.focus == fieldBody {
				break
			}
			e.focusField(e.focus + 1)
			return e, nil
		case "shift+tab", "up":
			if msg.String() == "up" && e.focus == fieldBody {
				break
			}
			e.focusField(e.focus - 1)
			return e, nil
		case "left", "right":
			if e.cycle(msg.String() == "right") {
				return e, nil
			}
		case "enter":
			if e.focus == fieldTags {
				e.addTag()
				return e, nil
			}
		case "backspace":
			if e.focus == fieldTags && e.tagIn.Value() == "" {
				if tags := e.ctrl.Draft().Tags; len(tags) > 0 {
					e.ctrl.RemoveTag(tags[len(tags)-1])
					e.focusField(fieldTags)
				}
				return e, nil
			}
		}
	}

	var cmd tea.Cmd
	switch e.focus {
	case fieldTitle:
		e.title, cmd = e.title.Update(msg)
		e.ctrl.SetTitle(e.title.Value())
	case fieldBody:
		e.body, cmd = e.body.Update(msg)
		e.ctrl.SetBody(e.body.Value())
	case fieldTags:
		if !e.ctrl.AtTagCap() {
			e.tagIn, cmd = e.tagIn.Update(msg)
		}
	}
	return e, cmd
}

func (e *editor) addTag() {
	tag := strings.TrimSpace(e.tagIn.Value())
	if tag == "" {
		return
	}
	e.ctrl.AddTag(tag)
	e.tagIn.Reset()
	if e.ctrl.AtTagCap() {
		e.tagIn.Blur()
	}
}

// cycle moves a picker field one step. It reports false when the focused
// field is not a picker.
func (e *editor) cycle(forward bool) bool {
	d := e.ctrl.Draft()
	step := func(i, n int) int {
		if forward {
			return (i + 1) % n
		}
		return (i - 1 + n) % n
	}

	switch e.focus {
	case fieldMood:
		// index 0 is "no mood"
		opts := append([]journal.MoodCategory{""}, journal.MoodCategories...)
		next := opts[step(slices.Index(opts, d.Mood.Category), len(opts))]
		if next == "" {
			e.ctrl.ClearMood()
		} else {
			e.ctrl.SetMoodCategory(next)
		}
	case fieldSpecific:
		if d.Mood.Category == "" {
			return true
		}
		opts := append([]journal.MoodSpecific{""}, d.Mood.Category.Specifics()...)
		next := opts[step(slices.Index(opts, d.Mood.Specific), len(opts))]
		if next == "" {
			e.ctrl.ClearMood()
			e.ctrl.SetMoodCategory(d.Mood.Category)
		} else {
			e.ctrl.SetMoodSpecific(next)
		}
	case fieldType:
		i := slices.Index(journal.EntryTypes, d.EntryType)
		e.ctrl.SetEntryType(journal.EntryTypes[step(max(i, 0), len(journal.EntryTypes))])
	case fieldJournal:
		if len(e.spaces) == 0 {
			return true
		}
		i := slices.IndexFunc(e.spaces, func(s journal.Space) bool { return s.ID == d.JournalID })
		e.ctrl.SetJournalID(e.spaces[step(max(i, 0), len(e.spaces))].ID)
	default:
		return false
	}
	return true
}

func (e editor) view(st styles, width int) string {
	var b strings.Builder
	d := e.ctrl.Draft()
	inner := max(width-bordersAndPaddingWidth, 20)
	e.title.Width = inner - 10
	e.body.SetWidth(inner)

	b.WriteString(st.subtitle.Render(e.heading) + "\n\n")

	row := func(f editorField, value string) {
		b.WriteString(generateLinePointer(e.focus == f, 2))
		b.WriteString(st.label.Render(fmt.Sprintf("%-8s", fieldLabels[f])) + " " + value + "\n")
	}

	row(fieldTitle, e.title.View())
	b.WriteString(generateLinePointer(e.focus == fieldBody, 2) + st.label.Render(fieldLabels[fieldBody]) + "\n")
	b.WriteString(e.body.View() + "\n")
	if msg := e.ctrl.BodyError(); msg != "" {
		b.WriteString(st.errorText.Render("  "+msg) + "\n")
	}

	mood := st.muted.Render("none")
	if !d.Mood.IsZero() {
		mood = st.text.Render(d.Mood.Category.Label())
	}
	row(fieldMood, "‹ "+mood+" ›")

	specific := st.muted.Render("-")
	if d.Mood.Specific != "" {
		specific = st.text.Render(d.Mood.Specific.Label())
	}
	row(fieldSpecific, "‹ "+specific+" ›")
	row(fieldType, "‹ "+st.text.Render(d.EntryType.Label())+" ›")

	tagLine := make([]string, 0, len(d.Tags))
	for _, t := range d.Tags {
		tagLine = append(tagLine, st.tag.Render("#"+t))
	}
	tagsValue := strings.Join(tagLine, " ")
	if e.ctrl.AtTagCap() {
		tagsValue += " " + st.muted.Render(fmt.Sprintf("(max %d)", form.MaxTags))
	} else {
		tagsValue += " " + e.tagIn.View()
	}
	row(fieldTags, tagsValue)

	journalName := st.muted.Render("none")
	for _, s := range e.spaces {
		if s.ID == d.JournalID {
			journalName = st.text.Render(s.Name)
		}
	}
	row(fieldJournal, "‹ "+journalName+" ›")

	b.WriteString("\n")
	if e.ctrl.IsSubmitting() {
		b.WriteString(st.muted.Render("Saving...") + "\n")
	}
	if e.alert != "" {
		b.WriteString(st.errorText.Render(e.alert) + "\n")
	}
	b.WriteString(st.footer.Render("tab to move • ←/→ to pick • ctrl+s to save • esc to cancel"))
	return lipgloss.NewStyle().Width(inner).Render(b.String())
}
