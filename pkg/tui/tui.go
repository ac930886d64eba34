package tui

import (
	"fmt"
	"strings"
	"time"

	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/unowned-ai/nstil/pkg/journal"
	"github.com/unowned-ai/nstil/pkg/logger"
	"github.com/unowned-ai/nstil/pkg/theme"
)

const entryDateLayout = "Mon, 02 Jan 2006 15:04"

type model struct {
	backend journal.Backend
	themes  *theme.Store
	log     logger.Logger

	resolved theme.Resolved
	st       styles

	journals   []journal.Space
	entries    []journal.Entry
	nextCursor string
	hasMore    bool

	current *journal.Entry // Entry shown in the details column

	columnFocus int // 0 = journals, 1 = entries
	width       int
	height      int
	err         error
	status      string

	quitting bool

	journalCursor           int
	journalCreating         bool
	journalCreatingStep     int // 0 = name, 1 = description
	journalCreatingError    string
	journalNameInput        textinput.Model
	journalDescInput        textinput.Model
	journalDeleting         bool
	journalDeleteConfirmIdx int // 0 = "Yes" selected, 1 = "No"

	entryCursor           int
	entryDeleting         bool
	entryDeleteConfirmIdx int

	editing bool
	editor  editor

	// Animation state
	marqueeOffset int
	marqueeTimer  int
}

func initModel(backend journal.Backend, themes *theme.Store, log logger.Logger) model {
	jtname := textinput.New()
	jtname.Placeholder = "Journal name"
	jtname.Focus()
	jtname.CharLimit = journal.MaxSpaceNameLength

	jtdesc := textinput.New()
	jtdesc.Placeholder = "Description (optional)"
	jtdesc.CharLimit = journal.MaxSpaceDescriptionLength

	resolved := themes.Current()
	return model{
		backend:          backend,
		themes:           themes,
		log:              log,
		resolved:         resolved,
		st:               newStyles(resolved),
		journalNameInput: jtname,
		journalDescInput: jtdesc,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		listJournals(m.backend),
		tea.Tick(marqueeTickDuration, func(t time.Time) tea.Msg {
			return t
		}),
	)
}

func (m model) selectedJournalID() string {
	if m.journalCursor < 0 || m.journalCursor >= len(m.journals) {
		return ""
	}
	return m.journals[m.journalCursor].ID
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case error:
		m.log.Warn("tui request failed", logger.Error(msg))
		m.err = msg
		return m, nil

	case themeMsg:
		m.resolved = theme.Resolved(msg)
		m.st = newStyles(m.resolved)
		return m, nil

	case journalsMsg:
		m.journals = msg
		if m.journalCursor >= len(m.journals) {
			m.journalCursor = max(len(m.journals)-1, 0)
		}
		if m.editing {
			m.editor.setJournals(m.journals)
		}
		if id := m.selectedJournalID(); id != "" {
			return m, listEntries(m.backend, id)
		}
		return m, nil

	case journalCreatedMsg:
		m.journals = append(m.journals, journal.Space(msg))
		m.journalCursor = len(m.journals) - 1
		m.status = "Journal created"
		return m, listEntries(m.backend, msg.ID)

	case journalDeletedMsg:
		for i, s := range m.journals {
			if s.ID == msg.id {
				m.journals = append(m.journals[:i:i], m.journals[i+1:]...)
				break
			}
		}
		if m.journalCursor > 0 && m.journalCursor >= len(m.journals) {
			m.journalCursor--
		}
		m.current = nil
		m.entries = nil
		if id := m.selectedJournalID(); id != "" {
			return m, listEntries(m.backend, id)
		}
		return m, nil

	case entriesMsg:
		// Drop responses for a journal that is no longer selected
		if msg.journalID != m.selectedJournalID() {
			return m, nil
		}
		if msg.more {
			m.entries = append(m.entries, msg.page.Items...)
		} else {
			m.entries = msg.page.Items
			m.entryCursor = 0
			m.current = nil
		}
		m.nextCursor = msg.page.NextCursor
		m.hasMore = msg.page.HasMore
		return m, nil

	case entryMsg:
		e := journal.Entry(msg)
		for i := range m.entries {
			if m.entries[i].ID == e.ID {
				m.entries[i] = e
			}
		}
		if m.columnFocus == 1 || (m.current != nil && m.current.ID == e.ID) {
			m.current = &e
		}
		return m, nil

	case entryDeletedMsg:
		for i, e := range m.entries {
			if e.ID == msg.id {
				m.entries = append(m.entries[:i:i], m.entries[i+1:]...)
				break
			}
		}
		m.current = nil
		if len(m.entries) == 0 {
			m.columnFocus = 0
			m.entryCursor = 0
			return m, nil
		}
		if m.entryCursor >= len(m.entries) {
			m.entryCursor = len(m.entries) - 1
		}
		return m, getEntry(m.backend, m.entries[m.entryCursor].ID)

	case submitDoneMsg:
		if !m.editing {
			return m, nil
		}
		m.editor, _ = m.editor.update(msg)
		if !m.editor.done {
			return m, nil
		}
		m.editing = false
		m.status = "Entry saved"
		if id := m.selectedJournalID(); id != "" {
			return m, listEntries(m.backend, id)
		}
		return m, nil

	case tea.KeyMsg:
		m.err = nil
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Sequence(tea.ExitAltScreen, tea.Quit)
		}
		if m.editing {
			if msg.String() == "esc" && !m.editor.ctrl.IsSubmitting() {
				m.editing = false
				return m, nil
			}
			var cmd tea.Cmd
			m.editor, cmd = m.editor.update(msg)
			return m, cmd
		}
		if m.journalCreating {
			return m.updateJournalCreating(msg)
		}
		if m.journalDeleting {
			return m.updateJournalDeleting(msg)
		}
		if m.entryDeleting {
			return m.updateEntryDeleting(msg)
		}
		return m.updateBrowse(msg)

	case time.Time:
		m.marqueeTimer++
		if m.marqueeTimer >= 10 {
			m.marqueeTimer = 0
			m.marqueeOffset++
		}
		return m, tea.Tick(marqueeTickDuration, func(t time.Time) tea.Msg {
			return t
		})
	}

	return m, nil
}

func (m model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Sequence(tea.ExitAltScreen, tea.Quit)

	case "up", "k":
		if m.columnFocus == 0 && m.journalCursor > 0 {
			m.journalCursor--
			return m, listEntries(m.backend, m.selectedJournalID())
		}
		if m.columnFocus == 1 && m.entryCursor > 0 {
			m.entryCursor--
			return m, getEntry(m.backend, m.entries[m.entryCursor].ID)
		}

	case "down", "j":
		if m.columnFocus == 0 && m.journalCursor < len(m.journals)-1 {
			m.journalCursor++
			return m, listEntries(m.backend, m.selectedJournalID())
		}
		if m.columnFocus == 1 {
			if m.entryCursor < len(m.entries)-1 {
				m.entryCursor++
				return m, getEntry(m.backend, m.entries[m.entryCursor].ID)
			}
			if m.hasMore {
				return m, moreEntries(m.backend, m.selectedJournalID(), m.nextCursor)
			}
		}

	case "right", "l":
		if m.columnFocus == 0 && len(m.entries) > 0 {
			m.columnFocus = 1
			m.entryCursor = 0
			return m, getEntry(m.backend, m.entries[0].ID)
		}

	case "left", "h":
		if m.columnFocus > 0 {
			m.columnFocus--
		}

	case "n":
		if len(m.journals) == 0 {
			m.status = "Create a journal first (c)"
			return m, nil
		}
		m.editor = newEditor(m.backend.Entries(), nil, m.journals, m.log)
		m.editor.ctrl.SetJournalID(m.selectedJournalID())
		m.editing = true
		return m, textinput.Blink

	case "e", "enter":
		if m.columnFocus == 1 && m.current != nil {
			m.editor = newEditor(m.backend.Entries(), m.current, m.journals, m.log)
			m.editing = true
			return m, textinput.Blink
		}

	case "p":
		if m.columnFocus == 1 && m.current != nil {
			return m, togglePin(m.backend, *m.current)
		}

	case "c":
		m.journalCreatingStep = 0
		m.journalCreatingError = ""
		m.journalNameInput.Reset()
		m.journalDescInput.Reset()
		m.journalDescInput.Blur()
		m.journalNameInput.Focus()
		m.journalCreating = true

	case "d":
		if m.columnFocus == 0 && len(m.journals) > 0 {
			m.journalDeleteConfirmIdx = 1
			m.journalDeleting = true
		} else if m.columnFocus == 1 && len(m.entries) > 0 {
			m.entryDeleteConfirmIdx = 1
			m.entryDeleting = true
		}

	case "t":
		return m, cycleTheme(m.themes)

	case "r":
		return m, listJournals(m.backend)
	}
	return m, nil
}

func (m model) updateJournalCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if m.journalCreatingStep == 0 {
			if strings.TrimSpace(m.journalNameInput.Value()) == "" {
				m.journalCreatingError = "Journal name cannot be empty"
				return m, nil
			}
			m.journalCreatingError = ""
			m.journalCreatingStep = 1
			m.journalNameInput.Blur()
			m.journalDescInput.Focus()
			return m, nil
		}
		cmd := createJournal(m.backend, m.journalNameInput.Value(), m.journalDescInput.Value())
		m.journalCreating = false
		m.journalCreatingStep = 0
		return m, cmd

	case tea.KeyEsc:
		m.journalCreating = false
		m.journalCreatingStep = 0
		m.journalNameInput.Reset()
		m.journalDescInput.Reset()
		return m, nil
	}

	var cmd tea.Cmd
	if m.journalCreatingStep == 0 {
		m.journalNameInput, cmd = m.journalNameInput.Update(msg)
	} else {
		m.journalDescInput, cmd = m.journalDescInput.Update(msg)
	}
	return m, cmd
}

func (m model) updateJournalDeleting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.journalDeleteConfirmIdx = 0
	case "down", "j":
		m.journalDeleteConfirmIdx = 1
	case "enter":
		m.journalDeleting = false
		if m.journalDeleteConfirmIdx == 0 {
			return m, deleteJournal(m.backend, m.selectedJournalID())
		}
	case "esc":
		m.journalDeleting = false
	}
	return m, nil
}

func (m model) updateEntryDeleting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.entryDeleteConfirmIdx = 0
	case "down", "j":
		m.entryDeleteConfirmIdx = 1
	case "enter":
		m.entryDeleting = false
		if m.entryDeleteConfirmIdx == 0 && m.entryCursor < len(m.entries) {
			return m, deleteEntry(m.backend, m.entries[m.entryCursor].ID)
		}
	case "esc":
		m.entryDeleting = false
	}
	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return "Closing nstil. See you tomorrow.\n"
	}
	st := m.st

	titleBar := st.title.Width(m.width).Render("nstil - your journal")

	// Columns: journals ~25%, entries ~25%, details ~50%
	halfWidth := m.width / 2
	leftWidth := halfWidth / 2
	middleWidth := halfWidth - leftWidth
	rightWidth := m.width - (leftWidth + middleWidth)

	m.journalNameInput.Width = rightWidth - bordersAndPaddingWidth
	m.journalDescInput.Width = rightWidth - bordersAndPaddingWidth

	quarterHeight := (m.height - bordersAndPaddingWidth) / 4
	panelHeight := m.height - 3

	var journalsBuilder strings.Builder
	journalsBuilder.WriteString(st.subtitle.Width(leftWidth - bordersAndPaddingWidth).Render("  Journals"))
	journalsBuilder.WriteString("\n\n")
	if len(m.journals) == 0 {
		journalsBuilder.WriteString(st.muted.Render("No journals yet. Press 'c' to create one.") + "\n")
	}
	for i, s := range m.journals {
		availableWidth := leftWidth - 2 - bordersAndPaddingWidth - 1
		name := truncate(s.Name, availableWidth)
		itemStyle := st.inactive
		if i == m.journalCursor {
			itemStyle = st.selected
			name = marquee(s.Name, availableWidth, m.marqueeOffset)
		}
		journalsBuilder.WriteString(generateLinePointer(i == m.journalCursor && m.columnFocus == 0, 2) + itemStyle.Render(name) + "\n")
	}

	var infoBuilder strings.Builder
	infoBuilder.WriteString(fmt.Sprintf("Theme: %s\n", st.statusColorize(themeLabel(m.resolved), true)))
	infoBuilder.WriteString(fmt.Sprintf("Entries loaded: %s\n", st.statusColorize(fmt.Sprint(len(m.entries)), len(m.entries) > 0)))

	journalsPanel := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, true, false).
		BorderForeground(m.columnBorder(0)).
		Padding(0, 2).
		Width(leftWidth).Height(quarterHeight * 3).
		Render(journalsBuilder.String())
	infoPanel := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(st.border).
		Padding(1, 2).
		Width(leftWidth).Height(quarterHeight).
		Render(infoBuilder.String())
	leftPanel := lipgloss.JoinVertical(lipgloss.Left, journalsPanel, infoPanel)

	middlePanel := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(m.columnBorder(1)).
		Padding(0, 2).
		Width(middleWidth).Height(panelHeight).
		Render(m.entriesView(middleWidth))

	rightPanel := lipgloss.NewStyle().Padding(0, 2).
		Width(rightWidth).Height(panelHeight).
		Render(m.detailsView(rightWidth))

	columns := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, middlePanel, rightPanel)

	footerText := "\n↑/↓ navigate • n new entry • e edit • p pin • c new journal • d delete • t theme • q quit"
	switch {
	case m.err != nil:
		footerText = "\n" + st.errorText.Render("Error: "+m.err.Error())
	case m.status != "":
		footerText = "\n" + st.tag.Render(m.status)
	}
	footerBar := st.footer.Width(m.width).Render(footerText)

	return titleBar + "\n\n" + columns + footerBar
}

func (m model) columnBorder(col int) lipgloss.Color {
	if !m.editing && m.columnFocus == col {
		return m.st.focusBorder
	}
	return m.st.border
}

func (m model) entriesView(width int) string {
	st := m.st
	var b strings.Builder
	b.WriteString(st.subtitle.Width(width - bordersAndPaddingWidth).Render("  Entries"))
	b.WriteString("\n\n")

	if m.selectedJournalID() == "" {
		b.WriteString(st.muted.Render("  No journal selected.") + "\n")
		return b.String()
	}
	if len(m.entries) == 0 {
		b.WriteString(st.muted.Render("  No entries yet. Press 'n' to write one.") + "\n")
		return b.String()
	}
	for i, e := range m.entries {
		selected := i == m.entryCursor && m.columnFocus == 1
		label := entryLabel(e)
		if e.IsPinned {
			label = "* " + label
		}
		availableWidth := width - 2 - bordersAndPaddingWidth - 1
		itemStyle := st.inactive
		if selected {
			itemStyle = st.selected
		}
		b.WriteString(generateLinePointer(selected, 2) + itemStyle.Render(truncate(label, availableWidth)) + "\n")
	}
	if m.hasMore {
		b.WriteString(st.muted.Render("  ↓ more") + "\n")
	}
	return b.String()
}

func (m model) detailsView(width int) string {
	st := m.st
	switch {
	case m.editing:
		return m.editor.view(st, width)
	case m.journalCreating:
		var b strings.Builder
		b.WriteString(st.subtitle.Render("Create New Journal") + "\n\n")
		b.WriteString("Name: " + m.journalNameInput.View() + "\n")
		b.WriteString("Description: " + m.journalDescInput.View() + "\n\n")
		b.WriteString(st.footer.Render("(enter to submit, esc to cancel)"))
		if m.journalCreatingError != "" {
			b.WriteString("\n\n" + st.errorText.Render(m.journalCreatingError) + "\n")
		}
		return b.String()
	case m.journalDeleting:
		name := ""
		if id := m.selectedJournalID(); id != "" {
			name = m.journals[m.journalCursor].Name
		}
		return m.confirmView("Delete Journal", "Name: "+st.errorText.Render(name), m.journalDeleteConfirmIdx)
	case m.entryDeleting:
		label := ""
		if m.entryCursor < len(m.entries) {
			label = entryLabel(m.entries[m.entryCursor])
		}
		return m.confirmView("Delete Entry", "Entry: "+st.errorText.Render(label), m.entryDeleteConfirmIdx)
	case m.current == nil:
		return st.subtitle.Render("Entry") + "\n\n" + st.muted.Render("Select an entry to view details.")
	}

	e := m.current
	var b strings.Builder
	heading := e.Title
	if heading == "" {
		heading = "Untitled"
	}
	if e.IsPinned {
		heading = st.pin.Render("* ") + heading
	}
	b.WriteString(st.subtitle.Render(heading) + "\n\n")
	b.WriteString(st.label.Render("Date: ") + st.text.Render(e.CreatedAt.Local().Format(entryDateLayout)) + "\n")
	b.WriteString(st.label.Render("Type: ") + st.text.Render(e.EntryType.Label()) + "\n")
	mood := e.Mood().DisplayLabel()
	if mood == "" {
		mood = "-"
	}
	b.WriteString(st.label.Render("Mood: ") + st.text.Render(mood) + "\n")
	tags := "-"
	if len(e.Tags) > 0 {
		tags = "#" + strings.Join(e.Tags, " #")
	}
	b.WriteString(st.label.Render("Tags: ") + st.tag.Render(tags) + "\n\n")
	b.WriteString(st.text.Width(max(width-bordersAndPaddingWidth, 10)).Render(e.Body))
	return b.String()
}

func (m model) confirmView(heading, subject string, idx int) string {
	st := m.st
	yesOpt, noOpt := "Yes", "No"
	if idx == 0 {
		yesOpt = st.dangerSelected.Render(" >" + yesOpt)
		noOpt = st.inactive.Render("  " + noOpt)
	} else {
		yesOpt = st.inactive.Render("  " + yesOpt)
		noOpt = st.selected.Render(" >" + noOpt)
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s\n%s\n\n%s",
		st.subtitle.Render(heading), subject, yesOpt, noOpt,
		st.footer.Render("(enter to confirm, esc to cancel, up/down to switch)"))
}

// entryLabel is the title, or the first line of the body for untitled entries.
func entryLabel(e journal.Entry) string {
	if e.Title != "" {
		return e.Title
	}
	return firstLine(e.Body)
}

func themeLabel(r theme.Resolved) string {
	if r.Mode == theme.ModeAuto {
		return fmt.Sprintf("%s (auto)", r.Effective)
	}
	return string(r.Effective)
}

// ShowTUI runs the interactive browser until the user quits. Theme changes
// made anywhere through themes are applied live.
func ShowTUI(backend journal.Backend, themes *theme.Store, log logger.Logger) error {
	p := tea.NewProgram(initModel(backend, themes, log), tea.WithAltScreen())
	unsubscribe := themes.Subscribe(func(r theme.Resolved) {
		p.Send(themeMsg(r))
	})
	defer unsubscribe()

	_, err := p.Run()
	return err
}
