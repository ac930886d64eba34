// Package form holds the state machine behind the entry editor. It owns a
// draft of a journal entry and turns it into exactly one create or update
// call when submitted.
package form

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/unowned-ai/nstil/pkg/journal"
	"github.com/unowned-ai/nstil/pkg/logger"
)

// MaxTags caps the number of tags on a draft. UI tag inputs disable
// themselves at the same value.
const MaxTags = journal.MaxTagCount

const (
	BodyRequiredMessage = "Body is required"

	AlertTitle   = "Unable to save"
	AlertMessage = "Please check your connection and try again."
)

var (
	ErrBodyRequired     = errors.New("body is required")
	ErrSubmitInProgress = errors.New("submission already in progress")
	ErrTooManyTags      = journal.ErrTooManyTags
)

// Saver is the part of the entries API the controller talks to.
type Saver interface {
	journal.EntryCreator
	journal.EntryUpdater
}

// Navigator leaves the editor after a successful save.
type Navigator interface {
	GoBack()
}

// Alerter reports a failed save to the user.
type Alerter interface {
	Alert(title, message string)
}

type NavigatorFunc func()

func (f NavigatorFunc) GoBack() { f() }

type AlerterFunc func(title, message string)

func (f AlerterFunc) Alert(title, message string) { f(title, message) }

// Draft is a snapshot of the editable fields.
type Draft struct {
	Title     string
	Body      string
	Mood      journal.Mood
	Tags      []string
	EntryType journal.EntryType
	EntryDate time.Time
	JournalID string
}

// Controller is safe for use from multiple goroutines, but is meant to have
// a single owner (one editor screen).
type Controller struct {
	saver Saver
	nav   Navigator
	alert Alerter
	log   logger.Logger
	now   func() time.Time

	mu         sync.Mutex
	entry      *journal.Entry
	draft      Draft
	bodyError  string
	submitting bool
}

type Option func(*Controller)

func WithLogger(l logger.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithClock sets the source of the default entry date for new drafts.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New builds a controller. With a nil entry the draft starts empty and
// targets the first of spaces; otherwise it is a deep copy of entry.
func New(saver Saver, nav Navigator, alert Alerter, entry *journal.Entry, spaces []journal.Space, opts ...Option) *Controller {
	c := &Controller{
		saver: saver,
		nav:   nav,
		alert: alert,
		log:   logger.Nop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if entry == nil {
		c.draft = Draft{
			Tags:      []string{},
			EntryType: journal.EntryTypeJournal,
			EntryDate: c.now(),
			JournalID: journal.DefaultSpaceID(spaces),
		}
		return c
	}

	e := entry.Clone()
	c.entry = &e
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	c.draft = Draft{
		Title:     e.Title,
		Body:      e.Body,
		Mood:      e.Mood(),
		Tags:      slices.Clone(tags),
		EntryType: e.EntryType,
		EntryDate: e.CreatedAt,
		JournalID: e.JournalID,
	}
	if c.draft.EntryType == "" {
		c.draft.EntryType = journal.EntryTypeJournal
	}
	return c
}

// SetJournals adopts the first space when no journal is selected yet. A
// selected journal is never replaced.
func (c *Controller) SetJournals(spaces []journal.Space) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft.JournalID == "" {
		c.draft.JournalID = journal.DefaultSpaceID(spaces)
	}
}

// Draft returns a copy of the current draft.
func (c *Controller) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.draft
	d.Tags = slices.Clone(c.draft.Tags)
	return d
}

// EntryID is the id of the entry being edited, or "" for a new one.
func (c *Controller) EntryID() string {
	if c.entry == nil {
		return ""
	}
	return c.entry.ID
}

func (c *Controller) IsEditing() bool { return c.entry != nil }

func (c *Controller) SetTitle(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Title = title
}

// SetBody replaces the body and clears a pending body error once the text is
// no longer blank.
func (c *Controller) SetBody(body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Body = body
	if c.bodyError != "" && strings.TrimSpace(body) != "" {
		c.bodyError = ""
	}
}

// SetMoodCategory selects a category. Picking a different category drops the
// specific.
func (c *Controller) SetMoodCategory(category journal.MoodCategory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft.Mood.Category != category {
		c.draft.Mood.Specific = ""
	}
	c.draft.Mood.Category = category
}

// SetMoodSpecific is ignored unless the specific belongs to the selected
// category.
func (c *Controller) SetMoodSpecific(specific journal.MoodSpecific) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft.Mood.Category == "" || !c.draft.Mood.Category.Owns(specific) {
		return
	}
	c.draft.Mood.Specific = specific
}

func (c *Controller) ClearMood() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Mood = journal.Mood{}
}

func (c *Controller) SetEntryType(t journal.EntryType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.EntryType = t
}

func (c *Controller) SetEntryDate(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.EntryDate = t
}

func (c *Controller) SetJournalID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.JournalID = id
}

// AddTag appends tag. It does nothing at MaxTags or when the exact tag is
// already present.
func (c *Controller) AddTag(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.draft.Tags) >= MaxTags || slices.Contains(c.draft.Tags, tag) {
		return
	}
	c.draft.Tags = append(c.draft.Tags, tag)
}

func (c *Controller) RemoveTag(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := slices.Index(c.draft.Tags, tag); i >= 0 {
		c.draft.Tags = slices.Delete(c.draft.Tags, i, i+1)
	}
}

// AddTags trims each tag, skips blanks and adds the rest in order. Tags
// already on the draft do not count against the cap. It returns
// ErrTooManyTags, leaving the tags added so far, once the cap is reached
// with tags still left.
func (c *Controller) AddTags(tags []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || slices.Contains(c.draft.Tags, tag) {
			continue
		}
		if len(c.draft.Tags) >= MaxTags {
			return ErrTooManyTags
		}
		c.draft.Tags = append(c.draft.Tags, tag)
	}
	return nil
}

// AtTagCap reports whether another tag would be rejected.
func (c *Controller) AtTagCap() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.draft.Tags) >= MaxTags
}

// BodyError returns the field-level validation message, or "".
func (c *Controller) BodyError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bodyError
}

func (c *Controller) IsSubmitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// CanSubmit reports whether Submit would reach the network, ignoring body
// validation.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.submitting && c.draft.JournalID != ""
}

// Submit validates the draft and saves it with a single Create or Update
// call. On success the navigator is told to go back. On failure the alerter
// is notified and the draft is left as it was. A call made while another is
// in flight returns ErrSubmitInProgress without touching the network.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmitInProgress
	}
	body := strings.TrimSpace(c.draft.Body)
	if body == "" {
		c.bodyError = BodyRequiredMessage
		c.mu.Unlock()
		return ErrBodyRequired
	}
	c.submitting = true
	d := c.draft
	d.Body = body
	d.Title = strings.TrimSpace(d.Title)
	d.Tags = slices.Clone(c.draft.Tags)
	entry := c.entry
	c.mu.Unlock()

	var (
		saved journal.Entry
		err   error
	)
	if entry != nil {
		c.log.Debug("updating entry", logger.String("id", entry.ID))
		saved, err = c.saver.Update(ctx, entry.ID, updatePayload(d, entry))
	} else {
		c.log.Debug("creating entry", logger.String("journal_id", d.JournalID))
		saved, err = c.saver.Create(ctx, createPayload(d))
	}

	c.mu.Lock()
	c.submitting = false
	c.mu.Unlock()

	if err != nil {
		c.log.Warn("failed to save entry", logger.Error(err))
		if c.alert != nil {
			c.alert.Alert(AlertTitle, AlertMessage)
		}
		return fmt.Errorf("failed to save entry: %w", err)
	}

	c.log.Info("entry saved", logger.String("id", saved.ID))
	if c.nav != nil {
		c.nav.GoBack()
	}
	return nil
}

func createPayload(d Draft) journal.EntryCreate {
	in := journal.EntryCreate{
		JournalID:    d.JournalID,
		Body:         d.Body,
		Title:        d.Title,
		MoodCategory: d.Mood.Category,
		MoodSpecific: d.Mood.Specific,
		EntryType:    d.EntryType,
		CreatedAt:    isoTime(d.EntryDate),
	}
	if len(d.Tags) > 0 {
		in.Tags = d.Tags
	}
	return in
}

// updatePayload always sends tags, so removing the last tag clears them on
// the server. A mood cleared in the editor is sent as an empty category.
func updatePayload(d Draft, orig *journal.Entry) journal.EntryUpdate {
	p := journal.EntryUpdate{
		JournalID: &d.JournalID,
		Body:      &d.Body,
		Tags:      d.Tags,
		EntryType: &d.EntryType,
		CreatedAt: isoTime(d.EntryDate),
	}
	if d.Title != "" {
		p.Title = &d.Title
	}
	switch {
	case d.Mood.Category != "":
		p.MoodCategory = &d.Mood.Category
		if d.Mood.Specific != "" {
			p.MoodSpecific = &d.Mood.Specific
		}
	case orig.MoodCategory != "":
		var none journal.MoodCategory
		p.MoodCategory = &none
	}
	return p
}

// isoTime drops the monotonic reading and normalizes to UTC so the value
// encodes as an ISO-8601 instant.
func isoTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.Round(0).UTC()
	return &u
}
