package form

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unowned-ai/nstil/pkg/journal"
)

var fixedNow = time.Date(2026, 5, 4, 8, 15, 0, 0, time.UTC)

type updateCall struct {
	id    string
	patch journal.EntryUpdate
}

// fakeSaver records calls. When gate is set, each call blocks until the
// gate is closed.
type fakeSaver struct {
	mu      sync.Mutex
	creates []journal.EntryCreate
	updates []updateCall
	err     error
	gate    chan struct{}
	entered chan struct{}
}

func (f *fakeSaver) Create(_ context.Context, in journal.EntryCreate) (journal.Entry, error) {
	f.mu.Lock()
	f.creates = append(f.creates, in)
	f.mu.Unlock()
	f.wait()
	if f.err != nil {
		return journal.Entry{}, f.err
	}
	return journal.Entry{ID: "new-id", JournalID: in.JournalID, Body: in.Body}, nil
}

func (f *fakeSaver) Update(_ context.Context, id string, patch journal.EntryUpdate) (journal.Entry, error) {
	f.mu.Lock()
	f.updates = append(f.updates, updateCall{id: id, patch: patch})
	f.mu.Unlock()
	f.wait()
	if f.err != nil {
		return journal.Entry{}, f.err
	}
	return journal.Entry{ID: id}, nil
}

func (f *fakeSaver) wait() {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
}

func (f *fakeSaver) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.creates) + len(f.updates)
}

type recorder struct {
	back   int
	alerts []string
}

func (r *recorder) GoBack() { r.back++ }

func (r *recorder) Alert(title, message string) {
	r.alerts = append(r.alerts, title+": "+message)
}

func newController(saver Saver, rec *recorder, entry *journal.Entry, spaces []journal.Space) *Controller {
	return New(saver, rec, rec, entry, spaces, WithClock(func() time.Time { return fixedNow }))
}

func existingEntry() *journal.Entry {
	return &journal.Entry{
		ID:           "e1",
		JournalID:    "j2",
		Title:        "Old title",
		Body:         "  some body text \n",
		MoodCategory: journal.MoodCalm,
		MoodSpecific: journal.MoodHopeful,
		Tags:         []string{"walk", "sun"},
		EntryType:    journal.EntryTypeReflection,
		CreatedAt:    time.Date(2026, 4, 30, 21, 0, 0, 0, time.UTC),
	}
}

func TestNewDraftDefaults(t *testing.T) {
	c := newController(&fakeSaver{}, &recorder{}, nil, []journal.Space{{ID: "j1"}, {ID: "j2"}})

	d := c.Draft()
	assert.Equal(t, "j1", d.JournalID)
	assert.Equal(t, journal.EntryTypeJournal, d.EntryType)
	assert.Equal(t, fixedNow, d.EntryDate)
	assert.Empty(t, d.Tags)
	assert.True(t, d.Mood.IsZero())
	assert.False(t, c.IsEditing())
	assert.True(t, c.CanSubmit())
}

func TestNewDraftWithoutSpaces(t *testing.T) {
	c := newController(&fakeSaver{}, &recorder{}, nil, nil)
	assert.Equal(t, "", c.Draft().JournalID)
	assert.False(t, c.CanSubmit())

	c.SetJournals(nil)
	assert.Equal(t, "", c.Draft().JournalID)

	c.SetJournals([]journal.Space{{ID: "j7"}, {ID: "j8"}})
	assert.Equal(t, "j7", c.Draft().JournalID)
	assert.True(t, c.CanSubmit())

	c.SetJournals([]journal.Space{{ID: "j9"}})
	assert.Equal(t, "j7", c.Draft().JournalID, "a selected journal is never replaced")
}

func TestExistingDraftIsDeepCopy(t *testing.T) {
	e := existingEntry()
	c := newController(&fakeSaver{}, &recorder{}, e, []journal.Space{{ID: "j1"}})

	d := c.Draft()
	assert.Equal(t, "j2", d.JournalID)
	assert.Equal(t, "Old title", d.Title)
	assert.Equal(t, journal.Mood{Category: journal.MoodCalm, Specific: journal.MoodHopeful}, d.Mood)
	assert.Equal(t, e.CreatedAt, d.EntryDate)
	assert.Equal(t, "e1", c.EntryID())

	c.AddTag("rain")
	c.RemoveTag("walk")
	assert.Equal(t, []string{"walk", "sun"}, e.Tags)

	d.Tags[0] = "mutated"
	assert.Equal(t, []string{"sun", "rain"}, c.Draft().Tags)
}

func TestEmptyBodyBlocksSubmit(t *testing.T) {
	for _, body := range []string{"", "   ", "\n\t "} {
		t.Run(fmt.Sprintf("%q", body), func(t *testing.T) {
			saver := &fakeSaver{}
			rec := &recorder{}
			c := newController(saver, rec, nil, []journal.Space{{ID: "j1"}})
			c.SetBody(body)

			err := c.Submit(context.Background())
			assert.ErrorIs(t, err, ErrBodyRequired)
			assert.Equal(t, 0, saver.calls())
			assert.Equal(t, BodyRequiredMessage, c.BodyError())
			assert.Zero(t, rec.back)
			assert.Empty(t, rec.alerts)
		})
	}
}

func TestSetBodyClearsError(t *testing.T) {
	c := newController(&fakeSaver{}, &recorder{}, nil, []journal.Space{{ID: "j1"}})
	require.ErrorIs(t, c.Submit(context.Background()), ErrBodyRequired)

	c.SetBody("  ")
	assert.NotEmpty(t, c.BodyError(), "blank text keeps the error")

	c.SetBody("x")
	assert.Empty(t, c.BodyError())
}

func TestAddTagRespectsCapAndUniqueness(t *testing.T) {
	c := newController(&fakeSaver{}, &recorder{}, nil, nil)

	c.AddTag("a")
	c.AddTag("a")
	c.AddTag("A")
	assert.Equal(t, []string{"a", "A"}, c.Draft().Tags, "duplicates are case-sensitive")

	for i := range 20 {
		c.AddTag(fmt.Sprintf("t%d", i))
	}
	tags := c.Draft().Tags
	require.Len(t, tags, MaxTags)
	assert.True(t, c.AtTagCap())

	c.AddTag("overflow")
	assert.Equal(t, tags, c.Draft().Tags, "calls past the cap leave the order alone")

	seen := map[string]bool{}
	for _, tag := range tags {
		assert.False(t, seen[tag], "duplicate tag %q", tag)
		seen[tag] = true
	}
}

func TestRemoveThenAddRestoresTag(t *testing.T) {
	c := newController(&fakeSaver{}, &recorder{}, nil, nil)
	c.AddTag("gym")
	c.AddTag("friends")

	c.RemoveTag("gym")
	assert.Equal(t, []string{"friends"}, c.Draft().Tags)

	c.AddTag("gym")
	assert.Contains(t, c.Draft().Tags, "gym")

	c.RemoveTag("absent")
	assert.Len(t, c.Draft().Tags, 2)
}

func TestAddTagsTrimsAndRejectsOverflow(t *testing.T) {
	c := newController(&fakeSaver{}, &recorder{}, nil, nil)

	require.NoError(t, c.AddTags([]string{" a ", "", "  ", "b", "a"}))
	assert.Equal(t, []string{"a", "b"}, c.Draft().Tags)

	many := make([]string, 0, MaxTags+1)
	for i := range MaxTags + 1 {
		many = append(many, fmt.Sprintf("t%d", i))
	}
	c = newController(&fakeSaver{}, &recorder{}, nil, nil)
	err := c.AddTags(many)
	require.ErrorIs(t, err, ErrTooManyTags)
	assert.Equal(t, many[:MaxTags], c.Draft().Tags)

	assert.NoError(t, c.AddTags([]string{"t0", ""}), "tags already present fit at the cap")
}

func TestMoodTransitions(t *testing.T) {
	c := newController(&fakeSaver{}, &recorder{}, nil, nil)

	c.SetMoodSpecific(journal.MoodJoyful)
	assert.True(t, c.Draft().Mood.IsZero(), "specific needs a category")

	c.SetMoodCategory(journal.MoodHappy)
	c.SetMoodSpecific(journal.MoodJoyful)
	assert.Equal(t, journal.MoodJoyful, c.Draft().Mood.Specific)

	c.SetMoodSpecific(journal.MoodLonely)
	assert.Equal(t, journal.MoodJoyful, c.Draft().Mood.Specific, "foreign specific is ignored")

	c.SetMoodCategory(journal.MoodHappy)
	assert.Equal(t, journal.MoodJoyful, c.Draft().Mood.Specific, "same category keeps the specific")

	c.SetMoodCategory(journal.MoodSad)
	assert.Equal(t, journal.Mood{Category: journal.MoodSad}, c.Draft().Mood)

	c.ClearMood()
	assert.True(t, c.Draft().Mood.IsZero())
}

func TestCreateExample(t *testing.T) {
	saver := &fakeSaver{}
	rec := &recorder{}
	c := newController(saver, rec, nil, []journal.Space{{ID: "j1"}})

	c.SetBody("Had a good day")
	c.AddTag("gym")
	c.AddTag("friends")
	c.SetEntryType(journal.EntryTypeJournal)

	require.NoError(t, c.Submit(context.Background()))

	require.Len(t, saver.creates, 1)
	assert.Empty(t, saver.updates)
	got := saver.creates[0]
	assert.Equal(t, "j1", got.JournalID)
	assert.Equal(t, "Had a good day", got.Body)
	assert.Equal(t, "", got.Title)
	assert.Equal(t, []string{"gym", "friends"}, got.Tags)
	assert.Equal(t, journal.EntryTypeJournal, got.EntryType)
	require.NotNil(t, got.CreatedAt)
	assert.Equal(t, fixedNow, *got.CreatedAt)

	assert.Equal(t, 1, rec.back)
	assert.Empty(t, rec.alerts)
	assert.False(t, c.IsSubmitting())
}

func TestCreateOmitsEmptyOptionalFields(t *testing.T) {
	saver := &fakeSaver{}
	c := newController(saver, &recorder{}, nil, []journal.Space{{ID: "j1"}})
	c.SetBody(" x ")
	c.SetTitle("   ")

	require.NoError(t, c.Submit(context.Background()))
	got := saver.creates[0]
	assert.Nil(t, got.Tags)
	assert.Equal(t, "", got.Title)
	assert.Equal(t, journal.MoodCategory(""), got.MoodCategory)
	assert.Equal(t, "x", got.Body)
}

func TestUpdateUnchangedEntry(t *testing.T) {
	saver := &fakeSaver{}
	rec := &recorder{}
	e := existingEntry()
	c := newController(saver, rec, e, nil)

	require.NoError(t, c.Submit(context.Background()))

	assert.Empty(t, saver.creates)
	require.Len(t, saver.updates, 1)
	call := saver.updates[0]
	assert.Equal(t, "e1", call.id)
	require.NotNil(t, call.patch.Body)
	assert.Equal(t, "some body text", *call.patch.Body)
	assert.Equal(t, "j2", *call.patch.JournalID)
	assert.Equal(t, "Old title", *call.patch.Title)
	assert.Equal(t, journal.MoodCalm, *call.patch.MoodCategory)
	assert.Equal(t, journal.MoodHopeful, *call.patch.MoodSpecific)
	assert.Equal(t, []string{"walk", "sun"}, call.patch.Tags)
	assert.Equal(t, journal.EntryTypeReflection, *call.patch.EntryType)
	assert.Equal(t, e.CreatedAt, *call.patch.CreatedAt)
	assert.Equal(t, 1, rec.back)
}

func TestUpdateSendsClearedFields(t *testing.T) {
	saver := &fakeSaver{}
	c := newController(saver, &recorder{}, existingEntry(), nil)
	c.RemoveTag("walk")
	c.RemoveTag("sun")
	c.ClearMood()
	c.SetTitle("")

	require.NoError(t, c.Submit(context.Background()))
	patch := saver.updates[0].patch
	require.NotNil(t, patch.Tags, "an emptied tag list is still sent")
	assert.Empty(t, patch.Tags)
	require.NotNil(t, patch.MoodCategory)
	assert.Equal(t, journal.MoodCategory(""), *patch.MoodCategory)
	assert.Nil(t, patch.MoodSpecific)
	assert.Nil(t, patch.Title)
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	saver := &fakeSaver{err: errors.New("connection refused")}
	rec := &recorder{}
	c := newController(saver, rec, nil, []journal.Space{{ID: "j1"}})
	c.SetBody("keep me")
	c.AddTag("t")
	before := c.Draft()

	err := c.Submit(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, saver.err)

	assert.Equal(t, []string{AlertTitle + ": " + AlertMessage}, rec.alerts)
	assert.Zero(t, rec.back)
	assert.Equal(t, before, c.Draft())
	assert.False(t, c.IsSubmitting())
	assert.True(t, c.CanSubmit())

	saver.err = nil
	require.NoError(t, c.Submit(context.Background()))
	assert.Equal(t, 2, saver.calls(), "a retry is a fresh call")
}

func TestSecondSubmitWhileInFlight(t *testing.T) {
	saver := &fakeSaver{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	rec := &recorder{}
	c := newController(saver, rec, nil, []journal.Space{{ID: "j1"}})
	c.SetBody("once")

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background()) }()
	<-saver.entered

	assert.True(t, c.IsSubmitting())
	assert.False(t, c.CanSubmit())
	assert.ErrorIs(t, c.Submit(context.Background()), ErrSubmitInProgress)
	assert.Equal(t, 1, saver.calls())

	close(saver.gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, saver.calls())
	assert.Equal(t, 1, rec.back)
}

func TestNilCollaborators(t *testing.T) {
	saver := &fakeSaver{}
	c := New(saver, nil, nil, nil, []journal.Space{{ID: "j1"}})
	c.SetBody("fine")
	assert.NoError(t, c.Submit(context.Background()))

	saver.err = errors.New("boom")
	assert.Error(t, c.Submit(context.Background()))
}

func TestFuncAdapters(t *testing.T) {
	var backs int
	var title string
	c := New(&fakeSaver{err: errors.New("x")}, NavigatorFunc(func() { backs++ }),
		AlerterFunc(func(got, _ string) { title = got }), nil, []journal.Space{{ID: "j1"}})
	c.SetBody("b")
	_ = c.Submit(context.Background())
	assert.Equal(t, AlertTitle, title)
	assert.Zero(t, backs)
}
