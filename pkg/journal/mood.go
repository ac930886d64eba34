package journal

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrInvalidMood         = errors.New("invalid mood")
	ErrSpecificNeedsMood   = errors.New("mood_specific requires mood_category")
	ErrInvalidEntryType    = errors.New("invalid entry type")
	ErrUnknownMoodSpecific = errors.New("unknown mood specific")
)

// MoodCategory is the top level of the two-level mood scheme.
type MoodCategory string

const (
	MoodHappy   MoodCategory = "happy"
	MoodCalm    MoodCategory = "calm"
	MoodSad     MoodCategory = "sad"
	MoodAnxious MoodCategory = "anxious"
	MoodAngry   MoodCategory = "angry"
)

// MoodSpecific refines a MoodCategory. Each specific belongs to exactly one category.
type MoodSpecific string

const (
	MoodJoyful   MoodSpecific = "joyful"
	MoodGrateful MoodSpecific = "grateful"
	MoodExcited  MoodSpecific = "excited"
	MoodProud    MoodSpecific = "proud"

	MoodPeaceful MoodSpecific = "peaceful"
	MoodContent  MoodSpecific = "content"
	MoodRelaxed  MoodSpecific = "relaxed"
	MoodHopeful  MoodSpecific = "hopeful"

	MoodDown         MoodSpecific = "down"
	MoodLonely       MoodSpecific = "lonely"
	MoodDisappointed MoodSpecific = "disappointed"
	MoodNostalgic    MoodSpecific = "nostalgic"

	MoodStressed    MoodSpecific = "stressed"
	MoodWorried     MoodSpecific = "worried"
	MoodOverwhelmed MoodSpecific = "overwhelmed"
	MoodRestless    MoodSpecific = "restless"

	MoodFrustrated MoodSpecific = "frustrated"
	MoodIrritated  MoodSpecific = "irritated"
	MoodHurt       MoodSpecific = "hurt"
	MoodResentful  MoodSpecific = "resentful"
)

// MoodCategories lists the categories in display order.
var MoodCategories = []MoodCategory{MoodHappy, MoodCalm, MoodSad, MoodAnxious, MoodAngry}

var moodCategorySpecifics = map[MoodCategory][]MoodSpecific{
	MoodHappy:   {MoodJoyful, MoodGrateful, MoodExcited, MoodProud},
	MoodCalm:    {MoodPeaceful, MoodContent, MoodRelaxed, MoodHopeful},
	MoodSad:     {MoodDown, MoodLonely, MoodDisappointed, MoodNostalgic},
	MoodAnxious: {MoodStressed, MoodWorried, MoodOverwhelmed, MoodRestless},
	MoodAngry:   {MoodFrustrated, MoodIrritated, MoodHurt, MoodResentful},
}

var categoryLabels = map[MoodCategory]string{
	MoodHappy:   "Happy",
	MoodCalm:    "Calm",
	MoodSad:     "Sad",
	MoodAnxious: "Anxious",
	MoodAngry:   "Angry",
}

var specificLabels = map[MoodSpecific]string{
	MoodJoyful:       "Joyful",
	MoodGrateful:     "Grateful",
	MoodExcited:      "Excited",
	MoodProud:        "Proud",
	MoodPeaceful:     "Peaceful",
	MoodContent:      "Content",
	MoodRelaxed:      "Relaxed",
	MoodHopeful:      "Hopeful",
	MoodDown:         "Down",
	MoodLonely:       "Lonely",
	MoodDisappointed: "Disappointed",
	MoodNostalgic:    "Nostalgic",
	MoodStressed:     "Stressed",
	MoodWorried:      "Worried",
	MoodOverwhelmed:  "Overwhelmed",
	MoodRestless:     "Restless",
	MoodFrustrated:   "Frustrated",
	MoodIrritated:    "Irritated",
	MoodHurt:         "Hurt",
	MoodResentful:    "Resentful",
}

// Specifics returns the specifics that belong to c, in display order.
// It returns nil for an unknown category.
func (c MoodCategory) Specifics() []MoodSpecific {
	return slices.Clone(moodCategorySpecifics[c])
}

// Valid reports whether c is one of the known categories.
func (c MoodCategory) Valid() bool {
	_, ok := moodCategorySpecifics[c]
	return ok
}

func (c MoodCategory) Label() string {
	return categoryLabels[c]
}

// Owns reports whether s is a specific of c.
func (c MoodCategory) Owns(s MoodSpecific) bool {
	return slices.Contains(moodCategorySpecifics[c], s)
}

func (s MoodSpecific) Label() string {
	return specificLabels[s]
}

// Category returns the category that owns s, or "" if s is unknown.
func (s MoodSpecific) Category() MoodCategory {
	for c, specifics := range moodCategorySpecifics {
		if slices.Contains(specifics, s) {
			return c
		}
	}
	return ""
}

// Mood is the categorical mood of an entry. The zero value means no mood.
type Mood struct {
	Category MoodCategory
	Specific MoodSpecific
}

func (m Mood) IsZero() bool {
	return m.Category == "" && m.Specific == ""
}

// DisplayLabel returns the most specific label available, or "" when unset.
func (m Mood) DisplayLabel() string {
	if m.Category == "" {
		return ""
	}
	if m.Specific != "" {
		if l := m.Specific.Label(); l != "" {
			return l
		}
	}
	return m.Category.Label()
}

// Validate checks that the pair is well formed.
func (m Mood) Validate() error {
	return ValidateMoodPair(m.Category, m.Specific)
}

// ValidateMoodPair enforces that a specific is only set together with the
// category that owns it.
func ValidateMoodPair(category MoodCategory, specific MoodSpecific) error {
	if category != "" && !category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidMood, category)
	}
	if specific == "" {
		return nil
	}
	if category == "" {
		return ErrSpecificNeedsMood
	}
	if !category.Owns(specific) {
		return fmt.Errorf("%w: %q is not valid for category %q", ErrInvalidMood, specific, category)
	}
	return nil
}

// ParseMoodCategory converts user input into a MoodCategory.
func ParseMoodCategory(s string) (MoodCategory, error) {
	c := MoodCategory(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown category %q", ErrInvalidMood, s)
	}
	return c, nil
}

// ParseMoodSpecific converts user input into a MoodSpecific.
func ParseMoodSpecific(s string) (MoodSpecific, error) {
	sp := MoodSpecific(s)
	if sp.Category() == "" {
		return "", fmt.Errorf("%w: %q", ErrUnknownMoodSpecific, s)
	}
	return sp, nil
}

// ParseEntryType converts user input into an EntryType. Empty input yields
// the default type.
func ParseEntryType(s string) (EntryType, error) {
	if s == "" {
		return EntryTypeJournal, nil
	}
	t := EntryType(s)
	if !slices.Contains(EntryTypes, t) {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntryType, s)
	}
	return t, nil
}

// Label returns a human readable name for the entry type.
func (t EntryType) Label() string {
	switch t {
	case EntryTypeJournal:
		return "Journal"
	case EntryTypeReflection:
		return "Reflection"
	case EntryTypeGratitude:
		return "Gratitude"
	case EntryTypeFreewrite:
		return "Freewrite"
	default:
		return string(t)
	}
}
