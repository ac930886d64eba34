package journal

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxTitleLength    = 200
	MaxBodyLength     = 50000
	MaxTagLength      = 50
	MaxTagCount       = 10
	MaxLocationLength = 200

	// FutureTolerance is how far past now an entry date may be set, to absorb
	// clock skew between client and server.
	FutureTolerance = time.Minute
)

var (
	ErrBodyEmpty       = errors.New("body cannot be empty")
	ErrTitleTooLong    = fmt.Errorf("title exceeds %d characters", MaxTitleLength)
	ErrBodyTooLong     = fmt.Errorf("body exceeds %d characters", MaxBodyLength)
	ErrLocationTooLong = fmt.Errorf("location exceeds %d characters", MaxLocationLength)
	ErrTooManyTags     = fmt.Errorf("at most %d tags allowed", MaxTagCount)
	ErrTagTooLong      = fmt.Errorf("tag exceeds %d characters", MaxTagLength)
	ErrFutureDate      = errors.New("created_at cannot be in the future")
	ErrEmptyUpdate     = errors.New("at least one field must be provided")

	ErrSpaceNameRequired  = errors.New("name must not be blank")
	ErrSpaceNameTooLong   = fmt.Errorf("name exceeds %d characters", MaxSpaceNameLength)
	ErrDescriptionTooLong = fmt.Errorf("description exceeds %d characters", MaxSpaceDescriptionLength)
	ErrInvalidColor       = errors.New("color must be a hex color like #FF6B6B")
)

const (
	MaxSpaceNameLength        = 100
	MaxSpaceDescriptionLength = 500
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// CleanTags trims every tag, drops blank ones and enforces count and length
// limits. Order is preserved and duplicates are removed.
func CleanTags(tags []string) ([]string, error) {
	if tags == nil {
		return nil, nil
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if utf8.RuneCountInString(tag) > MaxTagLength {
			return nil, fmt.Errorf("%w: %q", ErrTagTooLong, tag)
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) > MaxTagCount {
		return nil, ErrTooManyTags
	}
	return out, nil
}

// CheckNotFuture rejects timestamps more than FutureTolerance past now.
func CheckNotFuture(t, now time.Time) error {
	if t.After(now.Add(FutureTolerance)) {
		return ErrFutureDate
	}
	return nil
}

// ValidateCreate applies the server-side rules to a create payload and
// returns the normalized copy.
func ValidateCreate(in EntryCreate, now time.Time) (EntryCreate, error) {
	out := in
	out.Body = strings.TrimSpace(in.Body)
	out.Title = strings.TrimSpace(in.Title)
	if out.Body == "" {
		return EntryCreate{}, ErrBodyEmpty
	}
	if err := checkText(out.Title, out.Body, out.Location); err != nil {
		return EntryCreate{}, err
	}
	if err := ValidateMoodPair(out.MoodCategory, out.MoodSpecific); err != nil {
		return EntryCreate{}, err
	}
	if out.EntryType == "" {
		out.EntryType = EntryTypeJournal
	} else if _, err := ParseEntryType(string(out.EntryType)); err != nil {
		return EntryCreate{}, err
	}
	tags, err := CleanTags(in.Tags)
	if err != nil {
		return EntryCreate{}, err
	}
	out.Tags = tags
	if out.CreatedAt != nil {
		if err := CheckNotFuture(*out.CreatedAt, now); err != nil {
			return EntryCreate{}, err
		}
	}
	return out, nil
}

// ValidateUpdate applies the server-side rules to the fields present in a
// patch. A specific may only be sent together with its category.
func ValidateUpdate(in EntryUpdate, now time.Time) (EntryUpdate, error) {
	if in.IsEmpty() {
		return EntryUpdate{}, ErrEmptyUpdate
	}
	out := in
	if in.MoodSpecific != nil {
		if in.MoodCategory == nil {
			return EntryUpdate{}, ErrSpecificNeedsMood
		}
		if err := ValidateMoodPair(*in.MoodCategory, *in.MoodSpecific); err != nil {
			return EntryUpdate{}, err
		}
	} else if in.MoodCategory != nil {
		if err := ValidateMoodPair(*in.MoodCategory, ""); err != nil {
			return EntryUpdate{}, err
		}
	}
	if in.Body != nil {
		b := strings.TrimSpace(*in.Body)
		if b == "" {
			return EntryUpdate{}, ErrBodyEmpty
		}
		if utf8.RuneCountInString(b) > MaxBodyLength {
			return EntryUpdate{}, ErrBodyTooLong
		}
		out.Body = &b
	}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if utf8.RuneCountInString(t) > MaxTitleLength {
			return EntryUpdate{}, ErrTitleTooLong
		}
		out.Title = &t
	}
	if in.Location != nil && utf8.RuneCountInString(*in.Location) > MaxLocationLength {
		return EntryUpdate{}, ErrLocationTooLong
	}
	if in.EntryType != nil {
		if _, err := ParseEntryType(string(*in.EntryType)); err != nil {
			return EntryUpdate{}, err
		}
	}
	if in.Tags != nil {
		tags, err := CleanTags(in.Tags)
		if err != nil {
			return EntryUpdate{}, err
		}
		out.Tags = tags
	}
	if in.CreatedAt != nil {
		if err := CheckNotFuture(*in.CreatedAt, now); err != nil {
			return EntryUpdate{}, err
		}
	}
	return out, nil
}

func checkText(title, body, location string) error {
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if utf8.RuneCountInString(body) > MaxBodyLength {
		return ErrBodyTooLong
	}
	if utf8.RuneCountInString(location) > MaxLocationLength {
		return ErrLocationTooLong
	}
	return nil
}

// ValidateSpaceCreate trims and checks a new space. Colors are upper-cased
// and icons lower-cased.
func ValidateSpaceCreate(in SpaceCreate) (SpaceCreate, error) {
	out := in
	name, err := cleanSpaceName(in.Name)
	if err != nil {
		return SpaceCreate{}, err
	}
	out.Name = name
	if out.Description, err = cleanDescription(in.Description); err != nil {
		return SpaceCreate{}, err
	}
	if out.Color, err = cleanColor(in.Color); err != nil {
		return SpaceCreate{}, err
	}
	out.Icon = strings.ToLower(strings.TrimSpace(in.Icon))
	return out, nil
}

// ValidateSpaceUpdate applies the same rules to the fields present in a patch.
func ValidateSpaceUpdate(in SpaceUpdate) (SpaceUpdate, error) {
	if in.Name == nil && in.Description == nil && in.Color == nil && in.Icon == nil && in.SortOrder == nil {
		return SpaceUpdate{}, ErrEmptyUpdate
	}
	out := in
	if in.Name != nil {
		name, err := cleanSpaceName(*in.Name)
		if err != nil {
			return SpaceUpdate{}, err
		}
		out.Name = &name
	}
	if in.Description != nil {
		d, err := cleanDescription(*in.Description)
		if err != nil {
			return SpaceUpdate{}, err
		}
		out.Description = &d
	}
	if in.Color != nil {
		c, err := cleanColor(*in.Color)
		if err != nil {
			return SpaceUpdate{}, err
		}
		out.Color = &c
	}
	if in.Icon != nil {
		icon := strings.ToLower(strings.TrimSpace(*in.Icon))
		out.Icon = &icon
	}
	return out, nil
}

func cleanSpaceName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrSpaceNameRequired
	}
	if utf8.RuneCountInString(name) > MaxSpaceNameLength {
		return "", ErrSpaceNameTooLong
	}
	return name, nil
}

func cleanDescription(d string) (string, error) {
	d = strings.TrimSpace(d)
	if utf8.RuneCountInString(d) > MaxSpaceDescriptionLength {
		return "", ErrDescriptionTooLong
	}
	return d, nil
}

func cleanColor(c string) (string, error) {
	if c == "" {
		return "", nil
	}
	if !hexColorPattern.MatchString(c) {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, c)
	}
	return strings.ToUpper(c), nil
}

// DefaultSpaceID returns the id of the first space, or "" when there is none.
func DefaultSpaceID(spaces []Space) string {
	if len(spaces) == 0 {
		return ""
	}
	return spaces[0].ID
}
