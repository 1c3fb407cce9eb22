package valueobjects

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"familytree-backend/domain/config"
	pkgerrors "familytree-backend/pkg/errors"
)

// Gender is the normalized gender of a person
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// ParseGender normalizes free-form gender input. Anything that is not
// recognizably male or female collapses to unknown rather than failing.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return GenderMale
	case "female", "f":
		return GenderFemale
	default:
		return GenderUnknown
	}
}

// String returns the string representation
func (g Gender) String() string {
	return string(g)
}

// DateLayout is the wire format for dates of birth
const DateLayout = "2006-01-02"

// PersonDetails is a value object holding the displayable profile of a
// person node: name, optional date of birth, gender and optional
// profile image
type PersonDetails struct {
	displayName string
	dateOfBirth *time.Time
	gender      Gender
	imageURL    string
}

// NewPersonDetails creates details with validation using default configuration
func NewPersonDetails(displayName, dateOfBirth, gender string) (PersonDetails, error) {
	return NewPersonDetailsWithConfig(displayName, dateOfBirth, gender, config.DefaultDomainConfig())
}

// NewPersonDetailsWithConfig creates details with validation and configuration
func NewPersonDetailsWithConfig(displayName, dateOfBirth, gender string, cfg *config.DomainConfig) (PersonDetails, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return PersonDetails{}, pkgerrors.NewValidationError("display name cannot be empty")
	}

	nameLength := utf8.RuneCountInString(displayName)
	if nameLength > cfg.MaxNameLength {
		return PersonDetails{}, fmt.Errorf("display name exceeds maximum length of %d characters", cfg.MaxNameLength)
	}

	var dob *time.Time
	if dateOfBirth != "" {
		parsed, err := time.Parse(DateLayout, dateOfBirth)
		if err != nil {
			return PersonDetails{}, pkgerrors.NewValidationError("date of birth must be a valid YYYY-MM-DD date")
		}
		dob = &parsed
	}

	return PersonDetails{
		displayName: displayName,
		dateOfBirth: dob,
		gender:      ParseGender(gender),
	}, nil
}

// ReconstructPersonDetails rebuilds details from persistence without validation
func ReconstructPersonDetails(displayName string, dateOfBirth *time.Time, gender Gender) PersonDetails {
	return PersonDetails{
		displayName: displayName,
		dateOfBirth: dateOfBirth,
		gender:      gender,
	}
}

// WithImageURL returns a copy carrying the given profile image URL
func (d PersonDetails) WithImageURL(url string) PersonDetails {
	d.imageURL = strings.TrimSpace(url)
	return d
}

// ImageURL returns the optional profile image URL
func (d PersonDetails) ImageURL() string {
	return d.imageURL
}

// DisplayName returns the person's display name
func (d PersonDetails) DisplayName() string {
	return d.displayName
}

// DateOfBirth returns the optional date of birth
func (d PersonDetails) DateOfBirth() *time.Time {
	return d.dateOfBirth
}

// DateOfBirthString returns the date of birth in wire format, or empty
func (d PersonDetails) DateOfBirthString() string {
	if d.dateOfBirth == nil {
		return ""
	}
	return d.dateOfBirth.Format(DateLayout)
}

// Gender returns the normalized gender
func (d PersonDetails) Gender() Gender {
	return d.gender
}

// IsEmpty checks if the details carry no data
func (d PersonDetails) IsEmpty() bool {
	return d.displayName == "" && d.dateOfBirth == nil
}

// Equals checks if two details are equal
func (d PersonDetails) Equals(other PersonDetails) bool {
	if d.displayName != other.displayName || d.gender != other.gender || d.imageURL != other.imageURL {
		return false
	}
	if (d.dateOfBirth == nil) != (other.dateOfBirth == nil) {
		return false
	}
	if d.dateOfBirth != nil && !d.dateOfBirth.Equal(*other.dateOfBirth) {
		return false
	}
	return true
}

// Redacted returns a copy suitable for rendering to a viewer who may not
// see the person's private data. Full redaction hides the name and the
// profile image as well.
func (d PersonDetails) Redacted(hideName bool) PersonDetails {
	out := PersonDetails{gender: d.gender, displayName: d.displayName, imageURL: d.imageURL}
	if hideName {
		out.displayName = "Private member"
		out.imageURL = ""
	}
	return out
}
