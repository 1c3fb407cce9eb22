package validators

import (
	"fmt"
	"strings"
	"time"

	"familytree-backend/domain/core/valueobjects"
	"familytree-backend/pkg/errors"
)

// MemberValidator validates manual member domain rules
type MemberValidator struct {
	nameMinLength  int
	nameMaxLength  int
	notesMaxLength int
	allowFutureDOB bool
}

// NewMemberValidator creates a new member validator with default rules
func NewMemberValidator() *MemberValidator {
	return &MemberValidator{
		nameMinLength:  1,
		nameMaxLength:  120,
		notesMaxLength: 2000,
		allowFutureDOB: false,
	}
}

// ValidateNewMember validates the full input for recording a manual member
func (v *MemberValidator) ValidateNewMember(name, dateOfBirth, relationToAdder, notes string) error {
	validationErrors := errors.NewValidationErrors()

	if err := v.validateName(name); err != nil {
		if domainErr, ok := err.(*errors.DomainError); ok {
			validationErrors.AddError(domainErr)
		} else {
			validationErrors.Add("name", err.Error())
		}
	}

	if err := v.ValidateDateOfBirth(dateOfBirth); err != nil {
		if domainErr, ok := err.(*errors.DomainError); ok {
			validationErrors.AddError(domainErr)
		} else {
			validationErrors.Add("date_of_birth", err.Error())
		}
	}

	if _, err := valueobjects.ParseRelationshipType(relationToAdder); err != nil {
		if domainErr, ok := err.(*errors.DomainError); ok {
			validationErrors.AddError(domainErr)
		} else {
			validationErrors.Add("relation_to_adder", err.Error())
		}
	}

	if err := v.validateNotes(notes); err != nil {
		if domainErr, ok := err.(*errors.DomainError); ok {
			validationErrors.AddError(domainErr)
		} else {
			validationErrors.Add("notes", err.Error())
		}
	}

	if validationErrors.HasErrors() {
		return validationErrors
	}

	return nil
}

// validateName validates the member display name
func (v *MemberValidator) validateName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < v.nameMinLength {
		return errors.ErrMemberNameRequired
	}

	if len(name) > v.nameMaxLength {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"MEMBER_NAME_TOO_LONG",
			fmt.Sprintf("Member name exceeds maximum length of %d characters", v.nameMaxLength),
		).WithDetail("field", "name").WithDetail("actual_length", len(name))
	}

	return nil
}

// ValidateDateOfBirth validates an optional date of birth string
func (v *MemberValidator) ValidateDateOfBirth(dob string) error {
	if dob == "" {
		return nil // date of birth is optional
	}

	parsed, err := time.Parse(valueobjects.DateLayout, dob)
	if err != nil {
		return errors.ErrInvalidDateOfBirth.WithCause(err)
	}

	if !v.allowFutureDOB && parsed.After(time.Now()) {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"FUTURE_DATE_OF_BIRTH",
			"Date of birth cannot be in the future",
		).WithDetail("field", "date_of_birth").WithDetail("value", dob)
	}

	return nil
}

// validateNotes validates the free-form notes field
func (v *MemberValidator) validateNotes(notes string) error {
	if len(notes) > v.notesMaxLength {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"MEMBER_NOTES_TOO_LONG",
			fmt.Sprintf("Notes exceed maximum length of %d characters", v.notesMaxLength),
		).WithDetail("field", "notes").WithDetail("actual_length", len(notes))
	}

	return nil
}

// RelationshipValidator validates relationship edge domain rules
type RelationshipValidator struct{}

// NewRelationshipValidator creates a new relationship validator
func NewRelationshipValidator() *RelationshipValidator {
	return &RelationshipValidator{}
}

// ValidateEdge validates a relationship creation between two people
func (v *RelationshipValidator) ValidateEdge(initiatorID, targetID, relType string) error {
	if initiatorID == targetID {
		return errors.ErrSelfRelationship.
			WithDetail("person_id", initiatorID)
	}

	if _, err := valueobjects.ParseRelationshipType(relType); err != nil {
		return err
	}

	return nil
}
