package model

import (
	"errors"
	"fmt"
)

// Error kinds. Every domain error wraps exactly one of these so callers can
// classify with errors.Is.
var (
	ErrNotFound             = errors.New("not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInvalidState         = errors.New("invalid state")
	ErrInsufficientResource = errors.New("insufficient resource")
	ErrValidation           = errors.New("validation error")
)

// Specific domain errors.
var (
	ErrJobNotFound            = fmt.Errorf("job %w", ErrNotFound)
	ErrParticipantNotFound    = fmt.Errorf("participant %w", ErrNotFound)
	ErrProgramNotFound        = fmt.Errorf("program %w", ErrNotFound)
	ErrNotJobOwner            = fmt.Errorf("requester does not own job: %w", ErrUnauthorized)
	ErrNotParticipantOwner    = fmt.Errorf("requester does not own participant: %w", ErrUnauthorized)
	ErrNotOwned               = fmt.Errorf("item not owned: %w", ErrInsufficientResource)
	ErrParticipantUnavailable = fmt.Errorf("participant unavailable: %w", ErrInsufficientResource)
	ErrAlreadyAssigned        = fmt.Errorf("skill already assigned: %w", ErrValidation)
	ErrSkillNotRequired       = fmt.Errorf("skill not required by job: %w", ErrValidation)
	ErrDuplicateParticipant   = fmt.Errorf("participant bound to more than one skill: %w", ErrValidation)
	ErrIncompleteAssignment   = fmt.Errorf("every tested skill needs a participant: %w", ErrValidation)
	ErrUnknownSkill           = fmt.Errorf("unknown skill: %w", ErrValidation)
	ErrUnknownEffect          = fmt.Errorf("unknown effect: %w", ErrValidation)
	ErrCategoryMismatch       = fmt.Errorf("program category mismatch: %w", ErrValidation)
	ErrNotOpenForPreparation  = fmt.Errorf("job is not open for preparation: %w", ErrInvalidState)
	ErrNotDue                 = fmt.Errorf("job timer has not elapsed: %w", ErrInvalidState)
)

// Kind returns the error kind name for err, or "internal".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrInsufficientResource):
		return "insufficient_resource"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	default:
		return "internal"
	}
}
