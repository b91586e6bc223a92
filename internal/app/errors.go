package service

import (
	"errors"
	"fmt"

	"github.com/okian/mercwork/internal/domain/model"
)

var (
	ErrNotStarted          = errors.New("service not started")
	ErrUnknownLethalPolicy = fmt.Errorf("unknown lethal policy: %w", model.ErrValidation)
	ErrNoTestedSkills      = fmt.Errorf("job tests no skill: %w", model.ErrValidation)
	ErrInvalidDuration     = fmt.Errorf("job duration must be positive: %w", model.ErrValidation)
	ErrInvalidQuantity     = fmt.Errorf("quantity must be positive: %w", model.ErrValidation)
	ErrMissingRequester    = fmt.Errorf("requester id is required: %w", model.ErrValidation)
	ErrEmptyRequest        = fmt.Errorf("request carries no items: %w", model.ErrValidation)
	ErrJobChanged          = fmt.Errorf("job changed concurrently: %w", model.ErrInvalidState)
	ErrNotPendingReport    = fmt.Errorf("job is not awaiting a claim: %w", model.ErrInvalidState)
	ErrNotProposed         = fmt.Errorf("job is no longer proposed: %w", model.ErrInvalidState)
	ErrNotAssigned         = fmt.Errorf("job is not assigned: %w", model.ErrInvalidState)
)
