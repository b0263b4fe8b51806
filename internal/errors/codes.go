// Package errors maps domain sentinel errors to stable machine-readable
// codes for API surfaces and journal records.
package errors

import (
	"errors"

	"github.com/louisbranch/entropy.space/internal/core/dice"
	"github.com/louisbranch/entropy.space/internal/random"
	"github.com/louisbranch/entropy.space/internal/services/sampling/app"
	"github.com/louisbranch/entropy.space/internal/services/sampling/storage"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Dice errors
	CodeDiceMissing     Code = "DICE_MISSING"
	CodeDiceInvalidSpec Code = "DICE_INVALID_SPEC"

	// Generator errors
	CodeRangeInvalid   Code = "RANGE_INVALID"
	CodeGeneratorMoved Code = "GENERATOR_MOVED"

	// Sampling errors
	CodeCountInvalid Code = "COUNT_INVALID"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// CodeOf resolves the machine-readable code for a domain error.
func CodeOf(err error) Code {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, dice.ErrMissingDice):
		return CodeDiceMissing
	case errors.Is(err, dice.ErrInvalidDiceSpec):
		return CodeDiceInvalidSpec
	case errors.Is(err, random.ErrInvalidRange):
		return CodeRangeInvalid
	case errors.Is(err, random.ErrMovedFrom):
		return CodeGeneratorMoved
	case errors.Is(err, app.ErrInvalidCount):
		return CodeCountInvalid
	case errors.Is(err, storage.ErrNotFound):
		return CodeNotFound
	default:
		return CodeUnknown
	}
}
