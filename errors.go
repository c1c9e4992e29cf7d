package vecid

import (
	"errors"
	"fmt"

	"github.com/hupe1980/vecid/entropy"
	"github.com/hupe1980/vecid/envelope"
	"github.com/hupe1980/vecid/optimizer"
	"github.com/hupe1980/vecid/payload"
	"github.com/hupe1980/vecid/symbolic"
)

var (
	// ErrValidation is returned for malformed payloads, vectors, keys and options.
	ErrValidation = errors.New("validation failed")

	// ErrAuthentication is returned when an envelope fails verification.
	ErrAuthentication = errors.New("authentication failed")
)

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrValidation) || errors.Is(err, ErrAuthentication) {
		return err
	}

	if errors.Is(err, envelope.ErrAuthentication) {
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	switch {
	case errors.Is(err, payload.ErrValidation),
		errors.Is(err, symbolic.ErrInvalidDigest),
		errors.Is(err, entropy.ErrInvalidLength),
		errors.Is(err, entropy.ErrEmptyKey),
		errors.Is(err, envelope.ErrEmptyKey),
		errors.Is(err, optimizer.ErrInvalidTier),
		errors.Is(err, optimizer.ErrInvalidTrials):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return err
}
