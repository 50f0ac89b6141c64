package medicine

import "errors"

// Failure kinds surfaced by the lookup pipeline. A missing match is not an
// error: lookups return a nil *Match instead.
var (
	// ErrConfiguration means a required credential (the AI key) is missing.
	ErrConfiguration = errors.New("configuration error")

	// ErrStoreUnavailable wraps any failure talking to the medicine store.
	ErrStoreUnavailable = errors.New("medicine store unavailable")

	// ErrAIProvider is returned when the generative API fails or answers nothing.
	ErrAIProvider = errors.New("ai provider error")

	// ErrUnknownMedicine is returned by the strict fallback policy when the
	// model says it does not know the medicine.
	ErrUnknownMedicine = errors.New("unknown medicine")
)
