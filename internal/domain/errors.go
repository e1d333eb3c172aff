package domain

import "errors"

// The engine and factory report caller-contract violations through these
// sentinel errors. None of them is transient: a failed Analysis is left in
// an undefined state and must be discarded, and the analysis for that
// template restarted.
var (
	// ErrUnknownTemplateType is returned by the factory when asked to
	// construct a template info whose type tag was never registered.
	ErrUnknownTemplateType = errors.New("unknown template info type")

	// ErrStyleNotFound is returned by MarkDynamic when the style was never
	// added to the analysis first.
	ErrStyleNotFound = errors.New("style marked dynamic before being added")

	// ErrElementOpen is returned by StartElement when the previous element
	// accumulated styles that were never committed with EndElement.
	ErrElementOpen = errors.New("element started while previous element is still open")
)
