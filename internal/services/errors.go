package services

import "errors"

// Pipeline error taxonomy. The worker wraps collaborator failures with one
// of these sentinels so the failure stage survives into the recorded
// message and stays checkable with errors.Is.
var (
	// ErrValidation marks a rejected submission; no record is created.
	ErrValidation = errors.New("validation failed")
	// ErrGeneration marks a content generation failure.
	ErrGeneration = errors.New("generation failed")
	// ErrConversion marks a document conversion failure.
	ErrConversion = errors.New("conversion failed")
	// ErrStorage marks an artifact fetch or write failure.
	ErrStorage = errors.New("storage failed")
)
