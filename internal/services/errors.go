package services

import (
	"errors"
	"fmt"

	"bondscope/internal/dataprocessing"
)

// Analysis service errors
var (
	ErrNoDataset           = errors.New("dataset not loaded")
	ErrUnknownDataset      = errors.New("unknown dataset")
	ErrInvalidQuery        = errors.New("invalid query")
	ErrRendererUnavailable = errors.New("word cloud renderer not configured")
)

// DonorNotFoundError reports an unknown donor together with the closest
// known names.
type DonorNotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *DonorNotFoundError) Error() string {
	return fmt.Sprintf("donor %q not found", e.Name)
}

// Unwrap lets callers match dataprocessing.ErrNotFound.
func (e *DonorNotFoundError) Unwrap() error {
	return dataprocessing.ErrNotFound
}
