package ui

import "specdash/internal/domain"

// Viewer displays saved run failures in an interactive TUI
type Viewer interface {
	View(results *domain.RunOutput) error
}
