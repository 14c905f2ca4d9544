package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"specdash/internal/domain"
)

// Scanner scans for spec files in a directory
type Scanner struct{}

// NewScanner creates a new Scanner
func NewScanner() *Scanner {
	return &Scanner{}
}

// Scan finds all spec files directly inside the given directory, sorted by name
func (s *Scanner) Scan(root string) ([]string, error) {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("spec path does not exist: %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("spec path is not a directory: %s", root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read spec dir %s: %w", root, err)
	}

	var specFiles []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if domain.IsSpecFile(entry.Name()) {
			specFiles = append(specFiles, filepath.Join(root, entry.Name()))
		}
	}
	sort.Strings(specFiles)

	return specFiles, nil
}
