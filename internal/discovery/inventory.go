package discovery

import (
	"errors"
	"fmt"
	"path/filepath"

	"specdash/internal/domain"
)

// ErrUnknownSuite is returned when a requested suite id has no spec file
var ErrUnknownSuite = errors.New("unknown test suite")

// Inventory lists the spec files of a directory as suite descriptors.
// Nothing is cached: every call rescans the directory.
type Inventory struct {
	dir     string
	scanner *Scanner
	parser  *Parser
}

// NewInventory creates an Inventory over the given spec directory
func NewInventory(dir string, scanner *Scanner, parser *Parser) *Inventory {
	return &Inventory{dir: dir, scanner: scanner, parser: parser}
}

// Dir returns the spec directory
func (inv *Inventory) Dir() string {
	return inv.dir
}

// Files returns the spec file paths
func (inv *Inventory) Files() ([]string, error) {
	return inv.scanner.Scan(inv.dir)
}

// ListSuites reads every spec file and describes it
func (inv *Inventory) ListSuites() ([]domain.TestSuiteDescriptor, error) {
	files, err := inv.Files()
	if err != nil {
		return nil, err
	}

	suites := make([]domain.TestSuiteDescriptor, 0, len(files))
	for _, file := range files {
		suite, err := inv.Describe(file)
		if err != nil {
			return nil, err
		}
		suites = append(suites, suite)
	}
	return suites, nil
}

// Describe scans one spec file into a descriptor
func (inv *Inventory) Describe(path string) (domain.TestSuiteDescriptor, error) {
	spec, err := inv.parser.ParseFile(path)
	if err != nil {
		return domain.TestSuiteDescriptor{}, err
	}

	fileName := filepath.Base(path)
	id := domain.SuiteID(fileName)
	tests := make([]domain.TestDescriptor, 0, len(spec.Tests))
	for i, name := range spec.Tests {
		tests = append(tests, domain.TestDescriptor{
			ID:       domain.TestID(id, i),
			Name:     name,
			Category: domain.Categorize(fileName, name),
		})
	}

	return domain.TestSuiteDescriptor{
		ID:          id,
		Name:        domain.DisplayName(id),
		File:        fileName,
		Description: spec.Description,
		Tests:       tests,
	}, nil
}

// Resolve maps suite ids (or spec file names) to spec file paths, in request order
func (inv *Inventory) Resolve(ids []string) ([]string, error) {
	files, err := inv.Files()
	if err != nil {
		return nil, err
	}

	byID := make(map[string]string, len(files))
	for _, file := range files {
		byID[domain.SuiteID(file)] = file
		byID[filepath.Base(file)] = file
	}

	paths := make([]string, 0, len(ids))
	for _, id := range ids {
		path, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSuite, id)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
