package cli

import "specdash/internal/config"

// Flags holds command-line flags
type Flags struct {
	ConfigFile   string
	ProjectPath  string
	SpecDir      string
	ListenAddr   string
	Workers      int
	Suites       []string
	Browser      string
	Mode         string
	NameFilter   string
	ShowTests    bool
	PrepareDB    bool
	OpenFailures bool
	LogLevel     string
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		ConfigFile:   f.ConfigFile,
		ProjectPath:  f.ProjectPath,
		SpecDir:      f.SpecDir,
		ListenAddr:   f.ListenAddr,
		Workers:      f.Workers,
		Suites:       append([]string(nil), f.Suites...),
		Browser:      f.Browser,
		Mode:         f.Mode,
		NameFilter:   f.NameFilter,
		ShowTests:    f.ShowTests,
		PrepareDB:    f.PrepareDB,
		OpenFailures: f.OpenFailures,
		LogLevel:     f.LogLevel,
	}
}
