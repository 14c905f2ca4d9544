package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"specdash/internal/domain"
	"specdash/internal/storage"
)

const maxStackLines = 10

// ErrorViewer displays failed tests of the last saved run in an interactive TUI
type ErrorViewer struct {
	storage storage.Storage
}

// NewErrorViewer creates a new ErrorViewer
func NewErrorViewer(st storage.Storage) *ErrorViewer {
	return &ErrorViewer{storage: st}
}

// View displays test failures in an interactive TUI
func (ev *ErrorViewer) View(results *domain.RunOutput) error {
	if len(results.Details) == 0 {
		color.Green("✓ No test failures found!")
		return nil
	}

	s := newFailureScreen(results, ev.storage)
	if err := s.app.SetRoot(s.layout(), true).SetFocus(s.list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if s.saveErr != nil {
		return fmt.Errorf("failed to save resolved status: %w", s.saveErr)
	}
	return nil
}

// failureScreen holds the widgets of the failure viewer
type failureScreen struct {
	results *domain.RunOutput
	storage storage.Storage
	saveErr error

	app     *tview.Application
	header  *tview.TextView
	list    *tview.List
	stats   *tview.TextView
	details *tview.TextView
}

func newFailureScreen(results *domain.RunOutput, st storage.Storage) *failureScreen {
	s := &failureScreen{
		results: results,
		storage: st,
		app:     tview.NewApplication(),
		header:  tview.NewTextView().SetTextAlign(tview.AlignCenter).SetDynamicColors(true),
		list:    tview.NewList().ShowSecondaryText(false).SetHighlightFullLine(true),
		stats:   tview.NewTextView().SetDynamicColors(true).SetWrap(false).SetWordWrap(false),
		details: tview.NewTextView().SetDynamicColors(true).SetWrap(true).SetWordWrap(true),
	}

	for i := range results.Details {
		s.list.AddItem(listItemText(results.Details[i], i), "", 0, nil)
	}
	s.list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)

	s.list.SetInputCapture(s.onListKey)
	s.details.SetInputCapture(s.onDetailsKey)
	s.list.SetChangedFunc(func(int, string, string, rune) { s.refreshDetails() })

	s.refreshHeader()
	s.refreshDetails()
	return s
}

// layout puts the list on the left third and stats plus details on the right
func (s *failureScreen) layout() tview.Primitive {
	detailsPane := tview.NewFlex().
		AddItem(s.details, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(s.stats, 3, 0, false).
		AddItem(detailsPane, 0, 1, false)

	body := tview.NewFlex().
		AddItem(s.list, 0, 1, true).
		AddItem(right, 0, 2, false)

	return tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(s.header, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(body, 0, 1, true)
}

func (s *failureScreen) refreshHeader() {
	s.header.SetText(headerText(s.results))
}

func (s *failureScreen) refreshDetails() {
	index := s.list.GetCurrentItem()
	if index < 0 || index >= len(s.results.Details) {
		return
	}
	failure := s.results.Details[index]
	s.stats.SetText(formatFailureStats(failure, index+1))
	s.details.SetText(formatFailureDetails(failure))
	s.details.ScrollToBeginning()
}

// toggleCurrent flips the resolved marker of the selected failure and saves the output
func (s *failureScreen) toggleCurrent() {
	index := s.list.GetCurrentItem()
	if !ToggleResolved(s.results, index) {
		return
	}
	s.list.SetItemText(index, listItemText(s.results.Details[index], index), "")
	s.refreshHeader()
	s.refreshDetails()
	s.saveErr = s.storage.SaveOutput(s.results)
}

func (s *failureScreen) onListKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEnter, tcell.KeyRight:
		s.app.SetFocus(s.details)
		return nil
	case tcell.KeyCtrlC:
		s.app.Stop()
		return nil
	case tcell.KeyRune:
		if event.Rune() == 'r' || event.Rune() == 'R' {
			s.toggleCurrent()
			return nil
		}
	}
	return event
}

func (s *failureScreen) onDetailsKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyLeft, tcell.KeyEsc:
		s.app.SetFocus(s.list)
		return nil
	case tcell.KeyCtrlC:
		s.app.Stop()
		return nil
	}
	return event
}

// ToggleResolved flips the resolved marker of one failure
func ToggleResolved(results *domain.RunOutput, index int) bool {
	if index < 0 || index >= len(results.Details) {
		return false
	}
	results.Details[index].Resolved = !results.Details[index].Resolved
	return true
}

// CountUnresolved returns the number of failures not marked resolved
func CountUnresolved(results *domain.RunOutput) int {
	count := 0
	for _, failure := range results.Details {
		if !failure.Resolved {
			count++
		}
	}
	return count
}

func headerText(results *domain.RunOutput) string {
	return fmt.Sprintf(" Test Failures (%d total, %d unresolved) | Use ↑↓ to navigate, [yellow]R[white] to mark resolved, → to view details, ← to go back, Ctrl+C to exit ",
		len(results.Details), CountUnresolved(results))
}

func listItemText(failure domain.TestFailure, index int) string {
	name := failure.TestName
	if name == "" {
		name = fmt.Sprintf("Test %d", index+1)
	}
	if failure.Resolved {
		return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", index+1, tview.Escape(name))
	}
	return fmt.Sprintf("[yellow]%d.[white] %s", index+1, tview.Escape(name))
}

// formatFailureDetails formats a test failure using tview color tags
func formatFailureDetails(failure domain.TestFailure) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "[red]✗ Test: %s[white]\n\n", tview.Escape(failure.FullTitle))
	fmt.Fprintf(&builder, "[cyan]File: %s[white]\n", tview.Escape(failure.FilePath))
	if failure.Category != "" {
		fmt.Fprintf(&builder, "[cyan]Category: %s[white]\n", failure.Category)
	}
	builder.WriteString("\n")

	if failure.Message != "" {
		fmt.Fprintf(&builder, "[yellow]Message:[white]\n%s\n\n", tview.Escape(failure.Message))
	}

	if len(failure.Stack) > 0 {
		builder.WriteString("[yellow]Stack Trace:[white]\n")
		shown := failure.Stack
		if len(shown) > maxStackLines {
			shown = shown[:maxStackLines]
		}
		builder.WriteString(indent(tview.Escape(strings.Join(shown, "\n")), "  "))
		builder.WriteString("\n")
		if len(failure.Stack) > maxStackLines {
			fmt.Fprintf(&builder, "  [gray]... and %d more lines[white]\n", len(failure.Stack)-maxStackLines)
		}
	}

	return builder.String()
}

// formatFailureStats formats the stats header for a test failure
func formatFailureStats(failure domain.TestFailure, number int) string {
	path := failure.FilePath
	if path == "" {
		path = "Unknown path"
	}

	testCase := failure.TestName
	if testCase == "" {
		testCase = fmt.Sprintf("Test %d", number)
	}

	return fmt.Sprintf("[cyan]path:[white] [yellow]%s[white]::[yellow]%s[white] [gray](%s)[white]\n",
		tview.Escape(path), tview.Escape(testCase), failure.TestID)
}
