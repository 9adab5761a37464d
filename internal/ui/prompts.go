package ui

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// ConfirmRun asks before issuing paid API calls. In non-interactive mode
// (CI, pipes) it returns true without asking.
func ConfirmRun(calls int, model string) (bool, error) {
	if !IsInteractive() {
		return true, nil
	}
	ok := true
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Classify %d sentences with %s?", calls, model)).
		Description("One request is sent per sentence.").
		Affirmative("Yes, start").
		Negative("Cancel").
		Value(&ok).
		Run()
	if err != nil {
		return false, fmt.Errorf("confirmation prompt: %w", err)
	}
	return ok, nil
}
