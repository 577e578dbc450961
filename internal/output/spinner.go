package output

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh/spinner"
)

// RunWithSpinner runs action on its own goroutine while a spinner titled
// title animates, and returns the action's error. The spinner only runs when
// stdout is a terminal; otherwise action runs inline.
func RunWithSpinner(ctx context.Context, title string, action func(context.Context) error) error {
	if !IsTTY() {
		return action(ctx)
	}

	errCh := make(chan error, 1)
	doneCh := make(chan struct{})
	go func() {
		errCh <- action(ctx)
		close(doneCh)
	}()

	spinErr := spinner.New().
		Title(title).
		Action(func() { <-doneCh }).
		Run()

	// The action is always joined, even when the spinner fails to draw.
	err := <-errCh
	if err == nil && spinErr != nil {
		return fmt.Errorf("spinner: %w", spinErr)
	}
	return err
}
