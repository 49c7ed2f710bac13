// Package ui provides the interactive prompts used by scaffolding commands.
package ui

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
)

// ErrCancelled is returned when the user aborts a prompt.
var ErrCancelled = errors.New("cancelled")

// Prompter asks the user for input on the terminal.
type Prompter struct{}

// NewPrompter creates a terminal prompter.
func NewPrompter() *Prompter {
	return &Prompter{}
}

// AskText prompts for a free-form text value.
func (p *Prompter) AskText(label, defaultValue string) (string, error) {
	prompt := promptui.Prompt{
		Label:   label,
		Default: defaultValue,
	}

	value, err := prompt.Run()
	if err != nil {
		return "", cancelOr(err)
	}
	return value, nil
}

// AskConfirm prompts for a yes/no answer.
func (p *Prompter) AskConfirm(label string, defaultYes bool) (bool, error) {
	defaultValue := "n"
	if defaultYes {
		defaultValue = "y"
	}

	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Default:   defaultValue,
	}

	_, err := prompt.Run()
	if err != nil {
		// promptui reports a declined confirm as ErrAbort.
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, cancelOr(err)
	}
	return true, nil
}

// AskSelect prompts for one of the given choices.
func (p *Prompter) AskSelect(label string, choices []string) (string, error) {
	prompt := promptui.Select{
		Label: label,
		Items: choices,
	}

	_, value, err := prompt.Run()
	if err != nil {
		return "", cancelOr(err)
	}
	return value, nil
}

func cancelOr(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return ErrCancelled
	}
	return fmt.Errorf("prompt failed: %w", err)
}
