package tui

import (
	"github.com/charmbracelet/huh"

	"github.com/hennalash/go-client/logger"
)

var inputTheme = huh.ThemeBase16()

func Input(logger logger.Logger, title string, description string) string {
	var value string
	if err := huh.NewInput().
		Title(title).
		Prompt("> ").
		Description(description).
		Value(&value).
		WithTheme(inputTheme).
		Run(); err != nil {
		logger.Fatal("%s", err)
	}
	return value
}

func Password(logger logger.Logger, title string, description string) string {
	var value string
	if err := huh.NewInput().
		Title(title).
		Prompt("> ").
		Description(description + "\n").
		EchoMode(huh.EchoModePassword).
		Value(&value).
		WithTheme(inputTheme).
		Run(); err != nil {
		logger.Fatal("%s", err)
	}
	return value
}

// Option is a selectable item.
type Option struct {
	ID       string
	Text     string
	Selected bool
}

func Select(logger logger.Logger, title string, description string, items []Option) string {
	var selected string

	var opts []huh.Option[string]
	for _, item := range items {
		opts = append(opts, huh.NewOption(item.Text, item.ID).Selected(item.Selected))
	}

	descriptionText := description
	if description != "" && description != "\n" {
		descriptionText += "\n"
	}

	if err := huh.NewSelect[string]().
		Title(title).
		Description(descriptionText).
		Options(opts...).
		Value(&selected).Run(); err != nil {
		logger.Fatal("%s", err)
	}

	return selected
}
