package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")).
			MarginBottom(1)

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))
)

func printTitle(msg string) {
	fmt.Println(titleStyle.Render(msg))
}

func printSuccess(msg string) {
	fmt.Println(successStyle.Render(msg))
}

// printDetail prints an aligned "label: value" line
func printDetail(label, value string) {
	fmt.Printf("  %s %s\n", subtleStyle.Render(fmt.Sprintf("%-9s", label+":")), value)
}

func printError(msg string) {
	fmt.Println(errorStyle.Render("Error: " + msg))
}
