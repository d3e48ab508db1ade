package main

import "github.com/charmbracelet/lipgloss"

var (
	successColor = lipgloss.Color("#04B575")
	errorColor   = lipgloss.Color("#FF4B4B")
	primaryColor = lipgloss.Color("#7D56F4")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	okMark   = lipgloss.NewStyle().Foreground(successColor).Render("✓")
	failMark = lipgloss.NewStyle().Foreground(errorColor).Render("✗")
)
