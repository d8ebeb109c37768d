// SPDX-License-Identifier: AGPL-3.0-only
package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().Reverse(true)

	sentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	mutedStyle = lipgloss.NewStyle().Faint(true)

	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("11")).
			Padding(0, 2).
			MarginTop(1)

	popupTitleStyle = lipgloss.NewStyle().Bold(true)

	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

const (
	sentMark    = "✔"
	pendingMark = "✘"
)
