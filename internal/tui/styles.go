package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorCyan  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorRed   = lipgloss.Color("167")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
	colorWhite = lipgloss.Color("255")
)

var (
	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleHandle = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	styleStatus = lipgloss.NewStyle().Foreground(colorGray)
	styleError  = lipgloss.NewStyle().Foreground(colorRed)
	styleBlock  = lipgloss.NewStyle().Foreground(colorWhite)
	styleLine   = lipgloss.NewStyle().Foreground(colorDim)
	styleProxy  = lipgloss.NewStyle().Foreground(colorCyan)
	styleBlank  = lipgloss.NewStyle()
)

func armedStyle(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}

// box characters per cell kind
var (
	solidBox  = boxRunes{'┌', '┐', '└', '┘', '─', '│'}
	doubleBox = boxRunes{'╔', '╗', '╚', '╝', '═', '║'}
)

type boxRunes struct {
	topLeft, topRight, bottomLeft, bottomRight, horizontal, vertical rune
}
