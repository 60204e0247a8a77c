package logging

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap/zapcore"
)

var (
	colorError    = lipgloss.Color("#FF5555")
	colorWarn     = lipgloss.Color("#FFB86C")
	colorInfo     = lipgloss.Color("#50FA7B")
	colorDebug    = lipgloss.Color("#BD93F9")
	colorTime     = lipgloss.Color("#6272A4")
	colorChannel  = lipgloss.Color("#8BE9FD")
	colorRequest  = lipgloss.Color("#F1FA8C")
	colorResponse = lipgloss.Color("#FF79C6")

	errorStyle    = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	warnStyle     = lipgloss.NewStyle().Foreground(colorWarn).Bold(true)
	infoStyle     = lipgloss.NewStyle().Foreground(colorInfo)
	debugStyle    = lipgloss.NewStyle().Foreground(colorDebug)
	requestStyle  = lipgloss.NewStyle().Foreground(colorRequest).Bold(true)
	responseStyle = lipgloss.NewStyle().Foreground(colorResponse).Bold(true)
)

type styleFunc func(string) string

func render(style lipgloss.Style) styleFunc {
	return func(s string) string { return style.Render(s) }
}

var (
	timeStyle          = render(lipgloss.NewStyle().Foreground(colorTime))
	channelStyle       = render(lipgloss.NewStyle().Foreground(colorChannel))
	fieldKeyStyle      = render(lipgloss.NewStyle().Foreground(colorTime))
	requestArrowStyle  = render(requestStyle)
	responseArrowStyle = render(responseStyle)
)

func levelStyle(l zapcore.Level) styleFunc {
	switch l {
	case zapcore.DebugLevel:
		return render(debugStyle)
	case zapcore.InfoLevel:
		return render(infoStyle)
	case zapcore.WarnLevel:
		return render(warnStyle)
	default:
		return render(errorStyle)
	}
}

func shouldUseColor(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
