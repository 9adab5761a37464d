package ui

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	ColorAccent = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#8B87FF"}
	ColorPass   = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#7BD88F"}
	ColorWarn   = lipgloss.AdaptiveColor{Light: "#B26A00", Dark: "#FFC861"}
	ColorFail   = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#FF6B6B"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#6B6B6B", Dark: "#8A8A8A"}
)

var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	PassStyle  = lipgloss.NewStyle().Foreground(ColorPass)
	WarnStyle  = lipgloss.NewStyle().Foreground(ColorWarn)
	FailStyle  = lipgloss.NewStyle().Foreground(ColorFail)
	MutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)

// RenderPass formats a success line, with a check mark on terminals.
func RenderPass(msg string) string {
	if ShouldUseEmoji() {
		msg = "✓ " + msg
	}
	return PassStyle.Render(msg)
}

// RenderWarn formats a warning line.
func RenderWarn(msg string) string {
	if ShouldUseEmoji() {
		msg = "⚠ " + msg
	}
	return WarnStyle.Render(msg)
}

// RenderFail formats an error line.
func RenderFail(msg string) string {
	if ShouldUseEmoji() {
		msg = "✗ " + msg
	}
	return FailStyle.Render(msg)
}
