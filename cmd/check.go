package cmd

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"
	"github.com/vidplay/vidplay/constant"
	"github.com/vidplay/vidplay/icon"
	"github.com/vidplay/vidplay/key"
	"github.com/vidplay/vidplay/style"
)

// checkDependencies resolves the mpv executable and explains how to
// install it when it is missing.
func checkDependencies() (string, error) {
	name := viper.GetString(key.MpvPath)

	path, err := exec.LookPath(name)
	if err != nil {
		printMissingDependencyError(name)
		return "", fmt.Errorf("%s not found: %w", name, err)
	}

	return path, nil
}

func printMissingDependencyError(dep string) {
	var installCmd string
	switch runtime.GOOS {
	case constant.Darwin:
		installCmd = "brew install mpv"
	case constant.Linux:
		installCmd = "sudo apt install mpv"
	case constant.Windows:
		installCmd = "scoop install mpv"
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.Bad).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.Bad).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Error)))
	body := fmt.Sprintf("The media player '%s' was not found in your PATH.\nSet %s to its location if it is installed elsewhere.", dep, style.Fg(style.Warn)(key.MpvPath))

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.Accent).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
