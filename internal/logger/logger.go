package logger

import (
	"fmt"

	"github.com/fatih/color"
)

var (
	tagInfo    = color.New(color.FgCyan, color.Bold)
	tagSuccess = color.New(color.FgGreen, color.Bold)
	tagWarn    = color.New(color.FgYellow, color.Bold)
	tagError   = color.New(color.FgRed, color.Bold)
	dim        = color.New(color.Faint)
)

// Info prints a tagged informational message.
func Info(tag, msg string) {
	fmt.Printf("%s %s\n", tagInfo.Sprintf("[%s]", tag), msg)
}

// Success prints a tagged success message.
func Success(tag, msg string) {
	fmt.Printf("%s %s\n", tagSuccess.Sprintf("[%s]", tag), msg)
}

// Warn prints a tagged warning.
func Warn(tag, msg string) {
	fmt.Printf("%s %s\n", tagWarn.Sprintf("[%s]", tag), msg)
}

// Error prints a tagged error message.
func Error(tag, msg string) {
	fmt.Printf("%s %s\n", tagError.Sprintf("[%s]", tag), msg)
}

// Banner prints the startup banner with the build version.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Println()
	tagInfo.Println("  metric-diary / parameter analytics")
	dim.Printf("  version %s\n", version)
	fmt.Println()
}

// Server prints the listen address line.
func Server(addr string) {
	fmt.Printf("%s listening on %s\n", tagSuccess.Sprint("[Server]"), color.New(color.Underline).Sprintf("http://%s", addr))
}

// Section prints a titled divider.
func Section(title string) {
	fmt.Println()
	dim.Printf("── %s ────────────────────────\n", title)
}

// Stats prints an aligned key/value line.
func Stats(key string, value interface{}) {
	fmt.Printf("  %-24s %v\n", dim.Sprint(key), value)
}
