package logger

import (
	"bytes"
	"os"
	"testing"
)

// Output is environment-dependent (colors, terminal detection), so these
// tests only assert the calls are safe to make.

func TestTaggedLevels_NoPanic(t *testing.T) {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	defer func() { os.Stdout = old }()

	Info("Dashboard", "message")
	Success("DB", "message")
	Warn("Provider", "message")
	Error("Server", "message")

	w.Close()
	var buf bytes.Buffer
	buf.ReadFrom(r)
}

func TestBanner_NoPanic(t *testing.T) {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	defer func() { os.Stdout = old }()

	Banner("v1.0.0")
	Banner("")

	w.Close()
	var buf bytes.Buffer
	buf.ReadFrom(r)
}

func TestSectionStatsServer_NoPanic(t *testing.T) {
	old := os.Stdout
	_, w, _ := os.Pipe()
	os.Stdout = w
	defer func() { os.Stdout = old }()

	Section("Startup")
	Stats("Parameters", 7)
	Server("127.0.0.1:8742")
	w.Close()
}
