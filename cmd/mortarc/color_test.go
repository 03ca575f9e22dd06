package main

import (
	"strings"
	"testing"
)

func TestColorizeWrapsWhenEnabled(t *testing.T) {
	got := Colorize("boom", ColorRed, true)
	if !strings.HasPrefix(got, ColorRed) || !strings.HasSuffix(got, ColorReset) {
		t.Errorf("Colorize() = %q, want wrapped in %q/%q", got, ColorRed, ColorReset)
	}
	if !strings.Contains(got, "boom") {
		t.Errorf("Colorize() = %q, want to contain original text", got)
	}
}

func TestColorizePassthroughWhenDisabled(t *testing.T) {
	got := Colorize("boom", ColorRed, false)
	if got != "boom" {
		t.Errorf("Colorize() = %q, want unmodified text when useColor is false", got)
	}
}

func TestShouldUseColorRespectsExplicitFlag(t *testing.T) {
	if ShouldUseColor(true) {
		t.Error("ShouldUseColor(true) should report false (the flag means 'no color')")
	}
}
