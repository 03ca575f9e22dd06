package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Bli-AIk/mortar/diagnostic"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", path, err)
	}
	return path
}

func TestRunCompileWritesMortaredFile(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "story.mortar", `
		node Start {
			text: "hi"
		}
	`)
	out := filepath.Join(dir, "story.mortared")

	cfg := Config{Output: out}
	if err := runCompile(src, cfg); err != nil {
		t.Fatalf("runCompile() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("expected output file to be written: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if _, ok := doc["nodes"]; !ok {
		t.Error("expected a 'nodes' key in the emitted document")
	}
}

func TestRunCompileCheckModeWritesNothing(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "story.mortar", `node Start { text: "hi" }`)
	out := filepath.Join(dir, "story.mortared")

	cfg := Config{Check: true, Output: out}
	if err := runCompile(src, cfg); err != nil {
		t.Fatalf("runCompile() error = %v", err)
	}
	if _, err := os.Stat(out); err == nil {
		t.Error("--check should not write an output file")
	}
}

func TestRunCompileReturnsCLIErrorOnCompileFailure(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "bad.mortar", `
		node Start {
			text: "hi"
		} -> Nowhere
	`)

	err := runCompile(src, Config{Check: true})
	if err == nil {
		t.Fatal("runCompile() error = nil, want a compile failure")
	}
	cliErr, ok := err.(*CLIError)
	if !ok {
		t.Fatalf("error = %v (%T), want *CLIError", err, err)
	}
	if cliErr.Type != "compile" {
		t.Errorf("CLIError.Type = %q, want compile", cliErr.Type)
	}
}

func TestRunCompileReturnsCLIErrorOnMissingFile(t *testing.T) {
	err := runCompile("/no/such/file.mortar", Config{})
	if err == nil {
		t.Fatal("runCompile() error = nil, want an io error for a missing file")
	}
	cliErr, ok := err.(*CLIError)
	if !ok || cliErr.Type != "io" {
		t.Fatalf("error = %v, want a CLIError of Type io", err)
	}
}

func TestCountErrorsOnlyCountsErrorSeverity(t *testing.T) {
	diags := []diagnostic.Diagnostic{
		{Severity: diagnostic.Error},
		{Severity: diagnostic.Warning},
		{Severity: diagnostic.Error},
	}
	if got := countErrors(diags); got != 2 {
		t.Errorf("countErrors() = %d, want 2", got)
	}
}
