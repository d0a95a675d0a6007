package cmd

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/subcommands"
)

// Helper function to create a temporary workbook file
func createTempWorkbook(t *testing.T, content string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "test_workbook.jsonl")
	if err := os.WriteFile(name, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp workbook: %v", err)
	}
	return name
}

func TestInitCreatesWorkbook(t *testing.T) {
	tempFile := filepath.Join(t.TempDir(), "workbook.jsonl")

	// Override global workbookFile for the test
	oldWorkbookFile := workbookFile
	workbookFile = &tempFile
	defer func() { workbookFile = oldWorkbookFile }()

	cmd := &initCmd{}
	f := flag.NewFlagSet("test", flag.ContinueOnError)
	cmd.SetFlags(f)

	if status := cmd.Execute(context.Background(), f); status != subcommands.ExitSuccess {
		t.Fatalf("Expected ExitSuccess, got %v", status)
	}

	content, err := os.ReadFile(tempFile)
	if err != nil {
		t.Fatalf("init did not create %q: %v", tempFile, err)
	}
	for _, want := range []string{`"row":"holding"`, `"symbol":"CASH"`, `"symbol":"XAU"`, `"symbol":"SPY"`, `"row":"daily"`, `"note":"baseline"`} {
		if !strings.Contains(string(content), want) {
			t.Errorf("starter workbook is missing %q:\n%s", want, content)
		}
	}
}

func TestInitRefusesToOverwrite(t *testing.T) {
	tempFile := createTempWorkbook(t, `{"row":"holding","symbol":"CASH","name":"US Dollar","quantity":1,"price":1}`+"\n")

	oldWorkbookFile := workbookFile
	workbookFile = &tempFile
	defer func() { workbookFile = oldWorkbookFile }()

	cmd := &initCmd{}
	f := flag.NewFlagSet("test", flag.ContinueOnError)
	cmd.SetFlags(f)

	if status := cmd.Execute(context.Background(), f); status != subcommands.ExitFailure {
		t.Errorf("Expected ExitFailure on an existing workbook, got %v", status)
	}

	// -f overwrites.
	f = flag.NewFlagSet("test", flag.ContinueOnError)
	cmd.SetFlags(f)
	f.Set("f", "true")

	if status := cmd.Execute(context.Background(), f); status != subcommands.ExitSuccess {
		t.Errorf("Expected ExitSuccess with -f, got %v", status)
	}
}
