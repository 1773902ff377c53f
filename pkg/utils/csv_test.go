package utils

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	header := []string{"name", "notes", "amount"}
	rows := [][]string{
		{"Aisyah", "renewal, paid in full", "150.00"},
		{`Lee "Danny" Wong`, "walk-in", "10.00"},
		{"Kumar", "line one\nline two", "0.00"},
	}

	if err := WriteCSV(&buf, header, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	got := buf.String()
	wantLines := []string{
		"name,notes,amount",
		`Aisyah,"renewal, paid in full",150.00`,
		`"Lee ""Danny"" Wong",walk-in,10.00`,
		`Kumar,"line one`,
		"line two\",0.00",
	}
	gotLines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(gotLines) != len(wantLines) {
		t.Fatalf("got %d lines, want %d:\n%s", len(gotLines), len(wantLines), got)
	}
	for i := range wantLines {
		if strings.TrimRight(gotLines[i], "\r") != wantLines[i] {
			t.Errorf("line %d = %q, want %q", i, gotLines[i], wantLines[i])
		}
	}
}

func TestWriteCSVRowWidthMismatch(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []string{"a", "b"}, [][]string{{"only one"}})
	if err == nil {
		t.Fatal("expected an error for mismatched row width")
	}
}
