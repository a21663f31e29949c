package exports

import (
	"strings"
	"testing"
)

func TestWriterQuotesEveryField(t *testing.T) {
	var sb strings.Builder
	cw := NewWriter(&sb)

	if err := cw.WriteRow([]string{"Stage", "Count", "Percentual"}); err != nil {
		t.Fatalf("WriteRow returned error: %v", err)
	}
	if err := cw.WriteRow([]string{"Lead", "120", "100"}); err != nil {
		t.Fatalf("WriteRow returned error: %v", err)
	}
	if err := cw.Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}

	want := "\"Stage\",\"Count\",\"Percentual\"\n\"Lead\",\"120\",\"100\"\n"
	if got := sb.String(); got != want {
		t.Fatalf("unexpected output:\ngot  %q\nwant %q", got, want)
	}
}

func TestWriterDoublesEmbeddedQuotes(t *testing.T) {
	var sb strings.Builder
	cw := NewWriter(&sb)

	if err := cw.WriteRow([]string{`He said "hi"`}); err != nil {
		t.Fatalf("WriteRow returned error: %v", err)
	}
	if err := cw.Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}

	want := "\"He said \"\"hi\"\"\"\n"
	if got := sb.String(); got != want {
		t.Fatalf("unexpected output:\ngot  %q\nwant %q", got, want)
	}
}

func TestWriterEmptyFields(t *testing.T) {
	var sb strings.Builder
	cw := NewWriter(&sb)

	if err := cw.WriteRow([]string{"", "a", ""}); err != nil {
		t.Fatalf("WriteRow returned error: %v", err)
	}
	if err := cw.Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}

	want := "\"\",\"a\",\"\"\n"
	if got := sb.String(); got != want {
		t.Fatalf("unexpected output:\ngot  %q\nwant %q", got, want)
	}
}
