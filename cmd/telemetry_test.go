package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintEvent(t *testing.T) {
	t.Parallel()

	t.Run("event with sorted data", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		printEvent(&buf, `{"ts":"2024-06-01T10:30:00Z","kind":"commit_created","run":"r1","date":"2024-06-01","data":{"slot":2,"sha":"abc1234"}}`)

		got := strings.TrimSpace(buf.String())
		want := "[10:30:00] commit_created run=r1 date=2024-06-01 sha=abc1234 slot=2"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("minimal event", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		printEvent(&buf, `{"ts":"2024-06-01T10:30:00Z","kind":"run_start"}`)

		got := strings.TrimSpace(buf.String())
		if got != "[10:30:00] run_start" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("undecodable line echoed raw", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		printEvent(&buf, `{not json`)

		if !strings.HasPrefix(buf.String(), "??? {not json") {
			t.Errorf("got %q", buf.String())
		}
	})
}
