package cmd

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestReportFormat(t *testing.T) {
	tests := []struct {
		explicit, out, fallback string
		want                    string
	}{
		{"HTML", "budget.csv", "text", "html"},
		{"", "budget.csv", "text", "csv"},
		{"", "budget.xlsx", "text", "xlsx"},
		{"", "summary.htm", "text", "html"},
		{"", "summary.yml", "text", "yaml"},
		{"", "notes.txt", "json", "text"},
		{"", "budget.pdf", "json", "json"},
		{"", "", "yaml", "yaml"},
	}
	for _, tt := range tests {
		if got := reportFormat(tt.explicit, tt.out, tt.fallback); got != tt.want {
			t.Errorf("reportFormat(%q, %q, %q) = %q, want %q", tt.explicit, tt.out, tt.fallback, got, tt.want)
		}
	}
}

func TestWriteFileCountsBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	n, err := writeFile(path, func(w io.Writer) error {
		_, err := w.Write([]byte("hello"))
		return err
	})
	if err != nil {
		t.Fatalf("writeFile: %v", err)
	}
	if n != 5 {
		t.Errorf("bytes = %d, want 5", n)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte("hello")) {
		t.Errorf("content = %q", data)
	}
}

func TestWriteFileRemovesPartialOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	boom := errors.New("boom")
	_, err := writeFile(path, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("partial file left behind: %v", err)
	}
}

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"serve", "--detach", "--addr", ":9000", "--detach=true"})
	want := []string{"serve", "--addr", ":9000"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestPIDRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pbudgetd.pid")
	if err := writePID(path, 4242); err != nil {
		t.Fatal(err)
	}
	pid, err := readPID(path)
	if err != nil {
		t.Fatal(err)
	}
	if pid != 4242 {
		t.Errorf("pid = %d, want 4242", pid)
	}

	if err := os.WriteFile(path, []byte("nope\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := readPID(path); err == nil {
		t.Error("expected error for malformed pid file")
	}
}

func TestEnsureServeNotRunningClearsStalePID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pbudgetd.pid")
	if err := ensureServeNotRunning(path); err != nil {
		t.Fatalf("missing pid file: %v", err)
	}

	// Pids this large are not handed out on Linux or macOS.
	if err := writePID(path, 1<<30); err != nil {
		t.Fatal(err)
	}
	if err := ensureServeNotRunning(path); err != nil {
		t.Fatalf("stale pid: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("stale pid file not removed")
	}
}
