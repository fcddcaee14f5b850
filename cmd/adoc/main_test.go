package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunStdinToStdout(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-a", "who=World"}, strings.NewReader("Hello {who}.\n"), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Hello World.") {
		t.Errorf("unexpected output %q", stdout.String())
	}
}

func TestRunFiles(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "guide.adoc")
	if err := os.WriteFile(in, []byte("= Guide\n\n== Start\n\nText.\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	attrs := filepath.Join(dir, "attrs.yaml")
	if err := os.WriteFile(attrs, []byte("sectnums: \"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--attributes-file", attrs, in}, nil, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	data, err := os.ReadFile(filepath.Join(dir, "guide.html"))
	if err != nil {
		t.Fatalf("expected sibling html file: %v", err)
	}
	if !strings.Contains(string(data), "1. Start") {
		t.Errorf("expected numbered section, got %s", data)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"unknown flag", []string{"--nope"}, 2},
		{"empty attribute name", []string{"-a", "=x"}, 2},
		{"missing attributes file", []string{"--attributes-file", "/does/not/exist.yaml"}, 2},
		{"missing input", []string{"/does/not/exist.adoc"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if got := run(context.Background(), tt.args, strings.NewReader(""), &stdout, &stderr); got != tt.want {
				t.Errorf("expected exit %d, got %d", tt.want, got)
			}
		})
	}
}

func TestOutputFor(t *testing.T) {
	tests := []struct {
		input, out string
		count      int
		want       string
	}{
		{"-", "", 1, "-"},
		{"doc.adoc", "", 1, "doc.html"},
		{"dir/doc.adoc", "-", 2, "-"},
		{"dir/doc.adoc", "out.html", 1, "out.html"},
		{"dir/doc.adoc", "site", 2, filepath.Join("site", "doc.html")},
		{"-", "site", 2, filepath.Join("site", "stdin.html")},
	}
	for _, tt := range tests {
		if got := outputFor(tt.input, tt.out, tt.count); got != tt.want {
			t.Errorf("outputFor(%q, %q, %d) = %q, want %q", tt.input, tt.out, tt.count, got, tt.want)
		}
	}
}
