package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadWorkspace_FlagOverrides(t *testing.T) {
	dir := t.TempDir()
	cfg := "workers: 3\ncompiler:\n  binary: lualatex\n"
	if err := os.WriteFile(filepath.Join(dir, "texcheck.yaml"), []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	rootFlags.dir = dir
	rootFlags.workers = 7
	rootFlags.compiler = "xelatex"
	defer func() {
		rootFlags.dir = "."
		rootFlags.workers = 0
		rootFlags.compiler = ""
	}()

	ws, err := loadWorkspace()
	if err != nil {
		t.Fatalf("loadWorkspace: %v", err)
	}
	if ws.Workers != 7 {
		t.Errorf("Workers = %d, want flag override 7", ws.Workers)
	}
	if ws.Compiler.Binary != "xelatex" {
		t.Errorf("Compiler.Binary = %q, want flag override xelatex", ws.Compiler.Binary)
	}
}

func TestLoadWorkspace_FileValuesWithoutFlags(t *testing.T) {
	dir := t.TempDir()
	cfg := "workers: 3\ncompiler:\n  binary: lualatex\n"
	if err := os.WriteFile(filepath.Join(dir, "texcheck.yaml"), []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	rootFlags.dir = dir
	defer func() { rootFlags.dir = "." }()

	ws, err := loadWorkspace()
	if err != nil {
		t.Fatalf("loadWorkspace: %v", err)
	}
	if ws.Workers != 3 || ws.Compiler.Binary != "lualatex" {
		t.Errorf("workspace file values not honored: workers=%d binary=%q", ws.Workers, ws.Compiler.Binary)
	}
}

func TestPreviewHandler_ServesPage(t *testing.T) {
	page := "<!DOCTYPE html><html><body id=\"report\"><h1>texcheck report</h1></body></html>"
	srv := httptest.NewServer(previewHandler(page))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if string(body) != page {
		t.Errorf("body = %q", body)
	}
}
