package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[design]
files = ["rtl/top.sv", "rtl/sub.sv"]
tops = ["top"]

[diagnostics]
max = 50
disabled_warnings = ["unconnected-port"]
`)
	m, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Design.Files) != 2 || m.Design.Tops[0] != "top" {
		t.Fatalf("manifest contents: %+v", m)
	}
	if m.Diagnostics.Max != 50 || m.Diagnostics.DisabledWarnings[0] != "unconnected-port" {
		t.Fatalf("diagnostics section: %+v", m.Diagnostics)
	}
	paths := m.FilePaths()
	if paths[0] != filepath.Join(dir, "rtl/top.sv") {
		t.Fatalf("file path resolution: %v", paths)
	}
}

func TestLoadManifestRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[design]
files = ["a.sv"]
frobnicate = true
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("unknown key must be rejected")
	}
}

func TestLoadManifestRequiresFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "[design]\nfiles = []\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("empty file list must be rejected")
	}
}

func TestFindWalksUp(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "[design]\nfiles = [\"a.sv\"]\n")
	nested := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	found, err := Find(nested)
	if err != nil {
		t.Fatal(err)
	}
	if found != filepath.Join(dir, ManifestName) {
		t.Fatalf("found %q", found)
	}
}
