package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file the driver looks for in a project directory.
const ManifestName = "svelab.toml"

// Manifest is the driver configuration: source files, the design tops, and
// diagnostic controls.
type Manifest struct {
	Design struct {
		// Files lists source files relative to the manifest directory.
		Files []string `toml:"files"`
		// Tops names the top modules; empty elaborates every
		// uninstantiated module.
		Tops []string `toml:"tops"`
	} `toml:"design"`

	Diagnostics struct {
		// Max bounds the number of stored diagnostics.
		Max int `toml:"max"`
		// DisabledWarnings lists warning groups to silence.
		DisabledWarnings []string `toml:"disabled_warnings"`
	} `toml:"diagnostics"`

	// Dir is the directory the manifest was loaded from.
	Dir string `toml:"-"`
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if len(m.Design.Files) == 0 {
		return nil, fmt.Errorf("%s: [design] files must not be empty", path)
	}
	m.Dir = filepath.Dir(path)
	return &m, nil
}

// Find walks up from dir looking for a manifest file.
func Find(dir string) (string, error) {
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("no " + ManifestName + " found")
		}
		dir = parent
	}
}

// FilePaths resolves the manifest's file list against its directory.
func (m *Manifest) FilePaths() []string {
	out := make([]string, 0, len(m.Design.Files))
	for _, f := range m.Design.Files {
		if filepath.IsAbs(f) {
			out = append(out, f)
			continue
		}
		out = append(out, filepath.Join(m.Dir, f))
	}
	return out
}
