package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"svelab/internal/diag"
	"svelab/internal/numeric"
	"svelab/internal/sema"
	"svelab/internal/source"
)

const cacheVersion = 1

// Snapshot is the persisted summary of an elaboration run: per-definition
// parameter values plus a diagnostics digest, keyed by source hashes. A
// matching snapshot lets the CLI report "up to date" without re-elaborating.
type Snapshot struct {
	Version     int               `msgpack:"version"`
	FileHashes  map[string]string `msgpack:"file_hashes"`
	Definitions []DefSummary      `msgpack:"definitions"`
	ErrorCount  int               `msgpack:"error_count"`
	DiagDigest  string            `msgpack:"diag_digest"`
}

// DefSummary records one definition and the resolved parameters of its
// top-level instance, if any.
type DefSummary struct {
	Name   string            `msgpack:"name"`
	Kind   string            `msgpack:"kind"`
	Params map[string]string `msgpack:"params"`
}

// BuildSnapshot summarizes a finished run.
func BuildSnapshot(res *Result) *Snapshot {
	snap := &Snapshot{
		Version:    cacheVersion,
		FileHashes: make(map[string]string),
	}
	for i := 0; i < res.FileSet.Len(); i++ {
		f := res.FileSet.Get(source.FileID(i))
		snap.FileHashes[f.Path] = hex.EncodeToString(f.Hash[:])
	}

	for _, def := range res.Compilation.Definitions() {
		snap.Definitions = append(snap.Definitions, DefSummary{
			Name: def.Name(),
			Kind: def.DefKind.String(),
		})
	}
	root := res.Compilation.GetRoot()
	for _, inst := range root.TopInstances {
		params := make(map[string]string)
		for _, p := range inst.Parameters {
			v := sema.ParameterValue(res.Compilation, p)
			if v.Kind() != numeric.KindInvalid {
				params[p.Name()] = v.String()
			}
		}
		for i := range snap.Definitions {
			if snap.Definitions[i].Name == inst.Definition.Name() {
				snap.Definitions[i].Params = params
			}
		}
	}

	errorCount := 0
	hasher := sha256.New()
	for _, d := range res.Bag.Items() {
		if d.Severity == diag.SevError {
			errorCount++
		}
		fmt.Fprintf(hasher, "%d:%s;", d.Code, d.Primary.String())
	}
	snap.ErrorCount = errorCount
	snap.DiagDigest = hex.EncodeToString(hasher.Sum(nil))
	return snap
}

// cachePath places the snapshot under .svelab in the project directory.
func cachePath(dir string) string {
	return filepath.Join(dir, ".svelab", "elab.msgpack")
}

// SaveSnapshot writes the snapshot next to the manifest.
func SaveSnapshot(dir string, snap *Snapshot) error {
	path := cachePath(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := msgpack.Marshal(snap)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadSnapshot reads a previously saved snapshot; a missing or mismatched
// file returns nil.
func LoadSnapshot(dir string) *Snapshot {
	data, err := os.ReadFile(cachePath(dir))
	if err != nil {
		return nil
	}
	var snap Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil
	}
	if snap.Version != cacheVersion {
		return nil
	}
	return &snap
}

// UpToDate reports whether the snapshot still matches the sources on disk.
func (s *Snapshot) UpToDate() bool {
	for path, want := range s.FileHashes {
		content, err := os.ReadFile(path)
		if err != nil {
			return false
		}
		sum := sha256.Sum256(normalize(content))
		if hex.EncodeToString(sum[:]) != want {
			return false
		}
	}
	return true
}

// normalize mirrors the file-set load normalization so hashes line up.
func normalize(content []byte) []byte {
	out := content
	if len(out) >= 3 && out[0] == 0xEF && out[1] == 0xBB && out[2] == 0xBF {
		out = out[3:]
	}
	var cleaned []byte
	for i := 0; i < len(out); i++ {
		if out[i] == '\r' && i+1 < len(out) && out[i+1] == '\n' {
			continue
		}
		cleaned = append(cleaned, out[i])
	}
	return cleaned
}
