package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"slices"
	"sort"

	"fortio.org/safecast"
)

// FileSet manages a collection of source files and resolves spans back to
// line/column positions.
type FileSet struct {
	files []File
	index map[string]FileID // path -> id
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// Add stores a file from normalized bytes, computes the line index and hash,
// and returns a fresh FileID. A repeated path shadows the earlier entry in
// the path index.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	hash := sha256.Sum256(content)
	lineIdx := buildLineIndex(content)

	lenFiles, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("svelab: file set overflow: %w", err))
	}
	id := FileID(lenFiles)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    path,
		Content: content,
		LineIdx: lineIdx,
		Hash:    hash,
		Flags:   flags,
	})
	fs.index[path] = id
	return id
}

// Load reads a file from disk, normalizes CRLF and BOM, and calls Add.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)

	flags := FileFlags(0)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return fs.Add(path, content, flags), nil
}

// AddVirtual adds an in-memory file (test, stdin, generated).
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.Add(name, content, FileVirtual)
}

// Get returns the file metadata for the given ID, or nil if out of range.
func (fs *FileSet) Get(id FileID) *File {
	if int(id) >= len(fs.files) {
		return nil
	}
	return &fs.files[id]
}

// ByPath returns the latest file registered under path.
func (fs *FileSet) ByPath(path string) (*File, bool) {
	if id, ok := fs.index[path]; ok {
		return &fs.files[id], true
	}
	return nil, false
}

// Len reports the number of registered files.
func (fs *FileSet) Len() int { return len(fs.files) }

// Position resolves a byte offset inside a file to a 1-based line/column.
func (fs *FileSet) Position(file FileID, offset uint32) LineCol {
	f := fs.Get(file)
	if f == nil {
		return LineCol{Line: 1, Col: 1}
	}
	line := sort.Search(len(f.LineIdx), func(i int) bool {
		return f.LineIdx[i] > offset
	})
	lineStart := uint32(0)
	if line > 0 {
		lineStart = f.LineIdx[line-1]
	}
	return LineCol{
		Line: uint32(line) + 1,
		Col:  offset - lineStart + 1,
	}
}

// LineText returns the raw text of a 1-based line number.
func (fs *FileSet) LineText(file FileID, line uint32) []byte {
	f := fs.Get(file)
	if f == nil || line == 0 {
		return nil
	}
	starts := append([]uint32{0}, f.LineIdx...)
	if int(line) > len(starts) {
		return nil
	}
	start := starts[line-1]
	end := uint32(len(f.Content))
	if int(line) <= len(f.LineIdx) {
		end = f.LineIdx[line-1] - 1
	}
	if end < start {
		end = start
	}
	return f.Content[start:end]
}

// buildLineIndex records the byte offset just past every newline.
func buildLineIndex(content []byte) []uint32 {
	var idx []uint32
	for i, b := range content {
		if b == '\n' {
			idx = append(idx, uint32(i)+1)
		}
	}
	return idx
}

// normalizeCRLF replaces every \r\n with \n, leaving lone \r untouched.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !slices.Contains(content, '\r') {
		return content, false
	}
	out := make([]byte, 0, len(content))
	changed := false
	i := 0
	for i < len(content) {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			out = append(out, '\n')
			i += 2
			changed = true
		} else {
			out = append(out, content[i])
			i++
		}
	}
	return out, changed
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}
	return content, false
}
