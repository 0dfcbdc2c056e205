package driver

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"svelab/internal/comp"
	"svelab/internal/diag"
	"svelab/internal/project"
	"svelab/internal/source"
	"svelab/internal/syntax"
)

// Result is the outcome of a full front-end run.
type Result struct {
	Compilation *comp.Compilation
	FileSet     *source.FileSet
	Bag         *diag.Bag
}

// Run loads, parses, and elaborates the files named by the manifest.
// Lexing and parsing fan out across cores; elaboration itself is
// single-threaded by design.
func Run(ctx context.Context, m *project.Manifest) (*Result, error) {
	groups := diag.NewGroupControl()
	for _, g := range m.Diagnostics.DisabledWarnings {
		groups.Disable(g)
	}

	compilation := comp.New(comp.Options{
		MaxDiagnostics: m.Diagnostics.Max,
		TopModules:     m.Design.Tops,
		Groups:         groups,
	})

	fs := source.NewFileSet()
	paths := m.FilePaths()

	// load serially so FileIDs are deterministic, parse in parallel
	files := make([]source.FileID, len(paths))
	for i, path := range paths {
		id, err := fs.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		files[i] = id
	}

	type parsed struct {
		index int
		tree  *syntax.Tree
		bag   *diag.Bag
	}
	results := make([]parsed, len(files))
	var mu sync.Mutex

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, id := range files {
		i, id := i, id
		g.Go(func() error {
			bag := diag.NewBag(m.Diagnostics.Max)
			tree := syntax.Parse(fs.Get(id), nil, diag.NewBagReporter(bag))
			mu.Lock()
			results[i] = parsed{index: i, tree: tree, bag: bag}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// merge per-file diagnostics and install trees in manifest order
	sort.SliceStable(results, func(a, b int) bool { return results[a].index < results[b].index })
	for _, r := range results {
		compilation.Diagnostics().Merge(r.bag)
		compilation.AddSyntaxTree(r.tree)
	}

	compilation.Elaborate()

	bag := compilation.Diagnostics()
	bag.Sort()
	bag.Dedup()
	return &Result{Compilation: compilation, FileSet: fs, Bag: bag}, nil
}
