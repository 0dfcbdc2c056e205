package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"svelab/internal/project"
)

func writeProject(t *testing.T, files map[string]string, manifest string) *project.Manifest {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(dir, project.ManifestName)
	if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := project.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestRunElaboratesProject(t *testing.T) {
	m := writeProject(t, map[string]string{
		"sub.sv": `
module sub #(parameter W = 4)(input logic [W-1:0] d, output logic [W-1:0] q);
  assign q = d;
endmodule`,
		"top.sv": `
module top;
  logic [7:0] a, b;
  sub #(.W(8)) u (.d(a), .q(b));
endmodule`,
	}, `
[design]
files = ["sub.sv", "top.sv"]
tops = ["top"]
`)

	res, err := Run(context.Background(), m)
	if err != nil {
		t.Fatal(err)
	}
	if res.Bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", res.Bag.Items())
	}
	root := res.Compilation.GetRoot()
	if len(root.TopInstances) != 1 || root.TopInstances[0].Name() != "top" {
		t.Fatalf("top instances: %+v", root.TopInstances)
	}
}

func TestRunReportsErrors(t *testing.T) {
	m := writeProject(t, map[string]string{
		"bad.sv": `
module bad;
  assign x = missing_signal;
endmodule`,
	}, `
[design]
files = ["bad.sv"]
tops = ["bad"]
`)
	res, err := Run(context.Background(), m)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Bag.HasErrors() {
		t.Fatalf("expected undeclared identifier errors")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	m := writeProject(t, map[string]string{
		"top.sv": "module top #(parameter W = 8)(); endmodule",
	}, `
[design]
files = ["top.sv"]
tops = ["top"]
`)
	res, err := Run(context.Background(), m)
	if err != nil {
		t.Fatal(err)
	}

	snap := BuildSnapshot(res)
	if err := SaveSnapshot(m.Dir, snap); err != nil {
		t.Fatal(err)
	}
	loaded := LoadSnapshot(m.Dir)
	if loaded == nil {
		t.Fatalf("snapshot did not load")
	}
	if !loaded.UpToDate() {
		t.Fatalf("snapshot must be up to date immediately after save")
	}
	found := false
	for _, d := range loaded.Definitions {
		if d.Name == "top" && d.Params["W"] == "32'sd8" {
			found = true
		}
	}
	if !found {
		t.Fatalf("definition summary missing: %+v", loaded.Definitions)
	}

	// editing the source invalidates the snapshot
	path := filepath.Join(m.Dir, "top.sv")
	if err := os.WriteFile(path, []byte("module top; endmodule"), 0o644); err != nil {
		t.Fatal(err)
	}
	if loaded.UpToDate() {
		t.Fatalf("snapshot must go stale after edits")
	}
}
