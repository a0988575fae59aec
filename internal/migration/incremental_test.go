package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func src(path, content string) Source {
	return Source{Path: path, Content: []byte(content)}
}

func TestComputeFingerprints(t *testing.T) {
	files := []Source{src("a/Product.java", "class Product {}"), src("Status.java", "enum Status {}")}
	fps := ComputeFingerprints(files, "all")
	if len(fps) != 2 {
		t.Fatalf("expected 2 fingerprints, got %d", len(fps))
	}
	if fps["a/Product.java"].FileHash == fps["Status.java"].FileHash {
		t.Error("different content should hash differently")
	}

	again := ComputeFingerprints(files, "all")
	if again["a/Product.java"].CompositeHash != fps["a/Product.java"].CompositeHash {
		t.Error("fingerprints should be deterministic")
	}

	other := ComputeFingerprints(files, "full")
	if other["a/Product.java"].FileHash != fps["a/Product.java"].FileHash {
		t.Error("settings must not change the file hash")
	}
	if other["a/Product.java"].CompositeHash == fps["a/Product.java"].CompositeHash {
		t.Error("settings should change the composite hash")
	}
}

func TestLoadStateMissing(t *testing.T) {
	state, err := LoadState(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if state != nil {
		t.Error("expected nil state for an empty directory")
	}
}

func TestLoadStateCorrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, StateFileName), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadState(dir); err == nil {
		t.Error("expected decode error")
	}
}

func TestStatePersistence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	state := NewState("smart")
	state.Fingerprints = ComputeFingerprints([]Source{src("A.java", "class A {}")}, "smart")
	if err := state.Save(dir); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadState(dir)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Settings != "smart" || len(loaded.Fingerprints) != 1 {
		t.Errorf("unexpected state %+v", loaded)
	}
}

func TestIncrementalRunner_MultiRun(t *testing.T) {
	dir := t.TempDir()
	runner := NewIncrementalRunner(&IncrementalConfig{StateDir: dir, Settings: "all"})

	run1 := []Source{src("A.java", "class A {}"), src("B.java", "class B {}"), src("C.java", "class C {}")}
	res, err := runner.Analyze(run1)
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsFirstRun || len(res.NewFiles) != 3 {
		t.Fatalf("run 1: expected 3 new files on first run, got %+v", res)
	}
	// B fails to convert and is left out of the state.
	if err := runner.SaveState([]Source{run1[0], run1[2]}, res.UnchangedFiles); err != nil {
		t.Fatal(err)
	}

	run2 := []Source{src("A.java", "class A { int x; }"), run1[1], run1[2]}
	res, err = runner.Analyze(run2)
	if err != nil {
		t.Fatal(err)
	}
	if res.IsFirstRun {
		t.Error("run 2 should not be a first run")
	}
	if strings.Join(res.ChangedFiles, ",") != "A.java" {
		t.Errorf("run 2 changed = %v", res.ChangedFiles)
	}
	if strings.Join(res.NewFiles, ",") != "B.java" {
		t.Errorf("run 2 new = %v", res.NewFiles)
	}
	if res.Skipped != 1 || res.UnchangedFiles[0] != "C.java" {
		t.Errorf("run 2 unchanged = %v", res.UnchangedFiles)
	}
	if err := runner.SaveState([]Source{run2[0], run2[1]}, res.UnchangedFiles); err != nil {
		t.Fatal(err)
	}

	run3 := []Source{run2[0], run2[1]}
	res, err = runner.Analyze(run3)
	if err != nil {
		t.Fatal(err)
	}
	if len(runner.FilesToConvert(res)) != 0 {
		t.Errorf("run 3 should convert nothing, got %v", runner.FilesToConvert(res))
	}
	if strings.Join(res.DeletedFiles, ",") != "C.java" {
		t.Errorf("run 3 deleted = %v", res.DeletedFiles)
	}
}

func TestIncrementalRunner_SettingsChangeInvalidates(t *testing.T) {
	dir := t.TempDir()
	files := []Source{src("A.java", "class A {}")}

	first := NewIncrementalRunner(&IncrementalConfig{StateDir: dir, Settings: "all"})
	res, _ := first.Analyze(files)
	if err := first.SaveState(files, res.UnchangedFiles); err != nil {
		t.Fatal(err)
	}

	second := NewIncrementalRunner(&IncrementalConfig{StateDir: dir, Settings: "full"})
	res, err := second.Analyze(files)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.ChangedFiles) != 1 {
		t.Errorf("expected the file to be reconverted, got %+v", res)
	}
}

func TestIncrementalRunner_MissingOutput(t *testing.T) {
	dir := t.TempDir()
	files := []Source{src("A.java", "class A {}")}
	runner := NewIncrementalRunner(&IncrementalConfig{
		StateDir:   dir,
		Settings:   "all",
		OutputPath: func(p string) string { return filepath.Join(dir, strings.TrimSuffix(p, ".java")+".ts") },
	})
	res, _ := runner.Analyze(files)
	if err := runner.SaveState(files, res.UnchangedFiles); err != nil {
		t.Fatal(err)
	}

	res, _ = runner.Analyze(files)
	if len(res.ChangedFiles) != 1 {
		t.Fatalf("missing output should force reconversion, got %+v", res)
	}

	if err := os.WriteFile(filepath.Join(dir, "A.ts"), []byte("export interface A {}"), 0o644); err != nil {
		t.Fatal(err)
	}
	res, _ = runner.Analyze(files)
	if res.Skipped != 1 {
		t.Errorf("expected skip once output exists, got %+v", res)
	}
	if runner.Needs(res)("A.java") {
		t.Error("A.java should not be needed")
	}
}

func TestIncrementalRunner_ForceAll(t *testing.T) {
	runner := NewIncrementalRunner(&IncrementalConfig{StateDir: t.TempDir(), ForceAll: true})
	res, err := runner.Analyze([]Source{src("B.java", "b"), src("A.java", "a")})
	if err != nil {
		t.Fatal(err)
	}
	if !res.ForcedFull || strings.Join(res.ChangedFiles, ",") != "A.java,B.java" {
		t.Errorf("unexpected result %+v", res)
	}
	if !runner.Needs(res)("B.java") {
		t.Error("B.java should be needed")
	}
}

func TestFormatIncrementalReport(t *testing.T) {
	report := FormatIncrementalReport(&IncrementalResult{
		TotalFiles:     4,
		ChangedFiles:   []string{"A.java"},
		NewFiles:       []string{"B.java"},
		UnchangedFiles: []string{"C.java", "D.java"},
		DeletedFiles:   []string{"E.java"},
		Skipped:        2,
	})
	for _, want := range []string{"Mode: Incremental", "Skip Rate:       50.0%", "~ A.java", "+ B.java", "- E.java", "Files to Convert: 2"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
	if !strings.Contains(FormatIncrementalReport(&IncrementalResult{IsFirstRun: true}), "First Run") {
		t.Error("expected first run mode")
	}
}
