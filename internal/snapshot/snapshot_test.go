package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/qixiang/hukou/internal/manager"
	"github.com/qixiang/hukou/internal/store"
)

func TestExportWritesAllFiles(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "test.db")

	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	mgr := manager.New(st, manager.Options{})
	if err := mgr.SeedSampleData(); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	dir := filepath.Join(tmp, "out")
	r := New(mgr, dbPath, dir)
	if err := r.Export(); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	for _, name := range []string{HouseholdsFile, MembersFile, ReportFile} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("missing export file %s: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("export file %s is empty", name)
		}
	}
}

func TestExportCreatesOutputDirectory(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "test.db")

	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	mgr := manager.New(st, manager.Options{})
	dir := filepath.Join(tmp, "nested", "out")
	r := New(mgr, dbPath, dir)
	if err := r.Export(); err != nil {
		t.Fatalf("export into missing directory failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, HouseholdsFile)); err != nil {
		t.Fatalf("households file not created: %v", err)
	}
}
