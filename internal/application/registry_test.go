package application

import (
	"sync"
	"testing"
)

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()

	id := r.Register("/tmp/img1.raw")
	if id != "E001" {
		t.Fatalf("expected E001, got %s", id)
	}

	rec, ok := r.Resolve(id)
	if !ok {
		t.Fatal("expected record to resolve")
	}
	if !rec.Open {
		t.Error("expected new record to be open")
	}
	if rec.Path != "/tmp/img1.raw" {
		t.Errorf("expected path /tmp/img1.raw, got %s", rec.Path)
	}
	if rec.RegisteredAt.IsZero() {
		t.Error("expected registration time to be set")
	}

	if second := r.Register("/tmp/img2.E01"); second != "E002" {
		t.Errorf("expected E002, got %s", second)
	}
}

func TestRegistryAcceptsAnyPath(t *testing.T) {
	r := NewRegistry()

	for _, path := range []string{"/does/not/exist.txt", "relative/path", "C:\\evidence\\disk.bin"} {
		id := r.Register(path)
		rec, ok := r.Resolve(id)
		if !ok || rec.Path != path {
			t.Errorf("expected %s to be stored unchanged, got %+v", path, rec)
		}
	}
}

func TestRegistryClose(t *testing.T) {
	r := NewRegistry()
	id := r.Register("/tmp/img1.raw")

	if !r.Close(id) {
		t.Fatal("expected close of known id to succeed")
	}
	rec, _ := r.Resolve(id)
	if rec.Open {
		t.Error("expected record to be closed")
	}

	if !r.Close(id) {
		t.Error("expected second close to still report success")
	}
	rec, _ = r.Resolve(id)
	if rec.Open {
		t.Error("expected record to stay closed")
	}

	if r.Close("E999") {
		t.Error("expected close of unknown id to report false")
	}
	if _, ok := r.Resolve("E999"); ok {
		t.Error("closing an unknown id must not create it")
	}
}

func TestRegistryIDsNeverReused(t *testing.T) {
	r := NewRegistry()
	first := r.Register("/a.raw")
	r.Close(first)

	if next := r.Register("/a.raw"); next == first {
		t.Errorf("expected fresh id after close, got %s again", next)
	}
}

func TestRegistryResolveReturnsCopy(t *testing.T) {
	r := NewRegistry()
	id := r.Register("/a.raw")

	rec, _ := r.Resolve(id)
	rec.Open = false
	rec.Path = "/tampered"

	again, _ := r.Resolve(id)
	if !again.Open || again.Path != "/a.raw" {
		t.Errorf("expected registry state to be unaffected, got %+v", again)
	}
}

func TestRegistryConcurrentRegister(t *testing.T) {
	r := NewRegistry()
	const workers = 50

	ids := make(chan string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- r.Register("/tmp/img.raw")
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
	if len(seen) != workers {
		t.Errorf("expected %d ids, got %d", workers, len(seen))
	}
	if _, ok := r.Resolve("E050"); !ok {
		t.Error("expected E050 to be the last issued id")
	}
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 12; i++ {
		r.Register("/img.raw")
	}
	r.Close("E003")

	records := r.List()
	if len(records) != 12 {
		t.Fatalf("expected 12 records, got %d", len(records))
	}
	if records[0].ID != "E001" || records[11].ID != "E012" {
		t.Errorf("expected records ordered E001..E012, got %s..%s", records[0].ID, records[11].ID)
	}
	if records[2].Open {
		t.Error("expected E003 to be listed as closed")
	}
}

func TestRegistryIsOpen(t *testing.T) {
	r := NewRegistry()
	id := r.Register("/tmp/a.raw")

	if !r.IsOpen(id) {
		t.Error("new evidence should be open")
	}
	r.Close(id)
	if r.IsOpen(id) {
		t.Error("closed evidence reported open")
	}
	if r.IsOpen("E999") {
		t.Error("unknown evidence reported open")
	}
}

func TestRegistryRunIDsDiffer(t *testing.T) {
	a, b := NewRegistry(), NewRegistry()
	if a.RunID() == "" || a.RunID() == b.RunID() {
		t.Errorf("expected distinct run IDs, got %q and %q", a.RunID(), b.RunID())
	}
}
