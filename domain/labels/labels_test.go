package labels

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soocke/fastlabel-go/domain/annotation"
)

func within1(a, b int) bool { return a-b <= 1 && b-a <= 1 }

func TestRoundTrip(t *testing.T) {
	size := annotation.Size{W: 100, H: 100}
	store := NewStore(t.TempDir())
	in := annotation.Snapshot{{X1: 10, Y1: 10, X2: 50, Y2: 60, ClassID: 2}}
	if err := store.Write("imgs/cat.png", size, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, ok, err := store.Read("/elsewhere/cat.png", size)
	if err != nil || !ok {
		t.Fatalf("read: ok=%v err=%v", ok, err)
	}
	if len(out) != 1 {
		t.Fatalf("expected one box, got %+v", out)
	}
	g := out[0]
	if g.ClassID != 2 || !within1(g.X1, 10) || !within1(g.Y1, 10) || !within1(g.X2, 50) || !within1(g.Y2, 60) {
		t.Fatalf("round trip drifted: %+v", g)
	}
}

func TestEncodeFormat(t *testing.T) {
	var buf bytes.Buffer
	snap := annotation.Snapshot{{X1: 10, Y1: 10, X2: 50, Y2: 60, ClassID: 2}}
	if err := Encode(&buf, snap, annotation.Size{W: 100, H: 100}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got, want := buf.String(), "2 0.300000 0.350000 0.400000 0.500000\n"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestDecodeSkipsBadLines(t *testing.T) {
	src := strings.Join([]string{
		"0 0.5 0.5 0.2 0.2",
		"",
		"1 0.5 0.5",
		"x 0.5 0.5 0.2 0.2",
		"2 0.5 0.5 0 0.2",
		"3.0 0.1 0.1 0.1 0.1 extra",
		"4.0 1.2 0.5 0.5 0.5",
		"-1 0.5 0.5 0.2 0.2",
	}, "\n")
	snap, err := Decode(strings.NewReader(src), annotation.Size{W: 100, H: 100})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(snap) != 2 {
		t.Fatalf("expected 2 boxes, got %+v", snap)
	}
	if snap[0] != (annotation.Entry{X1: 40, Y1: 40, X2: 60, Y2: 60, ClassID: 0}) {
		t.Fatalf("unexpected first box %+v", snap[0])
	}
	// The second is clamped at the right edge and keeps its float class id.
	if snap[1].ClassID != 4 || snap[1].X2 != 99 {
		t.Fatalf("unexpected clamped box %+v", snap[1])
	}
}

func TestReadMissingFile(t *testing.T) {
	store := NewStore(t.TempDir())
	snap, ok, err := store.Read("nothing.png", annotation.Size{W: 10, H: 10})
	if err != nil || ok || snap != nil {
		t.Fatalf("missing file must be silent: %v %v %v", snap, ok, err)
	}
}

func TestWriteEmptyTruncates(t *testing.T) {
	store := NewStore(t.TempDir())
	size := annotation.Size{W: 10, H: 10}
	if err := store.Write("a.jpg", size, annotation.Snapshot{{X1: 1, Y1: 1, X2: 8, Y2: 8}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := store.Write("a.jpg", size, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(store.PathFor("a.jpg"))
	if err != nil || len(data) != 0 {
		t.Fatalf("expected empty file, got %q %v", data, err)
	}
	entries, _ := os.ReadDir(store.Dir)
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestDatasetRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "labels"))
	classes := annotation.NewClassTable(
		annotation.ClassDefinition{ID: 0, Name: "car", Color: annotation.RGB{R: 255}, Visible: true},
		annotation.ClassDefinition{ID: 3, Name: "bike", Color: annotation.AutoColor(3), Visible: false},
	)
	if err := store.WriteDataset(classes, "/data/images"); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	ds, ok, err := store.ReadDataset()
	if err != nil || !ok {
		t.Fatalf("read dataset: %v %v", ok, err)
	}
	if ds.Count != 2 || ds.Names[3] != "bike" || ds.Train != "/data/images" {
		t.Fatalf("unexpected dataset %+v", ds)
	}
	got := ds.Classes()
	if d, _ := got.Get(0); d.Name != "car" || d.Color != (annotation.RGB{R: 255}) {
		t.Fatalf("unexpected class 0 %+v", d)
	}
	if got.Len() != 2 {
		t.Fatalf("expected 2 classes, got %d", got.Len())
	}
}

func TestParseFilter(t *testing.T) {
	cases := map[string]Filter{
		"All":       {Kind: FilterAll},
		"labeled":   {Kind: FilterLabeled},
		"Unlabeled": {Kind: FilterUnlabeled},
		"Has:3":     {Kind: FilterHasClass, ClassID: 3},
	}
	for in, want := range cases {
		got, err := ParseFilter(in)
		if err != nil || got != want {
			t.Fatalf("%s: got %+v %v", in, got, err)
		}
		if round, _ := ParseFilter(got.String()); round != want {
			t.Fatalf("%s did not survive String(): %+v", in, round)
		}
	}
	if _, err := ParseFilter("Has:x"); err == nil {
		t.Fatalf("expected error for bad class id")
	}
}

func TestIndexRebuildAndFilter(t *testing.T) {
	store := NewStore(t.TempDir())
	size := annotation.Size{W: 50, H: 50}
	if err := store.Write("disk.png", size, annotation.Snapshot{{X1: 1, Y1: 1, X2: 20, Y2: 20, ClassID: 5}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	paths := []string{"mem.png", "disk.png", "empty.png"}
	mem := map[string]annotation.Snapshot{
		"mem.png": {{X1: 0, Y1: 0, X2: 10, Y2: 10, ClassID: 1}, {X1: 0, Y1: 0, X2: 10, Y2: 10, ClassID: 2}},
	}
	idx := NewIndex()
	errs := idx.Rebuild(paths, mem, store, func(string) (annotation.Size, error) { return size, nil })
	if len(errs) != 0 {
		t.Fatalf("unexpected errors %v", errs)
	}
	if e := idx.Get("mem.png"); e.Boxes != 2 || len(e.Classes) != 2 {
		t.Fatalf("unexpected mem entry %+v", e)
	}
	if e := idx.Get("disk.png"); e.Boxes != 1 || !e.Has(5) {
		t.Fatalf("unexpected disk entry %+v", e)
	}
	check := func(f Filter, want ...string) {
		t.Helper()
		got := idx.Filter(paths, f)
		if strings.Join(got, ",") != strings.Join(want, ",") {
			t.Fatalf("%s: got %v want %v", f, got, want)
		}
	}
	check(Filter{Kind: FilterAll}, paths...)
	check(Filter{Kind: FilterLabeled}, "mem.png", "disk.png")
	check(Filter{Kind: FilterUnlabeled}, "empty.png")
	check(Filter{Kind: FilterHasClass, ClassID: 5}, "disk.png")

	idx.Update("empty.png", annotation.Snapshot{{X1: 0, Y1: 0, X2: 9, Y2: 9, ClassID: 5}})
	check(Filter{Kind: FilterHasClass, ClassID: 5}, "disk.png", "empty.png")
	if ids := idx.ClassIDs(); len(ids) != 3 || ids[0] != 1 || ids[2] != 5 {
		t.Fatalf("unexpected class ids %v", ids)
	}
	if labeled, boxes := idx.Totals(); labeled != 3 || boxes != 4 {
		t.Fatalf("unexpected totals %d %d", labeled, boxes)
	}
}
