package labels

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/soocke/fastlabel-go/domain/annotation"
)

// IndexEntry summarises the annotations of one image.
type IndexEntry struct {
	Boxes   int
	Classes []int
}

// Has reports whether the image contains a box of class id.
func (e IndexEntry) Has(id int) bool {
	for _, c := range e.Classes {
		if c == id {
			return true
		}
	}
	return false
}

// FilterKind selects which images the navigator lists.
type FilterKind int

const (
	FilterAll FilterKind = iota
	FilterLabeled
	FilterUnlabeled
	FilterHasClass
)

// Filter is a navigator filter. ClassID is used by FilterHasClass.
type Filter struct {
	Kind    FilterKind
	ClassID int
}

func (f Filter) String() string {
	switch f.Kind {
	case FilterLabeled:
		return "Labeled"
	case FilterUnlabeled:
		return "Unlabeled"
	case FilterHasClass:
		return "Has:" + strconv.Itoa(f.ClassID)
	default:
		return "All"
	}
}

// ParseFilter accepts All, Labeled, Unlabeled and Has:<id>.
func ParseFilter(s string) (Filter, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "all":
		return Filter{Kind: FilterAll}, nil
	case "labeled":
		return Filter{Kind: FilterLabeled}, nil
	case "unlabeled":
		return Filter{Kind: FilterUnlabeled}, nil
	}
	if len(s) > 4 && strings.EqualFold(s[:4], "has:") {
		id, err := strconv.Atoi(strings.TrimSpace(s[4:]))
		if err == nil {
			return Filter{Kind: FilterHasClass, ClassID: id}, nil
		}
	}
	return Filter{}, fmt.Errorf("unknown filter %q", s)
}

// Match reports whether e passes the filter.
func (f Filter) Match(e IndexEntry) bool {
	switch f.Kind {
	case FilterLabeled:
		return e.Boxes > 0
	case FilterUnlabeled:
		return e.Boxes == 0
	case FilterHasClass:
		return e.Has(f.ClassID)
	default:
		return true
	}
}

// SizeFunc reports the pixel size of an image without fully decoding it.
type SizeFunc func(path string) (annotation.Size, error)

// Index maps image paths to their box count and distinct classes. It is safe
// for concurrent use; the headless scanner updates it from the worker side.
type Index struct {
	mu      sync.RWMutex
	entries map[string]IndexEntry
}

func NewIndex() *Index { return &Index{entries: make(map[string]IndexEntry)} }

// Update records snap as the current annotations of path.
func (x *Index) Update(path string, snap annotation.Snapshot) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.entries[path] = IndexEntry{Boxes: len(snap), Classes: snap.ClassIDs()}
}

// Get returns the entry of path; unknown paths are unlabeled.
func (x *Index) Get(path string) IndexEntry {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.entries[path]
}

// Len is the number of indexed images.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// Totals returns the number of images with boxes and the total box count.
func (x *Index) Totals() (labeled, boxes int) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	for _, e := range x.entries {
		if e.Boxes > 0 {
			labeled++
		}
		boxes += e.Boxes
	}
	return labeled, boxes
}

// Rebuild replaces the index for paths. In-memory annotations take priority;
// otherwise the label file on disk is read. Failures are returned per path
// and leave that entry empty.
func (x *Index) Rebuild(paths []string, mem map[string]annotation.Snapshot, store *Store, sizeOf SizeFunc) map[string]error {
	fresh := make(map[string]IndexEntry, len(paths))
	var errs map[string]error
	fail := func(p string, err error) {
		if errs == nil {
			errs = make(map[string]error)
		}
		errs[p] = err
	}
	for _, p := range paths {
		if snap, ok := mem[p]; ok {
			fresh[p] = IndexEntry{Boxes: len(snap), Classes: snap.ClassIDs()}
			continue
		}
		fresh[p] = IndexEntry{}
		if store == nil || sizeOf == nil || !store.Exists(p) {
			continue
		}
		size, err := sizeOf(p)
		if err != nil {
			fail(p, err)
			continue
		}
		snap, _, err := store.Read(p, size)
		if err != nil {
			fail(p, err)
			continue
		}
		fresh[p] = IndexEntry{Boxes: len(snap), Classes: snap.ClassIDs()}
	}
	x.mu.Lock()
	x.entries = fresh
	x.mu.Unlock()
	return errs
}

// Filter returns the paths, in the given order, that match f.
func (x *Index) Filter(paths []string, f Filter) []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if f.Match(x.entries[p]) {
			out = append(out, p)
		}
	}
	return out
}

// ClassIDs returns every class id present anywhere in the index, ascending.
func (x *Index) ClassIDs() []int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	seen := make(map[int]bool)
	var snap annotation.Snapshot
	for _, e := range x.entries {
		for _, c := range e.Classes {
			if !seen[c] {
				seen[c] = true
				snap = append(snap, annotation.Entry{ClassID: c})
			}
		}
	}
	return snap.ClassIDs()
}
