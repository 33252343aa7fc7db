package inference

import (
	"maps"
	"math"
	"strings"

	"github.com/soocke/fastlabel-go/domain/annotation"
)

// Clip rounds a detector rectangle to pixels, clips it to size, orders the
// corners and rejects NaN/Inf or anything thinner than minSide.
func Clip(x1, y1, x2, y2 float64, size annotation.Size, minSide int) (annotation.Box, bool) {
	if size.Empty() {
		return annotation.Box{}, false
	}
	for _, v := range [...]float64{x1, y1, x2, y2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return annotation.Box{}, false
		}
	}
	clip := func(v float64, hi int) int {
		return min(max(int(math.Round(v)), 0), hi-1)
	}
	b := annotation.NewBox(clip(x1, size.W), clip(y1, size.H), clip(x2, size.W), clip(y2, size.H), 0)
	if !b.SizeOK(minSide) {
		return annotation.Box{}, false
	}
	return b, true
}

// Resolver maps detector classes to class ids. Detections that carry only a
// label are matched by name (case-insensitive) and unseen names receive the
// next free id.
type Resolver struct {
	byName map[string]int
	names  map[int]string
	next   int
}

// NewResolver seeds the resolver with the known id -> name table.
func NewResolver(known map[int]string) *Resolver {
	r := &Resolver{byName: make(map[string]int), names: make(map[int]string)}
	for id, name := range known {
		r.byName[nameKey(name)] = id
		r.next = max(r.next, id+1)
	}
	return r
}

func nameKey(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Resolve returns the class id for d, or -1 when it has neither id nor label.
func (r *Resolver) Resolve(d Detection) int {
	if d.ClassID >= 0 {
		r.next = max(r.next, d.ClassID+1)
		if label := strings.TrimSpace(d.Label); label != "" {
			if _, ok := r.names[d.ClassID]; !ok {
				r.names[d.ClassID] = label
			}
		}
		return d.ClassID
	}
	key := nameKey(d.Label)
	if key == "" {
		return -1
	}
	if id, ok := r.byName[key]; ok {
		return id
	}
	id := r.next
	r.next++
	r.byName[key] = id
	r.names[id] = strings.TrimSpace(d.Label)
	return id
}

// Names returns the labels the detector reported, by id.
func (r *Resolver) Names() map[int]string { return maps.Clone(r.names) }

// ToBoxes filters detections by confidence, resolves their classes and
// sanitizes their geometry. Invalid entries are dropped.
func ToBoxes(dets []Detection, size annotation.Size, r *Resolver, opt Options) annotation.Snapshot {
	opt = opt.normalized()
	if r == nil {
		r = NewResolver(nil)
	}
	out := make(annotation.Snapshot, 0, len(dets))
	for _, d := range dets {
		if d.Confidence < opt.Confidence {
			continue
		}
		b, ok := Clip(d.X1, d.Y1, d.X2, d.Y2, size, opt.MinSide)
		if !ok {
			continue
		}
		id := r.Resolve(d)
		if id < 0 {
			continue
		}
		out = append(out, annotation.Entry{X1: b.X1, Y1: b.Y1, X2: b.X2, Y2: b.Y2, ClassID: id})
	}
	return out
}
