// Package labels persists annotations as YOLO text files and maintains the
// per-image project index.
package labels

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/soocke/fastlabel-go/domain/annotation"
)

// DefaultDir is where label files are written when no directory is configured.
const DefaultDir = "yoloLabels"

// Encode writes one "classId cx cy w h" line per entry, normalized by size.
func Encode(w io.Writer, snap annotation.Snapshot, size annotation.Size) error {
	if size.Empty() {
		return fmt.Errorf("encode labels: empty image size %s", size)
	}
	bw := bufio.NewWriter(w)
	iw, ih := float64(size.W), float64(size.H)
	for _, e := range snap {
		cx := float64(e.X1+e.X2) / 2 / iw
		cy := float64(e.Y1+e.Y2) / 2 / ih
		nw := float64(e.X2-e.X1) / iw
		nh := float64(e.Y2-e.Y1) / ih
		if _, err := fmt.Fprintf(bw, "%d %.6f %.6f %.6f %.6f\n", e.ClassID, cx, cy, nw, nh); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Decode parses label lines for an image of the given size. Lines without
// exactly five fields, unparsable lines, negative class ids and boxes that
// collapse after rounding and clamping are skipped.
func Decode(r io.Reader, size annotation.Size) (annotation.Snapshot, error) {
	if size.Empty() {
		return nil, fmt.Errorf("decode labels: empty image size %s", size)
	}
	iw, ih := float64(size.W), float64(size.H)
	clampX := func(v float64) int { return min(max(int(math.Round(v)), 0), size.W-1) }
	clampY := func(v float64) int { return min(max(int(math.Round(v)), 0), size.H-1) }

	var snap annotation.Snapshot
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 5 {
			continue
		}
		var v [5]float64
		ok := true
		for i, f := range fields {
			n, err := strconv.ParseFloat(f, 64)
			if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
				ok = false
				break
			}
			v[i] = n
		}
		if !ok || v[0] < 0 {
			continue
		}
		cx, cy, w, h := v[1]*iw, v[2]*ih, v[3]*iw, v[4]*ih
		x1, y1 := clampX(cx-w/2), clampY(cy-h/2)
		x2, y2 := clampX(cx+w/2), clampY(cy+h/2)
		if x2 <= x1 || y2 <= y1 {
			continue
		}
		snap = append(snap, annotation.Entry{X1: x1, Y1: y1, X2: x2, Y2: y2, ClassID: int(v[0])})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("decode labels: %w", err)
	}
	return snap, nil
}

// Store maps image paths to label files inside Dir.
type Store struct {
	Dir string
}

// NewStore returns a store rooted at dir, or DefaultDir when empty.
func NewStore(dir string) *Store {
	if strings.TrimSpace(dir) == "" {
		dir = DefaultDir
	}
	return &Store{Dir: dir}
}

// PathFor returns the label file for an image: <Dir>/<basename>.txt.
func (s *Store) PathFor(imagePath string) string {
	base := filepath.Base(imagePath)
	return filepath.Join(s.Dir, strings.TrimSuffix(base, filepath.Ext(base))+".txt")
}

// Exists reports whether a label file exists for the image.
func (s *Store) Exists(imagePath string) bool {
	_, err := os.Stat(s.PathFor(imagePath))
	return err == nil
}

// Write replaces the label file of an image. The file is written to a
// temporary name first so a failed write leaves the old labels intact.
func (s *Store) Write(imagePath string, size annotation.Size, snap annotation.Snapshot) error {
	path := s.PathFor(imagePath)
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create label dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.Dir, ".labels-*.tmp")
	if err != nil {
		return fmt.Errorf("write labels %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())
	if err := Encode(tmp, snap, size); err != nil {
		tmp.Close()
		return fmt.Errorf("write labels %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write labels %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write labels %s: %w", path, err)
	}
	return nil
}

// Read loads the labels of an image. A missing file yields (nil, false, nil).
func (s *Store) Read(imagePath string, size annotation.Size) (annotation.Snapshot, bool, error) {
	path := s.PathFor(imagePath)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read labels %s: %w", path, err)
	}
	defer f.Close()
	snap, err := Decode(f, size)
	if err != nil {
		return nil, true, fmt.Errorf("read labels %s: %w", path, err)
	}
	return snap, true, nil
}
