package labels

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/soocke/fastlabel-go/domain/annotation"
)

// DatasetFile is the manifest written next to the label directory.
const DatasetFile = "data.yaml"

// Dataset is the YOLO dataset manifest. Names maps class id to name.
type Dataset struct {
	Path   string         `yaml:"path,omitempty"`
	Train  string         `yaml:"train,omitempty"`
	Val    string         `yaml:"val,omitempty"`
	Count  int            `yaml:"nc"`
	Names  map[int]string `yaml:"names"`
	Colors map[int]string `yaml:"colors,omitempty"`
}

// DatasetFromClasses builds a manifest from the class table.
func DatasetFromClasses(classes *annotation.ClassTable, imageDir string) Dataset {
	ds := Dataset{
		Path:   imageDir,
		Train:  imageDir,
		Val:    imageDir,
		Names:  classes.Names(),
		Colors: make(map[int]string),
	}
	for _, d := range classes.Definitions() {
		ds.Colors[d.ID] = d.Color.Hex()
	}
	ds.Count = len(ds.Names)
	return ds
}

// Classes converts the manifest back into a class table. Missing or invalid
// colours fall back to the automatic palette.
func (d Dataset) Classes() *annotation.ClassTable {
	ids := make([]int, 0, len(d.Names))
	for id := range d.Names {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	defs := make([]annotation.ClassDefinition, 0, len(ids))
	for _, id := range ids {
		color := annotation.AutoColor(id)
		if hex, ok := d.Colors[id]; ok {
			if c, err := annotation.ParseHex(hex); err == nil {
				color = c
			}
		}
		name := d.Names[id]
		if name == "" {
			name = annotation.DefaultClassName(id)
		}
		defs = append(defs, annotation.ClassDefinition{ID: id, Name: name, Color: color, Visible: true})
	}
	return annotation.NewClassTable(defs...)
}

// DatasetPath is the manifest location for a label directory.
func (s *Store) DatasetPath() string { return filepath.Join(s.Dir, DatasetFile) }

// WriteDataset stores the manifest for classes.
func (s *Store) WriteDataset(classes *annotation.ClassTable, imageDir string) error {
	ds := DatasetFromClasses(classes, imageDir)
	data, err := yaml.Marshal(ds)
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create label dir: %w", err)
	}
	if err := os.WriteFile(s.DatasetPath(), data, 0o644); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	return nil
}

// ReadDataset loads the manifest. A missing file yields (Dataset{}, false, nil).
func (s *Store) ReadDataset() (Dataset, bool, error) {
	data, err := os.ReadFile(s.DatasetPath())
	if errors.Is(err, fs.ErrNotExist) {
		return Dataset{}, false, nil
	}
	if err != nil {
		return Dataset{}, false, fmt.Errorf("read dataset: %w", err)
	}
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return Dataset{}, true, fmt.Errorf("decode dataset: %w", err)
	}
	return ds, true, nil
}
