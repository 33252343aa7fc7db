package annotation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

var (
	ErrEmptyName     = errors.New("class name is empty")
	ErrDuplicateName = errors.New("class name already exists")
	ErrUnknownClass  = errors.New("unknown class id")
	ErrSameClass     = errors.New("source and target class are the same")
)

// NoClass is the active-class sentinel used when the table is empty.
const NoClass = -1

// RGB is an 8-bit colour.
type RGB struct{ R, G, B uint8 }

// Hex formats the colour as #rrggbb.
func (c RGB) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// ParseHex parses #rgb or #rrggbb.
func ParseHex(s string) (RGB, error) {
	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return RGB{}, fmt.Errorf("parse colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB{r, g, b}, nil
}

var classPalette = []string{
	"#ff4c4c", "#1e90ff", "#8000ff", "#ff1493", "#ffa500",
	"#00ff7f", "#00ced1", "#9400d3", "#ff4500", "#ffd700",
	"#00fa9a", "#4169e1",
}

// AutoColor returns the default colour for a class id. Ids past the fixed
// palette get a hue walked around the colour wheel.
func AutoColor(id int) RGB {
	if id < 0 {
		id = -id
	}
	if id < len(classPalette) {
		c, err := ParseHex(classPalette[id])
		if err == nil {
			return c
		}
	}
	hue := float64((id*137)%360) + 0.5
	r, g, b := colorful.Hsv(hue, 0.75, 0.95).Clamped().RGB255()
	return RGB{r, g, b}
}

// ClassDefinition is one label category.
type ClassDefinition struct {
	ID      int
	Name    string
	Color   RGB
	Visible bool
}

// DefaultClassName is used for classes that arrive without a name.
func DefaultClassName(id int) string { return fmt.Sprintf("class_%d", id) }

// ClassTable maps class ids to definitions. The zero value is empty and
// usable; read methods are nil-safe.
type ClassTable struct {
	classes map[int]ClassDefinition
}

// NewClassTable returns a table holding defs.
func NewClassTable(defs ...ClassDefinition) *ClassTable {
	t := &ClassTable{}
	for _, d := range defs {
		t.put(d)
	}
	return t
}

func (t *ClassTable) put(d ClassDefinition) {
	if t.classes == nil {
		t.classes = make(map[int]ClassDefinition)
	}
	t.classes[d.ID] = d
}

// Clone returns a deep copy.
func (t *ClassTable) Clone() *ClassTable {
	out := &ClassTable{}
	if t == nil {
		return out
	}
	for _, d := range t.classes {
		out.put(d)
	}
	return out
}

func (t *ClassTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.classes)
}

func (t *ClassTable) Has(id int) bool {
	if t == nil {
		return false
	}
	_, ok := t.classes[id]
	return ok
}

func (t *ClassTable) Get(id int) (ClassDefinition, bool) {
	if t == nil {
		return ClassDefinition{}, false
	}
	d, ok := t.classes[id]
	return d, ok
}

// Visible reports whether boxes of class id are drawn and hittable.
// Unknown classes are not visible.
func (t *ClassTable) Visible(id int) bool {
	d, ok := t.Get(id)
	return ok && d.Visible
}

// IDs returns the class ids in ascending order.
func (t *ClassTable) IDs() []int {
	if t == nil {
		return nil
	}
	ids := make([]int, 0, len(t.classes))
	for id := range t.classes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Definitions returns all definitions sorted by id.
func (t *ClassTable) Definitions() []ClassDefinition {
	ids := t.IDs()
	out := make([]ClassDefinition, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.classes[id])
	}
	return out
}

// Lowest returns the smallest id, or NoClass when empty.
func (t *ClassTable) Lowest() int {
	ids := t.IDs()
	if len(ids) == 0 {
		return NoClass
	}
	return ids[0]
}

// Nth returns the n-th class id (1-based) by ascending id.
func (t *ClassTable) Nth(n int) (int, bool) {
	ids := t.IDs()
	if n < 1 || n > len(ids) {
		return NoClass, false
	}
	return ids[n-1], true
}

// NextFreeID returns the lowest unused non-negative id.
func (t *ClassTable) NextFreeID() int {
	id := 0
	for t.Has(id) {
		id++
	}
	return id
}

// FindByName performs a case-insensitive name lookup.
func (t *ClassTable) FindByName(name string) (int, bool) {
	if t == nil {
		return NoClass, false
	}
	for id, d := range t.classes {
		if strings.EqualFold(d.Name, name) {
			return id, true
		}
	}
	return NoClass, false
}

func (t *ClassTable) nameTaken(name string, except int) bool {
	id, ok := t.FindByName(name)
	return ok && id != except
}

// Add creates a class with the next free id and an automatic colour.
func (t *ClassTable) Add(name string) (ClassDefinition, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ClassDefinition{}, ErrEmptyName
	}
	if t.nameTaken(name, NoClass) {
		return ClassDefinition{}, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	id := t.NextFreeID()
	d := ClassDefinition{ID: id, Name: name, Color: AutoColor(id), Visible: true}
	t.put(d)
	return d, nil
}

// Ensure adds class id when missing. Empty or clashing names fall back to
// class_<id>. It reports whether a class was added.
func (t *ClassTable) Ensure(id int, name string) bool {
	if id < 0 || t.Has(id) {
		return false
	}
	name = strings.TrimSpace(name)
	if name == "" || t.nameTaken(name, id) {
		name = DefaultClassName(id)
	}
	t.put(ClassDefinition{ID: id, Name: name, Color: AutoColor(id), Visible: true})
	return true
}

// Remove deletes class id.
func (t *ClassTable) Remove(id int) error {
	if !t.Has(id) {
		return fmt.Errorf("%w: %d", ErrUnknownClass, id)
	}
	delete(t.classes, id)
	return nil
}

// Rename changes the display name of class id.
func (t *ClassTable) Rename(id int, name string) error {
	d, ok := t.Get(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownClass, id)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if t.nameTaken(name, id) {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	d.Name = name
	t.put(d)
	return nil
}

func (t *ClassTable) SetColor(id int, c RGB) error {
	d, ok := t.Get(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownClass, id)
	}
	d.Color = c
	t.put(d)
	return nil
}

func (t *ClassTable) SetVisible(id int, visible bool) error {
	d, ok := t.Get(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownClass, id)
	}
	d.Visible = visible
	t.put(d)
	return nil
}

// Equal reports whether both tables hold identical definitions.
func (t *ClassTable) Equal(o *ClassTable) bool {
	if t.Len() != o.Len() {
		return false
	}
	for _, d := range t.Definitions() {
		od, ok := o.Get(d.ID)
		if !ok || od != d {
			return false
		}
	}
	return true
}

// Names returns id -> name.
func (t *ClassTable) Names() map[int]string {
	out := make(map[int]string, t.Len())
	for _, d := range t.Definitions() {
		out[d.ID] = d.Name
	}
	return out
}
