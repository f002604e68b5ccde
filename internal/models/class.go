package models

// DefaultClassColor is applied when a class is created without a color.
const DefaultClassColor = "#8b5cf6"

// Class groups students and owns its subgroups.
type Class struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Color     string     `json:"color"`
	Subgroups []Subgroup `json:"subgroups"`
	Archived  bool       `json:"archived,omitempty"`
}

// Subgroup is a named part of a class.
type Subgroup struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SubgroupIndex returns the position of the subgroup with id or -1.
func (c *Class) SubgroupIndex(id string) int {
	for i := range c.Subgroups {
		if c.Subgroups[i].ID == id {
			return i
		}
	}
	return -1
}

// ClassLookup resolves weak class references; unknown ids resolve to nothing.
type ClassLookup map[string]*Class

// NewClassLookup indexes classes by id. The returned pointers alias the slice.
func NewClassLookup(classes []Class) ClassLookup {
	lookup := make(ClassLookup, len(classes))
	for i := range classes {
		lookup[classes[i].ID] = &classes[i]
	}
	return lookup
}

// Find returns the class with id, if it still exists.
func (l ClassLookup) Find(id string) (*Class, bool) {
	if id == "" {
		return nil, false
	}
	class, ok := l[id]
	return class, ok
}
