package item

import "fmt"

// IconUnknown is the placeholder icon used for unresolved item identifiers.
const IconUnknown = "unknown"

// Catalog holds all loaded item templates indexed by ID.
type Catalog struct {
	templates map[string]*Template
}

// NewCatalog returns an empty Catalog.
//
// Postcondition: the internal map is initialised.
func NewCatalog() *Catalog {
	return &Catalog{
		templates: make(map[string]*Template),
	}
}

// Register adds t to the catalog.
//
// Precondition:  t must not be nil and must have passed Validate.
// Postcondition: Lookup(t.ID) returns (t, true); returns error if t.ID already registered.
func (c *Catalog) Register(t *Template) error {
	if _, exists := c.templates[t.ID]; exists {
		return fmt.Errorf("item: Catalog.Register: template ID %q already registered", t.ID)
	}
	c.templates[t.ID] = t
	return nil
}

// Lookup returns the Template for the given id and whether it was found.
//
// Postcondition: ok is true iff the id is registered.
func (c *Catalog) Lookup(id string) (*Template, bool) {
	t, ok := c.templates[id]
	return t, ok
}

// Resolve returns the Template for the given id, degrading to a one-per-stack
// placeholder when the id is unknown. Callers that must distinguish unknown
// items use Lookup instead.
//
// Postcondition: the result is never nil; unknown ids yield
// {ID: id, Name: id, Icon: IconUnknown, MaxStack: 1, rarity: common}.
func (c *Catalog) Resolve(id string) *Template {
	if t, ok := c.templates[id]; ok {
		return t
	}
	return &Template{
		ID:       id,
		Name:     id,
		Icon:     IconUnknown,
		MaxStack: 1,
	}
}

// All returns all registered Templates in unspecified order.
//
// Postcondition: len(result) == number of registered templates.
func (c *Catalog) All() []*Template {
	out := make([]*Template, 0, len(c.templates))
	for _, t := range c.templates {
		out = append(out, t)
	}
	return out
}

// LoadCatalog loads all templates from dir into a new Catalog.
//
// Postcondition: returns a populated Catalog or the first load error.
func LoadCatalog(dir string) (*Catalog, error) {
	templates, err := LoadTemplates(dir)
	if err != nil {
		return nil, err
	}
	catalog := NewCatalog()
	for _, t := range templates {
		if err := catalog.Register(t); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}
