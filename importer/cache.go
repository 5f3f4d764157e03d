package importer

import (
	"github.com/trellisdb/trellis/schema"
)

// Cache is the import-scoped schema memo table. It holds, per class, at most
// three lazily-populated results: the class attributes, the direct (no
// ancestors) property set, and the outbound-relationship map. First access
// performs the resolution; later accesses return the stored value with no
// re-query. The schema is assumed immutable for the duration of one bulk
// operation, so there is no invalidation.
type Cache struct {
	model   *schema.Model
	entries map[schema.ClassID]*cacheEntry
	byName  map[string]schema.ClassID
}

type cacheEntry struct {
	attrs *schema.ClassAttributes

	directProps []string
	propSet     map[string]bool
	hasProps    bool

	rels    map[string]string
	hasRels bool
}

// NewCache creates a cache over the given schema model. Create one per
// import invocation and discard it afterwards.
func NewCache(model *schema.Model) *Cache {
	return &Cache{
		model:   model,
		entries: make(map[schema.ClassID]*cacheEntry),
		byName:  make(map[string]schema.ClassID),
	}
}

// Model returns the underlying schema model.
func (c *Cache) Model() *schema.Model {
	return c.model
}

func (c *Cache) entry(id schema.ClassID) *cacheEntry {
	e, ok := c.entries[id]
	if !ok {
		e = &cacheEntry{}
		c.entries[id] = e
	}
	return e
}

// ClassIDByName memoizes class name lookups. Unknown names are not cached
// negatively; they stay cheap misses against the unique name index.
func (c *Cache) ClassIDByName(name string) (schema.ClassID, error) {
	if id, ok := c.byName[name]; ok {
		return id, nil
	}
	id, err := c.model.ClassByName(name)
	if err != nil {
		return 0, err
	}
	c.byName[name] = id
	return id, nil
}

// Attributes returns the memoized class attributes.
func (c *Cache) Attributes(id schema.ClassID) (*schema.ClassAttributes, error) {
	e := c.entry(id)
	if e.attrs == nil {
		attrs, err := c.model.ClassAttributes(id)
		if err != nil {
			return nil, err
		}
		e.attrs = attrs
	}
	return e.attrs, nil
}

// DirectProperties returns the memoized direct (no ancestors) property names
// in declaration order. This is deliberately the narrower, cheaper form: the
// importer's per-level checks are governed by the record's own immediate
// class only.
func (c *Cache) DirectProperties(id schema.ClassID) ([]string, error) {
	e := c.entry(id)
	if err := c.ensureProps(e, id); err != nil {
		return nil, err
	}
	return e.directProps, nil
}

// PropertyAllowed reports whether a candidate property name is permitted for
// the class: always for a lenient class, membership in the direct property
// set for a strict one.
func (c *Cache) PropertyAllowed(id schema.ClassID, name string) (bool, error) {
	attrs, err := c.Attributes(id)
	if err != nil {
		return false, err
	}
	if !attrs.Strict {
		return true, nil
	}

	e := c.entry(id)
	if err := c.ensureProps(e, id); err != nil {
		return false, err
	}
	return e.propSet[name], nil
}

// OutboundRelationships returns the memoized relationship-name ->
// target-class-name map, generalization excluded, inheritance included.
func (c *Cache) OutboundRelationships(id schema.ClassID) (map[string]string, error) {
	e := c.entry(id)
	if !e.hasRels {
		rels, err := c.model.ResolveOutboundRelationships(id)
		if err != nil {
			return nil, err
		}
		e.rels = rels
		e.hasRels = true
	}
	return e.rels, nil
}

func (c *Cache) ensureProps(e *cacheEntry, id schema.ClassID) error {
	if e.hasProps {
		return nil
	}
	props, err := c.model.DirectProperties(id)
	if err != nil {
		return err
	}
	e.directProps = props
	e.propSet = make(map[string]bool, len(props))
	for _, name := range props {
		e.propSet[name] = true
	}
	e.hasProps = true
	return nil
}
