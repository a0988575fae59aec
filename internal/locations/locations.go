// Package locations is the registry of known custom types and the logical
// path each one is declared at. Paths are slash separated and carry no file
// extension, e.g. "utils/base/Money".
package locations

import (
	"os"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

var defaultDirectories = map[string][]string{
	"utils/base": {
		"AbstractEntity", "AbstractEntityRef", "AbstractCatalogEntity", "EntityRef",
		"TimePeriod", "Money", "Quantity", "Duration", "Note", "RelatedParty",
		"Attachment", "Event",
	},
	"entity/common": {
		"Characteristic", "CharacteristicSpecification", "CharacteristicValueSpecification",
		"Association", "AssociationRole", "EntitySpecification", "EntityRelationship",
		"EntityCategory", "ExternalReference", "ApplicableTimePeriod", "ContactMedium",
		"GeographicAddress", "Addressable",
	},
}

// Registry maps type names to their declared location. It is immutable once
// built and safe for concurrent use.
type Registry struct {
	entries map[string]string
}

// New builds a registry from explicit name to location entries.
func New(entries map[string]string) *Registry {
	r := &Registry{entries: make(map[string]string, len(entries))}
	for name, loc := range entries {
		r.entries[name] = strings.Trim(loc, "/")
	}
	return r
}

// Default returns the built-in registry of shared base and common entities.
func Default() *Registry {
	entries := make(map[string]string)
	for dir, names := range defaultDirectories {
		for _, name := range names {
			entries[name] = dir + "/" + name
		}
	}
	return New(entries)
}

// Lookup returns the location of name.
func (r *Registry) Lookup(name string) (string, bool) {
	loc, ok := r.entries[name]
	return loc, ok
}

// Len returns the number of registered types.
func (r *Registry) Len() int { return len(r.entries) }

// Names returns the registered type names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge returns a new registry holding r's entries overridden by other's.
func (r *Registry) Merge(other *Registry) *Registry {
	entries := make(map[string]string, len(r.entries)+len(other.entries))
	for name, loc := range r.entries {
		entries[name] = loc
	}
	for name, loc := range other.entries {
		entries[name] = loc
	}
	return &Registry{entries: entries}
}

// Overlay is the on-disk form of additional registry entries.
//
//	types:
//	  Invoice: entity/billing/Invoice
//	directories:
//	  entity/catalog: [Product, Category]
type Overlay struct {
	Types       map[string]string   `yaml:"types"`
	Directories map[string][]string `yaml:"directories"`
}

// Parse decodes an overlay document into a registry.
func Parse(data []byte) (*Registry, error) {
	var o Overlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, errors.Wrap(err, "parsing locations overlay")
	}
	entries := make(map[string]string, len(o.Types))
	for dir, names := range o.Directories {
		dir = strings.Trim(dir, "/")
		for _, name := range names {
			entries[name] = dir + "/" + name
		}
	}
	for name, loc := range o.Types {
		if loc == "" {
			return nil, errors.Newf("type %q has an empty location", name)
		}
		entries[name] = loc
	}
	return New(entries), nil
}

// Load returns the default registry merged with the overlay file at path.
// An empty path yields the default registry.
func Load(path string) (*Registry, error) {
	base := Default()
	if path == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading locations file %s", path)
	}
	overlay, err := Parse(data)
	if err != nil {
		return nil, errors.WithHint(err, "expected top level keys: types, directories")
	}
	return base.Merge(overlay), nil
}
