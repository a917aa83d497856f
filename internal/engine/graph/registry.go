package graph

// ModuleID is a compact identifier for an interned module name. IDs index
// the registry's name table and the per-traversal position arena, so they
// stay dense and are never renumbered.
type ModuleID uint32

// ModuleRegistry assigns stable numeric ids to dotted module names. It is
// populated while the import graph is built and read-only afterwards; the
// unknown-name lookups signal "not part of the import graph", not failure.
type ModuleRegistry struct {
	ids   map[string]ModuleID
	names []string
}

func NewModuleRegistry() *ModuleRegistry {
	return &ModuleRegistry{ids: make(map[string]ModuleID)}
}

// Intern returns the id for name, assigning the next free id on first
// sight. Interning the same name twice returns the same id.
func (r *ModuleRegistry) Intern(name string) ModuleID {
	if id, ok := r.ids[name]; ok {
		return id
	}
	id := ModuleID(len(r.names))
	r.ids[name] = id
	r.names = append(r.names, name)
	return id
}

// IDOf looks up the id interned for name.
func (r *ModuleRegistry) IDOf(name string) (ModuleID, bool) {
	id, ok := r.ids[name]
	return id, ok
}

// NameOf returns the name interned under id.
func (r *ModuleRegistry) NameOf(id ModuleID) (string, bool) {
	if int(id) >= len(r.names) {
		return "", false
	}
	return r.names[id], true
}

// Len reports how many modules are interned.
func (r *ModuleRegistry) Len() int {
	return len(r.names)
}
