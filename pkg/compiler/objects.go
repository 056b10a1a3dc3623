package compiler

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// Module is one parsed and rewritten source file.
type Module struct {
	// ID is the path of the file relative to the compilation root, in POSIX
	// form and prefixed with "./". It is the key used by the bundle runtime.
	ID string
	// Path is the absolute path of the file.
	Path string
	// Dependencies holds the ids of every module required by this one,
	// sorted and without duplicates.
	Dependencies []string
	// Entries lists the entry names that reach this module, in the order
	// they were discovered.
	Entries []string
	// Source is the module body with require calls rewritten.
	Source string
	// Hash is the hex sha256 of Source.
	Hash string
}

// HasEntry reports whether entry owns the module.
func (m *Module) HasEntry(entry string) bool {
	for _, e := range m.Entries {
		if e == entry {
			return true
		}
	}
	return false
}

// AddEntry records entry as an owner. It returns false if it already was.
func (m *Module) AddEntry(entry string) bool {
	if m.HasEntry(entry) {
		return false
	}
	m.Entries = append(m.Entries, entry)
	return true
}

func (m *Module) addDependency(id string) {
	i := sort.SearchStrings(m.Dependencies, id)
	if i < len(m.Dependencies) && m.Dependencies[i] == id {
		return
	}
	m.Dependencies = append(m.Dependencies, "")
	copy(m.Dependencies[i+1:], m.Dependencies[i:])
	m.Dependencies[i] = id
}

func hash(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}
