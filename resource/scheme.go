package resource

import (
	"path/filepath"
	"strings"

	"github.com/ayu-run/ayu/typeid"
)

// Scheme resolves a resource's IRI to a backing store and back, per
// spec.md §4.7's resource-name-to-filename indirection. AcceptsIRI picks
// the scheme that owns a name; AcceptsType lets a scheme refuse to host a
// root value of a given type; Path turns the name into whatever the
// scheme's Load/Save actually reads/writes (a filesystem path, for the
// default scheme).
type Scheme interface {
	Name() string
	AcceptsIRI(name string) bool
	AcceptsType(id typeid.TypeId) bool
	Path(name string) (string, error)
}

// illegalNameChars mirrors original_source/resource-name.cpp's rejected
// character set: these would be ambiguous or unsafe in a filesystem path.
const illegalNameChars = `"*:<>?\|`

// canonicalizeResourceName implements resource-name.cpp's canonicalize
// algorithm: reject empty names and fragments (resource names don't carry
// a `#fragment`, only Locations do), reject illegal characters, then walk
// '/'-separated segments collapsing '.' and resolving '..' against the
// segments collected so far. A '..' that would walk past the root is
// folded into spec.md's InvalidResourceName rather than a separate named
// error — see DESIGN.md.
func canonicalizeResourceName(name string) (string, error) {
	if name == "" {
		return "", &InvalidResourceName{Name: name}
	}
	if strings.ContainsRune(name, '#') {
		return "", &InvalidResourceName{Name: name}
	}
	if strings.ContainsAny(name, illegalNameChars) {
		return "", &InvalidResourceName{Name: name}
	}
	var out []string
	for _, seg := range strings.Split(name, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(out) == 0 {
				return "", &InvalidResourceName{Name: name}
			}
			out = out[:len(out)-1]
		default:
			out = append(out, seg)
		}
	}
	return strings.Join(out, "/"), nil
}

// fileScheme is the default Scheme: resources named "file:some/path" are
// read from and written to root/some/path on the local filesystem.
type fileScheme struct{ root string }

// NewFileScheme returns the default file Scheme, rooted at root.
func NewFileScheme(root string) Scheme { return &fileScheme{root: root} }

func (s *fileScheme) Name() string { return "file" }

func (s *fileScheme) AcceptsIRI(name string) bool { return strings.HasPrefix(name, "file:") }

func (s *fileScheme) AcceptsType(typeid.TypeId) bool { return true }

func (s *fileScheme) Path(name string) (string, error) {
	rel, err := canonicalizeResourceName(strings.TrimPrefix(name, "file:"))
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(rel)), nil
}
