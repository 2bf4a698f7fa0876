// Package ayuerr classifies the errors raised by every other package in
// this module into the taxonomy named by the specification, without
// introducing an import cycle: it knows nothing about trees, types,
// accessors, locations or resources. Each of those packages defines its
// own concrete error structs and tags them with a Category from here.
package ayuerr

// Category is the coarse classification of an AYU error, letting callers
// switch on intent without needing to know every concrete error type.
type Category int

const (
	CategoryTree Category = iota
	CategoryType
	CategorySerialization
	CategoryReference
	CategoryResource
	CategoryIO
)

func (c Category) String() string {
	switch c {
	case CategoryTree:
		return "tree"
	case CategoryType:
		return "type"
	case CategorySerialization:
		return "serialization"
	case CategoryReference:
		return "reference"
	case CategoryResource:
		return "resource"
	case CategoryIO:
		return "io"
	default:
		return "unknown"
	}
}

// Classified is implemented by every error type raised in this module.
type Classified interface {
	error
	Category() Category
}
