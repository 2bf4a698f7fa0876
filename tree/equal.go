package tree

import "math"

// Equal implements spec.md §4.1's form-preserving equality: NaN == NaN,
// -0 == +0, integer/float cross-comparison is permitted, object equality
// is order-independent set-equality over pairs, and error-form trees are
// never equal to anything (including another error-form tree).
func Equal(a, b Tree) bool {
	if a.form == ErrorForm || b.form == ErrorForm {
		return false
	}
	if a.form != b.form {
		// The only cross-form equality permitted is within Number itself,
		// which is represented as a single form with an int/float payload
		// discriminator, so no cross-form case applies here.
		return false
	}
	switch a.form {
	case Undefined, Null:
		return true
	case Bool:
		return a.boolean == b.boolean
	case Number:
		return numberEqual(a, b)
	case String:
		return a.str == b.str
	case Array:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case Object:
		return objectEqual(a.obj, b.obj)
	default:
		return false
	}
}

func numberEqual(a, b Tree) bool {
	af, bf := toFloatBits(a), toFloatBits(b)
	if math.IsNaN(af) && math.IsNaN(bf) {
		return true
	}
	// -0 == +0 and int/float cross-comparison both fall out of comparing
	// the float64 representation directly, except when both sides are
	// integers, in which case compare exactly to avoid precision loss for
	// magnitudes beyond 2^53.
	if !a.isFloat && !b.isFloat {
		return a.integer == b.integer
	}
	return af == bf
}

func toFloatBits(t Tree) float64 {
	if t.isFloat {
		return t.float
	}
	return float64(t.integer)
}

func objectEqual(a, b []Pair) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, pa := range a {
		found := false
		for j, pb := range b {
			if used[j] || pa.Key != pb.Key {
				continue
			}
			if Equal(pa.Value, pb.Value) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
