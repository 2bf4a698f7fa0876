package tree

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ayu-run/ayu/internal/identifier"
)

// PrintMode selects pretty (multi-line, indented) vs compact (minimal
// whitespace) output, per spec.md §4.1. JSON is an orthogonal modifier.
type PrintMode int

const (
	Pretty PrintMode = iota
	Compact
)

// PrintOptions configures Print. JSON restricts output to JSON-legal
// syntax: quoted strings always, "1e999" instead of "+inf", "null"
// instead of "+nan", and comma-separated array/object elements.
type PrintOptions struct {
	Mode   PrintMode
	JSON   bool
	Indent string // per-level indent string for Pretty mode; defaults to two spaces
}

// compactInlineThreshold resolves the open question in spec.md §9 about
// when a small array/object auto-compacts even in pretty mode: see
// DESIGN.md's Open Question decision #2.
const compactInlineThreshold = 40

// Print renders t per opts. Undefined-form trees may not be printed.
func Print(t Tree, opts PrintOptions) (string, error) {
	if t.form == Undefined {
		return "", fmt.Errorf("tree: cannot print an undefined tree")
	}
	indent := opts.Indent
	if indent == "" {
		indent = "  "
	}
	p := &printer{opts: opts, indent: indent}
	p.printTerm(t, 0, true)
	return p.sb.String(), nil
}

type printer struct {
	sb     strings.Builder
	opts   PrintOptions
	indent string
}

func (p *printer) nl(depth int) {
	if p.opts.Mode == Pretty {
		p.sb.WriteByte('\n')
		for i := 0; i < depth; i++ {
			p.sb.WriteString(p.indent)
		}
	}
}

// topLevel is true only for the outermost call, so shortcut-free printing
// (this printer never re-derives shortcuts) treats the call uniformly;
// kept for symmetry with the printer's recursive structure.
func (p *printer) printTerm(t Tree, depth int, topLevel bool) {
	_ = topLevel
	switch t.form {
	case Null:
		p.sb.WriteString("null")
	case Bool:
		if t.boolean {
			p.sb.WriteString("true")
		} else {
			p.sb.WriteString("false")
		}
	case Number:
		p.printNumber(t)
	case String:
		p.printString(t.str)
	case Array:
		p.printArray(t, depth)
	case Object:
		p.printObject(t, depth)
	case ErrorForm:
		p.printError(t)
	default:
		p.sb.WriteString("null")
	}
}

func (p *printer) printNumber(t Tree) {
	if !t.isFloat {
		if t.flags&PreferHex != 0 && !p.opts.JSON {
			if t.integer < 0 {
				fmt.Fprintf(&p.sb, "-0x%X", -t.integer)
			} else {
				fmt.Fprintf(&p.sb, "0x%X", t.integer)
			}
			return
		}
		fmt.Fprintf(&p.sb, "%d", t.integer)
		return
	}
	f := t.float
	switch {
	case math.IsNaN(f):
		if p.opts.JSON {
			p.sb.WriteString("null")
		} else {
			p.sb.WriteString("+nan")
		}
	case math.IsInf(f, 1):
		if p.opts.JSON {
			p.sb.WriteString("1e999")
		} else {
			p.sb.WriteString("+inf")
		}
	case math.IsInf(f, -1):
		if p.opts.JSON {
			p.sb.WriteString("-1e999")
		} else {
			p.sb.WriteString("-inf")
		}
	default:
		p.sb.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	}
}

func (p *printer) printString(s string) {
	if !p.opts.JSON && identifier.IsShaped(s) && !identifier.IsReservedWord(s) && !strings.ContainsAny(s[:1], "0123456789+-") {
		p.sb.WriteString(s)
		return
	}
	p.sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			p.sb.WriteString(`\"`)
		case '\\':
			p.sb.WriteString(`\\`)
		case '\n':
			p.sb.WriteString(`\n`)
		case '\t':
			p.sb.WriteString(`\t`)
		case '\r':
			p.sb.WriteString(`\r`)
		default:
			p.sb.WriteRune(r)
		}
	}
	p.sb.WriteByte('"')
}

func (p *printer) printError(t Tree) {
	msg := ""
	if t.err != nil {
		msg = t.err.Error()
	}
	p.printString(msg)
}

func (p *printer) printArray(t Tree, depth int) {
	if len(t.arr) == 0 {
		p.sb.WriteString("[]")
		return
	}
	if p.shouldInline(t) {
		p.sb.WriteByte('[')
		for i, item := range t.arr {
			if i > 0 {
				p.sep()
			}
			p.printTerm(item, depth, false)
		}
		p.sb.WriteByte(']')
		return
	}
	p.sb.WriteByte('[')
	for i, item := range t.arr {
		if i > 0 && p.opts.Mode == Compact {
			p.sep()
		}
		p.nl(depth + 1)
		p.printTerm(item, depth+1, false)
		if p.opts.JSON && i < len(t.arr)-1 {
			p.sb.WriteByte(',')
		}
	}
	p.nl(depth)
	p.sb.WriteByte(']')
}

func (p *printer) printObject(t Tree, depth int) {
	if len(t.obj) == 0 {
		p.sb.WriteString("{}")
		return
	}
	if p.shouldInline(t) {
		p.sb.WriteByte('{')
		for i, pair := range t.obj {
			if i > 0 {
				p.sep()
			}
			p.printString(pair.Key)
			p.sb.WriteByte(':')
			p.printTerm(pair.Value, depth, false)
		}
		p.sb.WriteByte('}')
		return
	}
	p.sb.WriteByte('{')
	for i, pair := range t.obj {
		if i > 0 && p.opts.Mode == Compact {
			p.sep()
		}
		p.nl(depth + 1)
		p.printString(pair.Key)
		p.sb.WriteByte(':')
		p.printTerm(pair.Value, depth+1, false)
		if p.opts.JSON && i < len(t.obj)-1 {
			p.sb.WriteByte(',')
		}
	}
	p.nl(depth)
	p.sb.WriteByte('}')
}

// sep writes the separator between inline siblings. JSON always needs a
// comma; non-JSON compact mode uses a bare space (tokens like `45 asdf`
// are still unambiguous because strings can't start with a digit unless
// quoted).
func (p *printer) sep() {
	if p.opts.JSON {
		p.sb.WriteByte(',')
		return
	}
	p.sb.WriteByte(' ')
}

// shouldInline decides whether an array/object prints on one line even in
// Pretty mode: the fixed heuristic of DESIGN.md's Open Question decision
// #2, unless the caller explicitly requested Compact (always inline) or
// the tree carries an explicit presentation-flag override.
func (p *printer) shouldInline(t Tree) bool {
	if p.opts.Mode == Compact {
		return true
	}
	if t.flags&PreferExpanded != 0 {
		return false
	}
	if t.flags&PreferCompact != 0 {
		return true
	}
	if hasCompoundChild(t) {
		return false
	}
	rendered, err := Print(t, PrintOptions{Mode: Compact, JSON: p.opts.JSON})
	if err != nil {
		return false
	}
	return len([]rune(rendered)) <= compactInlineThreshold
}

func hasCompoundChild(t Tree) bool {
	switch t.form {
	case Array:
		for _, c := range t.arr {
			if c.form == Array || c.form == Object {
				if len(c.arr) > 0 || len(c.obj) > 0 {
					return true
				}
			}
		}
	case Object:
		for _, c := range t.obj {
			if c.Value.form == Array || c.Value.form == Object {
				if len(c.Value.arr) > 0 || len(c.Value.obj) > 0 {
					return true
				}
			}
		}
	}
	return false
}
