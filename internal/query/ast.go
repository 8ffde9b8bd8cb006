// Package query builds upstream GraphQL documents from a typed tree and
// renders them with a single serializer.
package query

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
)

// Value is an argument value. The set of implementations is closed.
type Value interface {
	write(b *strings.Builder)
}

// String is a string literal.
type String string

// Int is an integer literal.
type Int int

// Float is a float literal.
type Float float64

// Bool is a boolean literal.
type Bool bool

// Null is the null literal.
type Null struct{}

// List is a list literal.
type List []Value

// Object is an input object literal with ordered fields.
type Object []ObjectField

// ObjectField is one name/value pair of an Object.
type ObjectField struct {
	Name  string
	Value Value
}

// Argument is a named argument of a field.
type Argument struct {
	Name  string
	Value Value
}

// Field is a selection with optional arguments and sub-selections.
type Field struct {
	Name       string
	Arguments  []Argument
	Selections []Field
}

// Document is a single anonymous query operation with one root field.
type Document struct {
	Root Field
}

// Operation returns the root field name, which is also the key of the
// result inside the response data object.
func (d Document) Operation() string {
	return d.Root.Name
}

// String renders the document.
func (d Document) String() string {
	var b strings.Builder
	b.WriteString("query { ")
	d.Root.write(&b)
	b.WriteString(" }")
	return b.String()
}

// Fingerprint returns a short stable hash of a rendered query, used to
// correlate log lines.
func Fingerprint(text string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(text))
}

// Leaves turns plain names into selections without arguments.
func Leaves(names []string) []Field {
	out := make([]Field, len(names))
	for i, n := range names {
		out[i] = Field{Name: n}
	}
	return out
}

func (f Field) write(b *strings.Builder) {
	b.WriteString(f.Name)
	if len(f.Arguments) > 0 {
		b.WriteByte('(')
		for i, a := range f.Arguments {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.Name)
			b.WriteString(": ")
			a.Value.write(b)
		}
		b.WriteByte(')')
	}
	if len(f.Selections) > 0 {
		b.WriteString(" { ")
		for i, s := range f.Selections {
			if i > 0 {
				b.WriteByte(' ')
			}
			s.write(b)
		}
		b.WriteString(" }")
	}
}

func (s String) write(b *strings.Builder) {
	b.WriteByte('"')
	str := string(s)
	for i := 0; i < len(str); {
		r, size := utf8.DecodeRuneInString(str[i:])
		i += size
		switch {
		case r == '"':
			b.WriteString(`\"`)
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\b':
			b.WriteString(`\b`)
		case r == '\f':
			b.WriteString(`\f`)
		case r < 0x20 || r == 0x7f:
			b.WriteString(`\u00`)
			b.WriteByte(hexDigits[r>>4])
			b.WriteByte(hexDigits[r&0xf])
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}

const hexDigits = "0123456789ABCDEF"

func (i Int) write(b *strings.Builder) {
	b.WriteString(strconv.Itoa(int(i)))
}

func (f Float) write(b *strings.Builder) {
	b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 64))
}

func (v Bool) write(b *strings.Builder) {
	b.WriteString(strconv.FormatBool(bool(v)))
}

func (Null) write(b *strings.Builder) {
	b.WriteString("null")
}

func (l List) write(b *strings.Builder) {
	b.WriteByte('[')
	for i, v := range l {
		if i > 0 {
			b.WriteString(", ")
		}
		v.write(b)
	}
	b.WriteByte(']')
}

func (o Object) write(b *strings.Builder) {
	b.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteString(": ")
		f.Value.write(b)
	}
	b.WriteByte('}')
}

// Lookup returns the value of the named object field.
func (o Object) Lookup(name string) (Value, bool) {
	for _, f := range o {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Argument returns the value of the named argument.
func (f Field) Argument(name string) (Value, bool) {
	for _, a := range f.Arguments {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}
