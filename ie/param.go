package ie

import (
	"fmt"
	"strconv"
)

// Item is one field of a Param.
type Item struct {
	Value   any
	Name    string
	Comment string
}

// Param is an ordered block of fields, written as a count followed by a
// (value, name, comment) triple per field. After Import, Get walks the fields
// in order. Names and comments are descriptive only; fields are addressed by
// position, so a type may only ever append new fields to its block.
//
// The zero value is an empty Param ready to use.
type Param struct {
	items []Item
	pos   int
}

// Add appends a field and returns p for chaining.
func (p *Param) Add(v any, name, comment string) *Param {
	p.items = append(p.items, Item{Value: v, Name: name, Comment: comment})
	return p
}

// Len returns the number of fields.
func (p *Param) Len() int {
	return len(p.items)
}

// Item returns the i-th field.
func (p *Param) Item(i int) Item {
	return p.items[i]
}

// Remaining returns the number of fields Get has not consumed yet.
func (p *Param) Remaining() int {
	if p.pos >= len(p.items) {
		return 0
	}
	return len(p.items) - p.pos
}

// Rewind moves the cursor back to the first field.
func (p *Param) Rewind() {
	p.pos = 0
}

// Get returns the value of the next field and advances the cursor. Once the
// cursor passes the last field, Get returns def; this is how a reader copes
// with streams written before a field was appended.
func (p *Param) Get(def any) any {
	i := p.pos
	p.pos++
	if i >= len(p.items) {
		return def
	}
	return p.items[i].Value
}

// As is Get with a type check. Integers are stored as int64; As also converts
// them when T is int.
func As[T any](p *Param, def T) (T, error) {
	v := p.Get(def)
	if t, ok := v.(T); ok {
		return t, nil
	}
	if n, ok := v.(int64); ok {
		if t, ok := any(int(n)).(T); ok {
			return t, nil
		}
	}
	var zero T
	return zero, &FormatError{Msg: fmt.Sprintf("field %d holds %T, want %T", p.pos-1, v, def)}
}

// Export writes the block.
func (p *Param) Export(e *Export) error {
	if err := e.Write(len(p.items)); err != nil {
		return err
	}
	for _, it := range p.items {
		if err := e.Write(it.Value); err != nil {
			return err
		}
		if err := e.Write(it.Name); err != nil {
			return err
		}
		if err := e.Write(it.Comment); err != nil {
			return err
		}
	}
	return nil
}

// Import replaces the fields of p with a block read from i and rewinds the
// cursor. A stream that ends early yields the fields read so far.
func (p *Param) Import(i *Import) error {
	p.items = p.items[:0]
	p.pos = 0
	v, err := i.Read()
	if err != nil || v == nil {
		return err
	}
	n, ok := v.(int64)
	if !ok || n < 0 {
		return &FormatError{Msg: fmt.Sprintf("param count is %v", v)}
	}
	for k := int64(0); k < n; k++ {
		v, err := i.Read()
		if err != nil {
			return err
		}
		if v == nil {
			return nil
		}
		name, err := readString(i, "name of field "+strconv.FormatInt(k, 10))
		if err != nil {
			return err
		}
		comment, err := readString(i, "comment of field "+strconv.FormatInt(k, 10))
		if err != nil {
			return err
		}
		p.items = append(p.items, Item{Value: v, Name: name, Comment: comment})
	}
	return nil
}

func readString(i *Import, what string) (string, error) {
	v, err := i.Read()
	if err != nil || v == nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", &FormatError{Msg: fmt.Sprintf("%s is %T", what, v)}
	}
	return s, nil
}
