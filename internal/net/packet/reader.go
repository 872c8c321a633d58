package packet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Reader walks the positional fields of one client message. Like the
// binary readers it replaces, reads past the end or of the wrong type yield
// zero values; Err reports the first such problem.
type Reader struct {
	fields []any
	off    int
	err    error
}

// Decode parses a client frame: a JSON array whose first element is the
// opcode.
func Decode(data []byte) (*Reader, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields []any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty message")
	}
	r := &Reader{fields: fields}
	op := r.Int()
	if r.err != nil || op < 0 {
		return nil, fmt.Errorf("bad opcode %v", fields[0])
	}
	return r, nil
}

// NewReader wraps already-decoded fields, opcode first.
func NewReader(fields []any) *Reader {
	return &Reader{fields: fields, off: 1}
}

func (r *Reader) Opcode() int {
	if len(r.fields) == 0 {
		return -1
	}
	save, saveErr := r.off, r.err
	r.off = 0
	op := r.Int()
	r.off, r.err = save, saveErr
	return op
}

// Remaining reports how many fields are left to read.
func (r *Reader) Remaining() int {
	return len(r.fields) - r.off
}

func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) next() (any, bool) {
	if r.off >= len(r.fields) {
		r.fail(fmt.Errorf("field %d missing", r.off))
		return nil, false
	}
	v := r.fields[r.off]
	r.off++
	return v, true
}

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Int reads a numeric field. Numeric strings are accepted.
func (r *Reader) Int() int {
	v, ok := r.next()
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil {
				r.fail(fmt.Errorf("field %d: %w", r.off-1, err))
				return 0
			}
			return int(f)
		}
		return int(i)
	case float64:
		return int(n)
	case int:
		return n
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			r.fail(fmt.Errorf("field %d: %w", r.off-1, err))
			return 0
		}
		return i
	default:
		r.fail(fmt.Errorf("field %d: not a number (%T)", r.off-1, v))
		return 0
	}
}

// String reads a text field.
func (r *Reader) String() string {
	v, ok := r.next()
	if !ok {
		return ""
	}
	s, isStr := v.(string)
	if !isStr {
		r.fail(fmt.Errorf("field %d: not a string (%T)", r.off-1, v))
		return ""
	}
	return s
}

// ID reads an entity id, sent either as a string or as a number.
func (r *Reader) ID() string {
	v, ok := r.next()
	if !ok {
		return ""
	}
	switch id := v.(type) {
	case string:
		return id
	case json.Number:
		return id.String()
	case float64:
		return strconv.FormatInt(int64(id), 10)
	case int:
		return strconv.Itoa(id)
	default:
		r.fail(fmt.Errorf("field %d: not an id (%T)", r.off-1, v))
		return ""
	}
}

// IDs reads every remaining field as an entity id.
func (r *Reader) IDs() []string {
	ids := make([]string, 0, r.Remaining())
	for r.Remaining() > 0 {
		ids = append(ids, r.ID())
	}
	return ids
}
