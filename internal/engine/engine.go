// Package engine decodes request bodies from a token stream into the JSON data
// model while enforcing duplicate-key and nesting limits.
package engine

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"
)

// Kind classifies a Token.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token is one lexical element. String holds keys and string values, Number
// the literal text of numbers.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource yields tokens until io.EOF.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// Segment is one step into a value: an object key, or an array index when
// Index is not negative.
type Segment struct {
	Key   string
	Index int
}

func key(k string) Segment { return Segment{Key: k, Index: -1} }

// Issue codes produced by the decoder.
const (
	CodeParseError   = "parse_error"
	CodeDuplicateKey = "duplicate_key"
)

// Issue is a decoding problem. At locates it from the root; Key is the
// offending key of a duplicate_key issue.
type Issue struct {
	Code    string
	At      []Segment
	Key     string
	Message string
	Offset  int64
}

// IssueError carries an Issue as an error.
type IssueError struct{ Issue }

func (e IssueError) Error() string { return e.Message }

// ErrTrailingData is returned when a document has content after its top-level value.
var ErrTrailingData = errors.New("unexpected data after top-level value")

// DupPolicy selects how repeated object keys are treated. The last value wins
// unless the policy is DupError.
type DupPolicy int

const (
	DupIgnore DupPolicy = iota
	DupWarn
	DupError
)

// Options controls decoding.
type Options struct {
	Duplicates DupPolicy
	// MaxDepth limits container nesting; 0 disables the limit.
	MaxDepth int
	// Warn receives duplicate_key issues under DupWarn. May be nil.
	Warn func(Issue)
}

// Decode reads exactly one value from src. Objects become map[string]any,
// arrays []any and numbers json.Number.
func Decode(src TokenSource, opt Options) (any, error) {
	d := &decoder{src: src, opt: opt}
	tok, err := src.NextToken()
	if err != nil {
		return nil, err
	}
	v, err := d.value(tok)
	if err != nil {
		return nil, err
	}
	if _, err := src.NextToken(); err != io.EOF {
		if err != nil {
			return nil, err
		}
		return nil, ErrTrailingData
	}
	return v, nil
}

type decoder struct {
	src   TokenSource
	opt   Options
	path  []Segment
	depth int
}

func (d *decoder) issue(code, msg string, offset int64, at ...Segment) IssueError {
	where := make([]Segment, 0, len(d.path)+len(at))
	where = append(append(where, d.path...), at...)
	return IssueError{Issue{Code: code, At: where, Message: msg, Offset: offset}}
}

func (d *decoder) next() (Token, error) {
	tok, err := d.src.NextToken()
	if err == io.EOF {
		return tok, io.ErrUnexpectedEOF
	}
	return tok, err
}

func (d *decoder) value(tok Token) (any, error) {
	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		d.depth++
		defer func() { d.depth-- }()
		if d.opt.MaxDepth > 0 && d.depth > d.opt.MaxDepth {
			return nil, d.issue(CodeParseError, "max depth "+strconv.Itoa(d.opt.MaxDepth)+" exceeded", tok.Offset)
		}
		if tok.Kind == KindBeginObject {
			return d.object()
		}
		return d.array()
	case KindString:
		return tok.String, nil
	case KindNumber:
		return json.Number(tok.Number), nil
	case KindBool:
		return tok.Bool, nil
	case KindNull:
		return nil, nil
	}
	return nil, d.issue(CodeParseError, "unexpected token", tok.Offset)
}

func (d *decoder) object() (any, error) {
	m := make(map[string]any)
	for {
		tok, err := d.next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndObject {
			return m, nil
		}
		if tok.Kind != KindKey {
			return nil, d.issue(CodeParseError, "expected object key", tok.Offset)
		}
		if _, dup := m[tok.String]; dup && d.opt.Duplicates != DupIgnore {
			is := d.issue(CodeDuplicateKey, "key "+strconv.Quote(tok.String)+" duplicated", tok.Offset, key(tok.String))
			is.Key = tok.String
			if d.opt.Duplicates == DupError {
				return nil, is
			}
			if d.opt.Warn != nil {
				d.opt.Warn(is.Issue)
			}
		}
		vt, err := d.next()
		if err != nil {
			return nil, err
		}
		d.path = append(d.path, key(tok.String))
		v, err := d.value(vt)
		d.path = d.path[:len(d.path)-1]
		if err != nil {
			return nil, err
		}
		m[tok.String] = v
	}
}

func (d *decoder) array() (any, error) {
	arr := []any{}
	for i := 0; ; i++ {
		tok, err := d.next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndArray {
			return arr, nil
		}
		d.path = append(d.path, Segment{Index: i})
		v, err := d.value(tok)
		d.path = d.path[:len(d.path)-1]
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}
