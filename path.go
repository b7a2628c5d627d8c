package schemarpc

import (
	"strconv"
	"strings"
)

// Path addresses a location within an input value using dot/bracket notation:
// "" is the root, "user.name" a member, "items[2]" an index, `["a b"]` a key
// that is not an identifier and "role@1" the second alternative of a union.
type Path string

// Root is the empty path.
const Root Path = ""

// Field appends an object member.
func (p Path) Field(name string) Path {
	if !isIdent(name) {
		return p + Path("["+strconv.Quote(name)+"]")
	}
	if p == "" {
		return Path(name)
	}
	return p + "." + Path(name)
}

// Index appends an array or tuple position.
func (p Path) Index(i int) Path {
	return p + Path("["+strconv.Itoa(i)+"]")
}

// Alternative tags the path with a union alternative index.
func (p Path) Alternative(i int) Path {
	return p + Path("@"+strconv.Itoa(i))
}

func (p Path) String() string { return string(p) }

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// FromPointer converts an RFC 6901 JSON pointer into a Path. Numeric tokens
// are rendered as indexes.
func FromPointer(ptr string) Path {
	if ptr == "" || ptr == "/" {
		return Root
	}
	var p Path
	for _, tok := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		tok = strings.ReplaceAll(strings.ReplaceAll(tok, "~1", "/"), "~0", "~")
		if n, err := strconv.Atoi(tok); err == nil && n >= 0 && strconv.Itoa(n) == tok {
			p = p.Index(n)
			continue
		}
		p = p.Field(tok)
	}
	return p
}
