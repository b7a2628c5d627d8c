package schema

import (
	"strconv"
	"strings"
)

// Format renders n in a compact type-expression notation, e.g.
// `{id: string; tags?: string[]} | null`. The rendering is deterministic and
// is used to build ids for generic instantiations.
func Format(n Node) string {
	var b strings.Builder
	write(&b, n)
	return b.String()
}

// InstanceID names an instantiation of a generic declaration.
func InstanceID(name string, args []Node) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = Format(a)
	}
	return name + "<" + strings.Join(parts, ",") + ">"
}

// FormatValue renders a literal or enum value.
func FormatValue(v any) string {
	switch x := normalizeScalar(v).(type) {
	case string:
		return strconv.Quote(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case BigInt:
		return string(x) + "n"
	case nil:
		return "null"
	}
	return "?"
}

func write(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case nil:
		b.WriteString("<nil>")
	case *Primitive:
		b.WriteString(string(v.Type))
	case *Literal:
		b.WriteString(FormatValue(v.Value))
	case *Null:
		b.WriteString("null")
	case *Undefined:
		b.WriteString("undefined")
	case *Date:
		b.WriteString("Date")
	case *Any:
		b.WriteString("any")
	case *Array:
		writeOperand(b, v.Element)
		b.WriteString("[]")
	case *Tuple:
		b.WriteByte('[')
		for i, e := range v.Elements {
			if i > 0 {
				b.WriteString(", ")
			}
			if e.Rest {
				b.WriteString("...")
				writeOperand(b, e.Node)
				b.WriteString("[]")
				continue
			}
			write(b, e.Node)
		}
		b.WriteByte(']')
	case *Object:
		b.WriteByte('{')
		for i, m := range v.Members {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(memberName(m.Name))
			if m.Optional {
				b.WriteByte('?')
			}
			b.WriteString(": ")
			write(b, m.Node)
		}
		b.WriteByte('}')
	case *Index:
		b.WriteString("{[key: ")
		write(b, v.Key)
		b.WriteString("]: ")
		write(b, v.Value)
		b.WriteByte('}')
	case *Union:
		if len(v.Alternatives) == 0 {
			b.WriteString("never")
			return
		}
		writeJoined(b, v.Alternatives, " | ")
	case *Intersection:
		if len(v.Branches) == 0 {
			b.WriteString("unknown")
			return
		}
		writeJoined(b, v.Branches, " & ")
	case *Enum:
		b.WriteString("enum(")
		for i, x := range v.Values {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(FormatValue(x))
		}
		b.WriteByte(')')
	case *Ref:
		b.WriteString(v.ID)
	}
}

func writeJoined(b *strings.Builder, nodes []Node, sep string) {
	for i, x := range nodes {
		if i > 0 {
			b.WriteString(sep)
		}
		writeOperand(b, x)
	}
}

// writeOperand parenthesizes unions and intersections nested in another
// operator.
func writeOperand(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case *Union:
		if len(v.Alternatives) > 1 {
			b.WriteByte('(')
			write(b, n)
			b.WriteByte(')')
			return
		}
	case *Intersection:
		if len(v.Branches) > 1 {
			b.WriteByte('(')
			write(b, n)
			b.WriteByte(')')
			return
		}
	}
	write(b, n)
}

func memberName(s string) string {
	if s == "" {
		return strconv.Quote(s)
	}
	for i, r := range s {
		ok := r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9')
		if !ok {
			return strconv.Quote(s)
		}
	}
	return s
}
