// Package types implements the compiler's type and scope model: a small
// tagged-union Type with structural equality, a tagged-union Identifier, and
// a chained-scope symbol table. Grounded on
// original_source/src/semantics/{type_,identifier,scope}.rs.
package types


// Kind discriminates the Type tagged union.
type Kind int

const (
	Integer Kind = iota
	Real
	Char
	Record
	Scalar
	Unknown
)

func (k Kind) String() string {
	switch k {
	case Integer:
		return "Integer"
	case Real:
		return "Real"
	case Char:
		return "Char"
	case Record:
		return "Record"
	case Scalar:
		return "Scalar"
	default:
		return "Unknown"
	}
}

// Fields maps a record field name to its Type.
type Fields map[string]Type

// Type is a structural tagged union: Integer, Real and Char carry no
// payload; Record carries Fields; Scalar carries an ordered enumerator list.
type Type struct {
	Kind        Kind
	Fields      Fields
	Enumerators []string
}

// NewRecord builds a Record type from fs.
func NewRecord(fs Fields) Type {
	return Type{Kind: Record, Fields: fs}
}

// NewScalar builds a Scalar type from an ordered enumerator list.
func NewScalar(enumerators []string) Type {
	return Type{Kind: Scalar, Enumerators: enumerators}
}

// Boolean is the language's only boolean representation: a Scalar type with
// enumerators "false", "true" in that order. There is no dedicated boolean
// primitive.
func Boolean() Type {
	return NewScalar([]string{"false", "true"})
}

var (
	IntegerType = Type{Kind: Integer}
	RealType    = Type{Kind: Real}
	CharType    = Type{Kind: Char}
	UnknownType = Type{Kind: Unknown}
)

// Equal reports structural equality: Records compare field-map equal,
// Scalars compare as an ordered enumerator-list equal, everything else
// compares by Kind alone.
func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case Record:
		if len(t.Fields) != len(other.Fields) {
			return false
		}
		for name, ft := range t.Fields {
			oft, ok := other.Fields[name]
			if !ok || !ft.Equal(oft) {
				return false
			}
		}
		return true
	case Scalar:
		if len(t.Enumerators) != len(other.Enumerators) {
			return false
		}
		for i, e := range t.Enumerators {
			if other.Enumerators[i] != e {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String renders the type's kind, matching the Rust Debug impl's output.
func (t Type) String() string {
	return t.Kind.String()
}
