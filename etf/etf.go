package etf

import (
	"math/big"
)

// Term is a decoded External Term Format value. The concrete type is one of
// Nil, int32, *big.Int, float64, Atom, Pid, Ref, Tuple, List or []byte.
type Term interface{}

// Nil is the empty list '[]'.
type Nil struct{}

// Tuple is a fixed-arity sequence of terms.
type Tuple []Term

// List holds the elements of a LIST_EXT followed by its tail. A proper
// list ends with Nil. Lists produced from STRING_EXT carry no tail.
type List []Term

// Element returns the 1-based element of the tuple, the way Erlang's
// element/2 does.
func (t Tuple) Element(i int) Term {
	return t[i-1]
}

// Kind identifies the variant of a Term.
type Kind int

const (
	KindUnknown Kind = iota
	KindNil
	KindInteger
	KindBigInteger
	KindFloat
	KindAtom
	KindPid
	KindReference
	KindTuple
	KindList
	KindBinary
)

var kindNames = map[Kind]string{
	KindNil:        "nil",
	KindInteger:    "integer",
	KindBigInteger: "big integer",
	KindFloat:      "float",
	KindAtom:       "atom",
	KindPid:        "pid",
	KindReference:  "reference",
	KindTuple:      "tuple",
	KindList:       "list",
	KindBinary:     "binary",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// KindOf reports the variant of the given term.
func KindOf(t Term) Kind {
	switch t.(type) {
	case Nil:
		return KindNil
	case int32:
		return KindInteger
	case *big.Int:
		return KindBigInteger
	case float64:
		return KindFloat
	case Atom:
		return KindAtom
	case Pid:
		return KindPid
	case Ref:
		return KindReference
	case Tuple:
		return KindTuple
	case List:
		return KindList
	case []byte:
		return KindBinary
	}
	return KindUnknown
}

// Erlang external term tags.
const (
	ettAtom          = byte(100)
	ettAtomUTF8      = byte(118)
	ettBinary        = byte(109)
	ettCacheRef      = byte(82)
	ettCompressed    = byte(80)
	ettFloat         = byte(99)
	ettInteger       = byte(98)
	ettLargeBig      = byte(111)
	ettLargeTuple    = byte(105)
	ettList          = byte(108)
	ettNewFloat      = byte(70)
	ettNewPid        = byte(88)
	ettNil           = byte(106)
	ettPid           = byte(103)
	ettRef           = byte(101)
	ettSmallAtom     = byte(115)
	ettSmallAtomUTF8 = byte(119)
	ettSmallBig      = byte(110)
	ettSmallInteger  = byte(97)
	ettSmallTuple    = byte(104)
	ettString        = byte(107)
)

const (
	// EtVersion is the Erlang external term format version
	EtVersion = byte(131)
)
