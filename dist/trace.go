package dist

import (
	"fmt"
	"math/big"

	"github.com/in-the-mood-for-mov/erlang-cnode/etf"
)

// TraceToken is the sequential trace token carried by the *_TT control
// messages.
type TraceToken struct {
	Flags    int64
	Label    etf.Term
	Serial   int64
	From     etf.Pid
	Previous int64
}

func (t *TraceToken) String() string {
	return fmt.Sprintf("{%d, %v, %d, %s, %d}", t.Flags, t.Label, t.Serial, t.From, t.Previous)
}

// DecodeTraceToken converts the token element of a control tuple,
// {Flags, Label, Serial, From, Previous}. An empty list means there is no
// token and gives nil.
func DecodeTraceToken(term etf.Term) (*TraceToken, error) {
	if _, ok := term.(etf.Nil); ok {
		return nil, nil
	}

	t, ok := term.(etf.Tuple)
	if !ok || len(t) != 5 {
		return nil, fmt.Errorf("dist: trace token must be a 5-tuple, got %s", etf.KindOf(term))
	}

	var err error
	token := &TraceToken{Label: t.Element(2)}
	if token.Flags, err = toInt64(t.Element(1)); err != nil {
		return nil, fmt.Errorf("dist: trace token flags: %w", err)
	}
	if token.Serial, err = toInt64(t.Element(3)); err != nil {
		return nil, fmt.Errorf("dist: trace token serial: %w", err)
	}
	if token.From, ok = t.Element(4).(etf.Pid); !ok {
		return nil, fmt.Errorf("dist: trace token sender must be a pid, got %s", etf.KindOf(t.Element(4)))
	}
	if token.Previous, err = toInt64(t.Element(5)); err != nil {
		return nil, fmt.Errorf("dist: trace token previous serial: %w", err)
	}
	return token, nil
}

func toInt64(term etf.Term) (int64, error) {
	switch v := term.(type) {
	case int32:
		return int64(v), nil
	case *big.Int:
		if v.IsInt64() {
			return v.Int64(), nil
		}
		return 0, fmt.Errorf("integer %s does not fit 64 bits", v)
	}
	return 0, fmt.Errorf("expected integer, got %s", etf.KindOf(term))
}
