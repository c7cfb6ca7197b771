package nexus

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind is the nature of a transaction. The numeric order is the tie-break
// order used when two transactions share the same timestamp.
type Kind int

const (
	Acquire Kind = iota + 1
	Dispose
	Adjust
)

// Canonical tokens written to the persisted ledger.
const (
	tokenAcquire = "ACQUIRE"
	tokenDispose = "DISPOSE"
	tokenAdjust  = "ADJUST"
)

func (k Kind) String() string {
	switch k {
	case Acquire:
		return tokenAcquire
	case Dispose:
		return tokenDispose
	case Adjust:
		return tokenAdjust
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether k is one of the three known kinds.
func (k Kind) Valid() bool { return k >= Acquire && k <= Adjust }

// ParseKind parses a kind token. Besides the canonical tokens it accepts the
// tokens written by earlier versions of the ledger (COMPRA, VENTA, AJUSTE) and
// the lower case command names.
func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case tokenAcquire, "COMPRA", "BUY":
		return Acquire, nil
	case tokenDispose, "VENTA", "SELL":
		return Dispose, nil
	case tokenAdjust, "AJUSTE", "ADJUSTMENT":
		return Adjust, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

func (k Kind) MarshalJSON() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return json.Marshal(k.String())
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = v
	return nil
}
