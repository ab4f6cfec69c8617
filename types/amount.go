package types

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// Decimals is the number of fractional digits in a token quantity.
// One whole token is 10^18 base units.
const Decimals = 18

// Amount is an unsigned 256-bit token quantity in base units. The zero
// value is zero base units and ready to use.
//
//nolint:recvcheck // Amount uses value receivers for reads and pointer receivers for deserialization.
type Amount struct {
	v uint256.Int
}

var unitsPerToken = uint256.NewInt(1_000_000_000_000_000_000)

// Units returns an Amount of n base units.
func Units(n uint64) Amount {
	var a Amount
	a.v.SetUint64(n)
	return a
}

// Tokens returns an Amount of n whole tokens.
func Tokens(n uint64) Amount {
	var a Amount
	a.v.SetUint64(n)
	a.v.Mul(&a.v, unitsPerToken)
	return a
}

// ZeroAmount returns the zero Amount.
func ZeroAmount() Amount {
	return Amount{}
}

// ParseAmount parses a base-unit decimal string.
func ParseAmount(s string) (Amount, error) {
	var a Amount
	if err := a.v.SetFromDecimal(s); err != nil {
		return Amount{}, fmt.Errorf("amount: parse %q: %w", s, err)
	}
	return a, nil
}

// MustParseAmount is like ParseAmount but panics on invalid input.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Arithmetic operations

// Add returns m + o. It panics on 256-bit overflow; callers that cannot
// rule out overflow must check with AddOverflows first.
func (m Amount) Add(o Amount) Amount {
	var out Amount
	if _, overflow := out.v.AddOverflow(&m.v, &o.v); overflow {
		panic(fmt.Sprintf("amount: addition overflow: %s + %s", m.v.Dec(), o.v.Dec()))
	}
	return out
}

// Subtract returns m - o. It panics if o exceeds m.
func (m Amount) Subtract(o Amount) Amount {
	var out Amount
	if _, underflow := out.v.SubOverflow(&m.v, &o.v); underflow {
		panic(fmt.Sprintf("amount: subtraction underflow: %s - %s", m.v.Dec(), o.v.Dec()))
	}
	return out
}

// AddOverflows reports whether m + o would exceed 256 bits.
func (m Amount) AddOverflows(o Amount) bool {
	var tmp uint256.Int
	_, overflow := tmp.AddOverflow(&m.v, &o.v)
	return overflow
}

// Comparison methods

func (m Amount) Cmp(o Amount) int {
	return m.v.Cmp(&o.v)
}

func (m Amount) Equal(o Amount) bool {
	return m.v.Eq(&o.v)
}

func (m Amount) LessThan(o Amount) bool {
	return m.v.Lt(&o.v)
}

func (m Amount) GreaterThan(o Amount) bool {
	return m.v.Gt(&o.v)
}

func (m Amount) IsZero() bool {
	return m.v.IsZero()
}

// Formatting methods

// String returns the base-unit decimal representation.
func (m Amount) String() string {
	return m.v.Dec()
}

// FormatTokens renders the amount in whole tokens, trimming trailing
// zeros from the fractional part: "49.5", "1000000000".
func (m Amount) FormatTokens() string {
	var whole, frac uint256.Int
	whole.DivMod(&m.v, unitsPerToken, &frac)
	if frac.IsZero() {
		return whole.Dec()
	}
	fs := strings.TrimRight(fmt.Sprintf("%018s", frac.Dec()), "0")
	return whole.Dec() + "." + fs
}

// MarshalJSON encodes the amount as a decimal string. Token quantities
// routinely exceed float64 precision, so bare JSON numbers are unsafe.
func (m Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.v.Dec() + `"`), nil
}

// UnmarshalJSON accepts a decimal string or a bare JSON number.
func (m *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		m.v.Clear()
		return nil
	}
	if err := m.v.SetFromDecimal(s); err != nil {
		return fmt.Errorf("amount: unmarshal %q: %w", s, err)
	}
	return nil
}

func (m Amount) MarshalText() ([]byte, error) {
	return []byte(m.v.Dec()), nil
}

func (m *Amount) UnmarshalText(data []byte) error {
	if err := m.v.SetFromDecimal(string(data)); err != nil {
		return fmt.Errorf("amount: unmarshal %q: %w", string(data), err)
	}
	return nil
}

// Value implements driver.Valuer, storing the base-unit decimal string.
func (m Amount) Value() (driver.Value, error) {
	return m.v.Dec(), nil
}

// Scan implements sql.Scanner.
func (m *Amount) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		m.v.Clear()
		return nil
	case string:
		if v == "" {
			m.v.Clear()
			return nil
		}
		return m.v.SetFromDecimal(v)
	case []byte:
		if len(v) == 0 {
			m.v.Clear()
			return nil
		}
		return m.v.SetFromDecimal(string(v))
	case int64:
		if v < 0 {
			return fmt.Errorf("amount: cannot scan negative value %d", v)
		}
		m.v.SetUint64(uint64(v))
		return nil
	default:
		return fmt.Errorf("amount: cannot scan %T into Amount", src)
	}
}
