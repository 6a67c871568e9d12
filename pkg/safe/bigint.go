// Package safe provides helpers for safe numeric conversions with overflow checks.
package safe

import (
	"fmt"
	"math"
	"math/big"
)

// BigUint64 converts an ABI-decoded big integer to uint64 with range validation.
func BigUint64(v *big.Int) (uint64, error) {
	if v == nil {
		return 0, fmt.Errorf("nil big integer")
	}
	if v.Sign() < 0 || !v.IsUint64() {
		return 0, fmt.Errorf("value %s out of uint64 range", v)
	}
	return v.Uint64(), nil
}

// BigInt64 converts an ABI-decoded big integer to int64 with range validation.
func BigInt64(v *big.Int) (int64, error) {
	if v == nil {
		return 0, fmt.Errorf("nil big integer")
	}
	if !v.IsInt64() {
		return 0, fmt.Errorf("value %s out of int64 range", v)
	}
	return v.Int64(), nil
}

// BigUint8 converts an ABI-decoded big integer to uint8 with range validation.
func BigUint8(v *big.Int) (uint8, error) {
	if v == nil {
		return 0, fmt.Errorf("nil big integer")
	}
	if v.Sign() < 0 || !v.IsUint64() || v.Uint64() > math.MaxUint8 {
		return 0, fmt.Errorf("value %s out of uint8 range", v)
	}
	return uint8(v.Uint64()), nil
}
