// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateNumericCode returns a random decimal code of exactly digits digits.
// The leading digit is never zero, so the width is stable when the code is
// read back as a number.
func GenerateNumericCode(digits int) (string, error) {
	if digits < 1 || digits > 18 {
		return "", fmt.Errorf("sec: unsupported code width %d", digits)
	}

	lowest := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits-1)), nil)
	span := new(big.Int).Mul(lowest, big.NewInt(9))

	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("sec: failed to read random source: %w", err)
	}

	return n.Add(n, lowest).String(), nil
}
