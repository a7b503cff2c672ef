package config

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Fees holds the tiered application-fee table: a merchant on tier t pays
// floor(subtotal * Numerators[t] / Denominator) per order.
type Fees struct {
	Numerators  map[int]int64
	Denominator int64
}

var (
	feeConfig *Fees
	feeOnce   sync.Once
	feeErr    error
)

// LoadFees parses FEE_TIER_NUMERATORS ("tier:numerator,..." e.g. "0:250,1:200,2:150")
// and FEE_DENOMINATOR. A zero denominator is a fatal configuration error.
func LoadFees() (*Fees, error) {
	feeOnce.Do(func() {
		feeConfig, feeErr = parseFees(
			GetEnv("FEE_TIER_NUMERATORS", "0:250,1:200,2:150"),
			GetEnv("FEE_DENOMINATOR", "10000"),
		)
	})
	return feeConfig, feeErr
}

func parseFees(numerators, denominator string) (*Fees, error) {
	den, err := strconv.ParseInt(denominator, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("FEE_DENOMINATOR %q: %w", denominator, err)
	}
	if den == 0 {
		return nil, fmt.Errorf("FEE_DENOMINATOR is zero")
	}
	nums := make(map[int]int64)
	for _, pair := range strings.Split(numerators, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		kv := strings.SplitN(pair, ":", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("FEE_TIER_NUMERATORS entry %q: want tier:numerator", pair)
		}
		tier, err := strconv.Atoi(strings.TrimSpace(kv[0]))
		if err != nil {
			return nil, fmt.Errorf("FEE_TIER_NUMERATORS tier %q: %w", kv[0], err)
		}
		num, err := strconv.ParseInt(strings.TrimSpace(kv[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("FEE_TIER_NUMERATORS numerator %q: %w", kv[1], err)
		}
		nums[tier] = num
	}
	return &Fees{Numerators: nums, Denominator: den}, nil
}
