package pnl

import (
	"strings"
	"time"

	"wagyu_backend/internal/models"
)

// contractMultipliers is the dollar value of one full price point per
// contract. Micro contracts are 1/10th of their parent.
var contractMultipliers = map[string]float64{
	// Equity index futures
	"ES":  50,
	"MES": 5,
	"NQ":  20,
	"MNQ": 2,
	"YM":  5,
	"MYM": 0.5,
	"RTY": 50,
	"M2K": 5,

	// Energy
	"CL":  1000,
	"MCL": 100,
	"NG":  10000,

	// Metals
	"GC":  100,
	"MGC": 10,
	"SI":  5000,
	"SIL": 1000,
	"HG":  25000,

	// Currencies
	"6E": 125000,
	"6J": 12500000,
	"6B": 62500,
	"6A": 100000,

	// Rates
	"ZB": 1000,
	"ZN": 1000,
	"ZF": 1000,

	// Crypto futures
	"BTC": 5,
	"MBT": 0.1,
	"ETH": 50,
	"MET": 0.1,
}

// Multiplier returns the contract multiplier for a symbol. Broker exports
// carry the expiry in the symbol ("NQZ4", "ESH25"); the lookup strips it.
// Unknown symbols (spot/crypto pairs) fall back to 1.
func Multiplier(symbol string) float64 {
	root := ContractRoot(symbol)
	if m, ok := contractMultipliers[root]; ok {
		return m
	}
	return 1
}

// Futures expiry month codes (F = January ... Z = December).
const monthCodes = "FGHJKMNQUVXZ"

// ContractRoot strips the expiry month/year suffix from a futures symbol.
// Only a suffix that actually reads as an expiry is removed: a month code
// letter followed by a 1-2 digit year. Spot pairs like "BTCUSDT" must stay
// intact even though they start with a known root.
func ContractRoot(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if _, ok := contractMultipliers[s]; ok {
		return s
	}

	for _, yearDigits := range []int{2, 1} {
		cut := len(s) - yearDigits - 1
		if cut < 2 {
			continue
		}
		if !isDigits(s[cut+1:]) || !strings.ContainsRune(monthCodes, rune(s[cut])) {
			continue
		}
		if _, ok := contractMultipliers[s[:cut]]; ok {
			return s[:cut]
		}
	}
	return s
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Compute returns the realized PnL of a closed position:
// (exit - entry) * qty * multiplier * sign - fees, sign being +1 for long
// and -1 for short.
func Compute(side models.TradeSide, entry, exit, qty, multiplier, fees float64) float64 {
	sign := 1.0
	if side == models.TradeSideShort {
		sign = -1.0
	}
	return (exit-entry)*qty*multiplier*sign - fees
}

// Duration returns the holding time of a trade. A zero or inverted window
// collapses to 0 rather than going negative; broker exports with mixed
// timezone columns produced exactly that bug class.
func Duration(entry, exit time.Time) time.Duration {
	if exit.Before(entry) {
		return 0
	}
	return exit.Sub(entry)
}
