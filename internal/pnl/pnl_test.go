package pnl

import (
	"testing"
	"time"

	"wagyu_backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCompute_LongNQ(t *testing.T) {
	// Long NQ: entry 15000, exit 15005, qty 1, multiplier 20, fees 2.58.
	got := Compute(models.TradeSideLong, 15000, 15005, 1, 20, 2.58)
	assert.InDelta(t, 97.42, got, 0.0001)
}

func TestCompute_ShortWinner(t *testing.T) {
	// Short ES dropping 4 points with 2 contracts.
	got := Compute(models.TradeSideShort, 4500, 4496, 2, 50, 4.20)
	assert.InDelta(t, 395.80, got, 0.0001)
}

func TestCompute_LongLoser(t *testing.T) {
	got := Compute(models.TradeSideLong, 15000, 14995, 1, 20, 2.58)
	assert.InDelta(t, -102.58, got, 0.0001)
}

func TestCompute_FeesAlwaysSubtracted(t *testing.T) {
	// Flat trade still loses the fees.
	got := Compute(models.TradeSideShort, 100, 100, 5, 20, 10)
	assert.InDelta(t, -10, got, 0.0001)
}

func TestMultiplier_KnownSymbols(t *testing.T) {
	assert.Equal(t, 20.0, Multiplier("NQ"))
	assert.Equal(t, 2.0, Multiplier("MNQ"))
	assert.Equal(t, 50.0, Multiplier("ES"))
	assert.Equal(t, 1000.0, Multiplier("CL"))
	assert.Equal(t, 10.0, Multiplier("MGC"))
}

func TestMultiplier_StripsExpiry(t *testing.T) {
	assert.Equal(t, 20.0, Multiplier("NQZ4"))
	assert.Equal(t, 2.0, Multiplier("MNQH25"))
	assert.Equal(t, 50.0, Multiplier("esz24"))
}

func TestMultiplier_UnknownDefaultsToOne(t *testing.T) {
	assert.Equal(t, 1.0, Multiplier("BTCUSDT"))
	assert.Equal(t, 1.0, Multiplier("AAPL"))
}

func TestMultiplier_SpotPairsKeepDefault(t *testing.T) {
	// Spot pairs start with a futures root but carry no expiry suffix;
	// they must not inherit the futures multiplier.
	assert.Equal(t, 1.0, Multiplier("BTCUSD"))
	assert.Equal(t, 1.0, Multiplier("ETHUSDT"))
	assert.Equal(t, 1.0, Multiplier("CLF")) // ticker, not a CL contract
}

func TestContractRoot_PrefersLongestRoot(t *testing.T) {
	// MNQ must not be read as an NQ contract.
	assert.Equal(t, "MNQ", ContractRoot("MNQZ4"))
	assert.Equal(t, "NQ", ContractRoot("NQZ4"))
}

func TestContractRoot_OnlyStripsRealExpiries(t *testing.T) {
	assert.Equal(t, "BTCUSDT", ContractRoot("BTCUSDT"))
	assert.Equal(t, "GC", ContractRoot("GCZ25"))
	assert.Equal(t, "6E", ContractRoot("6EZ4"))
	// A digit tail without a month code letter is not an expiry.
	assert.Equal(t, "NQ4", ContractRoot("NQ4"))
}

func TestDuration_InvertedWindowCollapsesToZero(t *testing.T) {
	entry := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)
	exit := entry.Add(-time.Hour)
	assert.Equal(t, time.Duration(0), Duration(entry, exit))
}

func TestDuration_Normal(t *testing.T) {
	entry := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)
	exit := entry.Add(12 * time.Minute)
	assert.Equal(t, 12*time.Minute, Duration(entry, exit))
}
