package importer

import (
	"strings"
	"testing"
	"time"

	"wagyu_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tradovateCSV = `symbol,qty,buyPrice,sellPrice,boughtTimestamp,soldTimestamp
NQZ4,1,15000.00,15005.00,03/10/2024 09:30:00,03/10/2024 09:42:00
MNQZ4,2,18100.25,18090.50,03/10/2024 10:15:00,03/10/2024 10:05:00
`

const ninjatraderCSV = `Instrument,Market pos.,Qty,Entry price,Exit price,Entry time,Exit time,Commission
ES 06-24,Long,1,"4,500.00","4,504.00",3/10/2024 9:30:00 AM,3/10/2024 9:45:00 AM,$4.20
NQ 06-24,Short,2,15100.00,15095.00,3/10/2024 1:05:00 PM,3/10/2024 1:20:00 PM,$8.40
`

func TestParse_Tradovate(t *testing.T) {
	trades, rowErrs, err := Parse("tradovate", strings.NewReader(tradovateCSV), time.UTC)
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, trades, 2)

	long := trades[0]
	assert.Equal(t, "NQZ4", long.Symbol)
	assert.Equal(t, models.TradeSideLong, long.Side)
	assert.Equal(t, 1.0, long.Quantity)
	assert.Equal(t, 15000.00, long.EntryPrice)
	assert.Equal(t, 15005.00, long.ExitPrice)
	assert.Equal(t, 12*time.Minute, long.ExitTime.Sub(long.EntryTime))

	// Sold before bought: a short. Entry/exit get normalized chronologically.
	short := trades[1]
	assert.Equal(t, models.TradeSideShort, short.Side)
	assert.Equal(t, 18090.50, short.EntryPrice)
	assert.Equal(t, 18100.25, short.ExitPrice)
	assert.True(t, short.EntryTime.Before(short.ExitTime))
}

func TestParse_NinjaTrader(t *testing.T) {
	trades, rowErrs, err := Parse("ninjatrader", strings.NewReader(ninjatraderCSV), time.UTC)
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, trades, 2)

	assert.Equal(t, "ES 06-24", trades[0].Symbol)
	assert.Equal(t, models.TradeSideLong, trades[0].Side)
	assert.Equal(t, 4500.00, trades[0].EntryPrice)
	assert.Equal(t, 4504.00, trades[0].ExitPrice)
	assert.Equal(t, 4.20, trades[0].Fees)

	assert.Equal(t, models.TradeSideShort, trades[1].Side)
	assert.Equal(t, 13, trades[1].EntryTime.Hour(), "PM times must not be read as AM")
}

func TestParse_HeaderCaseInsensitive(t *testing.T) {
	csv := `SYMBOL,QTY,BuyPrice,SellPrice,BoughtTimestamp,SoldTimestamp
NQZ4,1,15000,15005,03/10/2024 09:30:00,03/10/2024 09:42:00
`
	trades, rowErrs, err := Parse("tradovate", strings.NewReader(csv), time.UTC)
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	assert.Len(t, trades, 1)
}

func TestParse_BadRowsSkippedAndReported(t *testing.T) {
	csv := `symbol,qty,buyPrice,sellPrice,boughtTimestamp,soldTimestamp
NQZ4,1,15000,15005,03/10/2024 09:30:00,03/10/2024 09:42:00
,1,15000,15005,03/10/2024 09:30:00,03/10/2024 09:42:00
NQZ4,zero,15000,15005,03/10/2024 09:30:00,03/10/2024 09:42:00
NQZ4,1,15000,15005,not-a-date,03/10/2024 09:42:00
`
	trades, rowErrs, err := Parse("tradovate", strings.NewReader(csv), time.UTC)
	require.NoError(t, err)
	assert.Len(t, trades, 1)
	require.Len(t, rowErrs, 3)
	assert.Equal(t, 3, rowErrs[0].Line)
	assert.Contains(t, rowErrs[1].Reason, "quantity")
	assert.Contains(t, rowErrs[2].Reason, "entry time")
}

func TestParse_MissingColumn(t *testing.T) {
	csv := `symbol,qty,buyPrice,boughtTimestamp,soldTimestamp
NQZ4,1,15000,03/10/2024 09:30:00,03/10/2024 09:42:00
`
	_, _, err := Parse("tradovate", strings.NewReader(csv), time.UTC)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sellprice")
}

func TestParse_UnsupportedBroker(t *testing.T) {
	_, _, err := Parse("etrade", strings.NewReader(tradovateCSV), time.UTC)
	assert.Error(t, err)
}

func TestParse_TimezoneApplied(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	trades, _, err := Parse("tradovate", strings.NewReader(tradovateCSV), chicago)
	require.NoError(t, err)
	require.NotEmpty(t, trades)
	assert.Equal(t, chicago.String(), trades[0].EntryTime.Location().String())
}

func TestParseNumber_CurrencyFormats(t *testing.T) {
	cases := map[string]float64{
		"$4.28":    4.28,
		"1,250.50": 1250.50,
		"(102.58)": -102.58,
		" $1,000 ": 1000,
		"-42.5":    -42.5,
	}
	for raw, want := range cases {
		got, err := parseNumber(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := parseNumber("")
	assert.Error(t, err)
}
