// Package importer parses broker trade-history CSV exports into normalized
// trade rows. Each supported broker has its own column map and date layouts;
// header matching is case-insensitive because the same broker has shipped
// both "Symbol" and "symbol" over time.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"wagyu_backend/internal/models"
)

// ParsedTrade is one normalized row from a broker export.
type ParsedTrade struct {
	Symbol     string
	Side       models.TradeSide
	Quantity   float64
	EntryPrice float64
	ExitPrice  float64
	EntryTime  time.Time
	ExitTime   time.Time
	Fees       float64
}

// RowError reports one skipped row. Line numbers are 1-based and include
// the header line, matching what the user sees in their spreadsheet.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type brokerFormat struct {
	// column keys are lowercase; resolution against the header is
	// case-insensitive and whitespace-trimmed.
	symbol     string
	side       string // empty: side derived from entry/exit timestamps
	quantity   string
	entryPrice string
	exitPrice  string
	entryTime  string
	exitTime   string
	fees       string // optional column

	timeLayouts []string
}

var brokerFormats = map[string]brokerFormat{
	"tradovate": {
		symbol:     "symbol",
		quantity:   "qty",
		entryPrice: "buyprice",
		exitPrice:  "sellprice",
		entryTime:  "boughttimestamp",
		exitTime:   "soldtimestamp",
		timeLayouts: []string{
			"01/02/2006 15:04:05",
			"01/02/2006 15:04",
			"2006-01-02 15:04:05",
		},
	},
	"ninjatrader": {
		symbol:     "instrument",
		side:       "market pos.",
		quantity:   "qty",
		entryPrice: "entry price",
		exitPrice:  "exit price",
		entryTime:  "entry time",
		exitTime:   "exit time",
		fees:       "commission",
		timeLayouts: []string{
			"1/2/2006 3:04:05 PM",
			"1/2/2006 15:04:05",
			"2006-01-02 15:04:05",
		},
	},
}

// SupportedBrokers lists the accepted broker tags.
func SupportedBrokers() []string {
	return []string{"tradovate", "ninjatrader"}
}

// Parse reads a broker CSV export. Rows that fail to parse are skipped and
// reported; a single bad row never aborts the import. Timestamps without
// zone information are interpreted in loc.
func Parse(broker string, r io.Reader, loc *time.Location) ([]ParsedTrade, []RowError, error) {
	format, ok := brokerFormats[strings.ToLower(broker)]
	if !ok {
		return nil, nil, fmt.Errorf("unsupported broker %q", broker)
	}
	if loc == nil {
		loc = time.UTC
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols, err := resolveColumns(header, format)
	if err != nil {
		return nil, nil, err
	}

	var trades []ParsedTrade
	var rowErrors []RowError
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			rowErrors = append(rowErrors, RowError{Line: line, Reason: "malformed CSV row"})
			continue
		}

		trade, perr := parseRow(record, cols, format, loc)
		if perr != nil {
			rowErrors = append(rowErrors, RowError{Line: line, Reason: perr.Error()})
			continue
		}
		trades = append(trades, trade)
	}

	return trades, rowErrors, nil
}

type columnIndex struct {
	symbol     int
	side       int
	quantity   int
	entryPrice int
	exitPrice  int
	entryTime  int
	exitTime   int
	fees       int
}

func resolveColumns(header []string, format brokerFormat) (columnIndex, error) {
	lookup := make(map[string]int, len(header))
	for i, h := range header {
		lookup[strings.ToLower(strings.TrimSpace(h))] = i
	}

	required := func(name string) (int, error) {
		if idx, ok := lookup[name]; ok {
			return idx, nil
		}
		return 0, fmt.Errorf("missing required column %q", name)
	}

	var cols columnIndex
	var err error

	if cols.symbol, err = required(format.symbol); err != nil {
		return cols, err
	}
	if cols.quantity, err = required(format.quantity); err != nil {
		return cols, err
	}
	if cols.entryPrice, err = required(format.entryPrice); err != nil {
		return cols, err
	}
	if cols.exitPrice, err = required(format.exitPrice); err != nil {
		return cols, err
	}
	if cols.entryTime, err = required(format.entryTime); err != nil {
		return cols, err
	}
	if cols.exitTime, err = required(format.exitTime); err != nil {
		return cols, err
	}

	cols.side = -1
	if format.side != "" {
		if cols.side, err = required(format.side); err != nil {
			return cols, err
		}
	}

	cols.fees = -1
	if format.fees != "" {
		if idx, ok := lookup[format.fees]; ok {
			cols.fees = idx
		}
	}

	return cols, nil
}

func parseRow(record []string, cols columnIndex, format brokerFormat, loc *time.Location) (ParsedTrade, error) {
	var trade ParsedTrade

	get := func(idx int) string {
		if idx < 0 || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	trade.Symbol = strings.ToUpper(get(cols.symbol))
	if trade.Symbol == "" {
		return trade, fmt.Errorf("empty symbol")
	}

	qty, err := parseNumber(get(cols.quantity))
	if err != nil || qty <= 0 {
		return trade, fmt.Errorf("invalid quantity %q", get(cols.quantity))
	}
	trade.Quantity = qty

	if trade.EntryPrice, err = parseNumber(get(cols.entryPrice)); err != nil {
		return trade, fmt.Errorf("invalid entry price %q", get(cols.entryPrice))
	}
	if trade.ExitPrice, err = parseNumber(get(cols.exitPrice)); err != nil {
		return trade, fmt.Errorf("invalid exit price %q", get(cols.exitPrice))
	}

	if trade.EntryTime, err = parseTime(get(cols.entryTime), format.timeLayouts, loc); err != nil {
		return trade, fmt.Errorf("invalid entry time %q", get(cols.entryTime))
	}
	if trade.ExitTime, err = parseTime(get(cols.exitTime), format.timeLayouts, loc); err != nil {
		return trade, fmt.Errorf("invalid exit time %q", get(cols.exitTime))
	}

	if cols.side >= 0 {
		trade.Side, err = parseSide(get(cols.side))
		if err != nil {
			return trade, err
		}
	} else {
		// Tradovate performance exports carry no side column: a position
		// bought before it was sold is long, otherwise short.
		if trade.EntryTime.After(trade.ExitTime) {
			trade.Side = models.TradeSideShort
			trade.EntryTime, trade.ExitTime = trade.ExitTime, trade.EntryTime
			trade.EntryPrice, trade.ExitPrice = trade.ExitPrice, trade.EntryPrice
		} else {
			trade.Side = models.TradeSideLong
		}
	}

	if cols.fees >= 0 {
		if fees, err := parseNumber(get(cols.fees)); err == nil {
			trade.Fees = fees
		}
	}

	return trade, nil
}

func parseSide(raw string) (models.TradeSide, error) {
	switch strings.ToLower(raw) {
	case "long", "buy":
		return models.TradeSideLong, nil
	case "short", "sell":
		return models.TradeSideShort, nil
	default:
		return "", fmt.Errorf("unknown side %q", raw)
	}
}

// parseNumber handles the currency formatting broker exports use:
// "$4.28", "1,250.50", "(102.58)" for negative.
func parseNumber(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if negative {
		v = -v
	}
	return v, nil
}

func parseTime(raw string, layouts []string, loc *time.Location) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("no layout matched %q", raw)
}
