package instruments

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type InstrumentType string

const (
	ShareType    InstrumentType = "share"
	FutureType   InstrumentType = "futures"
	CurrencyType InstrumentType = "currency"
	BondType     InstrumentType = "bond"
	EtfType      InstrumentType = "etf"
)

// ParseInstrumentType maps a vendor type name onto InstrumentType.
func ParseInstrumentType(raw string) InstrumentType {
	return InstrumentType(strings.ToLower(strings.TrimSpace(raw)))
}

// Instrument is the reference row that maps a ticker to the vendor uid.
type Instrument struct {
	UID       uuid.UUID      `json:"uid"`
	Figi      string         `json:"figi"`
	Ticker    string         `json:"ticker"`
	ClassCode string         `json:"class_code"`
	Name      string         `json:"name"`
	Type      InstrumentType `json:"type"`
	Lot       int32          `json:"lot"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NormalizeTicker is the key instruments are looked up by.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
