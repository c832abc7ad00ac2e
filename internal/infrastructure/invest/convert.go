package invest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	domaininstruments "tradechart/internal/domain/entity/instruments"
	marketdata "tradechart/internal/domain/entity/marketdata"

	"github.com/google/uuid"
	pb "github.com/russianinvestments/invest-api-go-sdk/proto"
	"github.com/shopspring/decimal"
)

func convertTrade(instrument *domaininstruments.Instrument, symbol string, seq int, msg *pb.Trade) (marketdata.Trade, error) {
	if msg == nil {
		return marketdata.Trade{}, errors.New("trade payload is nil")
	}

	ts := msg.GetTime()
	if ts == nil {
		return marketdata.Trade{}, errors.New("trade timestamp is missing")
	}
	tradedAt := ts.AsTime().UTC()
	price := quotationToDecimal(msg.GetPrice())

	size := msg.GetQuantity()
	if instrument.Lot > 1 {
		size *= int64(instrument.Lot)
	}

	return marketdata.Trade{
		ID:            tradeID(instrument.UID, tradedAt, price, msg.GetQuantity(), seq),
		Symbol:        symbol,
		InstrumentUID: instrument.UID,
		Side:          mapTradeSide(msg.GetDirection()),
		Price:         price,
		Size:          size,
		EventTime:     tradedAt,
	}, nil
}

func convertInstrumentShort(msg *pb.InstrumentShort) (domaininstruments.Instrument, error) {
	if msg == nil {
		return domaininstruments.Instrument{}, errors.New("instrument payload is nil")
	}
	uid, err := parseInstrumentUID(msg.GetUid())
	if err != nil {
		return domaininstruments.Instrument{}, err
	}
	return domaininstruments.Instrument{
		UID:       uid,
		Figi:      strings.TrimSpace(msg.GetFigi()),
		Ticker:    domaininstruments.NormalizeTicker(msg.GetTicker()),
		ClassCode: strings.TrimSpace(msg.GetClassCode()),
		Name:      strings.TrimSpace(msg.GetName()),
		Type:      domaininstruments.ParseInstrumentType(msg.GetInstrumentType()),
	}, nil
}

func convertShare(msg *pb.Share) (domaininstruments.Instrument, error) {
	if msg == nil {
		return domaininstruments.Instrument{}, errors.New("share payload is nil")
	}
	uid, err := parseInstrumentUID(msg.GetUid())
	if err != nil {
		return domaininstruments.Instrument{}, err
	}
	return domaininstruments.Instrument{
		UID:       uid,
		Figi:      strings.TrimSpace(msg.GetFigi()),
		Ticker:    domaininstruments.NormalizeTicker(msg.GetTicker()),
		ClassCode: strings.TrimSpace(msg.GetClassCode()),
		Name:      strings.TrimSpace(msg.GetName()),
		Type:      domaininstruments.ShareType,
		Lot:       msg.GetLot(),
	}, nil
}

// quotationToDecimal keeps the exact units/nano value instead of going
// through float64.
func quotationToDecimal(q *pb.Quotation) decimal.Decimal {
	if q == nil {
		return decimal.Zero
	}
	return decimal.New(q.GetUnits(), 0).Add(decimal.New(int64(q.GetNano()), -9))
}

func parseInstrumentUID(raw string) (uuid.UUID, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return uuid.Nil, errors.New("instrument uid is empty")
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse instrument uid: %w", err)
	}
	return id, nil
}

func mapTradeSide(direction pb.TradeDirection) marketdata.TradeSide {
	switch direction {
	case pb.TradeDirection_TRADE_DIRECTION_BUY:
		return marketdata.TradeSideBuy
	case pb.TradeDirection_TRADE_DIRECTION_SELL:
		return marketdata.TradeSideSell
	default:
		return marketdata.TradeSideUnknown
	}
}

// tradeID is stable across refetches of the same window so cached and
// persisted batches keep their identities.
func tradeID(instrumentUID uuid.UUID, at time.Time, price decimal.Decimal, quantity int64, seq int) uuid.UUID {
	key := fmt.Sprintf("trade:%s:%d:%s:%d:%d", instrumentUID, at.UnixNano(), price.String(), quantity, seq)
	return uuid.NewSHA1(instrumentUID, []byte(key))
}
