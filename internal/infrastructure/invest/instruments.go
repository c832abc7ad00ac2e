package invest

import (
	"context"

	domaininstruments "tradechart/internal/domain/entity/instruments"
	"tradechart/internal/domain/interfaces"

	investgo "github.com/russianinvestments/invest-api-go-sdk/investgo"
	pb "github.com/russianinvestments/invest-api-go-sdk/proto"
	"github.com/sirupsen/logrus"
)

// Instruments looks instruments up through the vendor instruments service.
type Instruments struct {
	find   func(query string) ([]*pb.InstrumentShort, error)
	shares func() ([]*pb.Share, error)
	logger *logrus.Entry
}

var _ interfaces.InstrumentFinder = (*Instruments)(nil)

func NewInstruments(client *investgo.Client, logger *logrus.Logger) *Instruments {
	svc := client.NewInstrumentsServiceClient()
	return &Instruments{
		find: func(query string) ([]*pb.InstrumentShort, error) {
			resp, err := svc.FindInstrument(query)
			if err != nil {
				return nil, err
			}
			return resp.GetInstruments(), nil
		},
		shares: func() ([]*pb.Share, error) {
			resp, err := svc.Shares(pb.InstrumentStatus_INSTRUMENT_STATUS_BASE)
			if err != nil {
				return nil, err
			}
			return resp.GetInstruments(), nil
		},
		logger: logger.WithField("component", "invest_instruments"),
	}
}

func (i *Instruments) FindInstrument(ctx context.Context, query string) ([]domaininstruments.Instrument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := i.find(query)
	if err != nil {
		return nil, err
	}
	out := make([]domaininstruments.Instrument, 0, len(items))
	for _, item := range items {
		instrument, err := convertInstrumentShort(item)
		if err != nil {
			i.logger.WithError(err).WithField("query", query).Warn("skip instrument")
			continue
		}
		out = append(out, instrument)
	}
	return out, nil
}

func (i *Instruments) Shares(ctx context.Context) ([]domaininstruments.Instrument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := i.shares()
	if err != nil {
		return nil, err
	}
	out := make([]domaininstruments.Instrument, 0, len(items))
	for _, item := range items {
		share, err := convertShare(item)
		if err != nil {
			i.logger.WithError(err).WithField("figi", item.GetFigi()).Warn("skip share")
			continue
		}
		out = append(out, share)
	}
	return out, nil
}
