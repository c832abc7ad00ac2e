package models

import (
	"time"

	domain "tradechart/internal/domain/entity/instruments"

	"github.com/google/uuid"
)

type InstrumentModel struct {
	UID       uuid.UUID `gorm:"primaryKey;column:uid;type:uuid"`
	Figi      string    `gorm:"column:figi;type:varchar(255);index"`
	Ticker    string    `gorm:"column:ticker;type:varchar(50);not null;index"`
	ClassCode string    `gorm:"column:class_code;type:varchar(50)"`
	Name      string    `gorm:"column:name;type:varchar(255)"`
	Type      string    `gorm:"column:instrument_type;type:varchar(50)"`
	Lot       int32     `gorm:"column:lot;type:integer;not null;default:1"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (InstrumentModel) TableName() string {
	return "instruments"
}

func FromDomain(i domain.Instrument) InstrumentModel {
	return InstrumentModel{
		UID:       i.UID,
		Figi:      i.Figi,
		Ticker:    domain.NormalizeTicker(i.Ticker),
		ClassCode: i.ClassCode,
		Name:      i.Name,
		Type:      string(i.Type),
		Lot:       i.Lot,
	}
}

func (m InstrumentModel) ToDomain() domain.Instrument {
	return domain.Instrument{
		UID:       m.UID,
		Figi:      m.Figi,
		Ticker:    m.Ticker,
		ClassCode: m.ClassCode,
		Name:      m.Name,
		Type:      domain.InstrumentType(m.Type),
		Lot:       m.Lot,
		UpdatedAt: m.UpdatedAt,
	}
}
