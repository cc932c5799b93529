// Package audit persists terminal order outcomes and reconciliation
// classifications to Postgres for offline review. It is additive logging
// only: nothing in the trading path ever reads a record back, matching the
// external-collaborator-facing scope this repo draws around persistence
// (§1). It is grounded on the teacher's pkg/conn.Client gorm wrapper, reused
// here verbatim for the connection, plus gorm's own AutoMigrate/Create
// pattern for the two record tables.
package audit

import (
	"time"

	"gorm.io/gorm"

	"github.com/ayanmadaan/trading-engine/internal/model"
	"github.com/ayanmadaan/trading-engine/internal/model/enum"
	"github.com/yanun0323/logs"
)

// OrderRecord is one terminal order's audit row.
type OrderRecord struct {
	ID                  uint `gorm:"primaryKey"`
	ClientOrderID       int64
	Venue               string
	Instrument          string
	Side                string
	Status              string
	RejectReason        string
	SubmitPrice         float64
	SubmitQty           float64
	CumulativeFilledQty float64
	CumulativeFee       float64
	ExchangeOrderID     string
	RecordedAt          time.Time
}

func (OrderRecord) TableName() string { return "order_audit" }

// ReconRecord is one position-reconciliation cycle's audit row.
type ReconRecord struct {
	ID         uint `gorm:"primaryKey"`
	Venue      string
	Instrument string
	Status     string
	Gap        float64
	RecordedAt time.Time
}

func (ReconRecord) TableName() string { return "recon_audit" }

// Store writes audit rows. A nil Store is valid and silently drops writes,
// so callers needn't special-case a disabled audit sink at every call site.
type Store struct {
	db *gorm.DB
}

// New wraps db for audit writes and ensures its tables exist.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&OrderRecord{}, &ReconRecord{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// RecordOrder persists a terminal order's final state. Failures are logged,
// never propagated: a broken audit sink must not stall or reject trading.
func (s *Store) RecordOrder(o model.Order) {
	if s == nil || s.db == nil {
		return
	}
	row := OrderRecord{
		ClientOrderID:       o.ClientOrderID,
		Venue:                o.Venue.String(),
		Instrument:          o.Instrument,
		Side:                o.Side.String(),
		Status:              o.Status.String(),
		RejectReason:        o.RejectReason.String(),
		SubmitPrice:         o.SubmitPrice.Float64(),
		SubmitQty:           o.SubmitQty.Float64(),
		CumulativeFilledQty: o.CumulativeFilledQty.Float64(),
		CumulativeFee:       o.CumulativeFee.Float64(),
		ExchangeOrderID:     o.ExchangeOrderID,
		RecordedAt:          time.Now(),
	}
	if err := s.db.Create(&row).Error; err != nil {
		logs.Errorf("audit: record order clOrdId=%d failed: %+v", o.ClientOrderID, err)
	}
}

// RecordRecon persists one reconciliation cycle's classification.
func (s *Store) RecordRecon(venue enum.Venue, instrument string, status enum.ReconStatus, gap float64) {
	if s == nil || s.db == nil {
		return
	}
	row := ReconRecord{
		Venue:      venue.String(),
		Instrument: instrument,
		Status:     status.String(),
		Gap:        gap,
		RecordedAt: time.Now(),
	}
	if err := s.db.Create(&row).Error; err != nil {
		logs.Errorf("audit: record recon venue=%s failed: %+v", venue.String(), err)
	}
}
