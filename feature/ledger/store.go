package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Store is the persistence contract for asset ledgers: point reads and
// writes keyed by asset, plus a batch read for one-pass reconciliation.
type Store interface {
	// Get loads one ledger. It returns (nil, nil) when no ledger exists for
	// the asset.
	Get(ctx context.Context, asset string) (*Ledger, error)

	// Put creates a new ledger row.
	Put(ctx context.Context, l *Ledger) error

	// Update overwrites the available, average and history columns of an
	// existing ledger row.
	Update(ctx context.Context, l *Ledger) error

	// List loads every stored ledger.
	List(ctx context.Context) ([]*Ledger, error)
}

// record is the GORM row shape of one ledger.
type record struct {
	Asset     string `gorm:"column:crypto;primaryKey;size:32"`
	Available string `gorm:"column:available;size:64"`
	Average   string `gorm:"column:average;size:64"`
	History   string `gorm:"column:history;type:longtext"`
}

// TableName keeps the original table name.
func (record) TableName() string {
	return "crypto_investments"
}

type gormStore struct {
	db *gorm.DB
}

// NewStore creates a ledger store backed by the given database connection.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// AutoMigrate creates or updates the ledger table schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&record{})
}

func (s *gormStore) Get(ctx context.Context, asset string) (*Ledger, error) {
	var row record
	err := s.db.WithContext(ctx).Where("crypto = ?", asset).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger get %s: %w", asset, err)
	}
	return fromRecord(&row)
}

func (s *gormStore) Put(ctx context.Context, l *Ledger) error {
	row, err := toRecord(l)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("ledger put %s: %w", l.Asset, err)
	}
	return nil
}

func (s *gormStore) Update(ctx context.Context, l *Ledger) error {
	row, err := toRecord(l)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).
		Model(&record{}).
		Where("crypto = ?", l.Asset).
		Updates(map[string]any{
			"available": row.Available,
			"average":   row.Average,
			"history":   row.History,
		}).Error
	if err != nil {
		return fmt.Errorf("ledger update %s: %w", l.Asset, err)
	}
	return nil
}

func (s *gormStore) List(ctx context.Context) ([]*Ledger, error) {
	var rows []record
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("ledger list: %w", err)
	}

	ledgers := make([]*Ledger, 0, len(rows))
	for i := range rows {
		l, err := fromRecord(&rows[i])
		if err != nil {
			return nil, err
		}
		ledgers = append(ledgers, l)
	}
	return ledgers, nil
}

func toRecord(l *Ledger) (*record, error) {
	blob, err := EncodeHistory(&l.History)
	if err != nil {
		return nil, err
	}
	return &record{
		Asset:     l.Asset,
		Available: l.Available.String(),
		Average:   l.Average.String(),
		History:   blob,
	}, nil
}

func fromRecord(row *record) (*Ledger, error) {
	available, err := ParseQuantity(row.Asset, row.Available)
	if err != nil {
		return nil, err
	}

	// An unparseable average is tolerated: the column still carries the
	// original placeholder text in old rows.
	average, err := decimal.NewFromString(row.Average)
	if err != nil {
		average = decimal.Zero
	}

	history, err := DecodeHistory(row.Asset, row.History)
	if err != nil {
		return nil, err
	}

	return &Ledger{
		Asset:     row.Asset,
		Available: available,
		Average:   average,
		History:   *history,
	}, nil
}
