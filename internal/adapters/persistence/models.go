package persistence

import (
	"time"
)

// NetworkSnapshotModel represents the network_snapshots table.
// One row per save slot; saving overwrites the row.
type NetworkSnapshotModel struct {
	Slot       string    `gorm:"column:slot;primaryKey"`
	Version    uint64    `gorm:"column:version;not null"`
	Tick       int64     `gorm:"column:tick;not null"`
	Credits    int       `gorm:"column:credits;not null"`
	Reputation int       `gorm:"column:reputation;not null"`
	Energy     float64   `gorm:"column:energy;not null"`
	Stations   string    `gorm:"column:stations;type:text;not null"` // JSON stored as string
	Events     string    `gorm:"column:events;type:text;not null"`   // JSON stored as string
	SavedAt    time.Time `gorm:"column:saved_at;not null"`
}

func (NetworkSnapshotModel) TableName() string {
	return "network_snapshots"
}

// TransactionModel represents the transactions table
type TransactionModel struct {
	ID              string    `gorm:"column:id;primaryKey"`
	Slot            string    `gorm:"column:slot;not null;index:idx_transactions_slot_tick"`
	Tick            int64     `gorm:"column:tick;not null;index:idx_transactions_slot_tick"`
	Timestamp       time.Time `gorm:"column:timestamp;not null"`
	TransactionType string    `gorm:"column:transaction_type;not null"`
	Category        string    `gorm:"column:category;not null;index"`
	Amount          int       `gorm:"column:amount;not null"`
	BalanceBefore   int       `gorm:"column:balance_before;not null"`
	BalanceAfter    int       `gorm:"column:balance_after;not null"`
	Description     string    `gorm:"column:description"`
	RelatedEntityID string    `gorm:"column:related_entity_id"`
}

func (TransactionModel) TableName() string {
	return "transactions"
}

// AllModels lists every model for AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&NetworkSnapshotModel{},
		&TransactionModel{},
	}
}
