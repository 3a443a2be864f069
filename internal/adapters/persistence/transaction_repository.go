package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/neonrails-go/internal/domain/ledger"
	"github.com/andrescamacho/neonrails-go/internal/domain/shared"
)

// GormTransactionRepository implements ledger.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GORM transaction repository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Create persists a new transaction
func (r *GormTransactionRepository) Create(ctx context.Context, transaction *ledger.Transaction) error {
	model := transactionToModel(transaction)

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to create transaction: %w", result.Error)
	}

	return nil
}

// FindBySlot retrieves transactions of a save slot with optional filtering
func (r *GormTransactionRepository) FindBySlot(ctx context.Context, slot shared.SaveSlot, opts ledger.QueryOptions) ([]*ledger.Transaction, error) {
	query := r.db.WithContext(ctx).Where("slot = ?", slot.Value())
	query = applyFilters(query, opts)

	// Ties on tick are broken by insertion time
	switch opts.OrderBy {
	case "tick ASC":
		query = query.Order("tick ASC").Order("timestamp ASC")
	default:
		query = query.Order("tick DESC").Order("timestamp DESC")
	}

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	var models []TransactionModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find transactions: %w", err)
	}

	transactions := make([]*ledger.Transaction, len(models))
	for i := range models {
		tx, err := modelToTransaction(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert transaction model: %w", err)
		}
		transactions[i] = tx
	}

	return transactions, nil
}

// CountBySlot returns the count of transactions matching the criteria
func (r *GormTransactionRepository) CountBySlot(ctx context.Context, slot shared.SaveSlot, opts ledger.QueryOptions) (int, error) {
	query := r.db.WithContext(ctx).Model(&TransactionModel{}).Where("slot = ?", slot.Value())
	query = applyFilters(query, opts)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return int(count), nil
}

func applyFilters(query *gorm.DB, opts ledger.QueryOptions) *gorm.DB {
	if opts.FromTick != nil {
		query = query.Where("tick >= ?", *opts.FromTick)
	}
	if opts.ToTick != nil {
		query = query.Where("tick <= ?", *opts.ToTick)
	}
	if opts.Category != nil {
		query = query.Where("category = ?", opts.Category.String())
	}
	if opts.TransactionType != nil {
		query = query.Where("transaction_type = ?", opts.TransactionType.String())
	}
	return query
}

func modelToTransaction(model *TransactionModel) (*ledger.Transaction, error) {
	id, err := ledger.ParseTransactionID(model.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction ID in database: %w", err)
	}

	slot, err := shared.NewSaveSlot(model.Slot)
	if err != nil {
		return nil, fmt.Errorf("invalid save slot in database: %w", err)
	}

	transactionType, err := ledger.ParseTransactionType(model.TransactionType)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction type in database: %w", err)
	}

	category, err := ledger.ParseCategory(model.Category)
	if err != nil {
		return nil, fmt.Errorf("invalid category in database: %w", err)
	}

	return ledger.ReconstructTransaction(
		id,
		slot,
		model.Tick,
		model.Timestamp,
		transactionType,
		category,
		model.Amount,
		model.BalanceBefore,
		model.BalanceAfter,
		model.Description,
		model.RelatedEntityID,
	), nil
}

func transactionToModel(tx *ledger.Transaction) *TransactionModel {
	return &TransactionModel{
		ID:              tx.ID().String(),
		Slot:            tx.Slot().Value(),
		Tick:            tx.Tick(),
		Timestamp:       tx.Timestamp(),
		TransactionType: tx.TransactionType().String(),
		Category:        tx.Category().String(),
		Amount:          tx.Amount(),
		BalanceBefore:   tx.BalanceBefore(),
		BalanceAfter:    tx.BalanceAfter(),
		Description:     tx.Description(),
		RelatedEntityID: tx.RelatedEntityID(),
	}
}
