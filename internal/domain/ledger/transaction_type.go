package ledger

import "fmt"

// TransactionType represents the type of credit movement
type TransactionType string

const (
	// TransactionTypeTickIncome represents revenue paid by active stations on a tick
	TransactionTypeTickIncome TransactionType = "TICK_INCOME"

	// TransactionTypeStationBuild represents the optimistic debit of a construction
	TransactionTypeStationBuild TransactionType = "STATION_BUILD"

	// TransactionTypeBuildRefund represents the refund of a construction that rolled back
	TransactionTypeBuildRefund TransactionType = "BUILD_REFUND"

	// TransactionTypeStationUpgrade represents the cost of a station upgrade
	TransactionTypeStationUpgrade TransactionType = "STATION_UPGRADE"

	// TransactionTypeEventAdjustment represents credits gained or lost through a random event
	TransactionTypeEventAdjustment TransactionType = "EVENT_ADJUSTMENT"
)

// AllTransactionTypes returns all valid transaction types
func AllTransactionTypes() []TransactionType {
	return []TransactionType{
		TransactionTypeTickIncome,
		TransactionTypeStationBuild,
		TransactionTypeBuildRefund,
		TransactionTypeStationUpgrade,
		TransactionTypeEventAdjustment,
	}
}

// String returns the string representation of the TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	_, ok := TypeToCategoryMap[t]
	return ok
}

// ToCategory maps the transaction type to its category
func (t TransactionType) ToCategory() (Category, error) {
	category, exists := TypeToCategoryMap[t]
	if !exists {
		return "", fmt.Errorf("unknown transaction type: %s", t)
	}
	return category, nil
}

// ParseTransactionType parses a string into a TransactionType
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid transaction type: %s", s)
	}
	return t, nil
}
