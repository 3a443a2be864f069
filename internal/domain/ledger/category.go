package ledger

import "fmt"

// Category represents the cash flow category for financial reporting
type Category string

const (
	// CategoryOperatingRevenue represents income paid by stations every tick
	CategoryOperatingRevenue Category = "OPERATING_REVENUE"

	// CategoryConstruction represents building and upgrading stations, refunds included
	CategoryConstruction Category = "CONSTRUCTION"

	// CategoryRandomEvents represents credit swings narrated by random events
	CategoryRandomEvents Category = "RANDOM_EVENTS"
)

// AllCategories returns all valid categories
func AllCategories() []Category {
	return []Category{
		CategoryOperatingRevenue,
		CategoryConstruction,
		CategoryRandomEvents,
	}
}

// TypeToCategoryMap maps transaction types to their categories
var TypeToCategoryMap = map[TransactionType]Category{
	TransactionTypeTickIncome:      CategoryOperatingRevenue,
	TransactionTypeStationBuild:    CategoryConstruction,
	TransactionTypeBuildRefund:     CategoryConstruction,
	TransactionTypeStationUpgrade:  CategoryConstruction,
	TransactionTypeEventAdjustment: CategoryRandomEvents,
}

// String returns the string representation of the Category
func (c Category) String() string {
	return string(c)
}

// IsValid checks if the category is valid
func (c Category) IsValid() bool {
	switch c {
	case CategoryOperatingRevenue,
		CategoryConstruction,
		CategoryRandomEvents:
		return true
	default:
		return false
	}
}

// ParseCategory parses a string into a Category
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid category: %s", s)
	}
	return c, nil
}
