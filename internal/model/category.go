package model

import "strings"

// CategoryType indicates whether a category is for income or expense.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income transactions.
	CategoryTypeIncome CategoryType = "Income"
	// CategoryTypeExpense represents categories for expense transactions.
	CategoryTypeExpense CategoryType = "Expense"
)

// CategoryTypes lists the allowed category types in display order.
var CategoryTypes = []CategoryType{CategoryTypeIncome, CategoryTypeExpense}

// Valid reports whether t is one of the allowed types.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// ParseCategoryType parses a type name case-insensitively.
// The second return value is false for anything other than income or expense.
func ParseCategoryType(s string) (CategoryType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return CategoryTypeIncome, true
	case "expense":
		return CategoryTypeExpense, true
	}
	return CategoryType(s), false
}

// Category is a named bucket used to classify transactions.
type Category struct {
	Name string
	Type CategoryType
	ID   int64
}

// DefaultIncomeCategories is the seeded income category set.
var DefaultIncomeCategories = []string{
	"Salary", "Investment", "Freelance", "Rental Income",
	"Business Income", "Bonus", "Interest", "Dividend",
}

// DefaultExpenseCategories is the seeded expense category set.
var DefaultExpenseCategories = []string{
	"Food", "Rent", "Utilities", "Transportation", "Entertainment",
	"Shopping", "Healthcare", "Insurance", "Education", "Travel",
	"Groceries", "Home Maintenance", "Clothing", "Personal Care",
	"Subscriptions", "Phone Bill", "Internet", "Gym Membership",
	"Dining Out", "Gifts", "Pet Care", "Taxes", "Loan Payment",
	"Miscellaneous",
}

// DefaultCategories returns the full seed list, income first.
func DefaultCategories() []Category {
	cats := make([]Category, 0, len(DefaultIncomeCategories)+len(DefaultExpenseCategories))
	for _, name := range DefaultIncomeCategories {
		cats = append(cats, Category{Name: name, Type: CategoryTypeIncome})
	}
	for _, name := range DefaultExpenseCategories {
		cats = append(cats, Category{Name: name, Type: CategoryTypeExpense})
	}
	return cats
}
