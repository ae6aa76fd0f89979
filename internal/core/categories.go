package core

// Recommended category lists per transaction kind. These seed the
// category picker in the UI; free-form labels are still accepted, the
// lists are a suggestion, not a constraint.
var (
	IncomeCategories = []string{
		"Salary",
		"Freelance",
		"Business",
		"Investment",
		"Gift",
		"Other Income",
	}

	ExpenseCategories = []string{
		"Food & Dining",
		"Transportation",
		"Shopping",
		"Entertainment",
		"Bills & Utilities",
		"Healthcare",
		"Education",
		"Travel",
		"Other Expense",
	}
)

// CategoriesFor returns the recommended categories for a kind.
func CategoriesFor(k Kind) []string {
	if k == Income {
		return IncomeCategories
	}
	return ExpenseCategories
}
