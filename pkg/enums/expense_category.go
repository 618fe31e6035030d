package enums

import "fmt"

// ExpenseCategory buckets operating expenses for day-end summaries.
type ExpenseCategory string

const (
	ExpenseCategoryIngredients ExpenseCategory = "ingredients"
	ExpenseCategoryUtilities   ExpenseCategory = "utilities"
	ExpenseCategorySalaries    ExpenseCategory = "salaries"
	ExpenseCategoryRent        ExpenseCategory = "rent"
	ExpenseCategoryEquipment   ExpenseCategory = "equipment"
	ExpenseCategoryOther       ExpenseCategory = "other"
)

var validExpenseCategories = []ExpenseCategory{
	ExpenseCategoryIngredients,
	ExpenseCategoryUtilities,
	ExpenseCategorySalaries,
	ExpenseCategoryRent,
	ExpenseCategoryEquipment,
	ExpenseCategoryOther,
}

func (c ExpenseCategory) String() string {
	return string(c)
}

func (c ExpenseCategory) IsValid() bool {
	for _, candidate := range validExpenseCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseExpenseCategory converts raw input into an ExpenseCategory.
func ParseExpenseCategory(value string) (ExpenseCategory, error) {
	for _, candidate := range validExpenseCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid expense category %q", value)
}
