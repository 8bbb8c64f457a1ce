// Package stats aggregates a user's transactions on the client side:
// time-range and category filtering plus the balance totals.
package stats

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sbilibin2017/gw-expense-tracker/internal/models"
)

// Range selects which transactions count towards the totals.
type Range string

// Supported ranges
const (
	RangeDaily   Range = "daily"
	RangeMonthly Range = "monthly"
	RangeYearly  Range = "yearly"
	RangeAll     Range = "all"
)

// AllCategories is the category filter that matches everything.
const AllCategories = "All"

// ErrUnknownRange is returned by ParseRange for unsupported values.
var ErrUnknownRange = errors.New("unknown time range")

// ParseRange converts user input into a Range. Empty input means RangeAll.
func ParseRange(s string) (Range, error) {
	switch r := Range(strings.ToLower(strings.TrimSpace(s))); r {
	case RangeDaily, RangeMonthly, RangeYearly, RangeAll:
		return r, nil
	case "":
		return RangeAll, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRange, s)
	}
}

// Totals are the sums per transaction type and the resulting balance.
type Totals struct {
	TotalIncome    float64
	TotalExpense   float64
	TotalInvested  float64
	TotalWithdrawn float64
	TotalBalance   float64
}

// View is what the client shows for one range and category selection.
type View struct {
	Range    Range
	Category string
	Totals   Totals
	// Transactions are filtered by range and then by category.
	Transactions []models.ExpenseDB
}

// CategoryTotal is the amount of one transaction type spent in a category.
type CategoryTotal struct {
	Category   string
	Total      float64
	Count      int
	Percentage float64
}

// FilterByRange keeps the transactions whose timestamp falls in the same
// calendar day, month or year as now. Calendars are evaluated in now's location.
func FilterByRange(txs []models.ExpenseDB, rng Range, now time.Time) []models.ExpenseDB {
	if rng == RangeAll || rng == "" {
		return txs
	}

	loc := now.Location()
	ny, nm, nd := now.Date()

	out := make([]models.ExpenseDB, 0, len(txs))
	for _, tx := range txs {
		y, m, d := tx.CreatedAt.In(loc).Date()
		var keep bool
		switch rng {
		case RangeDaily:
			keep = y == ny && m == nm && d == nd
		case RangeMonthly:
			keep = y == ny && m == nm
		case RangeYearly:
			keep = y == ny
		}
		if keep {
			out = append(out, tx)
		}
	}
	return out
}

// FilterByCategory keeps transactions with exactly the given category.
// AllCategories and the empty string keep everything.
func FilterByCategory(txs []models.ExpenseDB, category string) []models.ExpenseDB {
	if category == "" || category == AllCategories {
		return txs
	}
	out := make([]models.ExpenseDB, 0, len(txs))
	for _, tx := range txs {
		if tx.Category == category {
			out = append(out, tx)
		}
	}
	return out
}

// Aggregate sums txs per type. Balance = income + withdrawn - expense - invested.
func Aggregate(txs []models.ExpenseDB) Totals {
	var t Totals
	for _, tx := range txs {
		switch tx.Type {
		case models.TypeIncome:
			t.TotalIncome += tx.Amount
		case models.TypeExpense:
			t.TotalExpense += tx.Amount
		case models.TypeInvestment:
			t.TotalInvested += tx.Amount
		case models.TypeWithdrawal:
			t.TotalWithdrawn += tx.Amount
		}
	}
	t.TotalBalance = t.TotalIncome + t.TotalWithdrawn - t.TotalExpense - t.TotalInvested
	return t
}

// Compute builds the view for a range and category. The category only
// narrows the listed transactions, never the totals.
func Compute(txs []models.ExpenseDB, rng Range, category string, now time.Time) View {
	if category == "" {
		category = AllCategories
	}
	inRange := FilterByRange(txs, rng, now)
	return View{
		Range:        rng,
		Category:     category,
		Totals:       Aggregate(inRange),
		Transactions: FilterByCategory(inRange, category),
	}
}

// ByCategory groups transactions of type typ by category, largest first.
func ByCategory(txs []models.ExpenseDB, typ string) []CategoryTotal {
	idx := make(map[string]int)
	var out []CategoryTotal
	var total float64

	for _, tx := range txs {
		if tx.Type != typ {
			continue
		}
		i, ok := idx[tx.Category]
		if !ok {
			i = len(out)
			idx[tx.Category] = i
			out = append(out, CategoryTotal{Category: tx.Category})
		}
		out[i].Total += tx.Amount
		out[i].Count++
		total += tx.Amount
	}

	for i := range out {
		if total > 0 {
			out[i].Percentage = out[i].Total / total * 100
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Format renders an amount with two decimals.
func Format(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}
