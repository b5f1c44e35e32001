package wizard

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"
	"tourdesk/internal/utils"
)

type LineItem struct {
	Category  domain.Category
	Count     int
	UnitPrice decimal.Decimal
	Amount    decimal.Decimal
}

func (l LineItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Category  domain.Category `json:"category"`
		Label     string          `json:"label"`
		Count     int             `json:"count"`
		UnitPrice string          `json:"unit_price"`
		Amount    string          `json:"amount"`
	}{l.Category, l.Category.Label(), l.Count, utils.FormatMoney(l.UnitPrice), utils.FormatMoney(l.Amount)})
}

// PriceQuote is the itemized cost of a group. Total always equals the sum of
// the line amounts.
type PriceQuote struct {
	Lines    []LineItem
	Total    decimal.Decimal
	Warnings []string
}

func (q PriceQuote) MarshalJSON() ([]byte, error) {
	lines := q.Lines
	if lines == nil {
		lines = []LineItem{}
	}
	return json.Marshal(struct {
		Lines    []LineItem `json:"lines"`
		Total    string     `json:"total"`
		Warnings []string   `json:"warnings,omitempty"`
	}{lines, utils.FormatMoney(q.Total), q.Warnings})
}

// Quote prices counts against the plan. Only categories with a positive count
// produce a line. A price that cannot be parsed counts as zero and is reported
// in Warnings.
func Quote(counts models.GroupCounts, plan models.TourPlan) PriceQuote {
	q := PriceQuote{Total: decimal.Zero}
	for _, c := range domain.Categories {
		n := counts.Get(c)
		if n <= 0 {
			continue
		}
		unit, err := utils.ParseMoney(plan.Terms(c).Price)
		if err != nil {
			q.Warnings = append(q.Warnings, fmt.Sprintf("%s: unreadable price %q", c, plan.Terms(c).Price))
			unit = decimal.Zero
		}
		amount := unit.Mul(decimal.NewFromInt(int64(n)))
		q.Lines = append(q.Lines, LineItem{Category: c, Count: n, UnitPrice: unit, Amount: amount})
		q.Total = q.Total.Add(amount)
	}
	return q
}

// Total is the grand total of Quote.
func Total(counts models.GroupCounts, plan models.TourPlan) decimal.Decimal {
	return Quote(counts, plan).Total
}
