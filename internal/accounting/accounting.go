// Package accounting считает финансовые показатели выигранных тендеров.
// Ничего не хранит: всё пересчитывается при каждом чтении.
package accounting

import (
	"fmt"
	"sort"
	"strings"

	"tendercrm/models"
)

// DefaultTaxRate: УСН 7%
const DefaultTaxRate = 0.07

type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

func ParseFilter(v string) (Filter, error) {
	switch f := Filter(strings.TrimSpace(v)); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterActive, FilterCompleted:
		return f, nil
	default:
		return "", fmt.Errorf("unknown filter %q", v)
	}
}

func (f Filter) match(s models.Status) bool {
	switch f {
	case FilterActive:
		return s == models.StatusWon || s == models.StatusInProgress
	case FilterCompleted:
		return s == models.StatusCompleted
	default:
		return s.Revenue()
	}
}

type Financials struct {
	Revenue       float64 `json:"revenue"`
	TotalExpenses float64 `json:"total_expenses"`
	Profit        float64 `json:"profit"`
	Tax           float64 `json:"tax"`
	NetProfit     float64 `json:"net_profit"`
	Margin        float64 `json:"margin"`
}

// Calculate: налог берётся только с положительной прибыли.
func Calculate(revenue, totalExpenses, taxRate float64) Financials {
	profit := revenue - totalExpenses
	tax := 0.0
	if profit > 0 {
		tax = profit * taxRate
	}
	margin := 0.0
	if revenue > 0 {
		margin = profit / revenue * 100
	}
	return Financials{
		Revenue:       models.Round2(revenue),
		TotalExpenses: models.Round2(totalExpenses),
		Profit:        models.Round2(profit),
		Tax:           models.Round2(tax),
		NetProfit:     models.Round2(profit - tax),
		Margin:        models.Round2(margin),
	}
}

type Row struct {
	TenderID    int           `json:"tender_id"`
	Title       string        `json:"title"`
	Status      models.Status `json:"status"`
	StatusLabel string        `json:"status_label"`
	Financials
}

type Totals struct {
	Revenue       float64 `json:"total_revenue"`
	TotalExpenses float64 `json:"total_expenses"`
	Profit        float64 `json:"total_profit"`
	Tax           float64 `json:"total_tax"`
	NetProfit     float64 `json:"total_net_profit"`
}

type Report struct {
	Filter Filter  `json:"filter"`
	Rows   []Row   `json:"rows"`
	Totals Totals  `json:"totals"`
	Rate   float64 `json:"tax_rate"`
}

// Calculator держит ставку налога из конфигурации.
type Calculator struct {
	TaxRate float64
	// Label подписывает статус строки; nil оставляет код.
	Label func(models.Status) string
}

func New(taxRate float64, label func(models.Status) string) *Calculator {
	return &Calculator{TaxRate: taxRate, Label: label}
}

// Row считает показатели одного тендера. expenses: сумма его расходов.
func (c *Calculator) Row(t models.Tender, expenses float64) Row {
	revenue := 0.0
	if t.WinAmount != nil {
		revenue = *t.WinAmount
	}
	label := string(t.Status)
	if c.Label != nil {
		label = c.Label(t.Status)
	}
	return Row{
		TenderID:    t.ID,
		Title:       t.Title,
		Status:      t.Status,
		StatusLabel: label,
		Financials:  Calculate(revenue, expenses, c.TaxRate),
	}
}

// Report отбирает тендеры по фильтру и подстроке названия, новые сверху.
// expenses: суммы расходов по id тендера.
func (c *Calculator) Report(tenders []models.Tender, expenses map[int]float64, f Filter, q string) Report {
	q = strings.ToLower(strings.TrimSpace(q))
	rep := Report{Filter: f, Rows: []Row{}, Rate: c.TaxRate}

	for _, t := range tenders {
		if !f.match(t.Status) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(t.Title), q) {
			continue
		}
		rep.Rows = append(rep.Rows, c.Row(t, expenses[t.ID]))
	}
	sort.Slice(rep.Rows, func(i, j int) bool { return rep.Rows[i].TenderID > rep.Rows[j].TenderID })

	for _, r := range rep.Rows {
		rep.Totals.Revenue += r.Revenue
		rep.Totals.TotalExpenses += r.TotalExpenses
		rep.Totals.Profit += r.Profit
		rep.Totals.Tax += r.Tax
		rep.Totals.NetProfit += r.NetProfit
	}
	rep.Totals.Revenue = models.Round2(rep.Totals.Revenue)
	rep.Totals.TotalExpenses = models.Round2(rep.Totals.TotalExpenses)
	rep.Totals.Profit = models.Round2(rep.Totals.Profit)
	rep.Totals.Tax = models.Round2(rep.Totals.Tax)
	rep.Totals.NetProfit = models.Round2(rep.Totals.NetProfit)
	return rep
}
