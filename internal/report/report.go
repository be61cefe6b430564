// Package report derives aggregate figures from jobs and stock.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/erazemk/mechatrack/internal/model"
)

// SummarizeJobs counts jobs per status and sums revenue over all jobs.
// Only the exact strings Pending, In Progress and Completed are bucketed.
func SummarizeJobs(jobs []model.Job) model.JobSummary {
	summary := model.JobSummary{TotalJobs: len(jobs)}
	revenue := decimal.Zero
	for _, job := range jobs {
		revenue = revenue.Add(decimal.NewFromFloat(job.Cost))
		switch job.Status {
		case model.JobStatusPending:
			summary.Pending++
		case model.JobStatusInProgress:
			summary.InProgress++
		case model.JobStatusCompleted:
			summary.Completed++
		}
	}
	summary.TotalRevenue = revenue.InexactFloat64()
	return summary
}

// SummarizeStock counts parts and units, and the parts whose quantity is
// below threshold, overall and per category label.
func SummarizeStock(items []model.Item, threshold int) model.StockSummary {
	summary := model.StockSummary{
		TotalParts:         len(items),
		LowStockByCategory: map[string]int{},
	}
	for _, item := range items {
		summary.TotalUnits += item.Quantity
		if item.Quantity < threshold {
			summary.LowStock++
			summary.LowStockByCategory[item.Category.Label()]++
		}
	}
	return summary
}

// LowStockItems returns the items below threshold, lowest quantity first.
func LowStockItems(items []model.Item, threshold int) []model.Item {
	low := []model.Item{}
	for _, item := range items {
		if item.Quantity < threshold {
			low = append(low, item)
		}
	}
	sort.SliceStable(low, func(i, j int) bool { return low[i].Quantity < low[j].Quantity })
	return low
}
