package model

// JobSummary aggregates all jobs.
type JobSummary struct {
	TotalJobs    int     `json:"totalJobs"`
	TotalRevenue float64 `json:"totalRevenue"`
	Pending      int     `json:"pending"`
	InProgress   int     `json:"inProgress"`
	Completed    int     `json:"completed"`
}

// StockSummary aggregates the parts inventory.
type StockSummary struct {
	TotalParts         int            `json:"totalParts"`
	TotalUnits         int            `json:"totalUnits"`
	LowStock           int            `json:"lowStock"`
	LowStockByCategory map[string]int `json:"lowStockByCategory"`
}
