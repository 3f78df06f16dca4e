package kpis

import "context"

// Repository port (interface for KPI catalog persistence)
type Repository interface {
	// ListAutomated returns "Auto" KPIs with a configured probe type,
	// filtered by cadence. An empty frequency returns every automated KPI.
	// Order is stable: group, then id.
	ListAutomated(ctx context.Context, freq Frequency) ([]*Kpi, error)
	Get(ctx context.Context, id KpiID) (*Kpi, error)
}
