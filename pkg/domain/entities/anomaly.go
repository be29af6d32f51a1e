package entities

import "time"

// AnomalyKind names a simulated supply-chain disruption.
type AnomalyKind string

const (
	AnomalySupplierDelay    AnomalyKind = "supplier_delay"
	AnomalyDemandSpike      AnomalyKind = "demand_spike"
	AnomalyShrinkage        AnomalyKind = "shrinkage"
	AnomalyStockoutPressure AnomalyKind = "stockout_pressure"
)

// AnomalyEvent records one injected non-baseline multiplier window so
// reruns with the same dataset key reproduce identical disruptions.
type AnomalyEvent struct {
	Kind    AnomalyKind
	Company string
	Detail  string
	Start   time.Time
	End     time.Time
}
