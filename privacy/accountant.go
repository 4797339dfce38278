package privacy

import (
	"sync"
	"time"

	"github.com/poiesic/syndex/core"
)

// MechanismUsage aggregates budget spent through one mechanism.
type MechanismUsage struct {
	Count         int
	TotalBudget   float64
	AverageBudget float64
}

// UsageSummary summarizes the append-only usage log.
type UsageSummary struct {
	TotalMechanisms int
	TotalBudgetUsed float64
	Mechanisms      map[string]MechanismUsage
}

// Accountant keeps the append-only log of privacy mechanism usage.
// It is safe for concurrent use.
type Accountant struct {
	mu      sync.Mutex
	records []core.UsageRecord
}

// NewAccountant creates an empty accountant.
func NewAccountant() *Accountant {
	return &Accountant{}
}

// Record appends one usage entry.
func (a *Accountant) Record(mechanism string, budgetSpent, sensitivity float64, dataSize int) core.UsageRecord {
	record := core.UsageRecord{
		Timestamp:   time.Now().UTC(),
		Mechanism:   mechanism,
		BudgetSpent: budgetSpent,
		Sensitivity: sensitivity,
		DataSize:    dataSize,
	}

	a.mu.Lock()
	a.records = append(a.records, record)
	a.mu.Unlock()

	return record
}

// Records returns a copy of the usage log in append order.
func (a *Accountant) Records() []core.UsageRecord {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]core.UsageRecord, len(a.records))
	copy(out, a.records)
	return out
}

// Summary aggregates the log per mechanism.
func (a *Accountant) Summary() UsageSummary {
	a.mu.Lock()
	defer a.mu.Unlock()

	summary := UsageSummary{
		Mechanisms: make(map[string]MechanismUsage),
	}

	for _, record := range a.records {
		usage := summary.Mechanisms[record.Mechanism]
		usage.Count++
		usage.TotalBudget += record.BudgetSpent
		summary.Mechanisms[record.Mechanism] = usage

		summary.TotalMechanisms++
		summary.TotalBudgetUsed += record.BudgetSpent
	}

	for mechanism, usage := range summary.Mechanisms {
		usage.AverageBudget = usage.TotalBudget / float64(usage.Count)
		summary.Mechanisms[mechanism] = usage
	}

	return summary
}

// Reset clears the usage log.
func (a *Accountant) Reset() {
	a.mu.Lock()
	a.records = nil
	a.mu.Unlock()
}
