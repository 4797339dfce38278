package privacy

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/poiesic/syndex/core"
)

const (
	// defaultGlobalBudget bounds cumulative leakage when no budget is
	// configured.
	defaultGlobalBudget = 1.0

	// gaussianDelta is the fixed failure probability of the Gaussian
	// mechanism.
	gaussianDelta = 1e-5

	// scoreSensitivity bounds how much one record can move a similarity
	// score.
	scoreSensitivity = 0.1
)

// UsageSink receives usage records for persistence. Persistence failures are
// logged and never fail the mechanism that produced the record.
type UsageSink interface {
	AppendUsage(ctx context.Context, record core.UsageRecord) error
}

// Manager is the budget ledger and noise calibrator. All methods are safe
// for concurrent use.
type Manager struct {
	globalBudget float64
	accountant   *Accountant
	logger       *slog.Logger
	sink         UsageSink

	mu         sync.Mutex
	usedBudget float64

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
	}
}

// WithRand sets the random source used by all mechanisms. Injecting a
// seeded source makes sampling reproducible for tests.
func WithRand(rng *rand.Rand) Option {
	return func(m *Manager) {
		if rng != nil {
			m.rng = rng
		}
	}
}

// WithUsageSink persists every usage record through the given sink in
// addition to the in-memory log.
func WithUsageSink(sink UsageSink) Option {
	return func(m *Manager) {
		m.sink = sink
	}
}

// NewManager creates a manager with the given global privacy budget.
// A non-positive budget falls back to the default of 1.0.
func NewManager(globalBudget float64, opts ...Option) *Manager {
	if globalBudget <= 0 {
		globalBudget = defaultGlobalBudget
	}

	seed := uint64(time.Now().UnixNano())
	m := &Manager{
		globalBudget: globalBudget,
		accountant:   NewAccountant(),
		logger:       slog.Default(),
		rng:          rand.New(rand.NewPCG(seed, seed>>17)),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// CheckBudget reports whether the remaining budget covers the requested
// epsilon. It is a pure predicate; prefer the mechanisms themselves, which
// reserve atomically.
func (m *Manager) CheckBudget(requested float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usedBudget+requested <= m.globalBudget
}

// ConsumeBudget unconditionally debits the ledger and logs the consumption.
// Callers are expected to have called CheckBudget first; the mechanisms on
// this manager reserve atomically instead and should be preferred.
func (m *Manager) ConsumeBudget(spent float64) {
	m.mu.Lock()
	m.usedBudget += spent
	remaining := m.globalBudget - m.usedBudget
	m.mu.Unlock()

	m.record("manual", spent, 0, 0)
	m.logger.Debug("consumed privacy budget", "spent", spent, "remaining", remaining)
}

// reserve atomically checks and consumes epsilon. This is the only path hard
// mechanisms take, closing the race where two concurrent operations both
// pass a separate check before either consumes.
func (m *Manager) reserve(epsilon float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.usedBudget+epsilon > m.globalBudget {
		return ErrInsufficientBudget
	}
	m.usedBudget += epsilon
	return nil
}

// tryReserve is the soft variant: it consumes epsilon if available and
// reports whether it did.
func (m *Manager) tryReserve(epsilon float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.usedBudget+epsilon > m.globalBudget {
		return false
	}
	m.usedBudget += epsilon
	return true
}

// AddNoiseToEmbeddings applies the Gaussian mechanism to a batch of
// embedding vectors and returns the noised copies. The noise scale is
// sqrt(2*ln(1.25/delta)) * sensitivity / epsilon with delta fixed at 1e-5.
// Returns ErrInsufficientBudget without touching the ledger when epsilon
// cannot be covered.
func (m *Manager) AddNoiseToEmbeddings(embeddings [][]float32, epsilon, sensitivity float64) ([][]float32, error) {
	if epsilon <= 0 {
		return nil, ErrInvalidEpsilon
	}
	if len(embeddings) == 0 {
		return nil, ErrEmptyEmbeddings
	}
	if sensitivity <= 0 {
		sensitivity = 1.0
	}

	if err := m.reserve(epsilon); err != nil {
		return nil, err
	}

	scale := math.Sqrt(2*math.Log(1.25/gaussianDelta)) * sensitivity / epsilon

	noised := make([][]float32, len(embeddings))
	m.rngMu.Lock()
	for i, embedding := range embeddings {
		out := make([]float32, len(embedding))
		for j, v := range embedding {
			out[j] = v + float32(m.rng.NormFloat64()*scale)
		}
		noised[i] = out
	}
	m.rngMu.Unlock()

	m.record("gaussian_noise", epsilon, sensitivity, len(embeddings))
	m.logger.Debug("applied gaussian noise to embeddings",
		"vectors", len(embeddings), "scale", scale, "epsilon", epsilon)
	return noised, nil
}

// AddNoiseToScore applies the Laplace mechanism to a similarity score with
// fixed sensitivity 0.1 and clamps the result to [0,1].
//
// This mechanism deliberately degrades instead of failing: when the budget
// cannot cover epsilon the original score is returned unmodified. Callers
// must not assume noise was applied.
func (m *Manager) AddNoiseToScore(score, epsilon float64) float64 {
	if epsilon <= 0 {
		return score
	}

	if !m.tryReserve(epsilon) {
		m.logger.Debug("budget exhausted, returning unnoised score", "epsilon", epsilon)
		return score
	}

	scale := scoreSensitivity / epsilon
	noisy := score + m.laplace(scale)
	noisy = math.Max(0, math.Min(1, noisy))

	m.record("laplace_score", epsilon, scoreSensitivity, 1)
	return noisy
}

// CreatePrivateHistogram counts occurrences per distinct item and perturbs
// each bucket with Laplace noise (sensitivity 1). Noised counts are floored
// at zero and rounded to integers.
// Returns ErrInsufficientBudget without touching the ledger when epsilon
// cannot be covered.
func (m *Manager) CreatePrivateHistogram(items []string, epsilon float64) (map[string]int, error) {
	if epsilon <= 0 {
		return nil, ErrInvalidEpsilon
	}

	if err := m.reserve(epsilon); err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, item := range items {
		counts[item]++
	}

	const sensitivity = 1.0
	scale := sensitivity / epsilon

	histogram := make(map[string]int, len(counts))
	for key, count := range counts {
		noisy := int(math.Round(float64(count) + m.laplace(scale)))
		if noisy < 0 {
			noisy = 0
		}
		histogram[key] = noisy
	}

	m.record("laplace_histogram", epsilon, sensitivity, len(items))
	return histogram, nil
}

// ScoredItem is one item selected by PrivateTopK with its noisy score.
type ScoredItem struct {
	Item  string
	Score float64
}

// PrivateTopK selects up to k items via the exponential mechanism: each
// item's sampling weight is proportional to exp(epsilon*score/2), and
// min(k, len(itemScores)) items are drawn without replacement. Each selected
// score is then noised through AddNoiseToScore at epsilon/k, and the result
// is sorted descending by noisy score.
// Returns ErrInsufficientBudget without touching the ledger when epsilon
// cannot be covered.
func (m *Manager) PrivateTopK(itemScores map[string]float64, k int, epsilon float64) ([]ScoredItem, error) {
	if epsilon <= 0 {
		return nil, ErrInvalidEpsilon
	}
	if len(itemScores) == 0 || k <= 0 {
		return []ScoredItem{}, nil
	}

	if err := m.reserve(epsilon); err != nil {
		return nil, err
	}

	const sensitivity = 1.0

	// Iterate in a fixed order so a seeded source yields the same draw.
	items := make([]string, 0, len(itemScores))
	for item := range itemScores {
		items = append(items, item)
	}
	sort.Strings(items)

	weights := make([]float64, len(items))
	for i, item := range items {
		weights[i] = math.Exp(epsilon * itemScores[item] / (2 * sensitivity))
	}

	count := k
	if len(items) < count {
		count = len(items)
	}
	selected := m.sampleWithoutReplacement(items, weights, count)

	result := make([]ScoredItem, 0, len(selected))
	for _, item := range selected {
		result = append(result, ScoredItem{
			Item:  item,
			Score: m.AddNoiseToScore(itemScores[item], epsilon/float64(k)),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Score > result[j].Score
	})

	m.record("exponential_top_k", epsilon, sensitivity, len(itemScores))
	return result, nil
}

// sampleWithoutReplacement draws count items by weight from a shrinking
// pool, renormalizing after each draw.
func (m *Manager) sampleWithoutReplacement(items []string, weights []float64, count int) []string {
	pool := make([]string, len(items))
	copy(pool, items)
	w := make([]float64, len(weights))
	copy(w, weights)

	m.rngMu.Lock()
	defer m.rngMu.Unlock()

	selected := make([]string, 0, count)
	for len(selected) < count && len(pool) > 0 {
		var total float64
		for _, weight := range w {
			total += weight
		}

		pick := len(pool) - 1
		if total > 0 {
			r := m.rng.Float64() * total
			for i, weight := range w {
				r -= weight
				if r < 0 {
					pick = i
					break
				}
			}
		}

		selected = append(selected, pool[pick])
		pool = append(pool[:pick], pool[pick+1:]...)
		w = append(w[:pick], w[pick+1:]...)
	}

	return selected
}

// laplace draws one Laplace(0, scale) sample via the inverse CDF.
func (m *Manager) laplace(scale float64) float64 {
	m.rngMu.Lock()
	u := m.rng.Float64() - 0.5
	m.rngMu.Unlock()

	if u < 0 {
		return scale * math.Log(1+2*u)
	}
	return -scale * math.Log(1-2*u)
}

// record appends to the in-memory log and, when configured, the usage sink.
func (m *Manager) record(mechanism string, budgetSpent, sensitivity float64, dataSize int) {
	usage := m.accountant.Record(mechanism, budgetSpent, sensitivity, dataSize)

	if m.sink != nil {
		if err := m.sink.AppendUsage(context.Background(), usage); err != nil {
			m.logger.Error("error persisting usage record", "mechanism", mechanism, "err", err)
		}
	}
}

// GlobalBudget returns the configured global budget.
func (m *Manager) GlobalBudget() float64 {
	return m.globalBudget
}

// UsedBudget returns the budget consumed so far.
func (m *Manager) UsedBudget() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usedBudget
}

// RemainingBudget returns the budget still available.
func (m *Manager) RemainingBudget() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.globalBudget - m.usedBudget
}

// Report describes the ledger state and per-mechanism usage.
type Report struct {
	GlobalBudget    float64
	UsedBudget      float64
	RemainingBudget float64
	UsagePercent    float64
	Usage           UsageSummary
}

// GetReport returns a snapshot of budget usage.
func (m *Manager) GetReport() Report {
	m.mu.Lock()
	used := m.usedBudget
	m.mu.Unlock()

	return Report{
		GlobalBudget:    m.globalBudget,
		UsedBudget:      used,
		RemainingBudget: m.globalBudget - used,
		UsagePercent:    used / m.globalBudget * 100,
		Usage:           m.accountant.Summary(),
	}
}

// UsageRecords returns a copy of the append-only usage log.
func (m *Manager) UsageRecords() []core.UsageRecord {
	return m.accountant.Records()
}

// ResetBudget zeroes the ledger and clears the usage log. This invalidates
// every privacy guarantee accumulated so far; it is not a routine operation
// and is logged at warning level.
func (m *Manager) ResetBudget() {
	m.mu.Lock()
	m.usedBudget = 0
	m.mu.Unlock()

	m.accountant.Reset()
	m.logger.Warn("privacy budget reset, prior guarantees no longer hold")
}
