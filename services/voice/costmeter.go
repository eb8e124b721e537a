package voice

import (
	"context"
	"sync"
	"time"

	sessionRepo "superbryn/database/repository/session"
	"superbryn/models"
	"superbryn/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Per-unit USD rates for the external AI services a session consumes.
// Keyed by service name as reported by the agent.
var defaultRates = map[string]float64{
	"stt": 0.0043,     // per audio minute
	"tts": 0.000011,   // per character
	"llm": 0.00000045, // per token, blended in/out
}

// CostMeter accumulates usage for one session. The in-memory tally is the
// source of truth for the session summary; the per-record persistence to the
// cost log is best effort and never fails a Record call.
type CostMeter struct {
	mu        sync.Mutex
	sessionID string
	rates     map[string]float64
	services  map[string]models.ServiceCost
	total     float64
	store     sessionRepo.SessionRepository
}

// NewCostMeter creates a meter for one session. A nil store disables
// persistence of individual usage records.
func NewCostMeter(sessionID string, store sessionRepo.SessionRepository) *CostMeter {
	return &CostMeter{
		sessionID: sessionID,
		rates:     defaultRates,
		services:  make(map[string]models.ServiceCost),
		store:     store,
	}
}

// Record tallies one usage report. Unknown services are metered at zero cost
// but still logged, so new services surface in reporting before they are
// priced. Persistence errors are absorbed; the in-memory tally always advances.
func (m *CostMeter) Record(ctx context.Context, service string, units float64, unitKind string) {
	logger := utils.GetLogger()

	rate, priced := m.rates[service]
	if !priced {
		logger.Warn("usage report for unpriced service",
			zap.String("sessionID", m.sessionID), zap.String("service", service))
	}
	cost := units * rate

	m.mu.Lock()
	sc := m.services[service]
	sc.Units += units
	sc.UnitKind = unitKind
	sc.CostUSD += cost
	m.services[service] = sc
	m.total += cost
	m.mu.Unlock()

	if m.store == nil {
		return
	}
	entry := &models.CostEntry{
		ID:        uuid.New().String(),
		SessionID: m.sessionID,
		Service:   service,
		Units:     units,
		UnitKind:  unitKind,
		CostUSD:   cost,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.store.InsertCostEntry(ctx, entry); err != nil {
		logger.Warn("failed to persist usage record",
			zap.String("sessionID", m.sessionID),
			zap.String("service", service),
			zap.Error(err))
	}
}

// Snapshot returns the current per-service breakdown and total.
func (m *CostMeter) Snapshot() models.CostBreakdown {
	m.mu.Lock()
	defer m.mu.Unlock()
	services := make(map[string]models.ServiceCost, len(m.services))
	for k, v := range m.services {
		services[k] = v
	}
	return models.CostBreakdown{Services: services, TotalUSD: m.total}
}
