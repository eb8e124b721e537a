package voice

import (
	"context"
	"errors"
	"testing"

	"superbryn/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCostMeterAccumulates(t *testing.T) {
	store := &fakeSessionStore{}
	meter := NewCostMeter("s1", store)
	ctx := context.Background()

	meter.Record(ctx, "stt", 2.0, models.UnitMinutes)
	meter.Record(ctx, "stt", 1.0, models.UnitMinutes)
	meter.Record(ctx, "tts", 1000, models.UnitCharacters)

	snap := meter.Snapshot()
	require.Contains(t, snap.Services, "stt")
	require.Contains(t, snap.Services, "tts")
	assert.InDelta(t, 3.0, snap.Services["stt"].Units, 1e-9)
	assert.InDelta(t, 3*0.0043, snap.Services["stt"].CostUSD, 1e-9)
	assert.InDelta(t, 1000*0.000011, snap.Services["tts"].CostUSD, 1e-9)
	assert.InDelta(t, 3*0.0043+1000*0.000011, snap.TotalUSD, 1e-9)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Len(t, store.costEntries, 3)
}

func TestCostMeterAbsorbsPersistenceFailure(t *testing.T) {
	store := &fakeSessionStore{costErr: errors.New("mongo down")}
	meter := NewCostMeter("s1", store)

	meter.Record(context.Background(), "stt", 5.0, models.UnitMinutes)

	// The in-memory tally still advances.
	snap := meter.Snapshot()
	assert.InDelta(t, 5*0.0043, snap.TotalUSD, 1e-9)
}

func TestCostMeterUnknownServiceZeroRate(t *testing.T) {
	meter := NewCostMeter("s1", nil)
	meter.Record(context.Background(), "sfx", 10, models.UnitCharacters)

	snap := meter.Snapshot()
	require.Contains(t, snap.Services, "sfx")
	assert.Zero(t, snap.Services["sfx"].CostUSD)
	assert.InDelta(t, 10.0, snap.Services["sfx"].Units, 1e-9)
	assert.Zero(t, snap.TotalUSD)
}
