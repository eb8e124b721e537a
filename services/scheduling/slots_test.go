package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotTimesHourlySteps(t *testing.T) {
	times, err := SlotTimes(540, 660, 60) // 09:00-11:00 hourly
	require.NoError(t, err)
	assert.Equal(t, []int{540, 600}, times)
}

func TestSlotTimesPartialTrailingSlot(t *testing.T) {
	// 09:00-10:30 at 60min: the 10:00 slot starts inside the window even
	// though it would run past the end, so it is still a candidate.
	times, err := SlotTimes(540, 630, 60)
	require.NoError(t, err)
	assert.Equal(t, []int{540, 600}, times)
}

func TestSlotTimesHalfHour(t *testing.T) {
	times, err := SlotTimes(540, 600, 30)
	require.NoError(t, err)
	assert.Equal(t, []int{540, 570}, times)
}

func TestSlotTimesInvalidWindow(t *testing.T) {
	_, err := SlotTimes(600, 600, 60)
	assert.Equal(t, CodeInvalidWindow, CodeOf(err))

	_, err = SlotTimes(660, 540, 60)
	assert.Equal(t, CodeInvalidWindow, CodeOf(err))

	_, err = SlotTimes(540, 660, 0)
	assert.Equal(t, CodeInvalidWindow, CodeOf(err))

	_, err = SlotTimes(540, 660, -30)
	assert.Equal(t, CodeInvalidWindow, CodeOf(err))
}

func TestSlotTimesSingleSlotWindow(t *testing.T) {
	times, err := SlotTimes(540, 600, 60)
	require.NoError(t, err)
	assert.Equal(t, []int{540}, times)
}
