package voice

import (
	"context"
	"encoding/json"
	"testing"

	"superbryn/models"
	"superbryn/services/scheduling"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchUnknownTool(t *testing.T) {
	d := newTestDispatcher()
	_, terr := d.Dispatch(context.Background(), nil, "summon_mentor", nil)
	require.NotNil(t, terr)
	assert.Equal(t, CodeUnknownTool, terr.Code)
}

func TestDispatchRequiresIdentification(t *testing.T) {
	d := newTestDispatcher()
	args := json.RawMessage(`{"mentorId":"m1","date":"2024-06-01","time":"09:00"}`)

	for _, tool := range []string{"book_appointment", "list_appointments", "cancel_appointment", "reschedule_appointment"} {
		_, terr := d.Dispatch(context.Background(), nil, tool, args)
		require.NotNil(t, terr, "tool %s", tool)
		assert.Equal(t, CodeNotIdentified, terr.Code, "tool %s", tool)
	}
}

func TestDispatchIdentifyCaller(t *testing.T) {
	d := newTestDispatcher()
	args := json.RawMessage(`{"contactNumber":"(555) 123-4567","name":"Sam"}`)

	result, terr := d.Dispatch(context.Background(), nil, "identify_caller", args)
	require.Nil(t, terr)
	ir, ok := result.(*IdentifyResult)
	require.True(t, ok)
	assert.Equal(t, "caller-1", ir.Caller.ID)
	assert.True(t, ir.Context.Returning)
}

func TestDispatchBookAppointment(t *testing.T) {
	d := newTestDispatcher()
	binding := &CallerBinding{CallerID: "caller-1", ContactNumber: "+15551234567"}
	args := json.RawMessage(`{"mentorId":"m1","date":"2024-06-01","time":"09:00","notes":"first visit"}`)

	result, terr := d.Dispatch(context.Background(), binding, "book_appointment", args)
	require.Nil(t, terr)
	appt, ok := result.(*models.Appointment)
	require.True(t, ok)
	assert.Equal(t, 540, appt.Time)
	assert.Equal(t, "+15551234567", appt.ContactNumber)
}

func TestDispatchBookSlotTakenPassesThrough(t *testing.T) {
	d := newTestDispatcher()
	d.Ledger = &fakeLedger{
		bookFn: func(ctx context.Context, req scheduling.BookRequest) (*models.Appointment, error) {
			return nil, scheduling.NewSlotTakenError("slot gone")
		},
	}
	binding := &CallerBinding{CallerID: "caller-1", ContactNumber: "+15551234567"}
	args := json.RawMessage(`{"mentorId":"m1","date":"2024-06-01","time":"09:00"}`)

	_, terr := d.Dispatch(context.Background(), binding, "book_appointment", args)
	require.NotNil(t, terr)
	assert.Equal(t, scheduling.CodeSlotTaken, terr.Code)
}

func TestDispatchBadArgs(t *testing.T) {
	d := newTestDispatcher()
	binding := &CallerBinding{CallerID: "caller-1", ContactNumber: "+15551234567"}

	_, terr := d.Dispatch(context.Background(), binding, "book_appointment", json.RawMessage(`{"mentorId":"m1"}`))
	require.NotNil(t, terr)
	assert.Equal(t, CodeInvalidArgs, terr.Code)

	_, terr = d.Dispatch(context.Background(), binding, "book_appointment",
		json.RawMessage(`{"mentorId":"m1","date":"2024-06-01","time":"9 o'clock"}`))
	require.NotNil(t, terr)
	assert.Equal(t, CodeInvalidArgs, terr.Code)

	_, terr = d.Dispatch(context.Background(), nil, "fetch_slots", json.RawMessage(`not json`))
	require.NotNil(t, terr)
	assert.Equal(t, CodeInvalidArgs, terr.Code)
}

func TestDispatchListMentors(t *testing.T) {
	d := newTestDispatcher()
	result, terr := d.Dispatch(context.Background(), nil, "list_mentors", nil)
	require.Nil(t, terr)
	mentors, ok := result.([]models.Mentor)
	require.True(t, ok)
	require.Len(t, mentors, 1)
	assert.Equal(t, "Ada", mentors[0].Name)
}

func TestDispatchFetchSlotsEmptyNotNil(t *testing.T) {
	d := newTestDispatcher()
	result, terr := d.Dispatch(context.Background(), nil, "fetch_slots",
		json.RawMessage(`{"mentorId":"m1","date":"2024-06-01"}`))
	require.Nil(t, terr)
	slots, ok := result.([]models.OpenSlot)
	require.True(t, ok)
	assert.NotNil(t, slots)
	assert.Empty(t, slots)
}
