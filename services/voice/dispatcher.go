package voice

import (
	"context"
	"encoding/json"

	mentorRepo "superbryn/database/repository/mentor"
	"superbryn/models"
	"superbryn/services/identity"
	"superbryn/services/scheduling"
	"superbryn/utils"

	"go.uber.org/zap"
)

// Tool-level error codes. Scheduling taxonomy codes pass through unchanged.
const (
	CodeUnknownTool   = "unknownTool"
	CodeInvalidArgs   = "invalidArgs"
	CodeNotIdentified = "notIdentified"
	CodeInternal      = "internalError"
)

// CallerBinding is the session's resolved caller, set by identify_caller.
type CallerBinding struct {
	CallerID      string
	ContactNumber string
}

// IdentifyResult is the payload of a successful identify_caller call. The
// orchestrator binds the session to Caller on seeing it.
type IdentifyResult struct {
	Caller  *models.Caller        `json:"caller"`
	Context *models.CallerContext `json:"context"`
}

// Dispatcher routes agent tool calls to the scheduling ledger and supporting
// services. Every failure comes back as a structured ToolError, never as a
// session fault.
type Dispatcher struct {
	Ledger   scheduling.Ledger
	Identity identity.Service
	Mentors  mentorRepo.MentorRepository
}

// Dispatch executes one tool call. binding may be nil before the caller has
// been identified; tools that need a caller reject with notIdentified.
func (d *Dispatcher) Dispatch(ctx context.Context, binding *CallerBinding, tool string, args json.RawMessage) (interface{}, *ToolError) {
	switch tool {
	case "identify_caller":
		return d.identifyCaller(ctx, args)
	case "list_mentors":
		return d.listMentors(ctx)
	case "fetch_slots":
		return d.fetchSlots(ctx, args)
	case "book_appointment":
		return d.bookAppointment(ctx, binding, args)
	case "list_appointments":
		return d.listAppointments(ctx, binding)
	case "cancel_appointment":
		return d.cancelAppointment(ctx, binding, args)
	case "reschedule_appointment":
		return d.rescheduleAppointment(ctx, binding, args)
	default:
		return nil, &ToolError{Code: CodeUnknownTool, Message: "no such tool: " + tool}
	}
}

func (d *Dispatcher) identifyCaller(ctx context.Context, args json.RawMessage) (interface{}, *ToolError) {
	var in struct {
		ContactNumber string `json:"contactNumber"`
		Name          string `json:"name"`
	}
	if err := json.Unmarshal(args, &in); err != nil || in.ContactNumber == "" {
		return nil, &ToolError{Code: CodeInvalidArgs, Message: "identify_caller requires contactNumber"}
	}

	caller, err := d.Identity.Identify(ctx, in.ContactNumber, in.Name)
	if err != nil {
		return nil, &ToolError{Code: CodeInvalidArgs, Message: err.Error()}
	}
	cc, err := d.Identity.Context(ctx, caller.ContactNumber)
	if err != nil {
		utils.GetLogger().Warn("caller context assembly failed",
			zap.String("contact", caller.ContactNumber), zap.Error(err))
		cc = &models.CallerContext{Caller: *caller, Returning: false}
	}
	return &IdentifyResult{Caller: caller, Context: cc}, nil
}

func (d *Dispatcher) listMentors(ctx context.Context) (interface{}, *ToolError) {
	mentors, err := d.Mentors.List(ctx, true)
	if err != nil {
		return nil, internalToolError("failed to list mentors", err)
	}
	return mentors, nil
}

func (d *Dispatcher) fetchSlots(ctx context.Context, args json.RawMessage) (interface{}, *ToolError) {
	var in struct {
		MentorID string `json:"mentorId"`
		Date     string `json:"date"`
	}
	if err := json.Unmarshal(args, &in); err != nil || in.MentorID == "" || in.Date == "" {
		return nil, &ToolError{Code: CodeInvalidArgs, Message: "fetch_slots requires mentorId and date"}
	}
	slots, err := d.Ledger.ListOpenSlots(ctx, in.MentorID, in.Date)
	if err != nil {
		return nil, schedulingToolError(err)
	}
	if slots == nil {
		slots = []models.OpenSlot{}
	}
	return slots, nil
}

func (d *Dispatcher) bookAppointment(ctx context.Context, binding *CallerBinding, args json.RawMessage) (interface{}, *ToolError) {
	if binding == nil {
		return nil, &ToolError{Code: CodeNotIdentified, Message: "identify the caller before booking"}
	}
	var in struct {
		MentorID string `json:"mentorId"`
		Date     string `json:"date"`
		Time     string `json:"time"` // "HH:MM"
		Notes    string `json:"notes"`
	}
	if err := json.Unmarshal(args, &in); err != nil || in.MentorID == "" || in.Date == "" || in.Time == "" {
		return nil, &ToolError{Code: CodeInvalidArgs, Message: "book_appointment requires mentorId, date and time"}
	}
	timeMin, err := utils.ParseClock(in.Time)
	if err != nil {
		return nil, &ToolError{Code: CodeInvalidArgs, Message: err.Error()}
	}

	appt, err := d.Ledger.Book(ctx, scheduling.BookRequest{
		CallerID:      binding.CallerID,
		ContactNumber: binding.ContactNumber,
		MentorID:      in.MentorID,
		Date:          in.Date,
		Time:          timeMin,
		Notes:         in.Notes,
	})
	if err != nil {
		return nil, schedulingToolError(err)
	}
	d.Identity.InvalidateContext(ctx, binding.ContactNumber)
	return appt, nil
}

func (d *Dispatcher) listAppointments(ctx context.Context, binding *CallerBinding) (interface{}, *ToolError) {
	if binding == nil {
		return nil, &ToolError{Code: CodeNotIdentified, Message: "identify the caller first"}
	}
	appts, err := d.Ledger.ListByCaller(ctx, binding.ContactNumber, models.NonTerminalStatuses)
	if err != nil {
		return nil, schedulingToolError(err)
	}
	if appts == nil {
		appts = []models.Appointment{}
	}
	return appts, nil
}

func (d *Dispatcher) cancelAppointment(ctx context.Context, binding *CallerBinding, args json.RawMessage) (interface{}, *ToolError) {
	if binding == nil {
		return nil, &ToolError{Code: CodeNotIdentified, Message: "identify the caller first"}
	}
	var in struct {
		AppointmentID string `json:"appointmentId"`
	}
	if err := json.Unmarshal(args, &in); err != nil || in.AppointmentID == "" {
		return nil, &ToolError{Code: CodeInvalidArgs, Message: "cancel_appointment requires appointmentId"}
	}
	appt, err := d.Ledger.Cancel(ctx, in.AppointmentID, "caller")
	if err != nil {
		return nil, schedulingToolError(err)
	}
	d.Identity.InvalidateContext(ctx, binding.ContactNumber)
	return appt, nil
}

func (d *Dispatcher) rescheduleAppointment(ctx context.Context, binding *CallerBinding, args json.RawMessage) (interface{}, *ToolError) {
	if binding == nil {
		return nil, &ToolError{Code: CodeNotIdentified, Message: "identify the caller first"}
	}
	var in struct {
		AppointmentID string `json:"appointmentId"`
		Date          string `json:"date"`
		Time          string `json:"time"`
	}
	if err := json.Unmarshal(args, &in); err != nil || in.AppointmentID == "" || in.Date == "" || in.Time == "" {
		return nil, &ToolError{Code: CodeInvalidArgs, Message: "reschedule_appointment requires appointmentId, date and time"}
	}
	timeMin, err := utils.ParseClock(in.Time)
	if err != nil {
		return nil, &ToolError{Code: CodeInvalidArgs, Message: err.Error()}
	}
	appt, err := d.Ledger.Reschedule(ctx, in.AppointmentID, in.Date, timeMin)
	if err != nil {
		return nil, schedulingToolError(err)
	}
	d.Identity.InvalidateContext(ctx, binding.ContactNumber)
	return appt, nil
}

// schedulingToolError maps the scheduling taxonomy onto the wire; any other
// error becomes internalError without leaking store details.
func schedulingToolError(err error) *ToolError {
	if code := scheduling.CodeOf(err); code != "" {
		return &ToolError{Code: code, Message: err.Error()}
	}
	return internalToolError("operation failed", err)
}

func internalToolError(msg string, err error) *ToolError {
	utils.GetLogger().Error(msg, zap.Error(err))
	return &ToolError{Code: CodeInternal, Message: msg}
}
