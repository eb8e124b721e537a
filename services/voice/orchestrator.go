package voice

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	sessionRepo "superbryn/database/repository/session"
	"superbryn/models"
	"superbryn/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session lifecycle states.
const (
	StateConnecting = "connecting"
	StateActive     = "active"
	StateFinalizing = "finalizing"
	StateClosed     = "closed"
)

// Transport is the session's frame pipe. The gorilla upgrade lives in the
// live handler; tests substitute an in-memory pipe.
type Transport interface {
	ReadFrame() (*InboundFrame, error)
	WriteJSON(v interface{}) error
	Close() error
}

// Session orchestrates one live voice call: it owns the lifecycle state
// machine, fans tool calls out to the dispatcher, and guarantees tool results
// are emitted in submission order. One Run loop per session; the writer
// goroutine is the only frame writer after connect.
type Session struct {
	ID        string
	RoomName  string
	StartedAt time.Time

	transport   Transport
	dispatcher  *Dispatcher
	store       sessionRepo.SessionRepository
	meter       *CostMeter
	idleTimeout time.Duration

	// writeMu serializes transport writes between the read loop's direct
	// acks and the ordered-result writer goroutine.
	writeMu sync.Mutex

	mu         sync.Mutex
	state      string
	binding    *CallerBinding
	transcript []models.TranscriptEntry
	summary    string
	seq        int

	// pending is the FIFO of result slots, one per accepted tool call. The
	// read loop enqueues the slot before spawning the executor, so the writer
	// drains results in submission order no matter how execution interleaves.
	pending    chan chan *ToolResultFrame
	toolCalls  sync.WaitGroup
	writerDone chan struct{}
}

// NewSession prepares an orchestrator for one inbound connection. Run drives it.
func NewSession(transport Transport, dispatcher *Dispatcher, store sessionRepo.SessionRepository, idleTimeout time.Duration) *Session {
	id := uuid.New().String()
	return &Session{
		ID:          id,
		StartedAt:   time.Now().UTC(),
		transport:   transport,
		dispatcher:  dispatcher,
		store:       store,
		meter:       NewCostMeter(id, store),
		idleTimeout: idleTimeout,
		state:       StateConnecting,
		pending:     make(chan chan *ToolResultFrame, 64),
		writerDone:  make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ContactNumber returns the bound caller's contact, or "" while anonymous.
func (s *Session) ContactNumber() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.binding == nil {
		return ""
	}
	return s.binding.ContactNumber
}

// Meter exposes the session's cost meter.
func (s *Session) Meter() *CostMeter {
	return s.meter
}

// Run drives the session to completion: connect handshake, active frame loop,
// finalization. It always leaves the session closed, even when persistence or
// the transport fails mid-flight.
func (s *Session) Run(ctx context.Context) {
	logger := utils.GetLogger()

	go s.writeLoop()

	frames := make(chan *InboundFrame)
	readErr := make(chan error, 1)
	go func() {
		for {
			f, err := s.transport.ReadFrame()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case frames <- f:
			case <-ctx.Done():
				return
			}
		}
	}()

	idle := time.NewTimer(s.idleTimeout)
	defer idle.Stop()

	for {
		select {
		case f := <-frames:
			if !idle.Stop() {
				<-idle.C
			}
			idle.Reset(s.idleTimeout)
			if done := s.handleFrame(ctx, f); done {
				return
			}
		case err := <-readErr:
			logger.Info("session transport closed",
				zap.String("sessionID", s.ID), zap.Error(err))
			s.finalize(ctx, models.SessionAbandoned)
			return
		case <-idle.C:
			logger.Warn("session idle timeout",
				zap.String("sessionID", s.ID),
				zap.Duration("timeout", s.idleTimeout))
			s.finalize(ctx, models.SessionAbandoned)
			return
		case <-ctx.Done():
			s.finalize(context.Background(), models.SessionAbandoned)
			return
		}
	}
}

// handleFrame processes one inbound frame; returns true once the session is closed.
func (s *Session) handleFrame(ctx context.Context, f *InboundFrame) bool {
	switch f.Type {
	case FrameSessionConnect:
		s.handleConnect(ctx, f)
	case FrameToolCall:
		return s.handleToolCall(ctx, f)
	case FrameTranscriptAppend:
		s.appendTranscript(models.TranscriptEntry{
			Role: f.Role, Text: f.Text, Timestamp: time.Now().UTC(),
		})
		s.writeOut(&AckFrame{Type: FrameTranscriptAck, Seq: s.nextSeq()})
	case FrameUsageReport:
		s.meter.Record(ctx, f.Service, f.Units, f.UnitKind)
		s.writeOut(&AckFrame{Type: FrameTranscriptAck, Seq: s.nextSeq()})
	case FrameSessionEnd:
		s.mu.Lock()
		s.summary = f.Summary
		s.mu.Unlock()
		s.finalize(ctx, models.SessionCompleted)
		return true
	default:
		s.writeOut(&ErrorFrame{Type: FrameSessionError, Code: "unknownFrame",
			Message: "unrecognized frame type: " + f.Type})
	}
	return false
}

func (s *Session) handleConnect(ctx context.Context, f *InboundFrame) {
	logger := utils.GetLogger()

	s.mu.Lock()
	if s.state != StateConnecting {
		s.mu.Unlock()
		s.writeOut(&ErrorFrame{Type: FrameSessionError, Code: "badState",
			Message: "session already connected"})
		return
	}
	s.RoomName = f.RoomName
	s.state = StateActive
	s.mu.Unlock()

	ready := &ReadyFrame{Type: FrameSessionReady, SessionID: s.ID}

	// A known contact number lets us prime returning-caller context before
	// the agent says a word. Failure here degrades to an anonymous session.
	if f.ContactNumber != "" {
		caller, err := s.dispatcher.Identity.Identify(ctx, f.ContactNumber, f.CallerName)
		if err != nil {
			logger.Warn("connect-time caller identification failed",
				zap.String("sessionID", s.ID), zap.Error(err))
		} else {
			s.bind(caller)
			if cc, err := s.dispatcher.Identity.Context(ctx, caller.ContactNumber); err == nil {
				ready.CallerContext = cc
			}
		}
	}

	record := &models.VoiceSession{
		ID:            s.ID,
		RoomName:      s.RoomName,
		ContactNumber: s.ContactNumber(),
		StartedAt:     s.StartedAt,
		Status:        models.SessionActive,
	}
	s.mu.Lock()
	if s.binding != nil {
		record.CallerID = s.binding.CallerID
	}
	s.mu.Unlock()
	if err := s.store.InsertSession(ctx, record); err != nil {
		logger.Error("failed to persist session start",
			zap.String("sessionID", s.ID), zap.Error(err))
	}

	s.writeOut(ready)
	logger.Info("session active",
		zap.String("sessionID", s.ID), zap.String("room", s.RoomName))
}

func (s *Session) handleToolCall(ctx context.Context, f *InboundFrame) bool {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		s.writeOut(&ErrorFrame{Type: FrameSessionError, Code: "badState",
			Message: "tool calls require an active session"})
		return false
	}
	binding := s.binding
	s.mu.Unlock()

	// end_session is orchestrator-owned, not a dispatcher tool: its result is
	// acked in order and the session finalizes as completed.
	if f.Tool == "end_session" {
		var in struct {
			Summary string `json:"summary"`
		}
		if len(f.Args) > 0 {
			_ = json.Unmarshal(f.Args, &in)
		}
		slot := make(chan *ToolResultFrame, 1)
		s.pending <- slot
		slot <- &ToolResultFrame{Type: FrameToolResult, CallID: f.CallID, Tool: f.Tool, OK: true}

		s.mu.Lock()
		s.summary = in.Summary
		s.mu.Unlock()
		s.finalize(ctx, models.SessionCompleted)
		return true
	}

	s.appendTranscript(models.TranscriptEntry{
		Role: "tool", ToolName: f.Tool, ToolArgs: f.Args, Timestamp: time.Now().UTC(),
	})

	// Claim the result slot in submission order before executing.
	slot := make(chan *ToolResultFrame, 1)
	s.pending <- slot

	s.toolCalls.Add(1)
	go func(callID, tool string, args []byte) {
		defer s.toolCalls.Done()
		result, terr := s.dispatcher.Dispatch(ctx, binding, tool, args)
		if terr == nil {
			if ir, ok := result.(*IdentifyResult); ok {
				s.bind(ir.Caller)
			}
		}
		frame := &ToolResultFrame{
			Type: FrameToolResult, CallID: callID, Tool: tool,
			OK: terr == nil, Result: result, Error: terr,
		}
		if terr != nil {
			frame.Result = nil
		}
		slot <- frame
	}(f.CallID, f.Tool, f.Args)
	return false
}

// finalize drives the session to closed exactly once. Every path lands here:
// agent-initiated end, disconnect, idle timeout, server shutdown. A failed
// final persistence is logged and absorbed; the state machine still closes.
func (s *Session) finalize(ctx context.Context, status string) {
	logger := utils.GetLogger()

	s.mu.Lock()
	if s.state == StateFinalizing || s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	connected := s.state != StateConnecting
	s.state = StateFinalizing
	summary := s.summary
	transcript := s.transcript
	binding := s.binding
	s.mu.Unlock()

	// Let in-flight tool calls land, then drain the writer in order.
	s.toolCalls.Wait()
	close(s.pending)
	<-s.writerDone

	endedAt := time.Now().UTC()
	record := &models.VoiceSession{
		ID:              s.ID,
		RoomName:        s.RoomName,
		StartedAt:       s.StartedAt,
		EndedAt:         endedAt,
		DurationSeconds: int(endedAt.Sub(s.StartedAt).Seconds()),
		Status:          status,
		Summary:         summary,
		Cost:            s.meter.Snapshot(),
		Transcript:      transcript,
	}
	if binding != nil {
		record.CallerID = binding.CallerID
		record.ContactNumber = binding.ContactNumber
	}

	if connected {
		if err := s.store.FinishSession(ctx, record); err != nil {
			logger.Error("failed to persist session summary",
				zap.String("sessionID", s.ID), zap.Error(err))
		}
		if err := s.send(&SummaryFrame{
			Type:            FrameSessionSummary,
			SessionID:       s.ID,
			Status:          status,
			DurationSeconds: record.DurationSeconds,
			Cost:            record.Cost,
		}); err != nil {
			logger.Debug("summary frame not delivered",
				zap.String("sessionID", s.ID), zap.Error(err))
		}
	}

	if err := s.transport.Close(); err != nil {
		logger.Debug("transport close", zap.String("sessionID", s.ID), zap.Error(err))
	}

	s.mu.Lock()
	s.state = StateClosed
	s.mu.Unlock()

	logger.Info("session closed",
		zap.String("sessionID", s.ID),
		zap.String("status", status),
		zap.Int("durationSeconds", record.DurationSeconds),
		zap.Float64("costUSD", record.Cost.TotalUSD))
}

// writeLoop is the single writer for ordered frames. It blocks on each result
// slot in turn, so an early-submitted slow tool call holds back later results.
func (s *Session) writeLoop() {
	defer close(s.writerDone)
	for slot := range s.pending {
		frame := <-slot
		if err := s.send(frame); err != nil {
			utils.GetLogger().Warn("tool result write failed",
				zap.String("sessionID", s.ID),
				zap.String("callID", frame.CallID),
				zap.Error(err))
		}
	}
}

func (s *Session) send(v interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.transport.WriteJSON(v)
}

// writeOut sends a non-result frame directly. Connect acks, transcript acks
// and error frames do not participate in the ordered result stream.
func (s *Session) writeOut(v interface{}) {
	if err := s.send(v); err != nil {
		utils.GetLogger().Debug("frame write failed",
			zap.String("sessionID", s.ID), zap.Error(err))
	}
}

func (s *Session) bind(caller *models.Caller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.binding = &CallerBinding{CallerID: caller.ID, ContactNumber: caller.ContactNumber}
}

func (s *Session) appendTranscript(entry models.TranscriptEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, entry)
}

func (s *Session) nextSeq() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}
