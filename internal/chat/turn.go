package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"bankbot/internal/domain"
	"bankbot/internal/retrieval"
)

const (
	// ContextPrefix opens the system message that carries retrieved segments.
	ContextPrefix = "Relevant Documents:\n"
	// ErrorPrefix opens the user-visible text of a failed turn.
	ErrorPrefix = "An error occurred: "

	segmentSeparator = "\n\n"
)

// ErrSessionNotStarted is reported for turns on a session that never started.
var ErrSessionNotStarted = errors.New("session not started")

// FailureKind classifies why a turn failed.
type FailureKind int

const (
	FailureRetrieval FailureKind = iota + 1
	FailureIndexUnavailable
	FailureCompletion
	FailureSessionNotStarted
	FailureInternal
)

func (k FailureKind) String() string {
	switch k {
	case FailureRetrieval:
		return "retrieval"
	case FailureIndexUnavailable:
		return "index_unavailable"
	case FailureCompletion:
		return "completion"
	case FailureSessionNotStarted:
		return "session_not_started"
	case FailureInternal:
		return "internal"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
}

// Failure is the error side of a TurnResult.
type Failure struct {
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string { return f.Kind.String() + ": " + f.Err.Error() }

func (f *Failure) Unwrap() error { return f.Err }

// TurnResult is either a reply or a Failure. Checkpoint is the transcript
// length before the turn, so a caller can roll back with Session.Truncate.
type TurnResult struct {
	Reply           string
	Failure         *Failure
	Checkpoint      int
	ContextInjected bool
	Segments        int
}

// OK reports whether the turn produced a reply.
func (r TurnResult) OK() bool { return r.Failure == nil }

// Delivered returns the text the user was sent for this turn.
func (r TurnResult) Delivered() string {
	if r.Failure != nil {
		return ErrorPrefix + r.Failure.Err.Error()
	}
	return r.Reply
}

// Option configures a TurnHandler.
type Option func(*TurnHandler)

// WithRollback makes failed turns restore the transcript to its checkpoint.
func WithRollback(enabled bool) Option {
	return func(h *TurnHandler) { h.rollback = enabled }
}

// TurnHandler runs one request/response cycle against a Session.
type TurnHandler struct {
	model    string
	rollback bool
}

func NewTurnHandler(model string, opts ...Option) *TurnHandler {
	h := &TurnHandler{model: model}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleTurn appends the user message, injects retrieved context when any
// segment matched, asks the completion endpoint for a reply over the whole
// transcript and delivers exactly one message to the user: the reply, or
// ErrorPrefix followed by the failure description. Unless rollback is
// enabled, a failed turn leaves its partial transcript changes in place.
func (h *TurnHandler) HandleTurn(ctx context.Context, s *Session, text string) (res TurnResult) {
	res.Checkpoint = s.Len()
	if !s.Started() {
		return h.fail(s, res, FailureSessionNotStarted, ErrSessionNotStarted)
	}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = h.fail(s, res, FailureInternal, fmt.Errorf("%v", r))
		}
	}()

	s.ReceiveUserMessage(text)

	segments, err := s.retriever.Retrieve(ctx, text)
	if err != nil {
		kind := FailureRetrieval
		if errors.Is(err, retrieval.ErrIndexUnavailable) {
			kind = FailureIndexUnavailable
		}
		return h.fail(s, res, kind, err)
	}
	res.Segments = len(segments)
	if len(segments) > 0 {
		s.append(domain.SystemMessage(ContextPrefix + strings.Join(segments, segmentSeparator)))
		res.ContextInjected = true
	}

	reply, err := s.completer.Complete(ctx, h.model, s.Transcript())
	if err != nil {
		return h.fail(s, res, FailureCompletion, err)
	}
	s.append(domain.AssistantMessage(reply))
	res.Reply = reply

	s.log.Info("Turn complete", logrus.Fields{
		"segments":   res.Segments,
		"transcript": s.Len(),
		"elapsed":    time.Since(start).String(),
	})
	s.sink.Deliver(reply)
	return res
}

func (h *TurnHandler) fail(s *Session, res TurnResult, kind FailureKind, err error) TurnResult {
	res.Failure = &Failure{Kind: kind, Err: err}
	res.Reply = ""
	fields := logrus.Fields{"kind": kind.String(), "error": err.Error()}
	if h.rollback && s.Len() > res.Checkpoint {
		fields["rolled_back"] = s.Len() - res.Checkpoint
		s.Truncate(res.Checkpoint)
	}
	s.log.Error("Turn failed", fields)
	s.sink.Deliver(res.Delivered())
	return res
}
