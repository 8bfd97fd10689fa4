package intake

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/eb1a-intake/internal/ai"
	"github.com/spigell/eb1a-intake/internal/logger"

	"go.uber.org/zap"
)

//go:embed prompt.md
var systemPrompt string

// KickoffInstruction opens the conversation: the model introduces itself,
// states the disclaimer and asks the first question.
const KickoffInstruction = "Hello, please start the conversation by introducing yourself and asking the first question based on your instructions."

const defaultMaxLogLength = 200

type completer interface {
	Complete(ctx context.Context, system string, history []ai.Message, input string) (string, error)
}

// TurnResult is the outcome of a single processed turn.
type TurnResult struct {
	// Reply is the conversational text to show the user. Always non-empty
	// when the completion itself was non-empty.
	Reply string
	// Record is the full replacement record echoed by the model, or nil when
	// the completion carried no parsable <updated_data> region. The caller
	// must keep its prior record in that case.
	Record *Record
	// Raw is the unmodified completion text.
	Raw string
}

// Agent processes conversational turns. It is stateless between calls: the
// record and history are owned by the caller and passed in explicitly, so the
// same logic runs identically from an interactive session or a test harness.
type Agent struct {
	completer completer
	logger    *zap.Logger
	maxLogLen int
}

func NewAgent(c completer, log *zap.Logger, maxLogLength int) *Agent {
	if log == nil {
		log = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Agent{
		completer: c,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

// Process runs one turn: it composes the outgoing input from the user text
// and any pending context notes, invokes the completion collaborator and
// parses the reply. A collaborator failure is returned as an error with no
// other effect. An extraction failure is logged and yields a nil Record.
func (a *Agent) Process(ctx context.Context, history []ai.Message, input string, notes []string) (*TurnResult, error) {
	composed := composeInput(input, notes)

	a.logger.Debug("completion request",
		zap.Int("history_length", len(history)),
		zap.Int("input_length", utf8.RuneCountInString(composed)),
		zap.String("input_preview", logger.TruncateForLog(composed, a.maxLogLen)),
	)

	raw, err := a.completer.Complete(ctx, systemPrompt, history, composed)
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}

	a.logger.Debug("completion response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, a.maxLogLen)),
	)

	reply, record, parseErr := parseReply(raw)
	if parseErr != nil {
		a.logger.Warn("keeping previous record",
			zap.Error(parseErr),
			zap.String("response_preview", logger.TruncateForLog(raw, a.maxLogLen)),
		)
	}

	return &TurnResult{
		Reply:  reply,
		Record: record,
		Raw:    raw,
	}, nil
}

// composeInput builds the text the model receives for the given user input
// and pending notes: notes first, FIFO, then the user's message.
func composeInput(input string, notes []string) string {
	if len(notes) == 0 {
		return input
	}

	var builder strings.Builder
	for _, note := range notes {
		note = strings.TrimSpace(note)
		if note == "" {
			continue
		}
		builder.WriteString(note)
		builder.WriteString("\n\n")
	}
	builder.WriteString("User's message: ")
	builder.WriteString(input)

	return builder.String()
}
