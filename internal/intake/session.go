package intake

import (
	"context"
	"sync"

	"github.com/spigell/eb1a-intake/internal/ai"

	"go.uber.org/zap"
)

// Session owns the mutable state of one intake conversation: the accumulated
// record, the append-only history and the pending context notes. Turns against
// the same session are serialized.
type Session struct {
	mu      sync.Mutex
	agent   *Agent
	record  *Record
	history []ai.Message
	notes   NoteQueue
	logger  *zap.Logger
}

func NewSession(agent *Agent, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}

	return &Session{
		agent:  agent,
		record: NewRecord(),
		logger: log,
	}
}

// Turn processes one user input and returns the assistant reply. On success
// the composed input and the raw completion are appended to the history and
// the echoed record replaces the stored one. On a completion failure nothing
// is mutated: the record and history stay as they were and the drained notes
// go back to the queue.
func (s *Session) Turn(ctx context.Context, input string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes := s.notes.Drain()

	result, err := s.agent.Process(ctx, s.history, input, notes)
	if err != nil {
		s.notes.requeue(notes)
		return "", err
	}

	// The raw completion, tags included, stays in the history so the model
	// sees its own previous record echo on the next turn.
	s.history = append(s.history,
		ai.Message{Role: ai.RoleUser, Text: composeInput(input, notes)},
		ai.Message{Role: ai.RoleAssistant, Text: result.Raw},
	)

	s.applyRecord(result.Record)

	return result.Reply, nil
}

// applyRecord installs the echoed record wholesale. The supporting_documents
// fields are shared with the out-of-band collaborators: an empty incoming
// value there does not clobber a stored non-empty one.
func (s *Session) applyRecord(incoming *Record) {
	if incoming == nil {
		return
	}

	prior := s.record.SupportingDocuments
	if incoming.SupportingDocuments.LinkedinURL == "" {
		incoming.SupportingDocuments.LinkedinURL = prior.LinkedinURL
	}
	if incoming.SupportingDocuments.ResumeFile == "" {
		incoming.SupportingDocuments.ResumeFile = prior.ResumeFile
	}

	s.record = incoming
}

// PushNote queues a context note for the next user turn.
func (s *Session) PushNote(note string) {
	s.notes.Push(note)
}

// PendingNotes reports how many context notes await the next turn.
func (s *Session) PendingNotes() int {
	return s.notes.Len()
}

// AttachResume records the uploaded resume label directly on the record and
// queues the provided note for the next turn.
func (s *Session) AttachResume(label, note string) {
	s.mu.Lock()
	s.record.SupportingDocuments.ResumeFile = label
	s.mu.Unlock()

	if note != "" {
		s.notes.Push(note)
	}

	s.logger.Debug("resume attached", zap.String("resume_file", label))
}

// AttachLinkedIn records the submitted profile URL directly on the record and
// queues the provided note for the next turn.
func (s *Session) AttachLinkedIn(url, note string) {
	s.mu.Lock()
	s.record.SupportingDocuments.LinkedinURL = url
	s.mu.Unlock()

	if note != "" {
		s.notes.Push(note)
	}

	s.logger.Debug("linkedin url attached", zap.String("linkedin_url", url))
}

// Record returns a copy of the current record.
func (s *Session) Record() Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.record
}

// History returns a copy of the conversation history.
func (s *Session) History() []ai.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ai.Message(nil), s.history...)
}
