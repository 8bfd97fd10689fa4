package intake

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spigell/eb1a-intake/internal/ai"

	"go.uber.org/zap"
)

// scriptedCompleter returns queued responses in order and records every call.
type scriptedCompleter struct {
	responses []string
	errs      []error
	inputs    []string
	histories [][]ai.Message
}

func (s *scriptedCompleter) Complete(_ context.Context, _ string, history []ai.Message, input string) (string, error) {
	s.inputs = append(s.inputs, input)
	s.histories = append(s.histories, append([]ai.Message(nil), history...))

	call := len(s.inputs) - 1
	if call < len(s.errs) && s.errs[call] != nil {
		return "", s.errs[call]
	}
	if call < len(s.responses) {
		return s.responses[call], nil
	}
	return "", errors.New("unexpected call")
}

func newTestSession(c completer) *Session {
	return NewSession(NewAgent(c, zap.NewNop(), 0), zap.NewNop())
}

func completionWith(data string) string {
	return "<conversation_response>noted</conversation_response><updated_data>" + data + "</updated_data>"
}

func TestSessionTurnAppendsHistoryAndReplacesRecord(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		completionWith(`{"basic_information": {"first_name": "John"}}`),
	}}
	session := newTestSession(completer)

	reply, err := session.Turn(context.Background(), "my name is John")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reply != "noted" {
		t.Fatalf("unexpected reply: %q", reply)
	}

	record := session.Record()
	if record.BasicInformation.FirstName != "John" {
		t.Fatalf("record not replaced: %+v", record.BasicInformation)
	}

	history := session.History()
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	if history[0].Role != ai.RoleUser || history[0].Text != "my name is John" {
		t.Fatalf("unexpected user entry: %+v", history[0])
	}
	if history[1].Role != ai.RoleAssistant || !strings.Contains(history[1].Text, "<updated_data>") {
		t.Fatalf("assistant entry must keep the raw completion: %+v", history[1])
	}
}

// A completion omitting a previously filled field loses that value: the
// record is replaced wholesale, not merged.
func TestSessionWholesaleReplacementDropsOmittedFields(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		completionWith(`{"basic_information": {"first_name": "John", "email": "john@example.com"}}`),
		completionWith(`{"basic_information": {"first_name": "John"}}`),
	}}
	session := newTestSession(completer)

	if _, err := session.Turn(context.Background(), "john, john@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record := session.Record(); record.BasicInformation.Email != "john@example.com" {
		t.Fatalf("email not stored: %+v", record.BasicInformation)
	}

	if _, err := session.Turn(context.Background(), "next question please"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record := session.Record(); record.BasicInformation.Email != "" {
		t.Fatalf("omitted field must be dropped by wholesale replacement, got %q", record.BasicInformation.Email)
	}
}

func TestSessionKeepsRecordOnExtractionFailure(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		completionWith(`{"basic_information": {"first_name": "John"}}`),
		"<conversation_response>sorry, no data this time</conversation_response>",
	}}
	session := newTestSession(completer)

	if _, err := session.Turn(context.Background(), "I am John"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reply, err := session.Turn(context.Background(), "what now?")
	if err != nil {
		t.Fatalf("extraction failure must not fail the turn: %v", err)
	}

	if reply != "sorry, no data this time" {
		t.Fatalf("unexpected reply: %q", reply)
	}

	if record := session.Record(); record.BasicInformation.FirstName != "John" {
		t.Fatalf("record must survive an extraction failure: %+v", record.BasicInformation)
	}

	if history := session.History(); len(history) != 4 {
		t.Fatalf("conversation must continue, got %d entries", len(history))
	}
}

func TestSessionCompleterFailureLeavesStateUntouched(t *testing.T) {
	completer := &scriptedCompleter{
		responses: []string{completionWith(`{"basic_information": {"first_name": "John"}}`), ""},
		errs:      []error{nil, errors.New("timeout")},
	}
	session := newTestSession(completer)

	if _, err := session.Turn(context.Background(), "I am John"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	session.PushNote("(System note: resume uploaded.)")

	_, err := session.Turn(context.Background(), "here is more")
	if err == nil {
		t.Fatal("expected the collaborator failure to surface")
	}

	if record := session.Record(); record.BasicInformation.FirstName != "John" {
		t.Fatalf("record must be unchanged after a failed turn: %+v", record.BasicInformation)
	}

	if history := session.History(); len(history) != 2 {
		t.Fatalf("history must be unchanged after a failed turn, got %d entries", len(history))
	}

	// The note was never delivered, so it must wait for the next turn.
	if session.PendingNotes() != 1 {
		t.Fatalf("expected the note to be requeued, got %d pending", session.PendingNotes())
	}
}

func TestSessionNotesConsumedExactlyOnce(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		completionWith(`{}`),
		completionWith(`{}`),
	}}
	session := newTestSession(completer)

	session.PushNote("(System note: resume uploaded.)")
	session.PushNote("(System note: LinkedIn URL received.)")

	if _, err := session.Turn(context.Background(), "go on"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := completer.inputs[0]
	resumeIdx := strings.Index(first, "resume uploaded")
	linkedinIdx := strings.Index(first, "LinkedIn URL received")
	if resumeIdx == -1 || linkedinIdx == -1 || resumeIdx > linkedinIdx {
		t.Fatalf("expected both notes in FIFO order: %q", first)
	}

	if session.PendingNotes() != 0 {
		t.Fatalf("notes must be consumed, got %d pending", session.PendingNotes())
	}

	if _, err := session.Turn(context.Background(), "and then"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if second := completer.inputs[1]; strings.Contains(second, "System note") {
		t.Fatalf("notes must not repeat on the following turn: %q", second)
	}
}

func TestSessionOutOfBandWritesSurviveStaleEcho(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		// Stale echo: the model does not know about the attachments yet.
		completionWith(`{"basic_information": {"first_name": "John"}, "supporting_documents": {"linkedin_url": "", "resume_file": ""}}`),
		// The model takes ownership with a fresh value.
		completionWith(`{"supporting_documents": {"resume_file": "updated.pdf"}}`),
	}}
	session := newTestSession(completer)

	session.AttachResume("resume.pdf", "(System note: resume uploaded.)")
	session.AttachLinkedIn("https://www.linkedin.com/in/john", "(System note: LinkedIn URL received.)")

	if _, err := session.Turn(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record := session.Record()
	if record.SupportingDocuments.ResumeFile != "resume.pdf" {
		t.Fatalf("stale empty echo must not clobber resume_file: %+v", record.SupportingDocuments)
	}
	if record.SupportingDocuments.LinkedinURL != "https://www.linkedin.com/in/john" {
		t.Fatalf("stale empty echo must not clobber linkedin_url: %+v", record.SupportingDocuments)
	}

	if _, err := session.Turn(context.Background(), "rename it"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record = session.Record()
	if record.SupportingDocuments.ResumeFile != "updated.pdf" {
		t.Fatalf("a non-empty echo wins as the latest write: %+v", record.SupportingDocuments)
	}
	if record.SupportingDocuments.LinkedinURL != "https://www.linkedin.com/in/john" {
		t.Fatalf("untouched field must persist: %+v", record.SupportingDocuments)
	}
}
