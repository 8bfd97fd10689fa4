package gemini

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spigell/eb1a-intake/internal/ai"
	"github.com/spigell/eb1a-intake/internal/logger"
	"github.com/spigell/eb1a-intake/internal/utils"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultModel      = "gemini-2.5-flash"
	defaultMaxRetries = 3
	retryBaseDelay    = 2 * time.Second
	// Quota errors advertising a longer delay than this are not worth waiting for
	// in an interactive session.
	maxQuotaDelay = 30 * time.Second
)

var sleep = func(ctx context.Context, d time.Duration) error {
	return utils.WaitFor(ctx, d)
}

var retryAfterRe = regexp.MustCompile(`retry after (\d+(?:\.\d+)?) ?s`)

// chatSession is the subset of genai.Chat used by the Generator.
type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// chatCreator abstracts genai chat construction so tests can stub the API.
type chatCreator interface {
	Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error)
}

type genaiChats struct {
	client *genai.Client
}

func (c *genaiChats) Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	return c.client.Chats.Create(ctx, model, config, history)
}

// Generator implements ai.Completer on top of the Gemini API backend.
type Generator struct {
	chats      chatCreator
	model      string
	maxRetries int
	logger     *zap.Logger
}

// New creates a Generator configured for the Gemini API backend.
func New(ctx context.Context, apiKey, model string, maxRetries int, log *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	return &Generator{
		chats:      &genaiChats{client: client},
		model:      model,
		maxRetries: maxRetries,
		logger:     logger.WithCommonFields(log, "gemini", model),
	}, nil
}

// Complete sends the conversation to Gemini and returns the textual reply.
// The system instructions travel in the generation config, the history as chat
// context and the input as the new message. Transient API errors are retried
// up to the configured limit.
func (g *Generator) Complete(ctx context.Context, system string, history []ai.Message, input string) (string, error) {
	if g == nil || g.chats == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	if strings.TrimSpace(input) == "" {
		return "", errors.New("input must not be empty")
	}

	config := &genai.GenerateContentConfig{}
	if strings.TrimSpace(system) != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	contents := historyToContents(history)

	var lastErr error
	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		chat, err := g.chats.Create(ctx, g.model, config, contents)
		if err != nil {
			return "", fmt.Errorf("create chat session: %w", err)
		}

		resp, err := chat.SendMessage(ctx, genai.Part{Text: input})
		if err == nil {
			output := responseText(resp)
			if output == "" {
				return "", errors.New("gemini api returned empty response")
			}
			return output, nil
		}

		lastErr = err

		delay, retryable := retryDelay(err, attempt)
		if !retryable || attempt == g.maxRetries {
			break
		}

		g.logger.Debug("retrying gemini request",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if err := sleep(ctx, delay); err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("generate content: %w", lastErr)
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

func historyToContents(history []ai.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role := genai.RoleUser
		if msg.Role == ai.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: msg.Text}},
		})
	}
	return contents
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}

// retryDelay reports whether the error is worth retrying and how long to wait
// before the next attempt. Server-side errors back off linearly; quota errors
// honor the advertised delay unless it exceeds maxQuotaDelay.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return 0, false
	}

	if apiErr.Code >= 500 {
		return retryBaseDelay * time.Duration(attempt), true
	}

	if apiErr.Code == 429 {
		if match := retryAfterRe.FindStringSubmatch(strings.ToLower(apiErr.Message)); match != nil {
			seconds, parseErr := strconv.ParseFloat(match[1], 64)
			if parseErr != nil {
				return retryBaseDelay * time.Duration(attempt), true
			}
			delay := time.Duration(seconds * float64(time.Second))
			if delay > maxQuotaDelay {
				return 0, false
			}
			return delay, true
		}
		return retryBaseDelay * time.Duration(attempt), true
	}

	return 0, false
}
