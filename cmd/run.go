package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spigell/eb1a-intake/internal/ai/gemini"
	"github.com/spigell/eb1a-intake/internal/document"
	"github.com/spigell/eb1a-intake/internal/intake"
	"github.com/spigell/eb1a-intake/internal/linkedin"
	"github.com/spigell/eb1a-intake/internal/logger"
	"github.com/spigell/eb1a-intake/internal/progress"
	"github.com/spigell/eb1a-intake/internal/secrets"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptShowData     = "Show collected data"
	PromptShowProgress = "Show progress"
	PromptDumpRecord   = "Dump record to file"
	PromptAttachResume = "Attach resume PDF"
	PromptLinkedInURL  = "Submit LinkedIn profile URL"
	PromptBack         = "back"
	PromptExit         = "Exit"

	defaultNotePreviewChars = 1500

	disclaimer = "Disclaimer: this assistant only collects preliminary information potentially " +
		"relevant to an EB1-A visa application. It does NOT provide legal advice, assess " +
		"eligibility, or guarantee accuracy. Always consult an immigration attorney."

	unavailableNotice = "The assistant is unavailable right now. Your data is unchanged; please try again."
)

var errExit = errors.New("exit requested")

var menuPrompt = promptui.Select{
	Label: "Session menu",
	Items: []string{PromptShowData, PromptShowProgress, PromptDumpRecord, PromptAttachResume, PromptLinkedInURL, PromptBack, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the interactive intake session",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("resume", "", "resume/CV PDF to attach before the conversation starts")
	runCmd.Flags().String("linkedin", "", "LinkedIn profile URL to submit before the conversation starts")
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating a logger: %s\n", err)
		os.Exit(1)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the eb1a-intake", zap.String("version", version))

	session, err := buildSession(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the intake session", zap.Error(err))
	}

	notePreview := defaultNotePreviewChars
	if config != nil && config.Intake != nil && config.Intake.NotePreviewChars > 0 {
		notePreview = config.Intake.NotePreviewChars
	}

	if path := cmd.Flag("resume").Value.String(); path != "" {
		if err := attachResume(session, path, notePreview, logger); err != nil {
			logger.Warn("skipping resume attachment", zap.Error(err))
		}
	}

	if url := cmd.Flag("linkedin").Value.String(); url != "" {
		if err := attachLinkedIn(session, url, logger); err != nil {
			logger.Warn("skipping linkedin url", zap.Error(err))
		}
	}

	fmt.Println(disclaimer)
	fmt.Println()

	reply, err := session.Turn(ctx, intake.KickoffInstruction)
	if err != nil {
		logger.Fatal("starting the conversation", zap.Error(err))
	}

	fmt.Printf("Assistant: %s\n\n", reply)

	input := promptui.Prompt{Label: "You"}

	for {
		line, err := input.Run()
		if err != nil {
			logger.Info("exiting", zap.Error(err))
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := handleInput(ctx, session, line, notePreview, logger); err != nil {
			if errors.Is(err, errExit) || errors.Is(err, promptui.ErrInterrupt) {
				logger.Info("exiting", zap.String("reason", "requested by user"))
				return
			}
			logger.Error("turn failed", zap.Error(err))
			fmt.Println(unavailableNotice)
		}
	}
}

func handleInput(ctx context.Context, session *intake.Session, line string, notePreview int, logger *zap.Logger) error {
	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch command {
	case "/exit", "/quit":
		return errExit
	case "/data":
		record := session.Record()
		fmt.Println(record.PrettyJSON())
		return nil
	case "/progress":
		record := session.Record()
		fmt.Println(progress.Build(&record))
		return nil
	case "/dump":
		if err := dumpRecord(session, logger); err != nil {
			logger.Warn("record not dumped", zap.Error(err))
		}
		return nil
	case "/resume":
		if arg == "" {
			fmt.Println("usage: /resume <path-to-pdf>")
			return nil
		}
		if err := attachResume(session, arg, notePreview, logger); err != nil {
			logger.Warn("resume not attached", zap.Error(err))
			fmt.Println("Could not extract text from that PDF.")
		}
		return nil
	case "/linkedin":
		if arg == "" {
			fmt.Println("usage: /linkedin <profile-url>")
			return nil
		}
		if err := attachLinkedIn(session, arg, logger); err != nil {
			logger.Warn("linkedin url not accepted", zap.Error(err))
			fmt.Println("That does not look like a valid URL.")
		}
		return nil
	case "/menu":
		return runMenu(ctx, session, notePreview, logger)
	default:
		reply, err := session.Turn(ctx, line)
		if err != nil {
			return err
		}
		fmt.Printf("Assistant: %s\n\n", reply)
		return nil
	}
}

func runMenu(ctx context.Context, session *intake.Session, notePreview int, logger *zap.Logger) error {
	for {
		_, action, err := menuPrompt.Run()
		if err != nil {
			return err
		}

		switch action {
		case PromptBack:
			return nil
		case PromptExit:
			return errExit
		case PromptShowData, PromptShowProgress, PromptDumpRecord:
			if err := handleInput(ctx, session, menuCommand(action), notePreview, logger); err != nil {
				return err
			}
		case PromptAttachResume:
			path, err := (&promptui.Prompt{Label: "Path to PDF"}).Run()
			if err != nil {
				return err
			}
			if err := handleInput(ctx, session, "/resume "+path, notePreview, logger); err != nil {
				return err
			}
		case PromptLinkedInURL:
			url, err := (&promptui.Prompt{Label: "Profile URL"}).Run()
			if err != nil {
				return err
			}
			if err := handleInput(ctx, session, "/linkedin "+url, notePreview, logger); err != nil {
				return err
			}
		default:
			return fmt.Errorf("invalid action: %s", action)
		}
	}
}

func menuCommand(action string) string {
	switch action {
	case PromptShowData:
		return "/data"
	case PromptShowProgress:
		return "/progress"
	default:
		return "/dump"
	}
}

func buildSession(ctx context.Context, config *Config, logger *zap.Logger) (*intake.Session, error) {
	geminiCfg := &GeminiConfig{}
	if config != nil && config.AI != nil {
		provider := strings.TrimSpace(strings.ToLower(config.AI.Provider))
		if provider != "" && provider != "gemini" {
			return nil, fmt.Errorf("unsupported ai provider: %s", config.AI.Provider)
		}
		if config.AI.Gemini != nil {
			geminiCfg = config.AI.Gemini
		}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: geminiCfg.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	generator, err := gemini.New(ctx, apiKey, geminiCfg.Model, geminiCfg.MaxRetries, logger)
	if err != nil {
		return nil, err
	}

	agent := intake.NewAgent(generator, logger, geminiCfg.MaxLogLength)

	return intake.NewSession(agent, logger), nil
}

func attachResume(session *intake.Session, path string, notePreview int, logger *zap.Logger) error {
	text, err := document.ExtractFile(path)
	if err != nil {
		return err
	}

	name := filepath.Base(path)
	preview := text
	truncated := ""
	if runes := []rune(preview); len(runes) > notePreview {
		preview = string(runes[:notePreview])
		truncated = " ... [truncated]"
	}

	note := fmt.Sprintf(
		"(System note: The user has uploaded a resume PDF named %q. Its extracted text content begins:\n\n%s%s)",
		name, preview, truncated,
	)

	session.AttachResume(name, note)

	logger.Info("resume processed", zap.String("file", name), zap.Int("text_length", len(text)))
	fmt.Printf("Resume %q processed. The assistant will consider its content on your next message.\n", name)

	return nil
}

func attachLinkedIn(session *intake.Session, url string, logger *zap.Logger) error {
	ack, err := linkedin.Accept(url)
	if err != nil {
		return err
	}

	note := fmt.Sprintf(
		"(System note: User provided LinkedIn URL: %s. You cannot access external URLs, but acknowledge receipt and ask the user to highlight relevant info from it if needed.)",
		ack.URL,
	)

	session.AttachLinkedIn(ack.URL, note)

	logger.Info("linkedin url recorded", zap.String("url", ack.URL), zap.String("status", ack.Status))
	fmt.Printf("LinkedIn URL received: %s. The assistant will acknowledge it on your next message.\n", ack.URL)

	return nil
}

func dumpRecord(session *intake.Session, logger *zap.Logger) error {
	file, err := os.CreateTemp("", app+"-*.json")
	if err != nil {
		return fmt.Errorf("create dump file: %w", err)
	}
	defer file.Close()

	record := session.Record()
	if _, err := file.WriteString(record.PrettyJSON() + "\n"); err != nil {
		return fmt.Errorf("write dump file: %w", err)
	}

	logger.Info("dumping record to file", zap.String("filename", file.Name()))
	fmt.Printf("Record written to %s\n", file.Name())

	return nil
}
