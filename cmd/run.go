package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/breadfinder/breadfinder/internal/ai/gemini"
	"github.com/breadfinder/breadfinder/internal/assistant"
	"github.com/breadfinder/breadfinder/internal/extract"
	"github.com/breadfinder/breadfinder/internal/logger"
	"github.com/breadfinder/breadfinder/internal/mailbox"
	"github.com/breadfinder/breadfinder/internal/secrets"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the conversational job-hunt assistant",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// run drives the assistant loop: the model decides when to connect,
// disconnect or search; the assistant executes those actions and relays the
// results.
func run(_ *cobra.Command) {
	ctx := context.Background()

	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	zlog.Info("starting the assistant", zap.String("version", version))

	generator, err := newGenerator(ctx, config, zlog)
	if err != nil {
		zlog.Fatal("creating the gemini generator",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY or the ai.gemini.api-key-file configuration key"),
		)
	}

	registry := mailbox.NewRegistry()
	defer registry.CloseAll()

	dialer := func(account, password string) (*mailbox.Client, error) {
		return mailbox.Connect(config.IMAP.Server, config.IMAP.Port, account, password, zlog)
	}

	writer := extract.NewReportWriter(zlog)
	actions := []assistant.Action{
		assistant.NewConnectAction(registry, dialer, zlog),
		assistant.NewDisconnectAction(registry, zlog),
		assistant.NewSearchAction(assistant.RegistrySessions{Registry: registry}, config.rules(), writer, config.Extract.Output, zlog),
	}

	conv, err := generator.NewConversation(ctx, assistant.SystemPrompt, assistant.Declarations(actions))
	if err != nil {
		zlog.Fatal("opening the chat session", zap.Error(err))
	}

	fmt.Println("===== BREAD FINDER =====")

	a := assistant.New(conv, actions, assistant.PromptReader{}, printReply, zlog)
	if err := a.Run(ctx); err != nil {
		zlog.Fatal("assistant loop failed", zap.Error(err))
	}

	fmt.Println("===== BREAD FINDER EXITING =====")
}

func printReply(text string) {
	fmt.Printf("\nAI: %s\n", text)
}

// newGenerator builds the Gemini generator from the AI configuration.
func newGenerator(ctx context.Context, config *Config, zlog *zap.Logger) (*gemini.Generator, error) {
	ai := config.AI
	if ai == nil {
		ai = &AIConfig{}
	}

	provider := strings.TrimSpace(strings.ToLower(ai.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", ai.Provider)
	}

	gcfg := ai.Gemini
	if gcfg == nil {
		gcfg = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: gcfg.APIKey,
		File:  gcfg.APIKeyFile,
	})
	if err != nil {
		return nil, err
	}

	genLogger := logger.WithAIFields(zlog, "gemini", gcfg.Model)

	return gemini.NewGenerator(ctx, apiKey, gcfg.Model, gcfg.MaxRetries, genLogger)
}
