package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/breadfinder/breadfinder/internal/ai"
	"github.com/breadfinder/breadfinder/internal/ai/gemini"
	"github.com/breadfinder/breadfinder/internal/extract"
	"github.com/breadfinder/breadfinder/internal/filtering"
	"github.com/breadfinder/breadfinder/internal/logger"
	"github.com/breadfinder/breadfinder/internal/mailbox"
	"github.com/breadfinder/breadfinder/internal/resume"
)

const previewCount = 3

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Scan the mailbox once and save job-related emails to a report",
	Run: func(cmd *cobra.Command, _ []string) {
		runExtract(cmd)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().IntP("days-back", "n", extract.DefaultDaysBack, "how many days of mail to scan")
	extractCmd.Flags().StringP("output", "o", "", "report file for extracted job emails")
	extractCmd.Flags().StringP("username", "u", "", "mailbox address")
	extractCmd.Flags().StringP("resume", "r", "", "resume PDF; enables AI fit filtering of matches")
	extractCmd.Flags().String("exclude-file", "", "file listing senders to drop, one address or domain per line")

	viper.BindPFlag("extract.days-back", extractCmd.Flags().Lookup("days-back"))
	viper.BindPFlag("extract.output", extractCmd.Flags().Lookup("output"))
	viper.BindPFlag("imap.username", extractCmd.Flags().Lookup("username"))
	viper.BindPFlag("exclude-file", extractCmd.Flags().Lookup("exclude-file"))
}

func runExtract(cmd *cobra.Command) {
	ctx := context.Background()

	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	username, password, err := resolveCredentials(config)
	if err != nil {
		zlog.Fatal("resolving mailbox credentials", zap.Error(err))
	}

	client, err := mailbox.Connect(config.IMAP.Server, config.IMAP.Port, username, password, zlog)
	if err != nil {
		zlog.Fatal("connecting to the mailbox",
			zap.Error(err),
			zap.String("server", config.IMAP.Server),
			zap.String(logger.FieldAccount, username),
		)
	}
	defer client.Close()

	pipeline := extract.NewPipeline(client, config.rules(), zlog)
	emails := pipeline.FilterJobEmails(ctx, config.Extract.DaysBack)

	emails, err = refine(ctx, cmd, config, emails, zlog)
	if err != nil {
		zlog.Fatal("refining extracted emails", zap.Error(err))
	}

	if len(emails) == 0 {
		fmt.Printf("No job-related emails found in the last %d days.\n", config.Extract.DaysBack)
		return
	}

	fmt.Printf("Found %d job-related emails in the last %d days.\n", len(emails), config.Extract.DaysBack)

	for i, email := range emails {
		if i == previewCount {
			fmt.Printf("... and %d more.\n", len(emails)-previewCount)
			break
		}
		fmt.Printf("%d. %s — %s (%s)\n", i+1, email.Subject, email.Sender, email.Date)
	}

	if top := extract.TopDomains(emails, 5); len(top) > 0 {
		fmt.Println("Top domains:")
		for _, dc := range top {
			fmt.Printf("  %s: %d\n", dc.Domain, dc.Count)
		}
	}

	writer := extract.NewReportWriter(zlog)
	if !writer.Write(emails, config.Extract.Output) {
		zlog.Fatal("writing the report", zap.String("path", config.Extract.Output))
	}

	fmt.Printf("Report saved to %s\n", config.Extract.Output)
}

// refine runs the post-extraction filter chain: duplicates, blocked senders,
// the exclude file and, when a resume is supplied, the AI fit step.
func refine(ctx context.Context, cmd *cobra.Command, config *Config, emails []*extract.JobEmail, zlog *zap.Logger) ([]*extract.JobEmail, error) {
	steps := []filtering.Filter{
		filtering.NewDuplicates(),
		filtering.NewBlockedSenders(),
		filtering.NewExcludeFile(config.ExcludeFile),
		filtering.NewAIFit(),
	}

	deps := filtering.Deps{Logger: zlog}

	resumePath, _ := cmd.Flags().GetString("resume")
	if resumePath == "" {
		filtering.DisableByName(steps, "ai_fit", "no resume supplied")
	} else {
		text, err := resume.Text(resumePath)
		if err != nil {
			return nil, fmt.Errorf("reading the resume: %w", err)
		}

		matcher, err := newMatcher(ctx, config, zlog)
		if err != nil {
			return nil, err
		}

		deps.Resume = text
		deps.Matcher = matcher
	}

	for _, status := range filtering.Describe(steps) {
		zlog.Debug("filter status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
		)
	}

	cfg := &filtering.Config{
		ExcludeFile:    config.ExcludeFile,
		BlockedSenders: config.Extract.BlockedSenders,
	}

	return filtering.Run(ctx, cfg, deps, steps, emails)
}

// newMatcher builds the resume-fit matcher on top of the Gemini generator.
func newMatcher(ctx context.Context, config *Config, zlog *zap.Logger) (ai.Matcher, error) {
	generator, err := newGenerator(ctx, config, zlog)
	if err != nil {
		return nil, err
	}

	aicfg := config.AI
	if aicfg == nil {
		aicfg = &AIConfig{}
	}
	gcfg := aicfg.Gemini
	if gcfg == nil {
		gcfg = &GeminiConfig{}
	}

	return gemini.NewMatcher(generator, aicfg.MinimumFitScore, gcfg.MaxLogLength, zlog), nil
}
