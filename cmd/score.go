package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/breadfinder/breadfinder/internal/jobpost"
	"github.com/breadfinder/breadfinder/internal/logger"
	"github.com/breadfinder/breadfinder/internal/resume"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Judge how well a resume fits a job posting",
	Run: func(cmd *cobra.Command, _ []string) {
		runScore(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringP("resume", "r", "", "path to the resume PDF")
	scoreCmd.Flags().StringP("job-url", "l", "", "URL of the job posting")
	scoreCmd.MarkFlagRequired("resume")
	scoreCmd.MarkFlagRequired("job-url")
}

func runScore(cmd *cobra.Command) {
	ctx := context.Background()

	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	resumePath, _ := cmd.Flags().GetString("resume")
	jobURL, _ := cmd.Flags().GetString("job-url")

	resumeText, err := resume.Text(resumePath)
	if err != nil {
		zlog.Fatal("reading the resume", zap.Error(err), zap.String("path", resumePath))
	}

	description, err := jobpost.Fetch(ctx, jobURL)
	if err != nil {
		zlog.Fatal("fetching the job posting", zap.Error(err), zap.String("url", jobURL))
	}

	matcher, err := newMatcher(ctx, config, zlog)
	if err != nil {
		zlog.Fatal("creating the fit matcher", zap.Error(err))
	}

	assessment, err := matcher.Evaluate(ctx, resumeText, description)
	if err != nil {
		zlog.Fatal("evaluating the fit", zap.Error(err))
	}

	verdict := "NOT A FIT"
	if assessment.Fit {
		verdict = "FIT"
	}

	fmt.Printf("%s (score %.0f/100)\n\n", verdict, assessment.Score)
	fmt.Println(assessment.Summary)

	if suggestions := strings.TrimSpace(assessment.Suggestions); suggestions != "" {
		fmt.Printf("\nSuggestions:\n%s\n", suggestions)
	}
}
