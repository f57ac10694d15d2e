package cmd

import (
	"errors"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/breadfinder/breadfinder/internal/extract"
	"github.com/breadfinder/breadfinder/internal/secrets"
)

const (
	app = "breadfinder"

	defaultIMAPServer = "imap.gmail.com"
	defaultIMAPPort   = 993
	defaultSMTPServer = "smtp.gmail.com"
	defaultSMTPPort   = 587
	defaultOutput     = "job_emails.txt"
)

type Config struct {
	IMAP        *IMAPConfig    `mapstructure:"imap"`
	SMTP        *SMTPConfig    `mapstructure:"smtp"`
	Extract     *ExtractConfig `mapstructure:"extract"`
	Rules       *RulesConfig   `mapstructure:"rules"`
	AI          *AIConfig      `mapstructure:"ai"`
	ExcludeFile string         `mapstructure:"exclude-file"`
}

type IMAPConfig struct {
	Server       string `mapstructure:"server"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	PasswordFile string `mapstructure:"password-file"`
}

type SMTPConfig struct {
	Server string `mapstructure:"server"`
	Port   int    `mapstructure:"port"`
}

type ExtractConfig struct {
	DaysBack       int      `mapstructure:"days-back"`
	Output         string   `mapstructure:"output"`
	BlockedSenders []string `mapstructure:"blocked-senders"`
}

type RulesConfig struct {
	JobKeywords     []string `mapstructure:"job-keywords"`
	ExcludeKeywords []string `mapstructure:"exclude-keywords"`
	TrustedDomains  []string `mapstructure:"trusted-domains"`
	ExcludeDomains  []string `mapstructure:"exclude-domains"`
}

type AIConfig struct {
	Provider        string        `mapstructure:"provider"`
	MinimumFitScore float64       `mapstructure:"minimum-fit-score"`
	Gemini          *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "breadfinder digs job opportunities out of your mailbox",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key", "GEMINI_API_KEY"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is breadfinder.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		// An explicitly requested config file must parse.
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal(err)
		}
		return
	}

	viper.AddConfigPath(".")
	viper.SetConfigName(app + ".yaml")
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, err
	}

	if config.IMAP == nil {
		config.IMAP = &IMAPConfig{}
	}
	if config.IMAP.Server == "" {
		config.IMAP.Server = defaultIMAPServer
	}
	if config.IMAP.Port == 0 {
		config.IMAP.Port = defaultIMAPPort
	}

	if config.SMTP == nil {
		config.SMTP = &SMTPConfig{}
	}
	if config.SMTP.Server == "" {
		config.SMTP.Server = defaultSMTPServer
	}
	if config.SMTP.Port == 0 {
		config.SMTP.Port = defaultSMTPPort
	}

	if config.Extract == nil {
		config.Extract = &ExtractConfig{}
	}
	if config.Extract.DaysBack <= 0 {
		config.Extract.DaysBack = extract.DefaultDaysBack
	}
	if config.Extract.Output == "" {
		config.Extract.Output = defaultOutput
	}

	return config, nil
}

// rules returns the classification lexicons: the built-in defaults with any
// configured overrides applied.
func (c *Config) rules() *extract.Rules {
	defaults := extract.DefaultRules()
	if c.Rules == nil {
		return defaults
	}
	return defaults.Merge(&extract.Rules{
		JobKeywords:     c.Rules.JobKeywords,
		ExcludeKeywords: c.Rules.ExcludeKeywords,
		TrustedDomains:  c.Rules.TrustedDomains,
		ExcludeDomains:  c.Rules.ExcludeDomains,
	})
}

// resolveCredentials returns the mailbox account and app password, prompting
// interactively for whatever the configuration does not supply.
func resolveCredentials(config *Config) (string, string, error) {
	username := strings.TrimSpace(config.IMAP.Username)
	if username == "" {
		prompt := promptui.Prompt{Label: "Mailbox address"}
		value, err := prompt.Run()
		if err != nil {
			return "", "", err
		}
		username = strings.TrimSpace(value)
	}

	password, err := secrets.Load(secrets.Source{
		Name:  "mailbox app password",
		Value: config.IMAP.Password,
		File:  config.IMAP.PasswordFile,
	})
	if err != nil {
		prompt := promptui.Prompt{Label: "App password", Mask: '*'}
		password, err = prompt.Run()
		if err != nil {
			return "", "", err
		}
	}

	return username, password, nil
}
