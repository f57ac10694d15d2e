package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/breadfinder/breadfinder/internal/logger"
	"github.com/breadfinder/breadfinder/internal/mailbox"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send an application email, optionally attaching a resume PDF",
	Run: func(cmd *cobra.Command, _ []string) {
		runSend(cmd)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringP("to", "t", "", "recipient address")
	sendCmd.Flags().StringP("subject", "s", "", "email subject")
	sendCmd.Flags().StringP("message", "m", "", "email body text")
	sendCmd.Flags().String("message-file", "", "file holding the email body")
	sendCmd.Flags().StringP("attach", "a", "", "PDF to attach")
	sendCmd.Flags().StringP("username", "u", "", "mailbox address to send from")
	sendCmd.MarkFlagRequired("to")
	sendCmd.MarkFlagRequired("subject")

	viper.BindPFlag("imap.username", sendCmd.Flags().Lookup("username"))
}

func runSend(cmd *cobra.Command) {
	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	to, _ := cmd.Flags().GetString("to")
	subject, _ := cmd.Flags().GetString("subject")
	body, _ := cmd.Flags().GetString("message")
	bodyFile, _ := cmd.Flags().GetString("message-file")
	attach, _ := cmd.Flags().GetString("attach")

	if body == "" && bodyFile != "" {
		raw, err := os.ReadFile(bodyFile)
		if err != nil {
			zlog.Fatal("reading the message file", zap.Error(err), zap.String("path", bodyFile))
		}
		body = string(raw)
	}
	if strings.TrimSpace(body) == "" {
		zlog.Fatal("an email body is required; pass --message or --message-file")
	}

	username, password, err := resolveCredentials(config)
	if err != nil {
		zlog.Fatal("resolving mailbox credentials", zap.Error(err))
	}

	sender := mailbox.NewSender(config.SMTP.Server, config.SMTP.Port, username, password, zlog)
	if err := sender.Send(to, subject, body, attach); err != nil {
		zlog.Fatal("sending the email", zap.Error(err), zap.String("to", to))
	}

	fmt.Printf("Email sent to %s\n", to)
}
