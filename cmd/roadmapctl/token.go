package main

import (
	"fmt"
	"strings"
	"time"

	"learning-buddy/internal/pkg/jwt"

	"github.com/spf13/cobra"
)

var (
	tokenEmail   string
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an access token for GET /api/v1/roadmap/me",
	Args:  cobra.NoArgs,
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "learner email carried in the token")
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "optional subject (roster user id)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (default: jwt.access_expires_in)")
	_ = tokenCmd.MarkFlagRequired("email")
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if strings.TrimSpace(cfg.JWT.AccessSecret) == "" {
		return fmt.Errorf("jwt.access_secret is not configured")
	}

	ttl := cfg.JWT.AccessExpiresIn
	if tokenTTL > 0 {
		ttl = tokenTTL
	}
	tok, err := jwt.NewHMACService(cfg.JWT.AccessSecret, ttl).GenerateAccessToken(tokenSubject, tokenEmail)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
	return err
}
