package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meridian-cloud/meridian/internal/transport/adminapi"
)

// savedSession is the on-disk shape of a gateway login.
type savedSession struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

func sessionPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".meridian", "session.json"), nil
}

func saveSession(s savedSession) error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func loadSession() (savedSession, bool) {
	path, err := sessionPath()
	if err != nil {
		return savedSession{}, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return savedSession{}, false
	}
	var s savedSession
	if err := json.Unmarshal(data, &s); err != nil {
		return savedSession{}, false
	}
	return s, s.Token != ""
}

// newGateway builds an admin gateway client, restoring a saved session
// when one exists.
func newGateway() (*adminapi.Client, error) {
	if flagGateway == "" {
		return nil, errors.New("--gateway is required for this command")
	}
	client := adminapi.New(flagGateway, nil, zap.NewNop())
	if s, ok := loadSession(); ok {
		client.Session().Set(s.Token, s.Username, s.ExpiresAt)
	}
	return client, nil
}

var (
	flagUsername string
	flagLoginPwd string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the admin gateway and store the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGateway()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		if err := client.Login(ctx, flagUsername, flagLoginPwd); err != nil {
			return err
		}
		token, _ := client.Session().Token()
		s := savedSession{
			Token:     token,
			Username:  client.Session().Username(),
			ExpiresAt: client.Session().ExpiresAt(),
		}
		if err := saveSession(s); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		fmt.Printf("Logged in as %s (token expires %s)\n",
			s.Username, s.ExpiresAt.Local().Format(time.RFC3339))
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that the stored gateway session is still valid",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGateway()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		if err := client.Verify(ctx); err != nil {
			return err
		}
		fmt.Println("Session is valid")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&flagUsername, "username", "u", "", "admin username")
	loginCmd.Flags().StringVarP(&flagLoginPwd, "login-password", "p", "", "admin password")
	_ = loginCmd.MarkFlagRequired("username")
	_ = loginCmd.MarkFlagRequired("login-password")
}
