// meridian-cli is an operator console for a Tile38-compatible geodb.
// It talks to the geodb directly, or through the admin gateway when
// --gateway is set.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/meridian-cloud/meridian"
)

var (
	flagAddr     string
	flagPassword string
	flagGateway  string
	flagTimeout  time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "meridian-cli",
	Short:         "Operator console for the meridian geodb",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAddr, "addr", "localhost:9851", "geodb address")
	rootCmd.PersistentFlags().StringVar(&flagPassword, "password", "", "geodb password")
	rootCmd.PersistentFlags().StringVar(&flagGateway, "gateway", "", "admin gateway base URL (talks HTTP instead of the geodb)")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 30*time.Second, "per-command timeout")

	rootCmd.AddCommand(loginCmd, verifyCmd, execCmd)
	rootCmd.AddCommand(collectionsCmd, scanCmd, hooksCmd, exportCmd)
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), flagTimeout)
}

// newSDK connects directly to the geodb. Gateway mode commands must not
// call this.
func newSDK(ctx context.Context) (*meridian.Client, error) {
	if flagGateway != "" {
		return nil, errors.New("this command talks to the geodb directly, drop --gateway")
	}
	return meridian.New(ctx, meridian.WithTile38(flagAddr, flagPassword))
}
