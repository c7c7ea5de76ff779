package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/99designs/keyring"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/segmentio/okta-idx/cmd/internal/analytics"
)

// Errors returned from frontend commands
var (
	ErrTooManyArguments = errors.New("too many arguments")
	ErrTooFewArguments  = errors.New("too few arguments")
)

// global flags
var (
	FlagKeyringBackend string
	FlagDebug          bool
	FlagProfile        string
	FlagConfigFile     string
)

var (
	Analytics analytics.Client
	Version   string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:               "okta-idx",
	Short:             "okta-idx signs you in to Okta through the Identity Engine and keeps the tokens in your keyring",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: prerun,
	PersistentPostRun: postrun,
}

// Execute adds all child commands to the root command sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(version string, writeKey string) {
	Version = version
	if writeKey != "" {
		Analytics = analytics.New(writeKey)
		Analytics.UserId = os.Getenv("USER")
		Analytics.Version = Version
	}
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		switch err {
		case ErrTooFewArguments, ErrTooManyArguments:
			RootCmd.Usage()
		}
		os.Exit(1)
	}
}

func prerun(cmd *cobra.Command, args []string) error {
	if FlagDebug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	// Load backend from env var if not set as a flag
	if !cmd.Flags().Lookup("backend").Changed {
		if backendFromEnv, ok := os.LookupEnv("OKTA_IDX_BACKEND"); ok {
			FlagKeyringBackend = backendFromEnv
		}
	}

	Analytics.KeyringBackend = FlagKeyringBackend
	Analytics.Identify()
	return nil
}

func postrun(cmd *cobra.Command, args []string) {
	Analytics.Close()
}

func init() {
	backendsAvailable := []string{}
	for _, backendType := range keyring.AvailableBackends() {
		backendsAvailable = append(backendsAvailable, string(backendType))
	}

	RootCmd.PersistentFlags().StringVarP(&FlagKeyringBackend, "backend", "b", "", fmt.Sprintf("Secret backend to use %s", backendsAvailable))
	RootCmd.PersistentFlags().BoolVarP(&FlagDebug, "debug", "d", false, "Enable debug logging")
	RootCmd.PersistentFlags().StringVarP(&FlagProfile, "profile", "p", "okta", "Config profile to sign in with")
	RootCmd.PersistentFlags().StringVarP(&FlagConfigFile, "config", "c", "", "Config file (defaults to $OKTA_IDX_CONFIG_FILE or ~/.okta/idx.ini)")
}
