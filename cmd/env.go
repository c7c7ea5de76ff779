package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/spf13/cobra"
)

// envCmd represents the env command
var envCmd = &cobra.Command{
	Use:     "env",
	Short:   "env prints out export commands for the tokens of a profile",
	RunE:    envRun,
	Example: "eval $(okta-idx env -p work)",
}

func printExport(varName, varValue string) {
	exportString := "export %s=%s\n"
	myShell, hasShell := os.LookupEnv("SHELL")
	if hasShell && strings.Contains(myShell, "fish") {
		exportString = "set -x %s %s\n"
	}
	fmt.Printf(exportString, varName, varValue)
}

func init() {
	RootCmd.AddCommand(envCmd)
}

func envRun(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return ErrTooManyArguments
	}

	entry, err := login(FlagProfile, false)
	if err != nil {
		return err
	}

	Analytics.TrackCommand("env", FlagProfile)

	env := kvEnv{}
	env.AddToken(FlagProfile, entry)
	for _, kev := range env.Environ() {
		kv := strings.SplitN(kev, "=", 2)
		printExport(kv[0], shellescape.Quote(kv[1]))
	}
	return nil
}
