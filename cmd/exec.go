package cmd

import (
	"errors"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var ErrCommandMissing = errors.New("must specify command to run")

// execCmd represents the exec command
var execCmd = &cobra.Command{
	Use:     "exec -- <command>",
	Short:   "exec will run the command specified with Okta tokens set in the environment",
	Example: "okta-idx exec -p work -- curl -H \"Authorization: Bearer $OKTA_ACCESS_TOKEN\" https://api.example.com",
	RunE:    execRun,
}

func init() {
	RootCmd.AddCommand(execCmd)
}

func execRun(cmd *cobra.Command, args []string) error {
	dashIx := cmd.ArgsLenAtDash()
	if dashIx == -1 {
		return ErrCommandMissing
	}

	args, commandPart := args[:dashIx], args[dashIx:]
	if len(args) > 0 {
		return ErrTooManyArguments
	}
	if len(commandPart) == 0 {
		return ErrCommandMissing
	}

	entry, err := login(FlagProfile, false)
	if err != nil {
		return err
	}

	Analytics.TrackCommand("exec", FlagProfile)

	env := kvEnv{}
	env.LoadFromEnviron(os.Environ()...)
	env.AddToken(FlagProfile, entry)

	ecmd := exec.Command(commandPart[0], commandPart[1:]...)
	ecmd.Stdin = os.Stdin
	ecmd.Stdout = os.Stdout
	ecmd.Stderr = os.Stderr
	ecmd.Env = env.Environ()

	// Forward SIGINT and SIGTERM to the child command
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, os.Interrupt)
	defer signal.Stop(sigChan)

	go func() {
		sig, ok := <-sigChan
		if ok && ecmd.Process != nil {
			ecmd.Process.Signal(sig)
		}
	}()

	if err := ecmd.Run(); err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			if waitStatus, ok := exitError.Sys().(syscall.WaitStatus); ok {
				os.Exit(waitStatus.ExitStatus())
			}
		}
		return err
	}
	return nil
}
