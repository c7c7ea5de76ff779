package cmd

import (
	"github.com/spf13/cobra"

	"github.com/segmentio/okta-idx/internal/tokencache"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "logout removes the cached tokens of a profile",
	RunE:  logoutRun,
}

func init() {
	RootCmd.AddCommand(logoutCmd)
}

func logoutRun(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return ErrTooManyArguments
	}

	cfg, err := loadIDXConfig(FlagProfile)
	if err != nil {
		return err
	}
	kr, err := getKeyring(FlagKeyringBackend)
	if err != nil {
		return err
	}

	Analytics.TrackCommand("logout", FlagProfile)
	tokens := &tokencache.SingleKrItemStore{Keyring: kr}
	return tokens.Remove(tokenKey(FlagProfile, cfg))
}
