package cmd

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/spf13/cobra"

	"github.com/segmentio/okta-idx/internal/tokencache"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "check verifies the cached ID token of a profile against the issuer's keys",
	RunE:  checkRun,
}

func init() {
	RootCmd.AddCommand(checkCmd)
}

func checkRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadIDXConfig(FlagProfile)
	if err != nil {
		return err
	}
	kr, err := getKeyring(FlagKeyringBackend)
	if err != nil {
		return err
	}

	tokens := &tokencache.SingleKrItemStore{Keyring: kr}
	entry, err := tokens.Get(tokenKey(FlagProfile, cfg))
	if err != nil {
		return fmt.Errorf("no usable token for %s, run `okta-idx login`: %w", FlagProfile, err)
	}

	ctx := context.Background()
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return err
	}
	idToken, err := entry.VerifyIDToken(ctx, provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}))
	if err != nil {
		return err
	}

	Analytics.TrackCommand("check", FlagProfile)
	fmt.Printf("Signed in to %s as %s until %s.\n", FlagProfile, idToken.Subject, entry.Expiry())
	return nil
}
