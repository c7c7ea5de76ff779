package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/segmentio/okta-idx/internal/tokencache"
	"github.com/segmentio/okta-idx/lib/idx"
)

var flagLoginForce bool

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "login signs you in to Okta and stores the tokens in your keyring",
	RunE:  loginRun,
}

func init() {
	RootCmd.AddCommand(loginCmd)
	loginCmd.Flags().BoolVarP(&flagLoginForce, "force", "f", false, "Sign in again even when a valid token is cached")
}

func loginRun(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return ErrTooManyArguments
	}

	entry, err := login(FlagProfile, flagLoginForce)
	if err != nil {
		return err
	}

	Analytics.TrackCommand("login", FlagProfile)
	fmt.Fprintf(os.Stderr, "Signed in to %s, token expires at %s\n", FlagProfile, entry.Expiry().Format(time.RFC1123))
	return nil
}

// login returns the cached token for profile, signing in when there is none.
func login(profile string, force bool) (*tokencache.Entry, error) {
	cfg, err := loadIDXConfig(profile)
	if err != nil {
		return nil, err
	}
	kr, err := getKeyring(FlagKeyringBackend)
	if err != nil {
		return nil, err
	}

	tokens := &tokencache.SingleKrItemStore{Keyring: kr}
	key := tokenKey(profile, cfg)
	if !force {
		if entry, err := tokens.Get(key); err == nil {
			return entry, nil
		}
	}

	flow, err := createFlow(kr, cfg)
	if err != nil {
		return nil, err
	}
	flow.Subscribe(idx.ObserverFunc(func(ev idx.Event) {
		if ev.Err != nil {
			log.WithField("event", ev.Kind).Debugf("sign-in step failed: %s", ev.Err)
			return
		}
		log.WithField("event", ev.Kind).Debug("sign-in step done")
	}))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	started := time.Now()
	s := &signIn{flow: flow, p: terminalPrompter{}}
	token, err := s.run(ctx)
	Analytics.TrackSignIn(s.report(profile, err, time.Since(started)))
	if err != nil {
		return nil, err
	}

	entry := &tokencache.Entry{Name: profile, Token: *token}
	if err := tokens.Put(key, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
