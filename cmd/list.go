package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/segmentio/okta-idx/lib"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "list will show you the profiles currently configured",
	RunE:  listRun,
}

func init() {
	RootCmd.AddCommand(listCmd)
}

func listProfileNames(ps lib.Profiles) []string {
	// Let's sort this list of profiles so we can have some more deterministic output:
	var profileNames []string

	for profile := range ps {
		profileNames = append(profileNames, profile)
	}

	sort.Strings(profileNames)

	return profileNames
}

func printProfiles(out io.Writer, profiles lib.Profiles) {
	w := new(tabwriter.Writer)
	w.Init(out, 0, 8, 2, '\t', 0)
	fmt.Fprintln(w, "PROFILE\tISSUER\tCLIENT_ID\t")
	for _, profile := range listProfileNames(profiles) {
		cfg, err := profiles.IDXConfig(profile)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t\n", profile, cfg.Issuer, cfg.ClientID)
	}
	w.Flush()
}

func listRun(cmd *cobra.Command, args []string) error {
	profiles, err := loadProfiles()
	if err != nil {
		return err
	}

	printProfiles(os.Stdout, profiles)
	Analytics.TrackCommand("list", "")
	return nil
}
