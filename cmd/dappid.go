package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"dappstore.GO/service/dappid"
)

var (
	dappName string
	dappURL  string
)

var dappIDCmd = &cobra.Command{
	Use:   "dappid:generate",
	Short: "Derive the canonical id a new dApp would get from its app URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		reg, _, err := a.Catalog.Registry.Fetch(cmd.Context())
		if err != nil {
			return err
		}
		existing := make([]dappid.Entry, 0, len(reg.DApps))
		for _, d := range reg.DApps {
			existing = append(existing, dappid.Entry{ID: d.DAppID, Name: d.Name, URL: d.AppURL})
		}
		id, err := dappid.Generate(dappName, dappURL, existing, nil, nil)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

func init() {
	dappIDCmd.Flags().StringVarP(&dappName, "name", "n", "", "dApp name")
	dappIDCmd.Flags().StringVarP(&dappURL, "url", "u", "", "dApp app URL")
	rootCmd.AddCommand(dappIDCmd)
}
