package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"dappstore.GO/service/index"
)

var (
	createKind  string
	createLoad  bool
	liveKind    string
	liveIndex   string
	reindexKind string
)

var indexCreateCmd = &cobra.Command{
	Use:   "index:create",
	Short: "Create a fresh timestamped index, optionally loading it from the registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := index.ParseKind(createKind)
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		name, err := a.Indexer.Create(cmd.Context(), kind)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created index %s\n", name)
		if !createLoad {
			return nil
		}
		n, err := a.Indexer.Load(cmd.Context(), kind, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d documents into %s\n", n, name)
		return nil
	},
}

var indexLiveCmd = &cobra.Command{
	Use:   "index:live",
	Short: "Point the search alias at an index and detach it from every other index",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := index.ParseKind(liveKind)
		if err != nil {
			return err
		}
		if liveIndex == "" {
			return fmt.Errorf("--index is required")
		}
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Indexer.GoLive(cmd.Context(), kind, liveIndex); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Index %s is live\n", liveIndex)
		return nil
	},
}

var indexReindexCmd = &cobra.Command{
	Use:   "index:reindex",
	Short: "Rebuild an index from the current documents and switch the alias to it",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		kinds := []index.Kind{index.KindDApps, index.KindStores}
		if reindexKind != "" {
			kind, err := index.ParseKind(reindexKind)
			if err != nil {
				return err
			}
			kinds = []index.Kind{kind}
		}
		for _, kind := range kinds {
			name, err := a.Indexer.Reindex(cmd.Context(), kind)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reindexed %s into %s\n", kind, name)
		}
		return nil
	},
}

func init() {
	indexCreateCmd.Flags().StringVarP(&createKind, "kind", "k", string(index.KindDApps), "Index kind: dapps or stores")
	indexCreateCmd.Flags().BoolVar(&createLoad, "load", false, "Bulk load the new index from the current document")
	indexLiveCmd.Flags().StringVarP(&liveKind, "kind", "k", string(index.KindDApps), "Index kind: dapps or stores")
	indexLiveCmd.Flags().StringVarP(&liveIndex, "index", "i", "", "Index to put live")
	indexReindexCmd.Flags().StringVarP(&reindexKind, "kind", "k", "", "Index kind: dapps or stores (default both)")
	rootCmd.AddCommand(indexCreateCmd, indexLiveCmd, indexReindexCmd)
}
