package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dappstore.GO/config"
	"dappstore.GO/model/entity"
	"dappstore.GO/service/registry"
	"dappstore.GO/service/schema"
)

var (
	validateFile   string
	validateStores bool
)

var validateCmd = &cobra.Command{
	Use:   "registry:validate",
	Short: "Validate a registry or stores document, from a file or the remote repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, source, err := validateInput(cmd)
		if err != nil {
			return err
		}
		v, err := schema.New()
		if err != nil {
			return err
		}

		var res schema.Result
		if validateStores {
			var doc entity.Stores
			if err := json.Unmarshal(raw, &doc); err != nil {
				return fmt.Errorf("decoding %s: %w", source, err)
			}
			res = v.ValidateStores(&doc)
		} else {
			var doc entity.Registry
			if err := json.Unmarshal(raw, &doc); err != nil {
				return fmt.Errorf("decoding %s: %w", source, err)
			}
			res = v.ValidateRegistry(&doc)
		}

		out := cmd.OutOrStdout()
		if res.Valid {
			fmt.Fprintf(out, "%s is valid\n", source)
			return nil
		}
		for _, is := range res.Issues {
			fmt.Fprintln(out, is.String())
		}
		return fmt.Errorf("%s has %d issue(s)", source, len(res.Issues))
	},
}

func validateInput(cmd *cobra.Command) ([]byte, string, error) {
	if validateFile != "" {
		b, err := os.ReadFile(validateFile)
		return b, validateFile, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, "", err
	}
	file, override := registry.RegistryFile, cfg.Registry.RegistryURL
	if validateStores {
		file, override = registry.StoresFile, cfg.Registry.StoresURL
	}
	url := override
	if url == "" {
		url = registry.RawURL(cfg.GitHub.Owner, cfg.GitHub.Repo, file)
	}
	b, err := (&registry.HTTPSource{URL: url, Timeout: cfg.Registry.FetchTimeout}).Load(cmd.Context())
	return b, url, err
}

func init() {
	validateCmd.Flags().StringVarP(&validateFile, "file", "f", "", "Local document to validate (default: the remote document)")
	validateCmd.Flags().BoolVar(&validateStores, "stores", false, "Validate a stores document instead of the registry")
	rootCmd.AddCommand(validateCmd)
}
