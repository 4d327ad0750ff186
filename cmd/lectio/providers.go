package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lectio-ai/lectio/pkg/config"
	"github.com/lectio-ai/lectio/pkg/provider"
)

func newProvidersCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List supported AI providers and their configuration state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			a := &app{cfg: cfg}
			return printProviders(cmd, cfg, a.registry())
		},
	}
}

func printProviders(cmd *cobra.Command, cfg *config.Config, reg *provider.Registry) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tMODEL\tENDPOINT\tKEY\tACTIVE")
	for _, v := range reg.Variants() {
		key := "missing"
		if p, ok := cfg.Provider(v.Name()); ok && p.APIKey != "" {
			key = "set"
		} else if os.Getenv(config.KeyEnv(v.Name())) != "" {
			key = "env"
		}
		active := ""
		if v.Name() == cfg.AI.Provider {
			active = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", v.Name(), v.Model(), v.Endpoint(), key, active)
	}
	return tw.Flush()
}
