package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/monosms/sms-agent/internal/config"
	"github.com/monosms/sms-agent/internal/token"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Validate and print the configured token registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		registry := token.NewRegistry()
		if err := registry.Load(cfg.Tokens); err != nil {
			return fmt.Errorf("load tokens: %w", err)
		}

		for _, sym := range registry.Symbols() {
			t, err := registry.FindBySymbol(sym)
			if err != nil {
				return err
			}
			fmt.Printf("%-8s %-16s %s decimals=%d %s\n", t.Symbol, t.Name, t.Address, t.Decimals, t.Logo)
		}
		return nil
	},
}
