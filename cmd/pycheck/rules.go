package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"pycheck/internal/engine/rules"
)

func rulesCommand() *cli.Command {
	return &cli.Command{
		Name:   "rules",
		Usage:  "list the shipped rules and whether the config enables them",
		Action: runRulesCommand,
	}
}

func runRulesCommand(c *cli.Context) error {
	cfg, _, _, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	enabled := cfg.EnabledRules()

	fmt.Printf("%-7s %-28s %-8s %s\n", "ID", "NAME", "SEVERITY", "ENABLED")
	for _, info := range rules.CatalogInfo() {
		state := "yes"
		if !enabled[info.Name] {
			state = "no"
		}
		fmt.Printf("%-7s %-28s %-8s %s\n", info.ID, info.Name, info.Severity, state)
	}
	return nil
}
