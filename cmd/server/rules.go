package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect contraindication rule tables",
	}
	cmd.AddCommand(rulesExportCmd())
	cmd.AddCommand(rulesCheckCmd())
	return cmd
}

func rulesExportCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the active rule table as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadRules(file)
			if err != nil {
				return err
			}
			return table.WriteYAML(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "rule table YAML to re-export (defaults to the built-in table)")
	return cmd
}

func rulesCheckCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a rule table YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadRules(file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s (%d rules)\n", table.Version(), len(table.Entries()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "rule table YAML")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
