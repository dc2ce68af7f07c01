package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"babymind/internal/config"
	"babymind/internal/rules"
)

// RulesCmd returns the rules command
func RulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and validate age rule tables",
	}

	cmd.AddCommand(rulesShowCmd())
	cmd.AddCommand(rulesValidateCmd())

	return cmd
}

func rulesShowCmd() *cobra.Command {
	var (
		file string
		age  int
	)

	cmd := &cobra.Command{
		Use:   "show [domain]",
		Short: "List a domain's age ranges, or the rule for one age",
		Long: `List a domain's age ranges, or print the rule resolved for --age.

Examples:
  babymind rules show vaccination
  babymind rules show tasks --age 8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = config.Load().RulesPath
			}
			catalog, err := rules.Load(file)
			if err != nil {
				return err
			}
			domain := rules.Domain(args[0])
			out := cmd.OutOrStdout()

			if cmd.Flags().Changed("age") {
				rule, err := catalog.Resolve(domain, age)
				if err != nil {
					return err
				}
				data, err := yaml.Marshal(rule)
				if err != nil {
					return fmt.Errorf("failed to encode rule: %w", err)
				}
				fmt.Fprintf(out, "# %s at %d months: %s\n", domain, age, rangeLabel(rule))
				_, err = out.Write(data)
				return err
			}

			table, err := catalog.Table(domain)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RANGE\tLABEL\tNAME")
			for _, rule := range table.Rules() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", rangeLabel(rule), rule.Bundle.Label, rule.Bundle.Name)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "rule file (default: RULES_PATH or built-in tables)")
	cmd.Flags().IntVar(&age, "age", 0, "age in months to resolve")
	return cmd
}

func rulesValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check that a rule file defines every domain correctly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := rules.Load(args[0]); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %v\n", bad("✗"), args[0], err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s defines all %d domains\n", ok("✓"), args[0], len(rules.Domains))
			return nil
		},
	}
}

func rangeLabel(rule rules.Rule) string {
	if rule.OpenEnded() {
		return fmt.Sprintf("%d+ months", rule.MinAgeMonths)
	}
	return fmt.Sprintf("%d-%d months", rule.MinAgeMonths, rule.MaxAgeMonths)
}
