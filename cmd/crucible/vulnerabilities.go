package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/crucible-sec/crucible/internal/vulnerability"
)

var vulnerabilitiesCmd = &cobra.Command{
	Use:     "vulnerabilities",
	Aliases: []string{"vulns"},
	Short:   "Inspect the vulnerability catalog",
}

var vulnerabilitiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered vulnerability categories by risk class",
	Args:  cobra.NoArgs,
	RunE:  runVulnerabilitiesList,
}

func runVulnerabilitiesList(cmd *cobra.Command, args []string) error {
	catalog := vulnerability.NewBuiltinCatalog()
	grouped := catalog.ByRiskClass()

	classes := make([]string, 0, len(grouped))
	for class := range grouped {
		classes = append(classes, string(class))
	}
	sort.Strings(classes)

	out := cmd.OutOrStdout()
	for _, class := range classes {
		fmt.Fprintf(out, "%s:\n", class)
		for _, cat := range grouped[vulnerability.RiskClass(class)] {
			reqs, err := catalog.RequirementsFor(cat)
			if err != nil {
				return err
			}

			var notes string
			switch {
			case reqs.NeedsPurpose && reqs.NeedsAllowedEntities:
				notes = " (requires purpose, allowed entities)"
			case reqs.NeedsPurpose:
				notes = " (requires purpose)"
			case reqs.NeedsAllowedEntities:
				notes = " (requires allowed entities)"
			}
			fmt.Fprintf(out, "  %s%s\n", cat, notes)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "%d categories registered\n", catalog.Count())
	return nil
}

func init() {
	vulnerabilitiesCmd.AddCommand(vulnerabilitiesListCmd)
}
