package main

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"nurserycore/pkg/domain"
)

func newSpeciesCmd(a *app) *cobra.Command {
	var season string
	cmd := &cobra.Command{
		Use:   "species",
		Short: "List the species the nursery can stock",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			filter := domain.Season(strings.ToLower(season))
			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SPECIES\tPRICE\tWATER/DAY\tREFILL\tMATURE AT\tNEEDS\tSEASONS")
			for _, s := range domain.AllSpecies() {
				if filter != "" && !suitable(s, filter) {
					continue
				}
				seasons := make([]string, 0, len(s.Seasons))
				for _, se := range s.Seasons {
					seasons = append(seasons, string(se))
				}
				fmt.Fprintf(tw, "%s\t%.0f\t%d\t+%d\t%d\t%s\t%s\n",
					s.Name, s.Price, s.WaterConsumption, s.Refill, s.MaturityDay(), s.Requirement, strings.Join(seasons, ","))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&season, "season", "", "only show species suited to this season")
	return cmd
}

func suitable(s domain.Species, season domain.Season) bool {
	return slices.Contains(s.Seasons, domain.SeasonYearRound) || slices.Contains(s.Seasons, season)
}
