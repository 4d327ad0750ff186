package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lectio-ai/lectio/pkg/models"
)

const maxConcurrentPlans = 4

func newPlanCmd(configPath *string) *cobra.Command {
	var (
		ages   []string
		gender string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate this week's reading plan for one or more age groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			plans, err := generatePlans(cmd.Context(), a.planner, ages, gender, time.Now())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(plans)
			}
			return printPlans(out, plans)
		},
	}

	cmd.Flags().StringSliceVar(&ages, "age", []string{models.AgeAdult}, "age group(s): Child, Teen, YoungAdult, Adult, Senior")
	cmd.Flags().StringVar(&gender, "gender", models.GenderAll, "audience gender, or All")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print plans as JSON")
	return cmd
}

type readingGenerator interface {
	GenerateReadings(ctx context.Context, ageGroup, gender string) []models.ReadingEntry
}

// generatePlans runs one generation per age group concurrently, preserving input order.
func generatePlans(ctx context.Context, p readingGenerator, ages []string, gender string, now time.Time) ([]models.ReadingPlan, error) {
	week := models.WeekNumber(now)
	plans := make([]models.ReadingPlan, len(ages))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentPlans)
	for i, age := range ages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			plans[i] = models.ReadingPlan{
				Week:     week,
				AgeGroup: age,
				Gender:   gender,
				Readings: p.GenerateReadings(ctx, age, gender),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return plans, nil
}

func printPlans(w io.Writer, plans []models.ReadingPlan) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, plan := range plans {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "Week %d: %s (%s)\n", plan.Week, plan.AgeGroup, plan.Gender)
		fmt.Fprintln(tw, "DAY\tREADING\tNOTES")
		for _, r := range plan.Readings {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Day, r.Reading, r.Notes)
		}
	}
	return tw.Flush()
}
