package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"nurserycore/internal/core"
	"nurserycore/pkg/domain"
)

type simulateOptions struct {
	days      int
	plants    []string
	bed       string
	sell      []string
	save      string
	export    string
	overwrite bool
}

func newSimulateCmd(a *app) *cobra.Command {
	opts := simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Stock the nursery and advance it day by day",
		Example: `  nursery simulate --days 7 --plant Rose=2 --plant Fern
  nursery simulate --plant Rose --sell Rose+Pot+Ribbon --save week1
  nursery simulate --days 30 --bed "Shade Bed" --plant Orchid=3 --export saves/orchids`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.simulate(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.IntVar(&opts.days, "days", 7, "days to simulate")
	f.StringArrayVar(&opts.plants, "plant", []string{"Rose=2", "Fern", "Cactus"}, "species to stock, optionally with a count (Species=N)")
	f.StringVar(&opts.bed, "bed", "", "plant into an owning group with this name instead of the top level")
	f.StringArrayVar(&opts.sell, "sell", nil, "order to fulfil after the run: Species[+Decorator...]")
	f.StringVar(&opts.save, "save", "", "store a snapshot under this label")
	f.StringVar(&opts.export, "export", "", "export a save file under this key")
	f.BoolVar(&opts.overwrite, "overwrite", false, "replace an existing save file")
	return cmd
}

func (a *app) simulate(cmd *cobra.Command, opts simulateOptions) error {
	ctx := cmd.Context()
	if opts.days < 0 {
		return fmt.Errorf("--days must not be negative, got %d", opts.days)
	}
	stock, err := parseStock(opts.plants)
	if err != nil {
		return err
	}
	orders, err := parseOrders(opts.sell)
	if err != nil {
		return err
	}
	svc, release, err := a.newService(ctx)
	if err != nil {
		return err
	}
	defer release()

	var parent domain.ID
	if opts.bed != "" {
		if parent, err = svc.AddGroup(ctx, opts.bed, true, 0); err != nil {
			return err
		}
	}
	for _, s := range stock {
		for range s.count {
			if _, err := svc.AddPlant(ctx, s.species, parent); err != nil {
				return err
			}
		}
	}

	out := a.stdout
	reports, err := svc.Run(ctx, opts.days)
	for _, r := range reports {
		printReport(out, r)
	}
	if err != nil {
		return err
	}
	for _, order := range orders {
		sale, err := svc.Fulfill(ctx, order)
		if err != nil {
			return fmt.Errorf("fulfil order: %w", err)
		}
		fmt.Fprintf(out, "sold %s for %.2f on day %d\n", sale.Item.Name(), sale.Price, sale.Day)
	}
	fmt.Fprintf(out, "day %d: inventory value %.2f\n", svc.Day(), svc.Value())

	if opts.save != "" {
		if err := svc.Save(ctx, opts.save); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
		fmt.Fprintf(out, "saved snapshot %q\n", opts.save)
	}
	if opts.export != "" {
		archive, err := a.archive(ctx, opts.overwrite)
		if err != nil {
			return err
		}
		m, err := svc.Snapshot(ctx)
		if err != nil {
			return err
		}
		info, err := archive.Export(ctx, opts.export, m)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "exported %s (%d bytes)\n", info.Key, info.Size)
	}
	return a.writeMetrics(cmd.ErrOrStderr())
}

type stockEntry struct {
	species string
	count   int
}

func parseStock(values []string) ([]stockEntry, error) {
	out := make([]stockEntry, 0, len(values))
	for _, v := range values {
		name, countText, hasCount := strings.Cut(v, "=")
		name = strings.TrimSpace(name)
		count := 1
		if hasCount {
			n, err := strconv.Atoi(strings.TrimSpace(countText))
			if err != nil || n < 1 {
				return nil, fmt.Errorf("--plant %q: count must be a positive integer", v)
			}
			count = n
		}
		if _, ok := domain.LookupSpecies(name); !ok {
			return nil, fmt.Errorf("--plant %q: unknown species", v)
		}
		out = append(out, stockEntry{species: name, count: count})
	}
	return out, nil
}

func parseOrders(values []string) ([]core.Specification, error) {
	out := make([]core.Specification, 0, len(values))
	for _, v := range values {
		parts := strings.Split(v, "+")
		b := core.NewSpecificationBuilder().Species(strings.TrimSpace(parts[0]))
		for _, d := range parts[1:] {
			b.Decorate(strings.TrimSpace(d))
		}
		spec, err := b.Build()
		if err != nil {
			return nil, fmt.Errorf("--sell %q: %w", v, err)
		}
		out = append(out, spec)
	}
	return out, nil
}

func printReport(w io.Writer, r core.DayReport) {
	warnings := 0
	for _, v := range r.Violations {
		if v.Severity == domain.SeverityWarn {
			warnings++
		}
	}
	fmt.Fprintf(w, "day %d: value %.2f, %d commands, %d warnings\n", r.Day, r.Value, len(r.Processed), warnings)
}

func (a *app) writeMetrics(w io.Writer) error {
	switch {
	case a.prom != nil:
		families, err := a.prom.Registry().Gather()
		if err != nil {
			return err
		}
		for _, mf := range families {
			if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
				return err
			}
		}
	case a.expvar != nil:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(a.expvar.Snapshot())
	}
	return nil
}
