package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"nurserycore/pkg/domain"
)

type restoreOptions struct {
	fromSave bool
	list     bool
	days     int
}

func newRestoreCmd(a *app) *cobra.Command {
	opts := restoreOptions{}
	cmd := &cobra.Command{
		Use:   "restore [label]",
		Short: "Restore a snapshot or save file and show the inventory",
		Example: `  nursery restore week1
  nursery restore --from-save saves/orchids --days 3
  nursery restore --list`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.list {
				return a.listSaved(cmd, opts)
			}
			if len(args) == 0 {
				return errors.New("restore needs a label, or --list")
			}
			return a.restore(cmd, args[0], opts)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&opts.fromSave, "from-save", false, "read a save file from blob storage instead of the snapshot store")
	f.BoolVar(&opts.list, "list", false, "list stored snapshots (or save files with --from-save)")
	f.IntVar(&opts.days, "days", 0, "days to simulate after restoring")
	return cmd
}

func (a *app) restore(cmd *cobra.Command, label string, opts restoreOptions) error {
	ctx := cmd.Context()
	svc, release, err := a.newService(ctx)
	if err != nil {
		return err
	}
	defer release()

	if opts.fromSave {
		archive, err := a.archive(ctx, false)
		if err != nil {
			return err
		}
		m, err := archive.Import(ctx, label)
		if err != nil {
			return err
		}
		if err := svc.Restore(ctx, m); err != nil {
			return err
		}
	} else if err := svc.Load(ctx, label); err != nil {
		return err
	}

	out := a.stdout
	fmt.Fprintf(out, "restored %q at day %d\n", label, svc.Day())
	reports, err := svc.Run(ctx, opts.days)
	for _, r := range reports {
		printReport(out, r)
	}
	if err != nil {
		return err
	}
	svc.View(func(inv *domain.Inventory) {
		for _, c := range inv.Components() {
			renderTree(out, c, 0)
		}
	})
	fmt.Fprintf(out, "day %d: inventory value %.2f\n", svc.Day(), svc.Value())
	return nil
}

func (a *app) listSaved(cmd *cobra.Command, opts restoreOptions) error {
	ctx := cmd.Context()
	if opts.fromSave {
		archive, err := a.archive(ctx, false)
		if err != nil {
			return err
		}
		entries, err := archive.List(ctx, "")
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Fprintf(a.stdout, "%s\tday %d\t%d bytes\n", e.Key, e.Day, e.Size)
		}
		return nil
	}
	svc, release, err := a.newService(ctx)
	if err != nil {
		return err
	}
	defer release()
	infos, err := svc.Snapshots(ctx)
	if err != nil {
		return err
	}
	for _, info := range infos {
		fmt.Fprintf(a.stdout, "%s\tday %d\t%s\n", info.Label, info.Day, info.SavedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// renderTree prints c and its members indented by depth.
func renderTree(w io.Writer, c domain.Component, depth int) {
	indent := strings.Repeat("  ", depth)
	switch v := c.(type) {
	case *domain.Group:
		kind := "group"
		if !v.OwnsChildren() {
			kind = "view"
		}
		fmt.Fprintf(w, "%s%s [%s] %.2f\n", indent, v.Name(), kind, v.Price())
		for _, m := range v.Members() {
			renderTree(w, m, depth+1)
		}
	default:
		line := fmt.Sprintf("%s%s #%s %.2f", indent, c.Name(), c.ID(), c.Price())
		if p, ok := domain.AsPlant(c); ok {
			line += fmt.Sprintf(" %s age=%d water=%d health=%d", p.Stage(), p.Age(), p.WaterLevel(), p.Health())
		}
		fmt.Fprintln(w, line)
	}
}
