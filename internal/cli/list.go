package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"jobtracker-engine/internal/query"
	"jobtracker-engine/internal/session"
	"jobtracker-engine/internal/tracker"
)

type listOptions struct {
	query.Criteria
	Page     int
	PageSize int
	Owner    string
}

func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of applications",
		Long: `Print one page of applications as a table, ordered by status.

With --owner and a remote backend configured, the owner's records are read
from the remote store; otherwise the local sample records are shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), rootOpts, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Search, "q", "", "search company, role, work type and notes")
	cmd.Flags().StringVar(&opts.Status, "status", query.AllStatuses, "status filter")
	cmd.Flags().StringVar(&opts.WorkType, "work-type", query.AllWorkTypes, "work type filter")
	cmd.Flags().IntVar(&opts.Page, "page", 1, "page number (1-based)")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 0, "page size (default from config)")
	cmd.Flags().StringVar(&opts.Owner, "owner", "", "remote owner id to list")

	return cmd
}

func runList(ctx context.Context, rootOpts *RootOptions, opts *listOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := prepare(rootOpts.DataDir)
	if err != nil {
		return err
	}
	cfg, vr, err := rt.load()
	if err != nil {
		return WrapExitError(ExitCommandError, "config", err)
	}
	if !vr.OK() {
		return NewExitError(ExitFailure, fmt.Sprintf("invalid config (%d errors); run 'tracker config validate'", len(vr.Errors)))
	}

	topts := tracker.Options{SeedSamples: cfg.App.SeedSamples, PageSize: cfg.App.PageSize}
	if opts.Owner != "" {
		ad, closeRemote := openRemote(cfg)
		defer func() { _ = closeRemote() }()
		if ad == nil {
			return NewExitError(ExitCommandError, "--owner needs a remote backend")
		}
		topts.Adapter = ad
		topts.Session = session.NewStatic(&session.User{ID: opts.Owner})
	}
	app := tracker.New(topts)
	if err := app.Start(ctx); err != nil {
		return WrapExitError(ExitCommandError, "load records", err)
	}

	size := opts.PageSize
	if size <= 0 {
		size = cfg.App.PageSize
	}
	return renderPage(out, app.Query(opts.Criteria, opts.Page, size))
}

func renderPage(out io.Writer, p query.Page) error {
	if p.Total == 0 {
		_, err := fmt.Fprintln(out, "No applications match.")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOMPANY\tROLE\tSTATUS\tWORK TYPE\tCITY\tAPPLIED")
	for _, r := range p.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Company, r.Role, r.Status, r.WorkType, r.City, r.AppliedDate)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "Page %d of %d (%d applications)\n", p.Page, p.TotalPages, p.Total)
	return err
}
