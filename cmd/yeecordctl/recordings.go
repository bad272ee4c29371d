package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/yeecord/dashboard/internal/domain/model"
	"github.com/yeecord/dashboard/internal/domain/selection"
	"github.com/yeecord/dashboard/internal/driveclient"
)

func newRecordingsCmd(opts *options) *cobra.Command {
	recordingsCmd := &cobra.Command{
		Use:     "recordings",
		Aliases: []string{"rec"},
		Short:   "List and download recordings",
	}
	recordingsCmd.AddCommand(newRecordingsListCmd(opts), newRecordingsDownloadCmd(opts))
	return recordingsCmd
}

func newRecordingsListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recent recordings, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := newClient(cmd, opts)
			if err != nil {
				return err
			}

			recs, err := client.ListRecordings(cmd.Context())
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recordings.")
				return nil
			}

			now := time.Now()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tDURATION\tSTATUS")
			for i := range recs {
				status := "available"
				if recs[i].Expired(now) {
					status = "expired"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					recs[i].ID,
					model.FormatDate(recs[i].CreatedAt),
					recs[i].FormatDuration(),
					status,
				)
			}
			return tw.Flush()
		},
	}
}

func newRecordingsDownloadCmd(opts *options) *cobra.Command {
	var (
		all     bool
		outDir  string
		stagger time.Duration
	)

	cmd := &cobra.Command{
		Use:   "download [--all | ID...]",
		Short: "Download recordings",
		Long: `Download the given recordings, or every available one with --all.
Expired and unknown recordings are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return fmt.Errorf("pass recording IDs or --all")
			}

			client, logger, err := newClient(cmd, opts)
			if err != nil {
				return err
			}

			recs, err := client.ListRecordings(cmd.Context())
			if err != nil {
				return err
			}

			ctrl := selection.NewController(recs, selection.WithStagger(stagger))
			if all {
				ctrl.ToggleAll()
			} else {
				ctrl.RestoreSet(args)
				selected := ctrl.Selected()
				for _, id := range args {
					if !selected.Has(id) {
						fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s: expired or not found\n", id)
					}
				}
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			downloader := driveclient.NewDownloader(cmd.Context(), client.DownloadClient(), client.BaseURL(), outDir, logger)
			n := ctrl.DownloadSelected(selection.TimerScheduler{}, downloader)
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to download.")
				return nil
			}

			failed := 0
			for i := 0; i < n; i++ {
				res := <-downloader.Results()
				if res.Err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "failed: %v\n", res.Err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", res.Path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d downloads failed", failed, n)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "download every available recording")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().DurationVar(&stagger, "stagger", selection.DefaultStagger, "delay step between downloads")
	return cmd
}
