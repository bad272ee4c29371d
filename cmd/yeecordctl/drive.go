package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yeecord/dashboard/internal/domain/drivesync"
	"github.com/yeecord/dashboard/internal/domain/model"
)

func newDriveCmd(opts *options) *cobra.Command {
	driveCmd := &cobra.Command{
		Use:   "drive",
		Short: "Show or change cloud backup settings",
	}
	driveCmd.AddCommand(newDriveShowCmd(opts), newDriveSetCmd(opts))
	return driveCmd
}

func newDriveShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show cloud backup settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := newClient(cmd, opts)
			if err != nil {
				return err
			}

			status, err := client.GetDrive(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Google Drive linked: %s\n", yesNo(status.GoogleDriveLinked))
			fmt.Fprintf(out, "Reward tier:         %s\n", model.TierName(status.RewardTier))
			printDrive(out, status.DriveSettings)
			return nil
		},
	}
}

func newDriveSetCmd(opts *options) *cobra.Command {
	var (
		enabled bool
		format  string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change cloud backup settings",
		Long: `Change cloud backup settings.

Only the given flags change; the rest is taken from the current settings.
Format keys: ` + formatKeys(),
		Example: `  yeecordctl drive set --enabled
  yeecordctl drive set --enabled=false
  yeecordctl drive set --format opus-zip`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("enabled") && !cmd.Flags().Changed("format") {
				return fmt.Errorf("nothing to change: use --enabled or --format")
			}

			client, logger, err := newClient(cmd, opts)
			if err != nil {
				return err
			}

			status, err := client.GetDrive(cmd.Context())
			if err != nil {
				return err
			}

			desired := status.DriveSettings
			if cmd.Flags().Changed("enabled") {
				desired.Enabled = enabled
			}
			if cmd.Flags().Changed("format") {
				f, c, known := model.ParseFormatKey(format)
				if !known {
					return fmt.Errorf("unknown format %q, expected one of: %s", format, formatKeys())
				}
				desired.Format, desired.Container = f, c
			}

			errOut := cmd.ErrOrStderr()
			reconciler := drivesync.New(status.DriveSettings, client,
				drivesync.NotifierFunc(func(d drivesync.Dialog) {
					fmt.Fprintf(errOut, "%s\n%s\n", d.Title, d.Message)
				}),
				logger,
			)

			if err := reconciler.Change(cmd.Context(), desired); err != nil {
				return err
			}
			printDrive(cmd.OutOrStdout(), reconciler.Local())
			return nil
		},
	}

	cmd.Flags().BoolVar(&enabled, "enabled", false, "upload recordings to the cloud")
	cmd.Flags().StringVar(&format, "format", "", "format key, e.g. flac-zip")
	return cmd
}

func printDrive(w io.Writer, d model.DriveSettings) {
	opt := model.OptionFor(d.Format, d.Container)
	fmt.Fprintf(w, "Upload to cloud:     %s\n", yesNo(d.Enabled))
	fmt.Fprintf(w, "Service:             %s\n", d.Service)
	fmt.Fprintf(w, "Format:              %s (%s)\n", opt.Title, opt.Value)
}

func formatKeys() string {
	keys := ""
	for i, opt := range model.FormatOptions {
		if i > 0 {
			keys += ", "
		}
		keys += opt.Value
	}
	return keys
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
