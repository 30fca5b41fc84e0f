package main

import (
	"fmt"

	"github.com/spf13/cobra"

	iiasa "github.com/Renato-Rodrigues/ecemf-mc"
	"github.com/Renato-Rodrigues/ecemf-mc/download"
)

func newMetaCmd(a *app) *cobra.Command {
	var defaultOnly bool
	cmd := &cobra.Command{
		Use:   "meta <file-name> <db>",
		Short: "Write the scenario properties of a database to <file-name>.xlsx",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.downloader()
			if err != nil {
				return err
			}
			if err := d.Meta(cmd.Context(), args[0], args[1], defaultOnly); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s.xlsx\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&defaultOnly, "default-only", false, "only include the default version of each scenario")
	return cmd
}

func newDataCmd(a *app) *cobra.Command {
	var req download.DataRequest
	cmd := &cobra.Command{
		Use:   "data <file-name> <db>",
		Short: "Write all variables of a model/scenario/region to <file-name>.xlsx",
		Long: `Write all variables of a model/scenario/region to <file-name>.xlsx and,
with --csv, the long-format data to <file-name>.csv.

Nothing is written when the selection holds no data.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.downloader()
			if err != nil {
				return err
			}
			req.FileName, req.DB = args[0], args[1]

			res := d.Data(cmd.Context(), req)
			switch res.Status {
			case download.StatusWritten:
				for _, f := range res.Files {
					fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", f)
				}
			case download.StatusEmpty:
				fmt.Fprintln(cmd.OutOrStdout(), "no data matches the selection, nothing written")
			case download.StatusFailed:
				return res.Err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Model, "model", "", "model name")
	cmd.Flags().StringVar(&req.Scenario, "scenario", "", "scenario name")
	cmd.Flags().StringVar(&req.Region, "region", "", "region name")
	cmd.Flags().BoolVar(&req.SaveCSV, "csv", false, "also write the long-format data to <file-name>.csv")
	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("scenario")
	_ = cmd.MarkFlagRequired("region")
	return cmd
}

func newDatabasesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "databases",
		Short: "List the databases reachable with the configured credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			clientConfig, err := a.config.ClientConfig(a.loadCredentials)
			if err != nil {
				return err
			}
			names, err := iiasa.ValidConnections(cmd.Context(), clientConfig, iiasa.WithLogger(a.logger))
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}
