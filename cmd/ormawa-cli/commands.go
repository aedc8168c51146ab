package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/noah-isme/ormawa-api/internal/models"
	"github.com/noah-isme/ormawa-api/pkg/export"
)

func mediaCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "media", Short: "Media library maintenance"}
	cmd.AddCommand(mediaPruneCmd())
	return cmd
}

func mediaPruneCmd() *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete pending uploads that never finished",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				result, err := a.reconciler.RunOnce(ctx, olderThan)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(result)
				}
				fmt.Printf("scanned %d pending uploads, pruned %d\n", result.Scanned, result.Enqueued)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "minimum age of a pending upload")
	return cmd
}

func workItemsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "workitems", Aliases: []string{"wi"}, Short: "Programs and prokers"}
	cmd.AddCommand(workItemsListCmd(), workItemsExportCmd())
	return cmd
}

func workItemsListCmd() *cobra.Command {
	var (
		kind     string
		status   string
		division int64
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List work items with their progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				filter := models.WorkItemFilter{Kind: models.WorkKind(kind), Status: models.WorkStatus(status), PageSize: 100}
				if division > 0 {
					filter.DivisionID = &division
				}
				items, page, err := a.workItems.List(ctx, filter, a.actor)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Kind", "Title", "Status", "Start", "Division", "PIC", "Progress"})
				for _, it := range items {
					tw.AppendRow(table.Row{it.ID, it.Kind, it.Title, it.Status, it.StartDate.Format("2006-01-02"), it.DivisionID, it.PICUserID, strconv.Itoa(it.Progress) + "%"})
				}
				tw.AppendFooter(table.Row{"", "", "", "", "", "", "total", page.TotalCount})
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "program or proker")
	cmd.Flags().StringVar(&status, "status", "", "status filter")
	cmd.Flags().Int64Var(&division, "division", 0, "division filter")
	return cmd
}

func workItemsExportCmd() *cobra.Command {
	var (
		kind   string
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a CSV or PDF report",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				file, err := a.workItems.Export(ctx, models.WorkKind(kind), f, models.WorkItemFilter{}, a.actor)
				if err != nil {
					return err
				}
				if out == "" {
					out = file.Filename
				}
				if err := os.WriteFile(out, file.Body, 0o644); err != nil {
					return err
				}
				fmt.Printf("wrote %s (%d bytes)\n", out, len(file.Body))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "proker", "program or proker")
	cmd.Flags().StringVar(&format, "format", "csv", "csv or pdf")
	cmd.Flags().StringVar(&out, "out", "", "output path (defaults to the report name)")
	return cmd
}

func cmsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cms", Short: "Public site content"}
	cmd.AddCommand(cmsGetCmd(), cmsSectionCmd())
	return cmd
}

func cmsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <section> <key>",
		Short: "Print the effective value of a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				entry, err := a.siteConfig.GetEntry(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(entry)
				}
				fmt.Println(entry.Value)
				return nil
			})
		},
	}
}

func cmsSectionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "section <section>",
		Short: "Show every key of a section with its source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				section, err := a.siteConfig.GetSection(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(section)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Key", "Type", "Source", "Value"})
				for _, e := range section.Entries {
					source := "db"
					if e.IsDefault {
						source = "default"
					}
					tw.AppendRow(table.Row{e.Key, e.Type, source, truncate(e.Value, 60)})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
