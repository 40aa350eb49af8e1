package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/araddon/dateparse"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/talkincode/toughcrm/config"
	"github.com/talkincode/toughcrm/internal/adminapi"
	"github.com/talkincode/toughcrm/internal/app"
	"github.com/talkincode/toughcrm/internal/crm"
	"github.com/talkincode/toughcrm/internal/transfer"
	"github.com/talkincode/toughcrm/internal/webserver"
)

// bootstrap loads the configuration and initializes the application.
// The returned func releases it when the command ends.
var bootstrap = func(cfgFile string) (*app.Application, func(), error) {
	cfg := config.LoadConfig(cfgFile)
	a := app.NewApplication(cfg)
	a.Init(cfg)
	return a, a.Release, nil
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	root := &cobra.Command{
		Use:           "toughcrm",
		Short:         "ToughCRM customers, products and orders service",
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default toughcrm.yml)")

	withApp := func(fn func(cmd *cobra.Command, a *app.Application, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, release, err := bootstrap(cfgFile)
			if err != nil {
				return err
			}
			defer release()
			return fn(cmd, a, args)
		}
	}

	root.AddCommand(
		newServeCmd(withApp),
		newInitdbCmd(withApp),
		newJobCmd(withApp),
		newImportCmd(withApp),
		newExportCmd(withApp),
	)
	return root
}

type appRunner func(fn func(cmd *cobra.Command, a *app.Application, args []string) error) func(*cobra.Command, []string) error

func newServeCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server and the scheduled jobs",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app.Application, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := a.StartJobs(ctx); err != nil {
				return errors.Wrap(err, "start jobs")
			}
			adminapi.Init()
			ws := webserver.NewWebServer(a.Config(), a)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(ws.Start)
			g.Go(func() error {
				<-gctx.Done()
				zap.S().Info("shutting down web server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return ws.Shutdown(shutdownCtx)
			})
			return g.Wait()
		}),
	}
}

func newInitdbCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "initdb",
		Short: "Drop and recreate every CRM table",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app.Application, _ []string) error {
			a.InitDb()
			fmt.Fprintln(cmd.OutOrStdout(), "database initialized")
			return nil
		}),
	}
}

func newJobCmd(withApp appRunner) *cobra.Command {
	jobCmd := &cobra.Command{
		Use:   "job",
		Short: "Inspect and run maintenance jobs",
	}
	jobCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the registered jobs",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app.Application, _ []string) error {
			for _, name := range a.Scheduler().Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		}),
	})
	jobCmd.AddCommand(&cobra.Command{
		Use:   "run <name>",
		Short: "Run a job once and print its outcome",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app.Application, args []string) error {
			msg, err := a.RunJob(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		}),
	})
	return jobCmd
}

func newImportCmd(withApp appRunner) *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import records from files",
	}
	importCmd.AddCommand(&cobra.Command{
		Use:   "customers <file.csv>",
		Short: "Create customers from a CSV file with a name,email,phone header",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app.Application, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			inputs, err := transfer.ReadCustomers(f)
			if err != nil {
				return err
			}
			result := a.CRM().BulkCreateCustomers(cmd.Context(), inputs)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created %d customers, %d errors\n", len(result.Customers), len(result.Errors))
			for _, e := range result.Errors {
				fmt.Fprintln(out, e)
			}
			return nil
		}),
	})
	return importCmd
}

func newExportCmd(withApp appRunner) *cobra.Command {
	var (
		format string
		output string
		since  string
	)
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export records to files",
	}
	ordersCmd := &cobra.Command{
		Use:   "orders",
		Short: "Export orders as csv or xlsx",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app.Application, _ []string) error {
			format = strings.ToLower(format)
			if format != transfer.FormatCSV && format != transfer.FormatXLSX {
				return errors.Errorf("unsupported format %q", format)
			}
			var filter crm.OrderFilter
			if since != "" {
				t, err := dateparse.ParseLocal(since)
				if err != nil {
					return errors.Wrapf(err, "invalid --since %q", since)
				}
				filter.OrderDateGte = &t
			}
			orders, err := a.CRM().Repo().ListOrders(cmd.Context(), filter)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			} else if format == transfer.FormatXLSX {
				return errors.New("xlsx export needs an output file (-o)")
			}
			return transfer.WriteOrders(w, format, orders)
		}),
	}
	ordersCmd.Flags().StringVar(&format, "format", transfer.FormatCSV, "export format: csv|xlsx")
	ordersCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	ordersCmd.Flags().StringVar(&since, "since", "", "only orders on or after this date")
	exportCmd.AddCommand(ordersCmd)
	return exportCmd
}
