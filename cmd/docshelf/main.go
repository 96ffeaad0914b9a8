package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sha1n/docshelf/internal/app"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	// Version is injected at build time
	Version = "dev"
	// Build is injected at build time
	Build = "unknown"
	// ProgramName is injected at build time
	ProgramName = "docshelf"
)

func main() {
	runMain(os.Args, os.Exit)
}

func runMain(args []string, exit func(int)) {
	if err := Execute(Version, Build, ProgramName, args[1:]); err != nil {
		exit(1)
	}
}

// Execute is the entry point for the CLI, extracted for testing
func Execute(version, build, programName string, args []string) error {
	rootCmd := &cobra.Command{
		Use:     programName,
		Short:   "Read-only HTML and PDF shelf",
		Long:    "Browse a folder of HTML and PDF documents in the browser, search it, expose it over MCP, or export it as a static site.",
		Version: version,
		// Without a subcommand, serve
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Flags(), version)
		},
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate(`{{.Version}}
`)
	app.RegisterServeFlags(rootCmd.Flags())

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the viewer, the document API and MCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Flags(), version)
		},
	}
	app.RegisterServeFlags(serveCmd.Flags())

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write a static copy of the viewer and the content folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.RunExportWithDeps(ctx, app.DefaultExportParams(), cmd.Flags(), version)
		},
	}
	app.RegisterExportFlags(exportCmd.Flags())

	rootCmd.AddCommand(serveCmd, exportCmd)
	rootCmd.SetArgs(args)

	return rootCmd.Execute()
}

func serve(flags *pflag.FlagSet, version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.RunWithDeps(ctx, app.DefaultRunParams(), flags, version)
}
