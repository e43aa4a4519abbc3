package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "fpsctl",
		Short: "Control a GT-511C3 family fingerprint scanner.",
		Long: `fpsctl drives a GT-511C3, GT-521F32 or GT-521F52 fingerprint scanner
over a serial port, or an in-process simulated scanner with --simulate.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
)

var rootConfig string
var rootPort string
var rootBaud int
var rootSimulate bool
var rootDebug bool
var rootMetrics string
var rootProgress bool

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootConfig, "config", "c", "", "Configuration file (default fpsctl.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootPort, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&rootBaud, "baud", "b", 0, "Baud rate to negotiate")
	rootCmd.PersistentFlags().BoolVarP(&rootSimulate, "simulate", "s", false, "Use a simulated scanner")
	rootCmd.PersistentFlags().BoolVarP(&rootDebug, "debug", "d", false, "Debug logging")
	rootCmd.PersistentFlags().StringVarP(&rootMetrics, "metrics", "m", "", "Prom metrics address")
	rootCmd.PersistentFlags().BoolVarP(&rootProgress, "progress", "P", false, "Show bulk transfer progress")
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
