package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	cmdOpen = &cobra.Command{
		Use:   "open",
		Short: "Negotiate the link and print the session",
		Long:  ``,
		Args:  cobra.NoArgs,
		RunE:  runOpen,
	}

	cmdLED = &cobra.Command{
		Use:       "led on|off",
		Short:     "Switch the sensor backlight",
		Long:      ``,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE:      runLED,
	}

	cmdBaud = &cobra.Command{
		Use:   "baud <rate>",
		Short: "Change the link speed of the open session",
		Long:  ``,
		Args:  cobra.ExactArgs(1),
		RunE:  runBaud,
	}
)

func init() {
	rootCmd.AddCommand(cmdOpen)
	rootCmd.AddCommand(cmdLED)
	rootCmd.AddCommand(cmdBaud)
}

func runOpen(cmd *cobra.Command, _ []string) error {
	return withScanner(cmd, func(_ context.Context, s *session) error {
		cfg := s.fps.Config()
		fmt.Printf("session %s\n", s.fps.SessionID())
		fmt.Printf("baud rate %d\n", s.fps.BaudRate())
		fmt.Printf("capacity  %d\n", cfg.Capacity)
		return nil
	})
}

func runLED(cmd *cobra.Command, args []string) error {
	var on bool
	switch args[0] {
	case "on":
		on = true
	case "off":
	default:
		return fmt.Errorf("led state must be on or off, got %q", args[0])
	}

	return withScanner(cmd, func(ctx context.Context, s *session) error {
		ok, err := s.fps.SetLED(ctx, on)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("scanner refused led %s", args[0])
		}
		fmt.Printf("led %s\n", args[0])
		return nil
	})
}

func runBaud(cmd *cobra.Command, args []string) error {
	rate, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid baud rate %q: %w", args[0], err)
	}

	return withScanner(cmd, func(ctx context.Context, s *session) error {
		ok, err := s.fps.ChangeBaudRate(ctx, rate)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("scanner refused baud rate %d", rate)
		}
		fmt.Printf("baud rate %d\n", s.fps.BaudRate())
		return nil
	})
}
