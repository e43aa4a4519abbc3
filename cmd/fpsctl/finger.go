package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/moffa90/go-gt511/scanner"
)

var (
	cmdPress = &cobra.Command{
		Use:   "press",
		Short: "Report whether a finger is on the sensor",
		Long:  ``,
		Args:  cobra.NoArgs,
		RunE:  runPress,
	}

	cmdCapture = &cobra.Command{
		Use:   "capture",
		Short: "Capture the finger on the sensor",
		Long:  ``,
		Args:  cobra.NoArgs,
		RunE:  runCapture,
	}

	cmdIdentify = &cobra.Command{
		Use:   "identify",
		Short: "Capture a finger and search the whole database",
		Long:  ``,
		Args:  cobra.NoArgs,
		RunE:  runIdentify,
	}

	cmdVerify = &cobra.Command{
		Use:   "verify <id>",
		Short: "Capture a finger and compare it with one id",
		Long:  ``,
		Args:  cobra.ExactArgs(1),
		RunE:  runVerify,
	}

	cmdWatch = &cobra.Command{
		Use:   "watch",
		Short: "Identify every finger placed on the sensor until interrupted",
		Long:  ``,
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}
)

var captureHighQuality bool
var fingerTimeout time.Duration
var watchInterval time.Duration

func init() {
	rootCmd.AddCommand(cmdPress)
	rootCmd.AddCommand(cmdCapture)
	rootCmd.AddCommand(cmdIdentify)
	rootCmd.AddCommand(cmdVerify)
	rootCmd.AddCommand(cmdWatch)
	cmdCapture.Flags().BoolVarP(&captureHighQuality, "hq", "q", false, "High quality capture (slower)")
	for _, c := range []*cobra.Command{cmdIdentify, cmdVerify} {
		c.Flags().DurationVarP(&fingerTimeout, "timeout", "t", 10*time.Second, "How long to wait for a finger")
	}
	cmdWatch.Flags().DurationVarP(&watchInterval, "interval", "i", 200*time.Millisecond, "Finger poll interval")
}

func runPress(cmd *cobra.Command, _ []string) error {
	return withScanner(cmd, func(ctx context.Context, s *session) error {
		pressed, err := s.fps.IsPressFinger(ctx)
		if err != nil {
			return err
		}
		if pressed {
			fmt.Println("finger pressed")
		} else {
			fmt.Println("no finger")
		}
		return nil
	})
}

func runCapture(cmd *cobra.Command, _ []string) error {
	return withScanner(cmd, func(ctx context.Context, s *session) error {
		ok, err := s.fps.CaptureFinger(ctx, captureHighQuality)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("no finger captured")
		}
		fmt.Println("finger captured")
		return nil
	})
}

func runIdentify(cmd *cobra.Command, _ []string) error {
	return withScanner(cmd, func(ctx context.Context, s *session) error {
		if err := waitFinger(ctx, s, true, fingerTimeout); err != nil {
			return err
		}
		id, found, err := identify(ctx, s)
		if err != nil {
			return err
		}
		if !found {
			fmt.Println("not found")
			return nil
		}
		fmt.Printf("id %d\n", id)
		return nil
	})
}

func runVerify(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	return withScanner(cmd, func(ctx context.Context, s *session) error {
		if err := waitFinger(ctx, s, true, fingerTimeout); err != nil {
			return err
		}
		ok, err := s.fps.CaptureFinger(ctx, false)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("no finger captured")
		}

		result, err := s.fps.Verify1_1(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("id %d: %s\n", id, result)
		if result != scanner.VerifyOK {
			return fmt.Errorf("verification failed: %s", result)
		}
		return nil
	})
}

func runWatch(cmd *cobra.Command, _ []string) error {
	return withScanner(cmd, func(ctx context.Context, s *session) error {
		s.log.Info("watching sensor", zap.Duration("interval", watchInterval))

		for {
			if err := waitFinger(ctx, s, true, 0); err != nil {
				return ignoreCancel(err)
			}

			id, found, err := identify(ctx, s)
			if err != nil {
				return ignoreCancel(err)
			}
			if found {
				fmt.Printf("%s id %d\n", time.Now().Format(time.TimeOnly), id)
			} else {
				fmt.Printf("%s not found\n", time.Now().Format(time.TimeOnly))
			}

			if err := waitFinger(ctx, s, false, 0); err != nil {
				return ignoreCancel(err)
			}
		}
	})
}

// identify captures the finger and searches the database.
func identify(ctx context.Context, s *session) (int, bool, error) {
	ok, err := s.fps.CaptureFinger(ctx, false)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, errors.New("no finger captured")
	}

	id, err := s.fps.Identify1_N(ctx)
	if err != nil {
		return 0, false, err
	}
	return id, id < s.fps.Config().Capacity, nil
}

// waitFinger polls the sensor until a finger is present (or absent).
// A zero timeout waits until ctx is done. With a simulated scanner the
// finger is placed or lifted on the user's behalf.
func waitFinger(ctx context.Context, s *session, pressed bool, timeout time.Duration) error {
	if s.sim != nil {
		if pressed {
			s.sim.PressFinger(s.cfg.Simulator.Finger)
		} else {
			s.sim.LiftFinger()
		}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if pressed {
		fmt.Println("place finger on the sensor")
	} else {
		fmt.Println("remove finger")
	}

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		got, err := s.fps.IsPressFinger(ctx)
		if err != nil {
			return err
		}
		if got == pressed {
			return nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return errors.New("timed out waiting for finger")
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
