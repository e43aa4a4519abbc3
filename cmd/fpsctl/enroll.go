package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/moffa90/go-gt511/scanner"
)

var (
	cmdEnroll = &cobra.Command{
		Use:   "enroll <id>",
		Short: "Enroll a finger at id with three captures",
		Long: `enroll starts an enrollment at id and takes three high quality captures
of the same finger, asking for the finger to be lifted between them.`,
		Args: cobra.ExactArgs(1),
		RunE: runEnroll,
	}
)

var enrollTimeout time.Duration

func init() {
	rootCmd.AddCommand(cmdEnroll)
	cmdEnroll.Flags().DurationVarP(&enrollTimeout, "timeout", "t", 10*time.Second, "How long to wait for each finger placement")
}

func runEnroll(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	return withScanner(cmd, func(ctx context.Context, s *session) error {
		start, err := s.fps.EnrollStart(ctx, id)
		if err != nil {
			return err
		}
		if start != scanner.EnrollStartOK {
			return fmt.Errorf("cannot enroll id %d: %s", id, start)
		}

		steps := []func(context.Context) (scanner.EnrollResult, error){
			s.fps.Enroll1,
			s.fps.Enroll2,
			s.fps.Enroll3,
		}
		for i, step := range steps {
			if err := waitFinger(ctx, s, true, enrollTimeout); err != nil {
				return err
			}
			ok, err := s.fps.CaptureFinger(ctx, true)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("no finger captured")
			}

			result, err := step(ctx)
			if err != nil {
				return err
			}
			if result != scanner.EnrollOK {
				return fmt.Errorf("enroll step %d: %s", i+1, result)
			}
			fmt.Printf("capture %d/%d ok\n", i+1, len(steps))

			if i < len(steps)-1 {
				if err := waitFinger(ctx, s, false, enrollTimeout); err != nil {
					return err
				}
			}
		}

		fmt.Printf("id %d enrolled\n", id)
		return nil
	})
}
