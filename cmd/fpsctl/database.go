package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	cmdCount = &cobra.Command{
		Use:   "count",
		Short: "Print the number of enrolled fingerprints",
		Long:  ``,
		Args:  cobra.NoArgs,
		RunE:  runCount,
	}

	cmdCheck = &cobra.Command{
		Use:   "check <id>",
		Short: "Check whether an id is enrolled",
		Long:  ``,
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}

	cmdDelete = &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete one enrolled id, or all of them with --all",
		Long:  ``,
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDelete,
	}
)

var deleteAll bool

func init() {
	rootCmd.AddCommand(cmdCount)
	rootCmd.AddCommand(cmdCheck)
	rootCmd.AddCommand(cmdDelete)
	cmdDelete.Flags().BoolVarP(&deleteAll, "all", "a", false, "Delete the whole database")
}

func runCount(cmd *cobra.Command, _ []string) error {
	return withScanner(cmd, func(ctx context.Context, s *session) error {
		n, err := s.fps.GetEnrollCount(ctx)
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	})
}

func runCheck(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	return withScanner(cmd, func(ctx context.Context, s *session) error {
		enrolled, err := s.fps.CheckEnrolled(ctx, id)
		if err != nil {
			return err
		}
		if enrolled {
			fmt.Printf("id %d enrolled\n", id)
		} else {
			fmt.Printf("id %d free\n", id)
		}
		return nil
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	if deleteAll == (len(args) == 1) {
		return fmt.Errorf("give either an id or --all")
	}

	var id uint16
	if !deleteAll {
		var err error
		if id, err = parseID(args[0]); err != nil {
			return err
		}
	}

	return withScanner(cmd, func(ctx context.Context, s *session) error {
		if deleteAll {
			ok, err := s.fps.DeleteAll(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("scanner refused to clear the database")
			}
			fmt.Println("database cleared")
			return nil
		}

		ok, err := s.fps.DeleteID(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("id %d is not enrolled", id)
		}
		fmt.Printf("id %d deleted\n", id)
		return nil
	})
}
