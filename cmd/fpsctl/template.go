package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/moffa90/go-gt511/hexdump"
	"github.com/moffa90/go-gt511/scanner"
)

var (
	cmdTemplate = &cobra.Command{
		Use:   "template",
		Short: "Download or upload fingerprint templates",
		Long:  ``,
	}

	cmdTemplateGet = &cobra.Command{
		Use:   "get <id>",
		Short: "Download the template stored at id as a hex dump",
		Long:  ``,
		Args:  cobra.ExactArgs(1),
		RunE:  runTemplateGet,
	}

	cmdTemplateSet = &cobra.Command{
		Use:   "set <id> <file>",
		Short: "Upload a template (hex dump or raw) to id",
		Long:  ``,
		Args:  cobra.ExactArgs(2),
		RunE:  runTemplateSet,
	}
)

var templateOutFile string
var templateNoDupCheck bool

func init() {
	rootCmd.AddCommand(cmdTemplate)
	cmdTemplate.AddCommand(cmdTemplateGet)
	cmdTemplate.AddCommand(cmdTemplateSet)
	cmdTemplateGet.Flags().StringVarP(&templateOutFile, "output", "o", "", "Output file (default stdout)")
	cmdTemplateSet.Flags().BoolVarP(&templateNoDupCheck, "no-dup-check", "n", false, "Skip the duplicate check")
}

func runTemplateGet(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	return withScanner(cmd, func(ctx context.Context, s *session) error {
		tmpl, result, err := s.fps.GetTemplate(ctx, id)
		if err != nil {
			return err
		}
		if result != scanner.TemplateOK {
			return fmt.Errorf("get template %d: %s", id, result)
		}

		comment := fmt.Sprintf("template %d, session %s", id, s.fps.SessionID())
		if templateOutFile == "" {
			return hexdump.Write(os.Stdout, tmpl, comment)
		}

		f, err := os.Create(templateOutFile)
		if err != nil {
			return err
		}
		if err := hexdump.Write(f, tmpl, comment); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	})
}

func runTemplateSet(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	tmpl, err := hexdump.Load(args[1])
	if err != nil {
		return err
	}

	return withScanner(cmd, func(ctx context.Context, s *session) error {
		result, err := s.fps.SetTemplate(ctx, tmpl, id, !templateNoDupCheck)
		if err != nil {
			return err
		}
		if result != scanner.SetTemplateOK {
			return fmt.Errorf("set template %d: %s", id, result)
		}
		fmt.Printf("template stored at id %d\n", id)
		return nil
	})
}
