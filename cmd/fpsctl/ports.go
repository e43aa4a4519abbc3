package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/moffa90/go-gt511/serialport"
)

var (
	cmdPorts = &cobra.Command{
		Use:   "ports",
		Short: "List serial ports",
		Long:  ``,
		Args:  cobra.NoArgs,
		RunE:  runPorts,
	}
)

func init() {
	rootCmd.AddCommand(cmdPorts)
}

func runPorts(_ *cobra.Command, _ []string) error {
	ports, err := serialport.ListPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("no serial ports found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PORT\tVID:PID\tSERIAL\tPRODUCT")
	for _, p := range ports {
		id := "-"
		if p.USB {
			id = p.VID + ":" + p.PID
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, id, p.SerialNumber, p.Product)
	}
	return w.Flush()
}
