package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/moffa90/go-gt511/protocol"
)

var (
	cmdImage = &cobra.Command{
		Use:   "image",
		Short: "Capture and download a fingerprint image (8 bits per pixel)",
		Long: `image downloads the full 258x202 image of the last capture, or with --raw
captures and downloads a 160x120 raw image. The file holds bare pixels.`,
		Args: cobra.NoArgs,
		RunE: runImage,
	}
)

var imageOutFile string
var imageRaw bool

func init() {
	rootCmd.AddCommand(cmdImage)
	cmdImage.Flags().StringVarP(&imageOutFile, "output", "o", "fingerprint.raw", "Output file")
	cmdImage.Flags().BoolVarP(&imageRaw, "raw", "r", false, "Raw 160x120 image")
}

func runImage(cmd *cobra.Command, _ []string) error {
	return withScanner(cmd, func(ctx context.Context, s *session) error {
		f, err := os.Create(imageOutFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w := bufio.NewWriter(f)

		var ok bool
		width, height := protocol.ImageWidth, protocol.ImageHeight
		if imageRaw {
			width, height = protocol.RawImageWidth, protocol.RawImageHeight
			ok, err = s.fps.GetRawImage(ctx, w)
		} else {
			ok, err = s.fps.CaptureFinger(ctx, false)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("no finger captured")
			}
			ok, err = s.fps.GetImage(ctx, w)
		}
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("scanner refused the image download")
		}

		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("%dx%d image written to %s\n", width, height, imageOutFile)
		return f.Close()
	})
}
