package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/vision-client/pkg/apiclient"
)

func inferCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "infer",
		Short: "Run object detection on images",
	}
	cmd.AddCommand(inferImageCmd(e), inferBatchCmd(e))
	return cmd
}

func inferImageCmd(e *env) *cobra.Command {
	var (
		model      string
		confidence float64
		iou        float64
		imgSize    int
	)

	cmd := &cobra.Command{
		Use:   "image FILE",
		Short: "Detect objects in one image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := apiclient.OpenBlob(args[0])
			if err != nil {
				return err
			}

			var opts apiclient.InferenceOptions
			flags := cmd.Flags()
			if flags.Changed("model") {
				opts.ModelName = apiclient.String(model)
			}
			if flags.Changed("confidence") {
				opts.Confidence = apiclient.Float64(confidence)
			}
			if flags.Changed("iou") {
				opts.IoUThreshold = apiclient.Float64(iou)
			}
			if flags.Changed("img-size") {
				opts.ImgSize = apiclient.Int(imgSize)
			}

			resp, err := e.client.InferImage(cmd.Context(), blob, opts)
			if err != nil {
				return err
			}
			return e.printResponse(resp)
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "Model name (backend default when unset)")
	cmd.Flags().Float64Var(&confidence, "confidence", 0, "Confidence threshold")
	cmd.Flags().Float64Var(&iou, "iou", 0, "IoU threshold")
	cmd.Flags().IntVar(&imgSize, "img-size", 0, "Inference image size")
	return cmd
}

func inferBatchCmd(e *env) *cobra.Command {
	var (
		model      string
		confidence float64
	)

	cmd := &cobra.Command{
		Use:   "batch FILE...",
		Short: "Detect objects in several images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blobs := make([]apiclient.Blob, 0, len(args))
			for _, path := range args {
				blob, err := apiclient.OpenBlob(path)
				if err != nil {
					closeBlobs(blobs)
					return err
				}
				blobs = append(blobs, blob)
			}

			var opts apiclient.BatchInferenceOptions
			if cmd.Flags().Changed("model") {
				opts.ModelName = apiclient.String(model)
			}
			if cmd.Flags().Changed("confidence") {
				opts.Confidence = apiclient.Float64(confidence)
			}

			resp, err := e.client.InferBatch(cmd.Context(), blobs, opts)
			if err != nil {
				return err
			}
			return e.printResponse(resp)
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "Model name (backend default when unset)")
	cmd.Flags().Float64Var(&confidence, "confidence", 0, "Confidence threshold")
	return cmd
}

// closeBlobs releases blobs opened before a later one failed to open.
func closeBlobs(blobs []apiclient.Blob) {
	for _, b := range blobs {
		if c, ok := b.Reader.(io.Closer); ok {
			_ = c.Close()
		}
	}
}
