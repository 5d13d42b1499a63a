package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cheggaaa/pb"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fixel/internal"
)

var (
	widthFlag       int
	heightFlag      int
	sizeFlag        string
	genFormatFlag   string
	borderFlag      int
	borderColorFlag string
	fillColorFlag   string
	outputDirFlag   string
	atomicFlag      bool
	progressFlag    bool
	forceFlag       bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [output]",
	Short: "Generate one fixture image of an exact byte size",
	Long: `Generate a fixture image that decodes in the requested format and is
exactly the requested number of bytes on disk. The encoded image is padded
with trailing zero bytes to hit the target, so multi-gigabyte fixtures cost
no more memory than small ones.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := internal.LoadConfig()
		if err != nil {
			return err
		}

		req, err := conf.Request()
		if err != nil {
			return err
		}
		if widthFlag != 0 {
			req.Width = widthFlag
		}
		if heightFlag != 0 {
			req.Height = heightFlag
		}
		if cmd.Flags().Changed("border") {
			req.Border = borderFlag
		}
		if borderColorFlag != "" {
			c, err := internal.ParseColor(borderColorFlag)
			if err != nil {
				return err
			}
			req.BorderColor = c
		}
		if fillColorFlag != "" {
			c, err := internal.ParseColor(fillColorFlag)
			if err != nil {
				return err
			}
			req.FillColor = c
		}

		if sizeFlag == "" {
			return fmt.Errorf("missing --size (e.g. --size 1MB)")
		}
		size, err := humanize.ParseBytes(sizeFlag)
		if err != nil {
			return fmt.Errorf("invalid --size %q: %w", sizeFlag, err)
		}
		req.TargetSize = int64(size)

		output := ""
		if len(args) == 1 {
			output = args[0]
		}

		// Format precedence: --format flag, then the output extension,
		// then the config default already in req.
		switch {
		case genFormatFlag != "":
			f, err := internal.ParseFormat(genFormatFlag)
			if err != nil {
				return err
			}
			req.Format = f
		case output != "" && filepath.Ext(output) != "":
			f, err := internal.ParseFormat(filepath.Ext(output))
			if err != nil {
				return err
			}
			req.Format = f
		}

		outputDir := conf.OutputDir
		if outputDirFlag != "" {
			outputDir = outputDirFlag
		}
		path := resolveOutputPath(output, outputDir, req, sizeFlag)
		if !forceFlag {
			path = internal.UniquePath(path)
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
		}

		res, err := writeFixture(path, req, conf.Atomic || atomicFlag, progressFlag)
		if err != nil {
			return err
		}

		ok := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s %s  %dx%d %s  quality %d  %s image + %s padding = %s\n",
			ok("ok"), path, req.Width, req.Height, req.Format, res.Quality,
			humanize.IBytes(uint64(res.BaseSize)), humanize.IBytes(uint64(res.Padding)),
			humanize.Bytes(uint64(req.TargetSize)))
		return nil
	},
}

// resolveOutputPath falls back to <outputDir>/fixture_<W>x<H>_<size>.<ext>
// when no output argument was given, and appends the format extension when
// the argument has none.
func resolveOutputPath(output, outputDir string, req internal.Request, sizeSpec string) string {
	if output == "" {
		name := fmt.Sprintf("fixture_%dx%d_%s.%s",
			req.Width, req.Height, strings.ReplaceAll(strings.TrimSpace(sizeSpec), " ", ""),
			req.Format.Ext())
		return filepath.Join(outputDir, name)
	}
	if filepath.Ext(output) == "" {
		return output + "." + req.Format.Ext()
	}
	return output
}

// writeFixture streams one fixture to path, optionally through a temporary
// sibling plus rename, optionally wrapping the sink in a byte progress bar.
// A non-atomic failure leaves the partial file in place for inspection.
func writeFixture(path string, req internal.Request, atomic, progress bool) (*internal.Result, error) {
	generate := func(w io.Writer) (*internal.Result, error) {
		if progress {
			bar := pb.New64(req.TargetSize).SetUnits(pb.U_BYTES)
			bar.Start()
			defer bar.Finish()
			w = bar.NewProxyWriter(w)
		}
		return internal.Generate(req, w)
	}

	if atomic {
		var res *internal.Result
		err := internal.WriteFileAtomic(path, func(w io.Writer) error {
			var innerErr error
			res, innerErr = generate(w)
			return innerErr
		})
		if err != nil {
			return nil, err
		}
		return res, nil
	}

	out, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	res, err := generate(out)
	if err != nil {
		out.Close()
		return nil, err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return nil, err
	}
	return res, out.Close()
}

func init() {
	generateCmd.Flags().IntVar(&widthFlag, "width", 0, "Image width in pixels")
	generateCmd.Flags().IntVar(&heightFlag, "height", 0, "Image height in pixels")
	generateCmd.Flags().StringVar(&sizeFlag, "size", "", "Exact output size, bytes or humanized (1MB, 64KiB)")
	generateCmd.Flags().StringVar(&genFormatFlag, "format", "", "Output format: "+strings.Join(internal.FormatNames(), ", "))
	generateCmd.Flags().IntVar(&borderFlag, "border", 0, "Border width in pixels")
	generateCmd.Flags().StringVar(&borderColorFlag, "border-color", "", "Border color as RRGGBB hex")
	generateCmd.Flags().StringVar(&fillColorFlag, "fill-color", "", "Fill color as RRGGBB hex")
	generateCmd.Flags().StringVar(&outputDirFlag, "output-dir", "", "Directory for the default output path")
	generateCmd.Flags().BoolVar(&atomicFlag, "atomic", false, "Write via temp file and rename")
	generateCmd.Flags().BoolVar(&progressFlag, "progress", false, "Show a byte progress bar while writing")
	generateCmd.Flags().BoolVar(&forceFlag, "force", false, "Overwrite an existing output file")

	rootCmd.AddCommand(generateCmd)
}
