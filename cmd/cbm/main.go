package main

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bodgit/cbm"
	"github.com/bodgit/cbm/container"
	"github.com/urfave/cli/v2"
)

const defaultDB = "cbm.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func parseColor(s string) (color.RGBA, error) {
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q, expected RRGGBB", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Open file, apply fn and write it back to either output or file
func modify(c *cli.Context, fn func(*container.File) error) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	logger := newLogger(c)

	file := c.Args().First()
	f, err := cbm.Open(file)
	if err != nil {
		return cli.Exit(err, 1)
	}

	if err := fn(f); err != nil {
		return cli.Exit(err, 1)
	}

	output := c.String("output")
	if output == "" {
		output = file
	}

	if err := cbm.Save(f, output); err != nil {
		return cli.Exit(err, 1)
	}
	logger.Printf("Wrote \"%s\"\n", output)

	return nil
}

func info(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	f, err := cbm.Open(c.Args().First())
	if err != nil {
		return cli.Exit(err, 1)
	}

	w := c.App.Writer
	a := f.Area()
	fmt.Fprintf(w, "Image ID: %d\n", f.ImageID)
	fmt.Fprintf(w, "Group ID: %d\n", f.GroupID)
	fmt.Fprintf(w, "Images:   %d (current %d)\n", len(f.Images), f.CurrentIndex())
	fmt.Fprintf(w, "Area:     %v (%dx%d)\n", a, f.Width(), f.Height())
	for i, m := range f.Images {
		compressed := "raw"
		if m.IsCompressed() {
			compressed = "compressed"
		}
		fmt.Fprintf(w, "%4d: %dx%d at %v, %s, %d bytes\n", i, m.Width(), m.Height(), m.Area().Min, compressed, m.Length())
	}

	return nil
}

func main() {
	app := cli.NewApp()

	app.Name = "cbm"
	app.Usage = "X-Wing Alliance CBM image container utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	outputFlag := &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "write to `FILE` instead of overwriting the input",
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"CBM_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to catalog database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "info",
			Usage:     "Show the contents of a container",
			ArgsUsage: "FILE",
			Action:    info,
		},
		{
			Name:      "extract",
			Usage:     "Extract every image from a container",
			ArgsUsage: "FILE DIRECTORY",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "format",
					Value: "png",
					Usage: "image format, either png or bmp",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				logger := newLogger(c)

				f, err := cbm.Open(c.Args().Get(0))
				if err != nil {
					return cli.Exit(err, 1)
				}

				files, err := cbm.Extract(f, c.Args().Get(1), "."+c.String("format"))
				for _, file := range files {
					logger.Printf("Wrote \"%s\"\n", file)
				}
				if err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "build",
			Usage:     "Build a container from BMP, PNG, JPEG or GIF images",
			ArgsUsage: "FILE IMAGE...",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "image-id",
					Usage: "image identifier",
				},
				&cli.IntFlag{
					Name:  "group-id",
					Usage: "group identifier",
				},
				&cli.BoolFlag{
					Name:  "compress",
					Usage: "compress the images",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				logger := newLogger(c)

				f, err := cbm.Build(c.Args().Slice()[1:], cbm.BuildOptions{
					ImageID:  c.Int("image-id"),
					GroupID:  c.Int("group-id"),
					Compress: c.Bool("compress"),
				})
				if err != nil {
					return cli.Exit(err, 1)
				}

				if err := cbm.Save(f, c.Args().First()); err != nil {
					return cli.Exit(err, 1)
				}
				logger.Printf("Wrote \"%s\" with %d images\n", c.Args().First(), len(f.Images))

				return nil
			},
		},
		{
			Name:      "compress",
			Usage:     "Compress every image in a container",
			ArgsUsage: "FILE",
			Flags:     []cli.Flag{outputFlag},
			Action: func(c *cli.Context) error {
				return modify(c, (*container.File).Compress)
			},
		},
		{
			Name:      "decompress",
			Usage:     "Decompress every image in a container",
			ArgsUsage: "FILE",
			Flags:     []cli.Flag{outputFlag},
			Action: func(c *cli.Context) error {
				return modify(c, (*container.File).Decompress)
			},
		},
		{
			Name:        "transparent",
			Usage:       "Make a color or range of colors transparent",
			Description: "Every image is quantized again and left uncompressed.",
			ArgsUsage:   "FILE",
			Flags: []cli.Flag{
				outputFlag,
				&cli.StringFlag{
					Name:     "color",
					Usage:    "color as `RRGGBB`, or the lower bound of a range",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "to",
					Usage: "upper bound of the range as `RRGGBB`",
				},
			},
			Action: func(c *cli.Context) error {
				lo, err := parseColor(c.String("color"))
				if err != nil {
					return cli.Exit(err, 1)
				}
				hi := lo
				if c.IsSet("to") {
					if hi, err = parseColor(c.String("to")); err != nil {
						return cli.Exit(err, 1)
					}
				}

				return modify(c, func(f *container.File) error {
					for _, m := range f.Images {
						if err := m.MakeRangeTransparent(lo, hi); err != nil {
							return err
						}
					}
					return nil
				})
			},
		},
		{
			Name:      "scan",
			Usage:     "Scan a directory tree and record every container in the catalog",
			ArgsUsage: "DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				m, err := cbm.New(c.String("db"), newLogger(c))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer m.Close()

				if err := m.Scan(c.Args().First()); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:  "find",
			Usage: "List catalogued containers in a group",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     "group",
					Usage:    "group identifier",
					Required: true,
				},
			},
			Action: func(c *cli.Context) error {
				m, err := cbm.New(c.String("db"), newLogger(c))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer m.Close()

				entries, err := m.Catalog().FindByGroup(c.Int("group"))
				if err != nil {
					return cli.Exit(err, 1)
				}

				for _, e := range entries {
					fmt.Fprintf(c.App.Writer, "%s\t%d\t%d images\t%v\n", e.Path, e.ImageID, len(e.Images), e.Area)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
