// Command nadam-gen turns a TOML catalog definition into a compiled Go
// source file and a compressed binary manifest, the tooling counterpart
// of original_source/example/src/messageInfos.c restored as a real
// generator instead of a hand-written table.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/urfave/cli/v3"

	"github.com/tez-capital/nadam/internal/catalogdef"
)

type tomlFile struct {
	Message []catalogdef.Spec `toml:"message"`
}

func loadSpecs(path string) ([]catalogdef.Spec, error) {
	var f tomlFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("nadam-gen: decode %s: %w", path, err)
	}
	return f.Message, nil
}

func cmdGenerate() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "Generate a Go catalog source file and a binary manifest from a TOML definition",
		ArgsUsage: "<catalog.toml>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "package", Value: "catalog", Usage: "package name for the generated Go file"},
			&cli.StringFlag{Name: "out", Value: "catalog_gen.go", Usage: "output path for the generated Go source"},
			&cli.StringFlag{Name: "manifest", Value: "catalog.ndm", Usage: "output path for the compressed binary manifest"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return fmt.Errorf("nadam-gen generate: expected exactly one TOML file argument")
			}

			specs, err := loadSpecs(c.Args().First())
			if err != nil {
				return err
			}

			descriptors, err := catalogdef.Resolve(specs)
			if err != nil {
				return err
			}

			src, err := catalogdef.GenerateSource(c.String("package"), descriptors)
			if err != nil {
				return fmt.Errorf("nadam-gen: render source: %w", err)
			}
			if err := os.WriteFile(c.String("out"), src, 0o644); err != nil {
				return fmt.Errorf("nadam-gen: write %s: %w", c.String("out"), err)
			}

			manifest, err := os.Create(c.String("manifest"))
			if err != nil {
				return fmt.Errorf("nadam-gen: create %s: %w", c.String("manifest"), err)
			}
			defer manifest.Close()
			if err := catalogdef.WriteManifest(manifest, descriptors); err != nil {
				return fmt.Errorf("nadam-gen: write manifest: %w", err)
			}

			fmt.Printf("wrote %s (%d messages) and %s\n", c.String("out"), len(descriptors), c.String("manifest"))
			return nil
		},
	}
}

func cmdInspect() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the resolved catalog from a TOML definition or a compiled manifest",
		ArgsUsage: "<catalog.toml|catalog.ndm>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "manifest", Usage: "treat the argument as a compressed binary manifest instead of TOML"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return fmt.Errorf("nadam-gen inspect: expected exactly one file argument")
			}

			var descriptors []catalogdef.Descriptor
			if c.Bool("manifest") {
				f, err := os.Open(c.Args().First())
				if err != nil {
					return err
				}
				defer f.Close()
				descriptors, err = catalogdef.ReadManifest(f)
				if err != nil {
					return fmt.Errorf("nadam-gen: read manifest: %w", err)
				}
			} else {
				specs, err := loadSpecs(c.Args().First())
				if err != nil {
					return err
				}
				descriptors, err = catalogdef.Resolve(specs)
				if err != nil {
					return err
				}
			}

			for _, d := range descriptors {
				kind, size := "fixed", d.Total
				if d.Variable {
					kind, size = "variable", d.Max
				}
				fmt.Printf("%-24s %-9s %6d  %x\n", d.Name, kind, size, d.Hash)
			}
			return nil
		},
	}
}

func main() {
	app := &cli.Command{
		Name:  "nadam-gen",
		Usage: "Generate and inspect nadam message catalogs",
		Commands: []*cli.Command{
			cmdGenerate(),
			cmdInspect(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
