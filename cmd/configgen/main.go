package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/danmuck/elwebctl/internal/config"
	"github.com/spf13/pflag"
)

const defaultPath = "elwebctl.toml"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "configgen: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("configgen", pflag.ContinueOnError)
	link := fs.String("link", config.LinkSerial, "link kind: serial|tcp")
	output := fs.StringP("output", "o", defaultPath, "output path for config template")
	validate := fs.Bool("validate", false, "validate an existing config file")
	input := fs.StringP("input", "i", defaultPath, "config path for validation")
	force := fs.Bool("force", false, "overwrite existing config file")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if *validate {
		cfg, err := config.Load(*input)
		if err != nil {
			return err
		}
		fmt.Printf("Validated %s config at %s\n", cfg.Link, *input)
		return nil
	}

	if err := config.WriteTemplate(*output, *link, *force); err != nil {
		return err
	}
	fmt.Printf("Wrote %s config template to %s\n", *link, *output)
	return nil
}
