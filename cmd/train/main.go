package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/diabetes-triage/backend/internal/training"
	"github.com/diabetes-triage/backend/pkg/logger"
)

var (
	versionFlag = &cli.StringFlag{
		Name:  "version",
		Usage: "Version tag for the artifact and metadata files",
		Value: "v0.1",
	}

	modelFlag = &cli.StringFlag{
		Name:  "model",
		Usage: "Model type: linear, ridge or rf",
		Value: "linear",
	}

	outDirFlag = &cli.StringFlag{
		Name:  "out-dir",
		Usage: "Directory the artifact and metadata are written to",
		Value: "models",
	}

	dataFlag = &cli.StringFlag{
		Name:  "data",
		Usage: "Path to a CSV dataset (uses the built-in synthetic dataset when empty)",
	}

	testSizeFlag = &cli.Float64Flag{
		Name:  "test-size",
		Usage: "Fraction of rows held out for evaluation",
		Value: 0.2,
	}

	seedFlag = &cli.Int64Flag{
		Name:  "seed",
		Usage: "Random seed for the split and model fitting",
		Value: 42,
	}

	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs",
	}
)

func main() {
	app := &cli.App{
		Name:  "train",
		Usage: "Train the diabetes progression model and write its artifacts",
		Flags: []cli.Flag{
			versionFlag,
			modelFlag,
			outDirFlag,
			dataFlag,
			testSizeFlag,
			seedFlag,
			debugFlag,
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Training failed: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	level := "info"
	if c.Bool(debugFlag.Name) {
		level = "debug"
	}
	if err := logger.Init(level, "console", "stdout"); err != nil {
		return err
	}
	defer logger.Sync()

	meta, err := training.Run(training.Config{
		Version:   c.String(versionFlag.Name),
		ModelType: c.String(modelFlag.Name),
		OutDir:    c.String(outDirFlag.Name),
		DataPath:  c.String(dataFlag.Name),
		TestSize:  c.Float64(testSizeFlag.Name),
		Seed:      c.Int64(seedFlag.Name),
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
