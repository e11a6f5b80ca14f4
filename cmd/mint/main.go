// Command mint trains, evaluates, and inspects feed-forward networks.
//
// Usage:
//
//	mint train   [-config file.yaml] [overrides]
//	mint eval    -checkpoint file.mint [-config file.yaml]
//	mint inspect -checkpoint file.mint
//	mint version
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/mintml/mint/internal/config"
	"github.com/mintml/mint/internal/serialization"
	"github.com/mintml/mint/internal/trainer"
)

const version = "v0.1.0-dev"

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "train":
		err = runTrain(os.Args[2:])
	case "resume":
		err = runResume(os.Args[2:])
	case "eval":
		err = runEval(os.Args[2:])
	case "inspect":
		err = runInspect(os.Args[2:])
	case "version":
		fmt.Printf("mint %s\n", version)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "mint: unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("mint %s: %v", os.Args[1], err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `mint - train small neural networks

Commands:
  train     Train a model from a YAML config
  resume    Continue training from a checkpoint
  eval      Evaluate a checkpoint on the test set
  inspect   Print a checkpoint's metadata and tensors
  version   Show version`)
}

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to YAML config (defaults built in)")
	epochs := fs.Int("epochs", 0, "override epoch count")
	batchSize := fs.Int("batch-size", 0, "override batch size")
	optimizer := fs.String("optimizer", "", "override optimizer (sgd, adam)")
	lr := fs.Float64("lr", 0, "override learning rate")
	seed := fs.Int64("seed", 0, "override PRNG seed")
	dir := fs.String("checkpoint-dir", "", "override checkpoint directory")
	resume := fs.String("resume", "", "checkpoint to resume from")
	synthetic := fs.Bool("synthetic", false, "train on generated data")
	fs.Parse(args)

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}

	var o config.Overrides
	if *epochs > 0 {
		o.Epochs = epochs
	}
	if *batchSize > 0 {
		o.BatchSize = batchSize
	}
	if *optimizer != "" {
		o.Optimizer = optimizer
	}
	if *lr > 0 {
		o.LearningRate = lr
	}
	if *seed != 0 {
		o.Seed = seed
	}
	if *dir != "" {
		o.Dir = dir
	}
	if *resume != "" {
		o.Resume = resume
	}
	if *synthetic {
		o.Synthetic = synthetic
	}
	cfg.Apply(o)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	t, err := trainer.New(cfg)
	if err != nil {
		return err
	}
	if err := t.Run(ctx); err != nil {
		if ctx.Err() != nil {
			log.Printf("interrupted, state checkpointed")
			return nil
		}
		return err
	}
	return nil
}

// runResume is `train -resume` with the checkpoint as a required flag.
func runResume(args []string) error {
	fs := flag.NewFlagSet("resume", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to YAML config (defaults built in)")
	checkpoint := fs.String("checkpoint", "", "checkpoint to resume from")
	epochs := fs.Int("epochs", 0, "override epoch count")
	fs.Parse(args)

	if *checkpoint == "" {
		return fmt.Errorf("-checkpoint is required")
	}
	rest := []string{"-resume", *checkpoint}
	if *cfgPath != "" {
		rest = append(rest, "-config", *cfgPath)
	}
	if *epochs > 0 {
		rest = append(rest, "-epochs", fmt.Sprint(*epochs))
	}
	return runTrain(rest)
}

func runEval(args []string) error {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to YAML config (defaults built in)")
	checkpoint := fs.String("checkpoint", "", "checkpoint to evaluate")
	fs.Parse(args)

	if *checkpoint == "" {
		return fmt.Errorf("-checkpoint is required")
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	return trainer.Eval(cfg, *checkpoint)
}

func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	checkpoint := fs.String("checkpoint", "", "checkpoint to inspect")
	fs.Parse(args)

	if *checkpoint == "" {
		return fmt.Errorf("-checkpoint is required")
	}
	meta, tensors, err := serialization.Inspect(*checkpoint)
	if err != nil {
		return err
	}

	fmt.Printf("run:       %s\n", meta.RunID)
	fmt.Printf("epoch:     %d\n", meta.Epoch)
	fmt.Printf("step:      %d\n", meta.Step)
	fmt.Printf("loss:      %.6f\n", meta.Loss)
	if meta.Optimizer != "" {
		fmt.Printf("optimizer: %s\n", meta.Optimizer)
	}
	fmt.Printf("created:   %s\n", meta.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("tensors:   %d\n\n", len(tensors))

	sort.Slice(tensors, func(i, j int) bool { return tensors[i].Name < tensors[j].Name })
	var total uint64
	for _, t := range tensors {
		fmt.Printf("  %-28s %-8s %-14v %8d bytes\n", t.Name, t.DType, t.Shape, t.Size)
		total += t.Size
	}
	fmt.Printf("\n  total %d bytes\n", total)
	return nil
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
