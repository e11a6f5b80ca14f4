package trainer

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/mintml/mint/internal/autodiff"
	"github.com/mintml/mint/internal/backend/cpu"
	"github.com/mintml/mint/internal/config"
	"github.com/mintml/mint/internal/dataset"
	"github.com/mintml/mint/internal/nn"
)

// Eval restores a model from a checkpoint and reports loss and accuracy on
// the evaluation data: the configured test set when one is named, otherwise
// the validation split.
func Eval(cfg config.Config, checkpointPath string) error {
	rng := rand.New(rand.NewSource(cfg.Train.Seed))

	var ds *dataset.Dataset
	if cfg.Data.TestImages != "" && cfg.Data.TestLabels != "" {
		var err error
		ds, err = dataset.Load(cfg.Data.TestImages, cfg.Data.TestLabels)
		if err != nil {
			return err
		}
	} else {
		_, val, err := loadData(cfg.Data, rng)
		if err != nil {
			return err
		}
		if val.Len() == 0 {
			return fmt.Errorf("no test set configured and val_fraction is zero")
		}
		ds = val
	}

	ad := autodiff.New(cpu.New())
	model := BuildModel(ad, ds.ImageSize(), cfg.Model, rng)
	meta, err := nn.LoadCheckpoint(checkpointPath, model, nil)
	if err != nil {
		return err
	}

	t := &Trainer{cfg: cfg, backend: ad, model: model, val: ds, runID: meta.RunID}
	loss, acc := t.Evaluate(ds)
	log.Printf("run=%s checkpoint=%s epoch=%d step=%d loss=%.4f acc=%.4f n=%d",
		meta.RunID, checkpointPath, meta.Epoch, meta.Step, loss, acc, ds.Len())
	return nil
}
