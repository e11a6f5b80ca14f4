// Package trainer wires the dataset, model, optimizer, and checkpointing
// into a training run driven by a configuration.
package trainer

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mintml/mint/internal/autodiff"
	"github.com/mintml/mint/internal/backend/cpu"
	"github.com/mintml/mint/internal/config"
	"github.com/mintml/mint/internal/dataset"
	"github.com/mintml/mint/internal/metrics"
	"github.com/mintml/mint/internal/nn"
	"github.com/mintml/mint/internal/optim"
	"github.com/mintml/mint/internal/serialization"
)

// Synthetic datasets are generated at MNIST dimensions so configs can swap
// between real and generated data without touching the model section.
const syntheticRows, syntheticCols = 28, 28

// Trainer runs epochs of minibatch gradient descent over a dataset.
type Trainer struct {
	cfg     config.Config
	backend *autodiff.Backend
	model   *nn.Sequential
	opt     optim.Optimizer

	train *dataset.Dataset
	val   *dataset.Dataset

	runID string
	epoch int
	step  int64
}

// New assembles a trainer from the configuration: backend, data, model, and
// optimizer. If the configuration names a checkpoint to resume from, model
// and optimizer state are restored and the run continues its identity.
func New(cfg config.Config) (*Trainer, error) {
	rng := rand.New(rand.NewSource(cfg.Train.Seed))

	train, val, err := loadData(cfg.Data, rng)
	if err != nil {
		return nil, err
	}

	base := cpu.New()
	ad := autodiff.New(base)
	model := BuildModel(ad, train.ImageSize(), cfg.Model, rng)

	var opt optim.Optimizer
	switch cfg.Train.Optimizer {
	case "sgd":
		opt = optim.NewSGD(model.Parameters(), cfg.Train.LearningRate, cfg.Train.Momentum, cfg.Train.WeightDecay)
	case "adam":
		opt = optim.NewAdam(model.Parameters(), cfg.Train.LearningRate, 0, 0, 0)
	default:
		return nil, fmt.Errorf("unknown optimizer %q", cfg.Train.Optimizer)
	}

	t := &Trainer{
		cfg:     cfg,
		backend: ad,
		model:   model,
		opt:     opt,
		train:   train,
		val:     val,
		runID:   uuid.NewString(),
	}

	if path := cfg.Checkpoint.Resume; path != "" {
		meta, err := nn.LoadCheckpoint(path, model, opt)
		if err != nil {
			return nil, fmt.Errorf("resume: %w", err)
		}
		if meta.RunID != "" {
			t.runID = meta.RunID
		}
		t.epoch = meta.Epoch
		t.step = meta.Step
		log.Printf("run=%s resumed from=%s epoch=%d step=%d loss=%.4f",
			t.runID, path, meta.Epoch, meta.Step, meta.Loss)
	}
	return t, nil
}

// Model returns the trainer's network, for evaluation after Run.
func (t *Trainer) Model() *nn.Sequential { return t.model }

// Run trains until the configured epoch count or context cancellation,
// whichever comes first. Cancellation is clean: the current batch finishes,
// a final checkpoint is written, and ctx.Err() is returned.
func (t *Trainer) Run(ctx context.Context) error {
	cfg := t.cfg
	rng := rand.New(rand.NewSource(cfg.Train.Seed + int64(t.epoch)))
	window := metrics.NewWindow(100)

	log.Printf("run=%s backend=%s params=%d train=%d val=%d",
		t.runID, t.backend.Name(), countParams(t.model), t.train.Len(), t.val.Len())

	for epoch := t.epoch + 1; epoch <= cfg.Train.Epochs; epoch++ {
		t.train.Shuffle(rng)
		epochStart := time.Now()
		var lastLoss float64

		for i := 0; i < t.train.NumBatches(cfg.Train.BatchSize); i++ {
			if err := ctx.Err(); err != nil {
				t.checkpoint(epoch-1, lastLoss)
				return err
			}
			loss, err := t.trainStep(i, cfg.Train.BatchSize)
			if err != nil {
				return fmt.Errorf("epoch %d step %d: %w", epoch, t.step, err)
			}
			lastLoss = loss
			window.Add(loss)
			t.step++
			if cfg.Train.LogEvery > 0 && t.step%int64(cfg.Train.LogEvery) == 0 {
				log.Printf("run=%s epoch=%d step=%d loss=%.4f", t.runID, epoch, t.step, window.Mean())
			}
		}

		t.epoch = epoch
		rate := float64(t.train.Len()) / time.Since(epochStart).Seconds()
		log.Printf("run=%s epoch=%d step=%d loss=%.4f samples_per_sec=%.0f",
			t.runID, epoch, t.step, window.Mean(), rate)
		if t.val.Len() > 0 {
			valLoss, valAcc := t.Evaluate(t.val)
			log.Printf("run=%s epoch=%d val_loss=%.4f val_acc=%.4f", t.runID, epoch, valLoss, valAcc)
		}
		if cfg.Checkpoint.Every > 0 && epoch%cfg.Checkpoint.Every == 0 {
			t.checkpoint(epoch, window.Mean())
		}
	}
	return nil
}

// trainStep runs one forward/backward/update cycle on batch i.
func (t *Trainer) trainStep(i, batchSize int) (float64, error) {
	images, labels := t.train.Batch(i, batchSize)

	logits := t.model.Forward(images)
	loss := nn.CrossEntropyLoss(t.backend, logits, labels)
	lossVal := float64(loss.Float32s()[0])

	grads, err := t.backend.Backward(loss)
	if err != nil {
		return 0, err
	}
	nn.AttachGrads(t.model.Parameters(), grads)
	if err := t.opt.Step(); err != nil {
		return 0, err
	}
	t.opt.ZeroGrad()
	return lossVal, nil
}

// Evaluate computes mean loss and accuracy over a dataset. The forward
// passes are recorded on the tape like any other, so it is discarded after.
func (t *Trainer) Evaluate(ds *dataset.Dataset) (loss, acc float64) {
	defer t.backend.Tape().Reset()
	var lossC, accC metrics.Counter
	bs := t.cfg.Train.BatchSize
	for i := 0; i < ds.NumBatches(bs); i++ {
		images, labels := ds.Batch(i, bs)
		logits := t.model.Forward(images)
		batch := images.Shape()[0]
		l := nn.CrossEntropyLoss(t.backend, logits, labels)
		lossC.AddN(float64(l.Float32s()[0])*float64(batch), batch)
		accC.AddN(nn.Accuracy(t.backend, logits, labels)*float64(batch), batch)
		t.backend.Tape().Reset()
	}
	return lossC.Mean(), accC.Mean()
}

// checkpoint writes the current state under the checkpoint directory, both
// as an epoch-stamped file and as latest.mint.
func (t *Trainer) checkpoint(epoch int, loss float64) {
	dir := t.cfg.Checkpoint.Dir
	if dir == "" {
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("run=%s checkpoint error=%q", t.runID, err)
		return
	}
	meta := serialization.Meta{
		RunID:        t.runID,
		Epoch:        epoch,
		Step:         t.step,
		Loss:         loss,
		LearningRate: t.cfg.Train.LearningRate,
		CreatedAt:    time.Now().UTC(),
	}
	for _, name := range []string{fmt.Sprintf("epoch_%03d.mint", epoch), "latest.mint"} {
		path := filepath.Join(dir, name)
		if err := nn.SaveCheckpoint(path, t.model, t.opt, meta); err != nil {
			log.Printf("run=%s checkpoint path=%s error=%q", t.runID, path, err)
			return
		}
	}
	log.Printf("run=%s checkpoint epoch=%d step=%d dir=%s", t.runID, epoch, t.step, dir)
}

// loadData builds the train/validation split from the configured source.
func loadData(cfg config.Data, rng *rand.Rand) (train, val *dataset.Dataset, err error) {
	var ds *dataset.Dataset
	if cfg.Synthetic {
		ds = dataset.Synthetic(cfg.SyntheticCount, syntheticRows, syntheticCols, 10, rng.Int63())
	} else {
		ds, err = dataset.Load(cfg.Images, cfg.Labels)
		if err != nil {
			return nil, nil, err
		}
	}
	ds.Shuffle(rng)
	valN := int(float64(ds.Len()) * cfg.ValFraction)
	train, val = ds.Split(ds.Len() - valN)
	return train, val, nil
}

func countParams(m nn.Module) int {
	total := 0
	for _, p := range m.Parameters() {
		total += p.Value.NumElements()
	}
	return total
}
