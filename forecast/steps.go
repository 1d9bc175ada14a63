package forecast

import (
	"fmt"

	"github.com/dashirov/neural-prophet/internal/optim"
	"github.com/dashirov/neural-prophet/internal/tensor"
)

// Batch is one stacked mini-batch: the flat input tensor plus optional
// per-row series indices.
type Batch struct {
	Input *tensor.Tensor
	Meta  []int
}

// StepResult reports one step's losses and denormalized metrics.
type StepResult struct {
	Loss    float64 // data loss
	RegLoss float64
	MAE     float64
	RMSE    float64
	LR      float64
}

// ConfigureOptimizers builds the optimizer, scheduler and step sequencer
// from the training configuration. stepsPerEpoch is needed to turn
// (epoch, batch index) into fractional training progress.
func (m *Model) ConfigureOptimizers(stepsPerEpoch int) error {
	if stepsPerEpoch <= 0 {
		return fmt.Errorf("forecast: stepsPerEpoch must be positive, got %d", stepsPerEpoch)
	}
	params := m.Parameters()
	lr := m.cfg.Train.LearningRate

	var opt optim.Optimizer
	switch m.cfg.Train.Optimizer {
	case "AdamW":
		opt = optim.NewAdamW(params, optim.AdamWConfig{LR: lr})
	case "SGD":
		opt = optim.NewSGD(params, optim.SGDConfig{LR: lr, Momentum: 0.9})
	default:
		return fmt.Errorf("forecast: unknown optimizer %q", m.cfg.Train.Optimizer)
	}

	var sched optim.Scheduler
	if m.cfg.Train.FindingLR {
		// Geometric sweep from far below the configured rate upward;
		// the caller watches the loss and picks the elbow.
		sched = optim.NewExponentialLR(opt, lr/1e4, 1.05)
	} else {
		sched = optim.NewOneCycleLR(opt, optim.OneCycleConfig{MaxLR: lr})
	}

	m.optimizer = opt
	m.scheduler = sched
	m.sequencer = newStepSequencer(m.engine, opt, sched)
	m.stepsPerEpoch = stepsPerEpoch
	return nil
}

// Optimizer returns the configured optimizer, or nil before
// ConfigureOptimizers.
func (m *Model) Optimizer() optim.Optimizer { return m.optimizer }

// trainingProgress maps (epoch, batch) to the fraction of the full
// training schedule completed, in [0, 1].
func trainingProgress(epoch, batchIdx, stepsPerEpoch, epochs int) float64 {
	epochFloat := float64(epoch) + float64(batchIdx)/float64(stepsPerEpoch)
	p := epochFloat / float64(epochs)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// TrainingStep runs one optimization step: forward in train mode,
// composite loss, then the enforced zero→backward→step→schedule sequence.
func (m *Model) TrainingStep(batch Batch, batchIdx, epoch int) (StepResult, error) {
	if m.sequencer == nil {
		return StepResult{}, fmt.Errorf("forecast: ConfigureOptimizers must run before training")
	}
	progress := trainingProgress(epoch, batchIdx, m.stepsPerEpoch, m.cfg.Train.Epochs)

	tape := m.engine.Tape()
	tape.Clear()
	tape.StartRecording()
	defer func() {
		tape.StopRecording()
		tape.Clear()
	}()

	prediction, _ := m.Forward(batch.Input, RunTrain, batch.Meta, false)
	dataLoss, regLoss := m.losses(batch, prediction, progress)
	total := m.engine.Add(dataLoss, regLoss)

	seq := m.sequencer
	if err := seq.ZeroGradients(); err != nil {
		return StepResult{}, err
	}
	if err := seq.Backpropagate(total); err != nil {
		return StepResult{}, err
	}
	if err := seq.ApplyStep(); err != nil {
		return StepResult{}, err
	}
	// OneCycle reads the epoch fraction; the LR-search scheduler ignores
	// it and advances per step.
	if err := seq.AdvanceSchedule(progress); err != nil {
		return StepResult{}, err
	}

	res := m.stepResult(batch, prediction, dataLoss, regLoss)
	m.log.Debug().
		Int("epoch", epoch).
		Int("batch", batchIdx).
		Float64("loss", res.Loss).
		Float64("reg_loss", res.RegLoss).
		Float64("mae", res.MAE).
		Float64("rmse", res.RMSE).
		Float64("lr", res.LR).
		Msg("training step")
	return res, nil
}

// ValidationStep scores one batch without touching parameters.
func (m *Model) ValidationStep(batch Batch) (StepResult, error) {
	return m.evalStep(batch, RunValidate)
}

// TestStep scores one batch without touching parameters.
func (m *Model) TestStep(batch Batch) (StepResult, error) {
	return m.evalStep(batch, RunTest)
}

func (m *Model) evalStep(batch Batch, mode RunMode) (StepResult, error) {
	prediction, _ := m.Forward(batch.Input, mode, batch.Meta, false)
	// Evaluation reports regularization at full strength.
	dataLoss, regLoss := m.losses(batch, prediction, 1.0)
	res := m.stepResult(batch, prediction, dataLoss, regLoss)
	m.log.Debug().
		Str("mode", mode.String()).
		Float64("loss", res.Loss).
		Float64("mae", res.MAE).
		Float64("rmse", res.RMSE).
		Msg("evaluation step")
	return res, nil
}

// PredictStep runs a forward pass in predict mode, optionally with the
// named component decomposition.
func (m *Model) PredictStep(batch Batch, includeComponents bool) (*tensor.Tensor, map[string]*tensor.Tensor) {
	return m.Forward(batch.Input, RunPredict, batch.Meta, includeComponents)
}

func (m *Model) losses(batch Batch, prediction *tensor.Tensor, progress float64) (dataLoss, regLoss *tensor.Tensor) {
	targets := m.stacker.Unstack("targets", batch.Input)
	timeCh := m.stacker.Unstack("time", batch.Input)
	targetTime := tensor.SliceDim(timeCh, 1, m.cfg.NLags, m.cfg.NLags+m.cfg.NForecasts)
	dataLoss = m.dataLoss(prediction, m.engine.Constant(targets), targetTime)
	regLoss = m.regularizationLoss(progress)
	return dataLoss, regLoss
}

func (m *Model) stepResult(batch Batch, prediction, dataLoss, regLoss *tensor.Tensor) StepResult {
	res := StepResult{
		Loss:    dataLoss.Data()[0],
		RegLoss: regLoss.Data()[0],
	}
	if m.optimizer != nil {
		res.LR = m.optimizer.GetLR()
	}

	// Metrics report in original units: undo global normalization with
	// the stored shift/scale; identity otherwise.
	median := tensor.SliceDim(prediction, 2, m.medianIdx, m.medianIdx+1)
	targets := m.stacker.Unstack("targets", batch.Input)
	pred := m.denormalize(median.Data())
	actual := m.denormalize(targets.Data())
	res.MAE = MAE(pred, actual)
	res.RMSE = RMSE(pred, actual)
	return res
}

func (m *Model) denormalize(values []float64) []float64 {
	out := make([]float64, len(values))
	if !m.cfg.Normalization.Global {
		copy(out, values)
		return out
	}
	for i, v := range values {
		out[i] = m.cfg.Normalization.Scale*v + m.cfg.Normalization.Shift
	}
	return out
}
