// Command prophet trains the decomposable forecaster on a CSV series and
// prints the quantile forecast for the final window.
//
// Configuration comes from a YAML file (default prophet.yaml) read with
// viper; every key can also be set through PROPHET_* environment
// variables.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/dashirov/neural-prophet/dataset"
	"github.com/dashirov/neural-prophet/forecast"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("prophet failed")
	}
}

func run() error {
	v := viper.New()
	v.SetConfigName("prophet")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("prophet")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_level", "info")
	v.SetDefault("forecasts", 1)
	v.SetDefault("lags", 0)
	v.SetDefault("quantiles", []float64{0.5})
	v.SetDefault("changepoints", 10)
	v.SetDefault("seasonality.weekly", true)
	v.SetDefault("seasonality.yearly", false)
	v.SetDefault("train.epochs", 50)
	v.SetDefault("train.batch_size", 32)
	v.SetDefault("train.learning_rate", 1e-3)

	if len(os.Args) > 1 {
		v.SetConfigFile(os.Args[1])
	}
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	level, err := zerolog.ParseLevel(v.GetString("log_level"))
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)

	csvPath := v.GetString("data")
	if csvPath == "" {
		return fmt.Errorf("config: data must point at a CSV file")
	}
	series, err := dataset.LoadCSV(csvPath)
	if err != nil {
		return err
	}

	norm := dataset.FitMinMax(series.Values)
	cfg := forecast.Config{
		NForecasts: v.GetInt("forecasts"),
		NLags:      v.GetInt("lags"),
		Quantiles:  quantileList(v.GetStringSlice("quantiles")),
		Trend: forecast.TrendConfig{
			NChangepoints: v.GetInt("changepoints"),
		},
		Normalization: forecast.NormalizationConfig{
			Global: true,
			Shift:  norm.Shift,
			Scale:  norm.Scale,
		},
		Train: forecast.TrainConfig{
			Epochs:       v.GetInt("train.epochs"),
			BatchSize:    v.GetInt("train.batch_size"),
			LearningRate: v.GetFloat64("train.learning_rate"),
			RegStartPct:  v.GetFloat64("train.reg_start_pct"),
			RegFullPct:   v.GetFloat64("train.reg_full_pct"),
		},
	}

	periods := make(map[string]forecast.SeasonalPeriod)
	if v.GetBool("seasonality.weekly") {
		periods["weekly"] = forecast.SeasonalPeriod{Period: 7, K: 3}
	}
	if v.GetBool("seasonality.yearly") {
		periods["yearly"] = forecast.SeasonalPeriod{Period: 365.25, K: 6}
	}
	if len(periods) > 0 {
		cfg.Seasonality = &forecast.SeasonalityConfig{Periods: periods}
	}

	model, err := forecast.New(cfg)
	if err != nil {
		return err
	}
	builder, err := dataset.NewBuilder(model, series, nil)
	if err != nil {
		return err
	}
	batches, err := builder.Batches(cfg.Train.BatchSize)
	if err != nil {
		return err
	}
	if err := model.ConfigureOptimizers(len(batches)); err != nil {
		return err
	}

	epochs := model.Config().Train.Epochs
	for epoch := 0; epoch < epochs; epoch++ {
		var lossSum, maeSum float64
		for i, batch := range batches {
			res, err := model.TrainingStep(batch, i, epoch)
			if err != nil {
				return err
			}
			lossSum += res.Loss
			maeSum += res.MAE
		}
		log.Info().
			Int("epoch", epoch).
			Float64("loss", lossSum/float64(len(batches))).
			Float64("mae", maeSum/float64(len(batches))).
			Msg("epoch complete")
	}

	last, err := builder.Batch(builder.Windows()-1, 1)
	if err != nil {
		return err
	}
	prediction, _ := model.PredictStep(last, false)

	quantiles := model.Config().Quantiles
	for step := 0; step < model.Config().NForecasts; step++ {
		parts := make([]string, len(quantiles))
		for qi, q := range quantiles {
			val := norm.Invert(prediction.At(0, step, qi))
			parts[qi] = fmt.Sprintf("q%g=%.4f", q*100, val)
		}
		fmt.Printf("step %d: %s\n", step+1, strings.Join(parts, "  "))
	}
	return nil
}

func quantileList(raw []string) []float64 {
	var out []float64
	for _, s := range raw {
		var q float64
		if _, err := fmt.Sscanf(s, "%g", &q); err == nil {
			out = append(out, q)
		}
	}
	return out
}
