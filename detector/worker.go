package detector

import (
	"log/slog"

	"github.com/soocke/fastlabel-go/assets"
	"github.com/soocke/fastlabel-go/config"
	"github.com/soocke/fastlabel-go/domain/inference"
)

// NewWorker returns a batch worker backed by the Ollama detector. The model
// server is contacted when the first run starts.
func NewWorker(cfg *config.Config, logger *slog.Logger, load inference.LoadFunc) *inference.BatchWorker {
	if logger == nil {
		logger = slog.Default()
	}
	prompt, err := assets.LoadPrompt(cfg.PromptFile)
	if err != nil {
		logger.Warn("detector prompt, using built-in", "error", err)
	}
	factory := Factory(logger, Options{
		URL:    cfg.OllamaURL,
		Model:  cfg.Model,
		MaxDim: cfg.MaxImageDim,
		Prompt: prompt,
	})
	return inference.NewBatchWorker(logger, factory, load, inference.Options{
		Confidence: cfg.ConfThreshold,
		MinSide:    cfg.MinSide,
		BatchSize:  cfg.BatchSize,
	})
}
