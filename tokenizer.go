package main

import (
	"fmt"
	"strings"

	tiktoken "github.com/pkoukk/tiktoken-go"
	hf "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	"go.uber.org/zap"
)

// Tokenizer counts tokens for the --stats summary.
type Tokenizer interface {
	CountTokens(text string) int
	Close()
}

// --- tiktoken ---

type tiktokenCounter struct {
	ttk *tiktoken.Tiktoken
}

func (w *tiktokenCounter) CountTokens(text string) int {
	if w.ttk == nil {
		return 0
	}
	return len(w.ttk.EncodeOrdinary(text))
}

func (w *tiktokenCounter) Close() {}

// --- HuggingFace (sugarme) ---

type hfCounter struct {
	htk    *hf.Tokenizer
	logger *zap.Logger
}

func (w *hfCounter) CountTokens(text string) int {
	if w.htk == nil {
		return 0
	}
	en, err := w.htk.EncodeSingle(text)
	if err != nil {
		w.logger.Warn("huggingface tokenizer failed to encode text", zap.Error(err))
		return 0
	}
	return len(en.Tokens)
}

func (w *hfCounter) Close() {}

const (
	defaultTiktokenModel = "gpt-4o"
	defaultHFModel       = "gpt2"
)

// TokenizerConfig selects a tokenizer implementation.
type TokenizerConfig struct {
	Kind  string // tiktoken or huggingface
	Model string
	File  string // local tokenizer.json, huggingface only
}

// newTokenizer returns the tokenizer described by cfg.
func newTokenizer(cfg TokenizerConfig, logger *zap.Logger) (Tokenizer, error) {
	logger.Debug("initializing tokenizer",
		zap.String("kind", cfg.Kind), zap.String("model", cfg.Model), zap.String("file", cfg.File))

	switch strings.ToLower(cfg.Kind) {
	case "tiktoken":
		return loadTiktoken(cfg.Model, logger)
	case "huggingface":
		return loadHuggingFace(cfg.Model, cfg.File, logger)
	default:
		return nil, fmt.Errorf("unsupported tokenizer type: %s. Use 'tiktoken' or 'huggingface'", cfg.Kind)
	}
}

func loadTiktoken(model string, logger *zap.Logger) (Tokenizer, error) {
	if model == "" {
		model = defaultTiktokenModel
	}
	tke, err := tiktoken.EncodingForModel(model)
	if err != nil {
		logger.Warn("tiktoken model not found, using default",
			zap.String("model", model), zap.String("default", defaultTiktokenModel), zap.Error(err))
		tke, err = tiktoken.EncodingForModel(defaultTiktokenModel)
		if err != nil {
			return nil, fmt.Errorf("failed to get tiktoken encoding for default model '%s': %w", defaultTiktokenModel, err)
		}
	}
	return &tiktokenCounter{ttk: tke}, nil
}

func loadHuggingFace(model, file string, logger *zap.Logger) (Tokenizer, error) {
	if file != "" {
		ttk, err := pretrained.FromFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load tokenizer from file %s: %w", file, err)
		}
		return &hfCounter{htk: ttk, logger: logger}, nil
	}

	if model == "" {
		model = defaultHFModel
	}
	logger.Info("loading huggingface tokenizer, this may download files", zap.String("model", model))
	configFilePath, err := hf.CachedPath(model, "tokenizer.json")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache path for model %s: %w", model, err)
	}
	ttk, err := pretrained.FromFile(configFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load pretrained tokenizer for model %s (from %s): %w", model, configFilePath, err)
	}
	return &hfCounter{htk: ttk, logger: logger}, nil
}
