package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"workspaces-inventory/phi3/pkg/config"
)

// LlamaCpp runs the llama.cpp command line binary once per completion.
//
// Each call starts its own process, so concurrent completions do not share
// state inside this engine. They do compete for CPU; set engine.serialize to run
// one at a time.
type LlamaCpp struct {
	cfg    config.LlamaCppConfig
	logger *slog.Logger
}

// NewLlamaCpp validates that the binary and model file exist and returns the
// engine.
func NewLlamaCpp(cfg config.LlamaCppConfig, logger *slog.Logger) (*LlamaCpp, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if _, err := os.Stat(cfg.Binary); err != nil {
		return nil, &Error{Engine: "llamacpp", Message: "binary not available", Cause: err}
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, &Error{Engine: "llamacpp", Message: "model file not available", Cause: err}
	}

	return &LlamaCpp{
		cfg:    cfg,
		logger: logger.With("component", "engine", "engine", "llamacpp"),
	}, nil
}

// Name implements Engine.
func (l *LlamaCpp) Name() string {
	return "llamacpp"
}

// Check reports whether the model file is still present.
func (l *LlamaCpp) Check() error {
	if _, err := os.Stat(l.cfg.ModelPath); err != nil {
		return &Error{Engine: "llamacpp", Message: "model file not available", Cause: err}
	}
	return nil
}

// Complete implements Engine. Cancelling ctx kills the subprocess.
func (l *LlamaCpp) Complete(ctx context.Context, prompt string) (Result, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, l.cfg.Binary, l.args(prompt)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = errors.Join(ctxErr, err)
		}
		l.logger.Error("llama.cpp execution failed",
			"error", err,
			"stderr", truncate(stderr.String(), 512),
		)
		return Result{}, &Error{Engine: "llamacpp", Message: "inference failed", Cause: err}
	}

	text := CleanOutput(stdout.String())
	res := Result{Text: text, Tokens: EstimateTokens(text)}

	l.logger.Debug("completion finished",
		"duration", time.Since(start),
		"tokens", res.Tokens,
	)

	return res, nil
}

func (l *LlamaCpp) args(prompt string) []string {
	if l.cfg.SystemPrompt != "" {
		prompt = fmt.Sprintf("%s\n\n%s", l.cfg.SystemPrompt, prompt)
	}
	return []string{
		"-m", l.cfg.ModelPath,
		"-p", prompt,
		"-n", strconv.Itoa(l.cfg.MaxTokens),
		"--temp", strconv.FormatFloat(l.cfg.Temperature, 'f', 2, 64),
		"-t", strconv.Itoa(l.cfg.Threads),
		"-c", strconv.Itoa(l.cfg.ContextSize),
		"--log-disable",
		"--no-display-prompt",
	}
}

// CleanOutput trims model output and strips a leading "SQL Query:" or "Query:"
// label and markdown code fences.
func CleanOutput(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "SQL Query:")
	s = strings.TrimPrefix(s, "Query:")
	s = strings.ReplaceAll(s, "```sql", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
