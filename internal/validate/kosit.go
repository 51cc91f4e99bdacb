package validate

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rechnungswerk/einvoice/internal/extract"
	"github.com/rechnungswerk/einvoice/internal/model"
)

// DefaultTimeout bounds one external validation run.
const DefaultTimeout = 30 * time.Second

// ToolConfig locates the external validation tool. The tool is a Java
// program: a validator jar plus a scenario bundle describing the rule sets.
type ToolConfig struct {
	// JavaPath is the java binary; looked up in PATH when empty.
	JavaPath string
	// JarPath is the validator jar.
	JarPath string
	// ScenarioPath is the scenario configuration of the rule bundle.
	ScenarioPath string
	// Timeout per validation run; DefaultTimeout when zero.
	Timeout time.Duration
}

// ToolValidator runs the external rule-validation tool against a temporary
// copy of the invoice XML. One subprocess per call, no shared state.
type ToolValidator struct {
	javaPath string
	cfg      ToolConfig
	timeout  time.Duration
	logger   *zap.Logger
}

// newToolValidator builds the subprocess-backed validator. The caller has
// already probed availability via probeTool.
func newToolValidator(javaPath string, cfg ToolConfig, logger *zap.Logger) *ToolValidator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ToolValidator{
		javaPath: javaPath,
		cfg:      cfg,
		timeout:  timeout,
		logger:   logger,
	}
}

// Name identifies this implementation.
func (v *ToolValidator) Name() string {
	return "kosit-tool"
}

// Validate writes xmlData to a scoped temp directory, runs the tool and
// parses its report. Business-rule violations come back as findings; only
// infrastructure failures (timeout, unrunnable tool) return an error.
func (v *ToolValidator) Validate(ctx context.Context, xmlData []byte) (*Result, error) {
	start := time.Now()

	// One scoped directory per invocation; removal is best-effort.
	workDir := filepath.Join(os.TempDir(), "einvoice-validate-"+uuid.NewString())
	if err := os.MkdirAll(workDir, 0o700); err != nil {
		return nil, err
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			v.logger.Warn("failed to remove validation work dir",
				zap.String("dir", workDir), zap.Error(err))
		}
	}()

	inputPath := filepath.Join(workDir, "invoice.xml")
	if err := os.WriteFile(inputPath, xmlData, 0o600); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, v.javaPath,
		"-jar", v.cfg.JarPath,
		"-s", v.cfg.ScenarioPath,
		"-r", workDir,
		inputPath,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		return nil, model.ErrValidationTimeout(v.timeout.String(), ctxErr)
	}

	// The tool exits non-zero for invalid documents; only a missing report
	// signals an infrastructure failure.
	reportPath := filepath.Join(workDir, "invoice-report.xml")
	reportData, err := os.ReadFile(reportPath)
	if err != nil {
		cause := err
		detail := "validation tool produced no report"
		if runErr != nil {
			cause = runErr
			detail += ": " + stderr.String()
		}
		return nil, &model.PipelineError{
			Code:      model.ErrCodeToolUnavailable,
			Message:   detail,
			Retryable: true,
			Cause:     cause,
		}
	}

	result, err := parseReport(reportData)
	if err != nil {
		return nil, err
	}

	result.Profile, result.Version = extract.DetectProfile(xmlData)
	result.Elapsed = time.Since(start)
	return result, nil
}

// probeTool checks whether the external tool can run: a java runtime must
// resolve and the jar and scenario files must exist.
func probeTool(cfg ToolConfig) (string, bool) {
	java := cfg.JavaPath
	if java == "" {
		java = "java"
	}
	javaPath, err := exec.LookPath(java)
	if err != nil {
		return "", false
	}
	if cfg.JarPath == "" || cfg.ScenarioPath == "" {
		return "", false
	}
	if _, err := os.Stat(cfg.JarPath); err != nil {
		return "", false
	}
	if _, err := os.Stat(cfg.ScenarioPath); err != nil {
		return "", false
	}
	return javaPath, true
}
