// Package launch turns a launch configuration into the argument vector
// for the llama-server binary. The mapping is pure and deterministic,
// and never involves a shell: the extra-arguments text is tokenized
// here, quotes and all, so a token with embedded spaces stays one
// argument.
package launch

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/google/shlex"

	"github.com/coremaven/llama.cpp-GUI/internal/common/fsutil"
	"github.com/coremaven/llama.cpp-GUI/pkg/types"
)

// Validate checks that cfg can be turned into a runnable command:
// binary and model paths must point at real files (the binary must be
// executable), the port must be in range when set, and the extra
// arguments must tokenize. It runs before any build or spawn attempt.
func Validate(cfg types.ServerConfig) error {
	if strings.TrimSpace(cfg.BinaryPath) == "" {
		return NewValidationError("binary_path", "required")
	}
	bin, err := fsutil.ExpandHome(cfg.BinaryPath)
	if err != nil {
		return NewValidationError("binary_path", "%v", err)
	}
	if err := checkExecutable(bin); err != nil {
		return NewValidationError("binary_path", "%v", err)
	}
	if strings.TrimSpace(cfg.ModelPath) == "" {
		return NewValidationError("model_path", "required")
	}
	model, err := fsutil.ExpandHome(cfg.ModelPath)
	if err != nil {
		return NewValidationError("model_path", "%v", err)
	}
	if err := checkRegularFile(model); err != nil {
		return NewValidationError("model_path", "%v", err)
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return NewValidationError("port", "out of range: %d", cfg.Port)
	}
	if _, err := SplitExtraArgs(cfg.ExtraArgs); err != nil {
		return NewValidationError("additional_args", "%v", err)
	}
	return nil
}

// BuildArgs returns the full argument vector: the binary path followed
// by flag/value pairs for every set option, then the tokenized extra
// arguments. Zero-valued numeric options and empty strings are treated
// as unset and omitted; -ngl keeps -1 (offload everything). Identical
// configurations always produce identical vectors.
func BuildArgs(cfg types.ServerConfig) ([]string, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	bin, _ := fsutil.ExpandHome(cfg.BinaryPath)
	model, _ := fsutil.ExpandHome(cfg.ModelPath)
	args := []string{bin, "-m", model}
	if cfg.Host != "" {
		args = append(args, "--host", cfg.Host)
	}
	if cfg.Port > 0 {
		args = append(args, "--port", fmt.Sprint(cfg.Port))
	}
	if cfg.CtxSize > 0 {
		args = append(args, "-c", fmt.Sprint(cfg.CtxSize))
	}
	if cfg.GPULayers != 0 {
		args = append(args, "-ngl", fmt.Sprint(cfg.GPULayers))
	}
	if cfg.Threads > 0 {
		args = append(args, "-t", fmt.Sprint(cfg.Threads))
	}
	if cfg.BatchSize > 0 {
		args = append(args, "-b", fmt.Sprint(cfg.BatchSize))
	}
	extra, _ := SplitExtraArgs(cfg.ExtraArgs)
	args = append(args, extra...)
	return args, nil
}

// SplitExtraArgs tokenizes the free-form extra-arguments text. Quotes
// group words into single tokens; an unterminated quote is an error.
func SplitExtraArgs(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	return shlex.Split(s)
}

// CommandString renders the argument vector for display and log echo,
// quoting tokens that contain whitespace.
func CommandString(cfg types.ServerConfig) (string, error) {
	args, err := BuildArgs(cfg)
	if err != nil {
		return "", err
	}
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = quoteToken(a)
	}
	return strings.Join(quoted, " "), nil
}

func quoteToken(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\"'") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func checkRegularFile(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", path)
		}
		return err
	}
	if fi.IsDir() {
		return fmt.Errorf("is a directory: %s", path)
	}
	return nil
}

func checkExecutable(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", path)
		}
		return err
	}
	if fi.IsDir() {
		return fmt.Errorf("is a directory: %s", path)
	}
	if runtime.GOOS != "windows" && fi.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("is not executable: %s", path)
	}
	return nil
}
