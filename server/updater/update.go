package updater

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"syscall"
)

// UpdateExecutable runs the extractor's own self update and returns its
// output.
func UpdateExecutable(ctx context.Context, downloaderPath string) (string, error) {
	cmd := exec.CommandContext(ctx, downloaderPath, "-U")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))

	if err != nil {
		slog.Error("extractor update failed", slog.String("path", downloaderPath), slog.String("output", output), slog.Any("err", err))
		return output, err
	}

	slog.Info("extractor updated", slog.String("output", output))
	return output, nil
}
