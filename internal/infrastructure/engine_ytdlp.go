package infrastructure

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

var (
	percentPattern     = regexp.MustCompile(`\[download\]\s+([0-9.]+)%`)
	destinationPattern = regexp.MustCompile(`\[download\] Destination: (.+)`)
	mergePattern       = regexp.MustCompile(`\[Merger\] Merging formats into "(.+)"`)
)

// YTDLPEngine is the primary download engine. It is the only engine with
// granular progress callbacks, parsed line by line from --newline output.
type YTDLPEngine struct {
	binary  string
	aria2c  string
	cfg     *domain.DownloadConfig
	logsDir string
	logger  *zap.Logger
}

// NewYTDLPEngine creates the primary yt-dlp engine.
func NewYTDLPEngine(engines *domain.EngineConfig, cfg *domain.DownloadConfig, logger *zap.Logger) *YTDLPEngine {
	return &YTDLPEngine{
		binary:  engines.YTDLPBinary,
		aria2c:  engines.Aria2cBinary,
		cfg:     cfg,
		logsDir: cfg.LogsDir,
		logger:  logger,
	}
}

// Name returns the engine identifier.
func (e *YTDLPEngine) Name() domain.EngineName {
	return domain.EnginePrimary
}

// Attempt runs one yt-dlp download. Success is the process exit status.
func (e *YTDLPEngine) Attempt(ctx context.Context, req domain.EngineRequest) domain.EngineResult {
	args := e.buildArgs(req)

	processLog, err := openProcessLog(e.logsDir)
	if err != nil {
		return domain.EngineResult{Err: fmt.Errorf("failed to open process log: %w", err)}
	}
	defer processLog.Close()

	cmdLine := ShellEscapeCommand(e.binary, args...)
	writeLogHeader(processLog, string(e.Name()), cmdLine)

	cmd := exec.CommandContext(ctx, e.binary, args...)
	cmd.Stderr = processLog

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return domain.EngineResult{Err: fmt.Errorf("failed to attach stdout pipe: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		writeLogFooter(processLog, false, fmt.Sprintf("failed to start yt-dlp: %v", err))
		return domain.EngineResult{Err: fmt.Errorf("failed to start yt-dlp: %w", err)}
	}

	outputPath := req.OutputPath
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		processLog.WriteString(line + "\n")

		if m := percentPattern.FindStringSubmatch(line); m != nil {
			if pct, err := strconv.ParseFloat(m[1], 64); err == nil {
				req.Tracker.Downloading(pct)
			}
		}
		if m := destinationPattern.FindStringSubmatch(line); m != nil {
			outputPath = strings.TrimSpace(m[1])
		}
		if m := mergePattern.FindStringSubmatch(line); m != nil {
			outputPath = m[1]
		}
	}

	if err := cmd.Wait(); err != nil {
		writeLogFooter(processLog, false, fmt.Sprintf("yt-dlp failed: %v", err))
		return domain.EngineResult{Err: &domain.EngineFailure{Engine: e.Name(), Err: err}}
	}

	writeLogFooter(processLog, true, fmt.Sprintf("Downloaded: %s", outputPath))
	return domain.EngineResult{Succeeded: true, OutputPath: outputPath}
}

// buildArgs assembles the yt-dlp invocation: bounded retries, fragment-level
// retries, concurrent fragments, and aria2c as the external fetch helper
// when it is on PATH.
func (e *YTDLPEngine) buildArgs(req domain.EngineRequest) []string {
	formatID := req.FormatID
	if formatID == "" {
		formatID = "bestvideo+bestaudio/best"
	}

	args := []string{
		"-f", formatID,
		"--newline",
		"--no-playlist",
		"--no-check-certificates",
		"--force-overwrites",
		"--merge-output-format", "mp4",
		"--retries", strconv.Itoa(e.cfg.MaxRetries),
		"--fragment-retries", strconv.Itoa(e.cfg.FragmentRetries),
		"--concurrent-fragments", strconv.Itoa(e.cfg.ConcurrentFragments),
		"--socket-timeout", strconv.Itoa(int(e.cfg.SocketTimeout.Seconds())),
	}

	if req.OutputPath != "" {
		args = append(args, "-o", req.OutputPath)
	} else {
		args = append(args, "-o", filepath.Join(req.OutputDir, e.cfg.OutputTemplate))
	}

	if e.cfg.CookieFile != "" && fileExists(e.cfg.CookieFile) {
		args = append(args, "--cookies", e.cfg.CookieFile)
	}

	if _, err := exec.LookPath(e.aria2c); err == nil {
		args = append(args,
			"--downloader", "aria2c",
			"--downloader-args", "aria2c:-x 64 -s 64 -k 8M")
	}

	args = append(args, req.URL)
	return args
}
