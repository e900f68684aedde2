package media

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var ErrUnmeasurable = errors.New("duration unmeasurable")

// ProbeResult is the outcome of a duration probe. Seconds is 0 whenever Err
// is set, so callers that only need a number can ignore Err.
type ProbeResult struct {
	Seconds float64
	Err     error
}

func (r ProbeResult) Measured() bool {
	return r.Err == nil
}

func Measured(seconds float64) ProbeResult {
	return ProbeResult{Seconds: seconds}
}

func Unmeasured(err error) ProbeResult {
	return ProbeResult{Err: err}
}

// DurationProbe measures the play duration of a media file.
type DurationProbe interface {
	Probe(ctx context.Context, path string) ProbeResult
}

// FFprobe runs the ffprobe binary once per file.
type FFprobe struct {
	ffprobePath string
	timeout     time.Duration
	logger      zerolog.Logger
}

func NewFFprobe(ffprobePath string, timeout time.Duration, logger zerolog.Logger) *FFprobe {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
		if path, err := exec.LookPath("ffprobe"); err == nil {
			ffprobePath = path
		}
	}

	return &FFprobe{
		ffprobePath: ffprobePath,
		timeout:     timeout,
		logger:      logger,
	}
}

func (p *FFprobe) IsAvailable() bool {
	_, err := exec.LookPath(p.ffprobePath)
	return err == nil
}

func (p *FFprobe) Probe(ctx context.Context, filePath string) ProbeResult {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		filePath,
	}

	// CombinedOutput waits for the process, so it is reaped on every path.
	output, err := exec.CommandContext(ctx, p.ffprobePath, args...).CombinedOutput()
	if err != nil {
		p.logger.Debug().Err(err).Str("file", filePath).Msg("ffprobe failed")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Unmeasured(fmt.Errorf("%w: %v", ErrUnmeasurable, ctxErr))
		}
		return Unmeasured(fmt.Errorf("%w: %v", ErrUnmeasurable, err))
	}

	seconds, err := parseDuration(output)
	if err != nil {
		p.logger.Debug().Err(err).Str("file", filePath).Msg("unparsable ffprobe output")
		return Unmeasured(err)
	}
	return Measured(seconds)
}

func parseDuration(output []byte) (float64, error) {
	text := strings.TrimSpace(string(output))
	seconds, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrUnmeasurable, text)
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return 0, fmt.Errorf("%w: invalid duration %q", ErrUnmeasurable, text)
	}
	return seconds, nil
}
