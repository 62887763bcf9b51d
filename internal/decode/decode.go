// Package decode turns media files into pixel buffers. Images decode
// in-process; video frames are sampled through ffmpeg, treated as a
// bounded-latency external call with a retry-once policy.
package decode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strings"

	"github.com/disintegration/imaging"

	"photomerge/internal/services"
)

// Image decodes the file at path into a normalized NRGBA buffer. The
// normalization guarantees that identical source pixels produce identical
// buffers regardless of the decoder's native format.
func Image(path string) (*image.NRGBA, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrDecode, "decode", "image", path, err)
	}
	return imaging.Clone(img), nil
}

// VideoFrames samples n frames at evenly spaced points of the video at path.
// Sample points sit at the midpoints of n equal slices, so a 100 s video
// sampled 4 times reads frames at 12.5, 37.5, 62.5 and 87.5 seconds.
func VideoFrames(ctx context.Context, ffmpegBin, ffprobeBin, path string, n int) ([]image.Image, error) {
	if n <= 0 {
		return nil, services.Wrap(services.ErrValidation, "decode", "video-frames", "frame count must be positive", nil)
	}
	duration, err := probeDuration(ctx, ffprobeBin, path)
	if err != nil {
		return nil, err
	}
	if duration <= 0 {
		return nil, services.Wrap(services.ErrDecode, "decode", "video-frames", path+": zero duration", nil)
	}

	frames := make([]image.Image, 0, n)
	for i := 0; i < n; i++ {
		offset := duration * (2*float64(i) + 1) / (2 * float64(n))
		frame, err := extractFrame(ctx, ffmpegBin, path, offset)
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// probeDuration asks ffprobe for the container duration in seconds.
func probeDuration(ctx context.Context, binary, path string) (float64, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}

	run := func() ([]byte, error) {
		cmd := exec.CommandContext(ctx, binary,
			"-v", "error", "-hide_banner", "-show_format", "-of", "json", "--", path)
		return cmd.CombinedOutput()
	}
	output, err := run()
	if err != nil {
		// One retry: probe failures are often transient contention on slow
		// external storage.
		output, err = run()
	}
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "decode", "ffprobe",
			path+": "+strings.TrimSpace(string(output)), err)
	}

	var parsed struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(output, &parsed); err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "decode", "ffprobe", "parse output", err)
	}
	var duration float64
	if _, err := fmt.Sscanf(strings.TrimSpace(parsed.Format.Duration), "%f", &duration); err != nil {
		return 0, services.Wrap(services.ErrDecode, "decode", "ffprobe",
			path+": no duration in probe output", nil)
	}
	return duration, nil
}

// extractFrame decodes a single frame at the given offset via ffmpeg's
// image2pipe output.
func extractFrame(ctx context.Context, binary, path string, offsetSeconds float64) (image.Image, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}

	run := func() ([]byte, []byte, error) {
		var stdout, stderr bytes.Buffer
		cmd := exec.CommandContext(ctx, binary,
			"-v", "error", "-hide_banner",
			"-ss", fmt.Sprintf("%.3f", offsetSeconds),
			"-i", path,
			"-frames:v", "1",
			"-f", "image2pipe", "-vcodec", "png", "-")
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		err := cmd.Run()
		return stdout.Bytes(), stderr.Bytes(), err
	}
	frameData, stderr, err := run()
	if err != nil {
		frameData, stderr, err = run()
	}
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "decode", "ffmpeg",
			fmt.Sprintf("%s @ %.3fs: %s", path, offsetSeconds, strings.TrimSpace(string(stderr))), err)
	}

	frame, err := png.Decode(bytes.NewReader(frameData))
	if err != nil {
		return nil, services.Wrap(services.ErrDecode, "decode", "frame",
			fmt.Sprintf("%s @ %.3fs", path, offsetSeconds), err)
	}
	return frame, nil
}
