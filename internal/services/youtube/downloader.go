// Package youtube downloads the audio track of online videos with yt-dlp.
package youtube

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/socialchef/recipegen/internal/errors"
	"github.com/socialchef/recipegen/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// TempAudioPrefix starts the name of every downloaded audio file.
const TempAudioPrefix = "temp_audio-"

// Downloader shells out to yt-dlp, converting the best audio stream to a
// 192 kbps mp3.
type Downloader struct {
	binary string
	dir    string
}

func NewDownloader(binary, dir string) *Downloader {
	if binary == "" {
		binary = "yt-dlp"
	}
	return &Downloader{binary: binary, dir: dir}
}

// Download saves the video's audio under a unique name in the temp audio
// directory and returns its path.
func (d *Downloader) Download(ctx context.Context, videoURL string) (string, error) {
	ctx, span := telemetry.Tracer("youtube").Start(ctx, "youtube.Download")
	defer span.End()

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", errors.NewDownloadError("Error downloading audio: cannot create temp dir", "TEMP_DIR_ERROR", err)
	}

	name := TempAudioPrefix + uuid.NewString()
	span.SetAttributes(attribute.String("audio.name", name))

	cmd := exec.CommandContext(ctx, d.binary,
		"--format", "bestaudio/best",
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", "192K",
		"--no-playlist",
		"--output", filepath.Join(d.dir, name+".%(ext)s"),
		"--print", "after_move:filepath",
		"--",
		videoURL,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		d.cleanup(name)
		return "", errors.NewDownloadError(
			fmt.Sprintf("Error downloading audio: %s", lastLine(stderr.String(), err.Error())),
			"YTDLP_FAILED", err)
	}

	path := lastLine(stdout.String(), "")
	if path == "" {
		path = filepath.Join(d.dir, name+".mp3")
	}
	if _, err := os.Stat(path); err != nil {
		d.cleanup(name)
		return "", errors.NewDownloadError("Error downloading audio: Audio file was not downloaded properly.", "AUDIO_MISSING", err)
	}

	slog.DebugContext(ctx, "Audio downloaded", "path", path)
	return path, nil
}

// cleanup removes partial files a failed run left behind.
func (d *Downloader) cleanup(name string) {
	matches, _ := filepath.Glob(filepath.Join(d.dir, name+".*"))
	for _, m := range matches {
		_ = os.Remove(m)
	}
}

func lastLine(s, fallback string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if last := strings.TrimSpace(lines[len(lines)-1]); last != "" {
		return last
	}
	return fallback
}
