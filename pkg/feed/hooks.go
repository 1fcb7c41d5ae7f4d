package feed

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mxpv/podarchive/pkg/model"
)

// ExecHook is a command invoked after an episode is archived
type ExecHook struct {
	Command []string `toml:"command"`
	Timeout int      `toml:"timeout"` // In seconds, 0 means the default of one minute
}

// EpisodeEnv builds the hook environment for an archived episode.
func EpisodeEnv(feedTitle, feedURL, episodeTitle, episodeFile string) []string {
	return []string{
		"FEED_TITLE=" + feedTitle,
		"FEED_URL=" + feedURL,
		"EPISODE_TITLE=" + episodeTitle,
		"EPISODE_FILE=" + episodeFile,
	}
}

// Invoke runs the hook with extra environment variables, a nil hook is a no-op.
func (h *ExecHook) Invoke(ctx context.Context, env []string) error {
	if h == nil {
		return nil
	}
	if len(h.Command) == 0 {
		return errors.New("hook command is empty")
	}

	timeout := model.DefaultHookTimeout
	if h.Timeout > 0 {
		timeout = time.Duration(h.Timeout) * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var cmd *exec.Cmd
	if len(h.Command) == 1 {
		// A single string is a shell snippet
		cmd = exec.CommandContext(ctx, "/bin/sh", "-c", h.Command[0])
	} else {
		cmd = exec.CommandContext(ctx, h.Command[0], h.Command[1:]...)
	}

	cmd.Env = append(os.Environ(), env...)

	data, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "hook execution failed, output: %s", strings.TrimSpace(string(data)))
	}

	return nil
}
