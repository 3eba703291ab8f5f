package docker

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"iter"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/docker/docker/pkg/stdcopy"
)

// lines splits r on newlines. Lines have no length limit, and a final
// line without a newline is still yielded.
func lines(r io.Reader) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		br := bufio.NewReader(r)
		for {
			line, err := br.ReadBytes('\n')
			if len(line) > 0 {
				if !yield(bytes.TrimSuffix(line, []byte{'\n'}), nil) {
					return
				}
			}
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
		}
	}
}

// ContainerLogs streams the combined stdout/stderr of a container line by line
func (c *Client) ContainerLogs(ctx context.Context, containerID string, tail string, follow bool) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		// TTY containers send a raw stream, everything else is multiplexed
		info, err := c.cli.ContainerInspect(ctx, containerID)
		if err != nil {
			yield("", err)
			return
		}

		reader, err := c.cli.ContainerLogs(ctx, containerID, container.LogsOptions{
			ShowStdout: true,
			ShowStderr: true,
			Follow:     follow,
			Tail:       tail,
		})
		if err != nil {
			yield("", err)
			return
		}
		defer reader.Close()

		var src io.Reader = reader
		if info.Config == nil || !info.Config.Tty {
			pr, pw := io.Pipe()
			go func() {
				_, err := stdcopy.StdCopy(pw, pw, reader)
				pw.CloseWithError(err)
			}()
			defer pr.Close()
			src = pr
		}

		for line, err := range lines(src) {
			if err != nil {
				yield("", err)
				return
			}
			if !yield(strings.TrimSuffix(string(line), "\r"), nil) {
				return
			}
		}
	}
}

// PullImage streams the progress records of an image pull. Records are
// passed through unparsed except for daemon error records, which end the
// sequence.
func (c *Client) PullImage(ctx context.Context, ref string) iter.Seq2[json.RawMessage, error] {
	return func(yield func(json.RawMessage, error) bool) {
		reader, err := c.cli.ImagePull(ctx, ref, image.PullOptions{})
		if err != nil {
			yield(nil, err)
			return
		}
		defer reader.Close()

		for line, err := range lines(reader) {
			if err != nil {
				yield(nil, err)
				return
			}
			line = bytes.TrimSpace(line)
			if len(line) == 0 {
				continue
			}
			if err := recordError(line); err != nil {
				yield(nil, err)
				return
			}
			if !yield(json.RawMessage(line), nil) {
				return
			}
		}
	}
}

// recordError returns the daemon error carried by a pull record, if any
func recordError(line []byte) error {
	var msg jsonmessage.JSONMessage
	if err := json.Unmarshal(line, &msg); err != nil {
		return nil
	}
	if msg.Error != nil {
		return msg.Error
	}
	if msg.ErrorMessage != "" {
		return &jsonmessage.JSONError{Message: msg.ErrorMessage}
	}
	return nil
}
