package dispatch

import (
	"context"
	"time"

	"github.com/sirrobot01/dockdeck/pkg/classify"
	"github.com/sirrobot01/dockdeck/pkg/relay"
)

// EmitLogs sends the full log backlog of a container to sink, then follows
// new lines until the daemon closes the stream, the sink fails, or ctx is
// cancelled. A sink failure is reported as an UnexpectedError.
func (d *Dispatcher) EmitLogs(ctx context.Context, containerName string, sink relay.Sink[string]) error {
	start := time.Now()
	if err := classify.Required("container", containerName); err != nil {
		return d.done(CmdEmitLogs, containerName, start, 0, err)
	}

	src := d.client.ContainerLogs(ctx, containerName, LogTailAll, true)
	n, err := relay.Run(ctx, src, relay.Identity[string], sink, containerCtx("stream logs of", containerName))
	return d.done(CmdEmitLogs, containerName, start, n, err)
}
