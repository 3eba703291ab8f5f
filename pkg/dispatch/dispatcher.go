// Package dispatch is the command surface of dockdeck. Each command
// validates its input, makes one call through the runtime session, and
// returns either mapped records or a classified error.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sirrobot01/dockdeck/pkg/classify"
	"github.com/sirrobot01/dockdeck/pkg/runtime"
)

// Command names, as reported to recorders
const (
	CmdListContainers     = "list_containers"
	CmdListImages         = "list_images"
	CmdEmitLogs           = "emit_logs"
	CmdCreateContainer    = "create_container"
	CmdRemoveImage        = "remove_image"
	CmdStartContainer     = "start_container"
	CmdKillContainer      = "kill_container"
	CmdDeleteContainer    = "delete_container"
	CmdStopContainer      = "stop_container"
	CmdCreateVolume       = "create_volume"
	CmdListVolumes        = "list_volumes"
	CmdRemoveVolume       = "remove_volume"
	CmdPauseContainer     = "pause_container"
	CmdUnpauseContainer   = "unpause_container"
	CmdListNetworks       = "list_networks"
	CmdCreateNetwork      = "create_network"
	CmdListNetworkMembers = "list_network_members"
	CmdRemoveNetwork      = "remove_network"
	CmdConnectNetwork     = "connect_container_to_network"
	CmdDisconnectNetwork  = "disconnect_container_from_network"
	CmdPullImage          = "pull_image"
)

// Defaults for optional command arguments
const (
	DefaultStopTimeout   = 10 // seconds
	DefaultKillSignal    = "SIGKILL"
	DefaultNetworkDriver = "bridge"
	LogTailAll           = "all"
)

// Dispatcher runs commands against a single runtime session. It holds no
// mutable state and is safe for concurrent use.
type Dispatcher struct {
	client    runtime.Client
	recorders []Recorder
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithRecorder registers a recorder notified after every command
func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) {
		d.recorders = append(d.recorders, r)
	}
}

// New creates a dispatcher over an established runtime session
func New(client runtime.Client, opts ...Option) *Dispatcher {
	d := &Dispatcher{client: client}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Ping checks that the daemon still answers. It is only called on request.
func (d *Dispatcher) Ping(ctx context.Context) error {
	if err := d.client.Ping(ctx); err != nil {
		return fmt.Errorf("ping daemon: %w", err)
	}
	return nil
}

// exec runs a mutating call and classifies its failure
func (d *Dispatcher) exec(ctx context.Context, command string, cctx classify.Context, call func(context.Context) error) error {
	start := time.Now()
	err := call(ctx)
	if err != nil {
		err = classify.Classify(err, cctx)
	}
	return d.done(command, cctx.ID, start, 0, err)
}

// query runs a read-only call and maps its result
func query[R, T any](ctx context.Context, d *Dispatcher, command string, cctx classify.Context, call func(context.Context) (R, error), project func(R) T) (T, error) {
	start := time.Now()
	raw, err := call(ctx)
	if err != nil {
		var zero T
		return zero, d.done(command, cctx.ID, start, 0, classify.Classify(err, cctx))
	}
	out := project(raw)
	d.done(command, cctx.ID, start, 0, nil)
	return out, nil
}

// done logs and records a finished command, returning err unchanged
func (d *Dispatcher) done(command, target string, start time.Time, items int, err error) error {
	ev := Event{
		Command:  command,
		Target:   target,
		Started:  start,
		Duration: time.Since(start),
		Items:    items,
		Err:      err,
	}

	var entry *zerolog.Event
	switch {
	case err != nil:
		entry = log.Warn().Err(err)
	case readOnly(command):
		entry = log.Debug()
	default:
		entry = log.Info()
	}
	entry.Str("command", command).
		Str("target", target).
		Dur("took", ev.Duration).
		Msg("Command finished")

	for _, r := range d.recorders {
		r.Record(ev)
	}
	return err
}

func readOnly(command string) bool {
	switch command {
	case CmdListContainers, CmdListImages, CmdListVolumes, CmdListNetworks, CmdListNetworkMembers, CmdEmitLogs:
		return true
	}
	return false
}
