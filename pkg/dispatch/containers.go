package dispatch

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sirrobot01/dockdeck/pkg/classify"
	"github.com/sirrobot01/dockdeck/pkg/resource"
	"github.com/sirrobot01/dockdeck/pkg/runtime"
)

func containerCtx(op, name string) classify.Context {
	return classify.Context{Op: op, Resource: classify.ResourceContainer, ID: name}
}

// ListContainers returns all containers, stopped ones included
func (d *Dispatcher) ListContainers(ctx context.Context) ([]resource.ContainerSummary, error) {
	return query(ctx, d, CmdListContainers, containerCtx("list", ""), d.client.ListContainers, resource.Containers)
}

// ParsePortMapping turns "hostPort:containerPort" into a binding of
// containerPort/tcp to hostPort. Anything that does not split into exactly
// two parts yields no binding.
func ParsePortMapping(mapping string) map[string]string {
	if mapping == "" {
		return nil
	}
	parts := strings.Split(mapping, ":")
	if len(parts) != 2 {
		log.Debug().Str("mapping", mapping).Msg("Ignoring malformed port mapping")
		return nil
	}
	return map[string]string{parts[1] + "/tcp": parts[0]}
}

// CreateContainer creates a container from imageRef and starts it.
// Create and start are separate daemon calls: when start fails the created
// container is left in place and the start error is returned.
func (d *Dispatcher) CreateContainer(ctx context.Context, imageRef, portMapping string) error {
	start := time.Now()
	if err := classify.Required("image", imageRef); err != nil {
		return d.done(CmdCreateContainer, imageRef, start, 0, err)
	}

	cfg := &runtime.ContainerConfig{
		Image:        imageRef,
		PortBindings: ParsePortMapping(portMapping),
	}
	id, err := d.client.CreateContainer(ctx, cfg)
	if err != nil {
		cctx := classify.Context{Op: "create container from", Resource: classify.ResourceImage, ID: imageRef}
		return d.done(CmdCreateContainer, imageRef, start, 0, classify.Classify(err, cctx))
	}

	if err := d.client.StartContainer(ctx, id); err != nil {
		log.Warn().Str("container", id).Str("image", imageRef).Msg("Container created but not started")
		return d.done(CmdCreateContainer, imageRef, start, 0, classify.Classify(err, containerCtx("start", id)))
	}

	log.Info().Str("container", id).Str("image", imageRef).Msg("Container created and started")
	return d.done(CmdCreateContainer, imageRef, start, 0, nil)
}

// StartContainer starts a stopped or created container
func (d *Dispatcher) StartContainer(ctx context.Context, name string) error {
	if err := classify.Required("container", name); err != nil {
		return d.done(CmdStartContainer, name, time.Now(), 0, err)
	}
	return d.exec(ctx, CmdStartContainer, containerCtx("start", name), func(ctx context.Context) error {
		return d.client.StartContainer(ctx, name)
	})
}

// StopContainer stops a container, killing it after timeout seconds
func (d *Dispatcher) StopContainer(ctx context.Context, name string, timeout int) error {
	if err := classify.Required("container", name); err != nil {
		return d.done(CmdStopContainer, name, time.Now(), 0, err)
	}
	return d.exec(ctx, CmdStopContainer, containerCtx("stop", name), func(ctx context.Context) error {
		return d.client.StopContainer(ctx, name, timeout)
	})
}

// KillContainer sends signal to a container; an empty signal means SIGKILL
func (d *Dispatcher) KillContainer(ctx context.Context, name, signal string) error {
	if err := classify.Required("container", name); err != nil {
		return d.done(CmdKillContainer, name, time.Now(), 0, err)
	}
	if signal == "" {
		signal = DefaultKillSignal
	}
	return d.exec(ctx, CmdKillContainer, containerCtx("kill", name), func(ctx context.Context) error {
		return d.client.KillContainer(ctx, name, signal)
	})
}

// PauseContainer freezes a running container
func (d *Dispatcher) PauseContainer(ctx context.Context, name string) error {
	if err := classify.Required("container", name); err != nil {
		return d.done(CmdPauseContainer, name, time.Now(), 0, err)
	}
	return d.exec(ctx, CmdPauseContainer, containerCtx("pause", name), func(ctx context.Context) error {
		return d.client.PauseContainer(ctx, name)
	})
}

// UnpauseContainer resumes a paused container
func (d *Dispatcher) UnpauseContainer(ctx context.Context, name string) error {
	if err := classify.Required("container", name); err != nil {
		return d.done(CmdUnpauseContainer, name, time.Now(), 0, err)
	}
	return d.exec(ctx, CmdUnpauseContainer, containerCtx("unpause", name), func(ctx context.Context) error {
		return d.client.UnpauseContainer(ctx, name)
	})
}

// DeleteContainer removes a container
func (d *Dispatcher) DeleteContainer(ctx context.Context, name string, force, removeVolumes bool) error {
	if err := classify.Required("container", name); err != nil {
		return d.done(CmdDeleteContainer, name, time.Now(), 0, err)
	}
	return d.exec(ctx, CmdDeleteContainer, containerCtx("delete", name), func(ctx context.Context) error {
		return d.client.RemoveContainer(ctx, name, force, removeVolumes)
	})
}
