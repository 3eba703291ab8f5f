package dispatch

import (
	"context"
	"time"

	"github.com/docker/docker/api/types/volume"
	"github.com/sirrobot01/dockdeck/pkg/classify"
	"github.com/sirrobot01/dockdeck/pkg/resource"
)

func volumeCtx(op, name string) classify.Context {
	return classify.Context{Op: op, Resource: classify.ResourceVolume, ID: name}
}

// CreateVolume creates a named volume
func (d *Dispatcher) CreateVolume(ctx context.Context, name string) error {
	if err := classify.Required("volume", name); err != nil {
		return d.done(CmdCreateVolume, name, time.Now(), 0, err)
	}
	return d.exec(ctx, CmdCreateVolume, volumeCtx("create", name), func(ctx context.Context) error {
		return d.client.CreateVolume(ctx, name)
	})
}

// ListVolumes returns only the volumes the daemon flags as dangling
func (d *Dispatcher) ListVolumes(ctx context.Context) ([]resource.VolumeSummary, error) {
	return query(ctx, d, CmdListVolumes, volumeCtx("list", ""), func(ctx context.Context) ([]*volume.Volume, error) {
		return d.client.ListVolumes(ctx, true)
	}, resource.Volumes)
}

// RemoveVolume removes a volume
func (d *Dispatcher) RemoveVolume(ctx context.Context, name string) error {
	if err := classify.Required("volume", name); err != nil {
		return d.done(CmdRemoveVolume, name, time.Now(), 0, err)
	}
	return d.exec(ctx, CmdRemoveVolume, volumeCtx("remove", name), func(ctx context.Context) error {
		return d.client.RemoveVolume(ctx, name)
	})
}
