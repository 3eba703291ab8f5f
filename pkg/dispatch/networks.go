package dispatch

import (
	"context"
	"time"

	"github.com/docker/docker/api/types/network"
	"github.com/sirrobot01/dockdeck/pkg/classify"
	"github.com/sirrobot01/dockdeck/pkg/resource"
)

func networkCtx(op, id string) classify.Context {
	return classify.Context{Op: op, Resource: classify.ResourceNetwork, ID: id}
}

// ListNetworks returns networks that carry an id, name, driver and scope
func (d *Dispatcher) ListNetworks(ctx context.Context) ([]resource.NetworkSummary, error) {
	return query(ctx, d, CmdListNetworks, networkCtx("list", ""), d.client.ListNetworks, resource.Networks)
}

// CreateNetwork creates a network; an empty driver means bridge
func (d *Dispatcher) CreateNetwork(ctx context.Context, name, driver string) error {
	if err := classify.Required("network", name); err != nil {
		return d.done(CmdCreateNetwork, name, time.Now(), 0, err)
	}
	if driver == "" {
		driver = DefaultNetworkDriver
	}
	return d.exec(ctx, CmdCreateNetwork, networkCtx("create", name), func(ctx context.Context) error {
		_, err := d.client.CreateNetwork(ctx, name, driver)
		return err
	})
}

// ListNetworkMembers returns the containers attached to one network
func (d *Dispatcher) ListNetworkMembers(ctx context.Context, networkName string) ([]resource.NetworkMember, error) {
	if err := classify.Required("network", networkName); err != nil {
		return nil, d.done(CmdListNetworkMembers, networkName, time.Now(), 0, err)
	}
	return query(ctx, d, CmdListNetworkMembers, networkCtx("inspect", networkName), func(ctx context.Context) (network.Inspect, error) {
		return d.client.InspectNetwork(ctx, networkName, true)
	}, resource.Members)
}

// RemoveNetwork removes a network
func (d *Dispatcher) RemoveNetwork(ctx context.Context, id string) error {
	if err := classify.Required("network", id); err != nil {
		return d.done(CmdRemoveNetwork, id, time.Now(), 0, err)
	}
	return d.exec(ctx, CmdRemoveNetwork, networkCtx("remove", id), func(ctx context.Context) error {
		return d.client.RemoveNetwork(ctx, id)
	})
}

// ConnectContainerToNetwork attaches a container to a network
func (d *Dispatcher) ConnectContainerToNetwork(ctx context.Context, containerID, networkID string) error {
	if err := requireMembership(containerID, networkID); err != nil {
		return d.done(CmdConnectNetwork, networkID, time.Now(), 0, err)
	}
	cctx := networkCtx("connect container '"+containerID+"' to", networkID)
	return d.exec(ctx, CmdConnectNetwork, cctx, func(ctx context.Context) error {
		return d.client.ConnectNetwork(ctx, networkID, containerID)
	})
}

// DisconnectContainerFromNetwork detaches a container from a network
func (d *Dispatcher) DisconnectContainerFromNetwork(ctx context.Context, containerID, networkID string, force bool) error {
	if err := requireMembership(containerID, networkID); err != nil {
		return d.done(CmdDisconnectNetwork, networkID, time.Now(), 0, err)
	}
	cctx := networkCtx("disconnect container '"+containerID+"' from", networkID)
	return d.exec(ctx, CmdDisconnectNetwork, cctx, func(ctx context.Context) error {
		return d.client.DisconnectNetwork(ctx, networkID, containerID, force)
	})
}

func requireMembership(containerID, networkID string) error {
	if err := classify.Required("container", containerID); err != nil {
		return err
	}
	return classify.Required("network", networkID)
}
