// Package fake provides an in-memory runtime.Client for tests. Each method
// delegates to the matching func field when set and otherwise succeeds with
// a zero value. Every call is appended to Calls.
package fake

import (
	"context"
	"encoding/json"
	"iter"
	"sync"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/volume"
	"github.com/sirrobot01/dockdeck/pkg/runtime/types"
)

var _ types.Client = (*Client)(nil)

type Client struct {
	PingFunc             func(ctx context.Context) error
	ListContainersFunc   func(ctx context.Context) ([]container.Summary, error)
	CreateContainerFunc  func(ctx context.Context, cfg *types.ContainerConfig) (string, error)
	StartContainerFunc   func(ctx context.Context, id string) error
	StopContainerFunc    func(ctx context.Context, id string, timeout int) error
	KillContainerFunc    func(ctx context.Context, id, signal string) error
	PauseContainerFunc   func(ctx context.Context, id string) error
	UnpauseContainerFunc func(ctx context.Context, id string) error
	RemoveContainerFunc  func(ctx context.Context, id string, force, removeVolumes bool) error
	ContainerLogsFunc    func(ctx context.Context, id, tail string, follow bool) iter.Seq2[string, error]
	ListImagesFunc       func(ctx context.Context) ([]image.Summary, error)
	RemoveImageFunc      func(ctx context.Context, ref string, force bool) error
	PullImageFunc        func(ctx context.Context, ref string) iter.Seq2[json.RawMessage, error]
	CreateVolumeFunc     func(ctx context.Context, name string) error
	ListVolumesFunc      func(ctx context.Context, danglingOnly bool) ([]*volume.Volume, error)
	RemoveVolumeFunc     func(ctx context.Context, name string) error
	ListNetworksFunc     func(ctx context.Context) ([]network.Summary, error)
	CreateNetworkFunc    func(ctx context.Context, name, driver string) (string, error)
	InspectNetworkFunc   func(ctx context.Context, id string, verbose bool) (network.Inspect, error)
	RemoveNetworkFunc    func(ctx context.Context, id string) error
	ConnectNetworkFunc   func(ctx context.Context, networkID, containerID string) error
	DisconnectFunc       func(ctx context.Context, networkID, containerID string, force bool) error

	mu    sync.Mutex
	calls []string
}

func (c *Client) record(name string) {
	c.mu.Lock()
	c.calls = append(c.calls, name)
	c.mu.Unlock()
}

// Calls returns the names of the methods invoked so far, in order
func (c *Client) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

// Lines yields the given log lines and then ends
func Lines(lines ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, l := range lines {
			if !yield(l, nil) {
				return
			}
		}
	}
}

// Records yields the given raw JSON records, then err if it is non-nil
func Records(err error, records ...string) iter.Seq2[json.RawMessage, error] {
	return func(yield func(json.RawMessage, error) bool) {
		for _, r := range records {
			if !yield(json.RawMessage(r), nil) {
				return
			}
		}
		if err != nil {
			yield(nil, err)
		}
	}
}

func (c *Client) Close() error {
	c.record("Close")
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	c.record("Ping")
	if c.PingFunc != nil {
		return c.PingFunc(ctx)
	}
	return nil
}

func (c *Client) ListContainers(ctx context.Context) ([]container.Summary, error) {
	c.record("ListContainers")
	if c.ListContainersFunc != nil {
		return c.ListContainersFunc(ctx)
	}
	return nil, nil
}

func (c *Client) CreateContainer(ctx context.Context, cfg *types.ContainerConfig) (string, error) {
	c.record("CreateContainer")
	if c.CreateContainerFunc != nil {
		return c.CreateContainerFunc(ctx, cfg)
	}
	return "fake-container-id", nil
}

func (c *Client) StartContainer(ctx context.Context, id string) error {
	c.record("StartContainer")
	if c.StartContainerFunc != nil {
		return c.StartContainerFunc(ctx, id)
	}
	return nil
}

func (c *Client) StopContainer(ctx context.Context, id string, timeout int) error {
	c.record("StopContainer")
	if c.StopContainerFunc != nil {
		return c.StopContainerFunc(ctx, id, timeout)
	}
	return nil
}

func (c *Client) KillContainer(ctx context.Context, id, signal string) error {
	c.record("KillContainer")
	if c.KillContainerFunc != nil {
		return c.KillContainerFunc(ctx, id, signal)
	}
	return nil
}

func (c *Client) PauseContainer(ctx context.Context, id string) error {
	c.record("PauseContainer")
	if c.PauseContainerFunc != nil {
		return c.PauseContainerFunc(ctx, id)
	}
	return nil
}

func (c *Client) UnpauseContainer(ctx context.Context, id string) error {
	c.record("UnpauseContainer")
	if c.UnpauseContainerFunc != nil {
		return c.UnpauseContainerFunc(ctx, id)
	}
	return nil
}

func (c *Client) RemoveContainer(ctx context.Context, id string, force, removeVolumes bool) error {
	c.record("RemoveContainer")
	if c.RemoveContainerFunc != nil {
		return c.RemoveContainerFunc(ctx, id, force, removeVolumes)
	}
	return nil
}

func (c *Client) ContainerLogs(ctx context.Context, id, tail string, follow bool) iter.Seq2[string, error] {
	c.record("ContainerLogs")
	if c.ContainerLogsFunc != nil {
		return c.ContainerLogsFunc(ctx, id, tail, follow)
	}
	return Lines()
}

func (c *Client) ListImages(ctx context.Context) ([]image.Summary, error) {
	c.record("ListImages")
	if c.ListImagesFunc != nil {
		return c.ListImagesFunc(ctx)
	}
	return nil, nil
}

func (c *Client) RemoveImage(ctx context.Context, ref string, force bool) error {
	c.record("RemoveImage")
	if c.RemoveImageFunc != nil {
		return c.RemoveImageFunc(ctx, ref, force)
	}
	return nil
}

func (c *Client) PullImage(ctx context.Context, ref string) iter.Seq2[json.RawMessage, error] {
	c.record("PullImage")
	if c.PullImageFunc != nil {
		return c.PullImageFunc(ctx, ref)
	}
	return Records(nil)
}

func (c *Client) CreateVolume(ctx context.Context, name string) error {
	c.record("CreateVolume")
	if c.CreateVolumeFunc != nil {
		return c.CreateVolumeFunc(ctx, name)
	}
	return nil
}

func (c *Client) ListVolumes(ctx context.Context, danglingOnly bool) ([]*volume.Volume, error) {
	c.record("ListVolumes")
	if c.ListVolumesFunc != nil {
		return c.ListVolumesFunc(ctx, danglingOnly)
	}
	return nil, nil
}

func (c *Client) RemoveVolume(ctx context.Context, name string) error {
	c.record("RemoveVolume")
	if c.RemoveVolumeFunc != nil {
		return c.RemoveVolumeFunc(ctx, name)
	}
	return nil
}

func (c *Client) ListNetworks(ctx context.Context) ([]network.Summary, error) {
	c.record("ListNetworks")
	if c.ListNetworksFunc != nil {
		return c.ListNetworksFunc(ctx)
	}
	return nil, nil
}

func (c *Client) CreateNetwork(ctx context.Context, name, driver string) (string, error) {
	c.record("CreateNetwork")
	if c.CreateNetworkFunc != nil {
		return c.CreateNetworkFunc(ctx, name, driver)
	}
	return "fake-network-id", nil
}

func (c *Client) InspectNetwork(ctx context.Context, id string, verbose bool) (network.Inspect, error) {
	c.record("InspectNetwork")
	if c.InspectNetworkFunc != nil {
		return c.InspectNetworkFunc(ctx, id, verbose)
	}
	return network.Inspect{}, nil
}

func (c *Client) RemoveNetwork(ctx context.Context, id string) error {
	c.record("RemoveNetwork")
	if c.RemoveNetworkFunc != nil {
		return c.RemoveNetworkFunc(ctx, id)
	}
	return nil
}

func (c *Client) ConnectNetwork(ctx context.Context, networkID, containerID string) error {
	c.record("ConnectNetwork")
	if c.ConnectNetworkFunc != nil {
		return c.ConnectNetworkFunc(ctx, networkID, containerID)
	}
	return nil
}

func (c *Client) DisconnectNetwork(ctx context.Context, networkID, containerID string, force bool) error {
	c.record("DisconnectNetwork")
	if c.DisconnectFunc != nil {
		return c.DisconnectFunc(ctx, networkID, containerID, force)
	}
	return nil
}
