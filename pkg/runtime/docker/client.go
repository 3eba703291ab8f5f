package docker

import (
	"context"
	"fmt"
	"io"

	dockertypes "github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/sirrobot01/dockdeck/pkg/runtime/types"
)

// dockerAPI is the subset of the Docker SDK client used by Client
type dockerAPI interface {
	Close() error
	Ping(ctx context.Context) (dockertypes.Ping, error)

	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerKill(ctx context.Context, containerID, signal string) error
	ContainerPause(ctx context.Context, containerID string) error
	ContainerUnpause(ctx context.Context, containerID string) error
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error)
	ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error)

	ImageList(ctx context.Context, options image.ListOptions) ([]image.Summary, error)
	ImageRemove(ctx context.Context, imageID string, options image.RemoveOptions) ([]image.DeleteResponse, error)
	ImagePull(ctx context.Context, refStr string, options image.PullOptions) (io.ReadCloser, error)

	VolumeCreate(ctx context.Context, options volume.CreateOptions) (volume.Volume, error)
	VolumeList(ctx context.Context, options volume.ListOptions) (volume.ListResponse, error)
	VolumeRemove(ctx context.Context, volumeID string, force bool) error

	NetworkList(ctx context.Context, options network.ListOptions) ([]network.Summary, error)
	NetworkCreate(ctx context.Context, name string, options network.CreateOptions) (network.CreateResponse, error)
	NetworkInspect(ctx context.Context, networkID string, options network.InspectOptions) (network.Inspect, error)
	NetworkRemove(ctx context.Context, networkID string) error
	NetworkConnect(ctx context.Context, networkID, containerID string, config *network.EndpointSettings) error
	NetworkDisconnect(ctx context.Context, networkID, containerID string, force bool) error
}

// Client wraps the Docker SDK client. It holds the one daemon session and
// is safe for concurrent use; it is never mutated after construction.
type Client struct {
	cli dockerAPI
}

// Verify Client implements types.Client interface
var _ types.Client = (*Client)(nil)

// NewClient creates a new Docker SDK client. An empty socketPath defers to
// DOCKER_HOST or the platform default socket/pipe.
func NewClient(socketPath string) (*Client, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if socketPath != "" {
		opts = append(opts, client.WithHost("unix://"+socketPath))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	return &Client{cli: cli}, nil
}

// Close closes the Docker client
func (c *Client) Close() error {
	return c.cli.Close()
}

// Ping checks if Docker is accessible
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.cli.Ping(ctx)
	return err
}

// ListContainers lists all containers, stopped ones included
func (c *Client) ListContainers(ctx context.Context) ([]container.Summary, error) {
	return c.cli.ContainerList(ctx, container.ListOptions{All: true})
}

// defaultHostIP is the bind address for published ports
const defaultHostIP = "0.0.0.0"

// CreateContainer creates a new container. The daemon picks its name.
func (c *Client) CreateContainer(ctx context.Context, cfg *types.ContainerConfig) (string, error) {
	exposedPorts := nat.PortSet{}
	portBindings := nat.PortMap{}

	for containerPort, hostPort := range cfg.PortBindings {
		port := nat.Port(containerPort)
		exposedPorts[port] = struct{}{}
		portBindings[port] = []nat.PortBinding{
			{HostIP: defaultHostIP, HostPort: hostPort},
		}
	}

	containerCfg := &container.Config{
		Image:        cfg.Image,
		ExposedPorts: exposedPorts,
	}

	hostCfg := &container.HostConfig{
		PortBindings: portBindings,
	}

	resp, err := c.cli.ContainerCreate(ctx, containerCfg, hostCfg, nil, nil, "")
	if err != nil {
		return "", err
	}

	return resp.ID, nil
}

// StartContainer starts a container
func (c *Client) StartContainer(ctx context.Context, containerID string) error {
	return c.cli.ContainerStart(ctx, containerID, container.StartOptions{})
}

// StopContainer stops a container, killing it after timeout seconds
func (c *Client) StopContainer(ctx context.Context, containerID string, timeout int) error {
	return c.cli.ContainerStop(ctx, containerID, container.StopOptions{Timeout: &timeout})
}

// KillContainer sends signal to a container
func (c *Client) KillContainer(ctx context.Context, containerID string, signal string) error {
	return c.cli.ContainerKill(ctx, containerID, signal)
}

// PauseContainer freezes all processes of a container
func (c *Client) PauseContainer(ctx context.Context, containerID string) error {
	return c.cli.ContainerPause(ctx, containerID)
}

// UnpauseContainer resumes a paused container
func (c *Client) UnpauseContainer(ctx context.Context, containerID string) error {
	return c.cli.ContainerUnpause(ctx, containerID)
}

// RemoveContainer removes a container
func (c *Client) RemoveContainer(ctx context.Context, containerID string, force, removeVolumes bool) error {
	return c.cli.ContainerRemove(ctx, containerID, container.RemoveOptions{
		Force:         force,
		RemoveVolumes: removeVolumes,
	})
}

// ListImages lists all images, intermediate ones included
func (c *Client) ListImages(ctx context.Context) ([]image.Summary, error) {
	return c.cli.ImageList(ctx, image.ListOptions{All: true})
}

// RemoveImage removes an image by reference or ID
func (c *Client) RemoveImage(ctx context.Context, ref string, force bool) error {
	_, err := c.cli.ImageRemove(ctx, ref, image.RemoveOptions{Force: force})
	return err
}

// CreateVolume creates a named volume with the default driver
func (c *Client) CreateVolume(ctx context.Context, name string) error {
	_, err := c.cli.VolumeCreate(ctx, volume.CreateOptions{Name: name})
	return err
}

// ListVolumes lists volumes, optionally only those no container references
func (c *Client) ListVolumes(ctx context.Context, danglingOnly bool) ([]*volume.Volume, error) {
	opts := volume.ListOptions{}
	if danglingOnly {
		opts.Filters = filters.NewArgs(filters.Arg("dangling", "true"))
	}
	resp, err := c.cli.VolumeList(ctx, opts)
	if err != nil {
		return nil, err
	}
	return resp.Volumes, nil
}

// RemoveVolume removes a Docker volume
func (c *Client) RemoveVolume(ctx context.Context, name string) error {
	return c.cli.VolumeRemove(ctx, name, false)
}

// ListNetworks returns all available Docker networks
func (c *Client) ListNetworks(ctx context.Context) ([]network.Summary, error) {
	return c.cli.NetworkList(ctx, network.ListOptions{})
}

// CreateNetwork creates a network and returns its ID
func (c *Client) CreateNetwork(ctx context.Context, name, driver string) (string, error) {
	resp, err := c.cli.NetworkCreate(ctx, name, network.CreateOptions{Driver: driver})
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

// InspectNetwork returns one network including its attached containers.
// No scope filter is sent: a "global" filter hides local bridge networks.
func (c *Client) InspectNetwork(ctx context.Context, networkID string, verbose bool) (network.Inspect, error) {
	return c.cli.NetworkInspect(ctx, networkID, network.InspectOptions{Verbose: verbose})
}

// RemoveNetwork removes a Docker network
func (c *Client) RemoveNetwork(ctx context.Context, networkID string) error {
	return c.cli.NetworkRemove(ctx, networkID)
}

// ConnectNetwork attaches a container to a network
func (c *Client) ConnectNetwork(ctx context.Context, networkID, containerID string) error {
	return c.cli.NetworkConnect(ctx, networkID, containerID, nil)
}

// DisconnectNetwork detaches a container from a network
func (c *Client) DisconnectNetwork(ctx context.Context, networkID, containerID string, force bool) error {
	return c.cli.NetworkDisconnect(ctx, networkID, containerID, force)
}
