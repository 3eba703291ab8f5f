// Package types defines shared types for the runtime package hierarchy.
// This package exists to avoid import cycles between runtime and its sub-packages.
package types

import (
	"context"
	"encoding/json"
	"iter"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/volume"
)

// Client defines the container runtime operations interface.
// Every method is a single attempt against the daemon; nothing is retried.
// Implementations: docker.Client
type Client interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Container operations
	ListContainers(ctx context.Context) ([]container.Summary, error)
	CreateContainer(ctx context.Context, cfg *ContainerConfig) (string, error)
	StartContainer(ctx context.Context, containerID string) error
	StopContainer(ctx context.Context, containerID string, timeout int) error
	KillContainer(ctx context.Context, containerID string, signal string) error
	PauseContainer(ctx context.Context, containerID string) error
	UnpauseContainer(ctx context.Context, containerID string) error
	RemoveContainer(ctx context.Context, containerID string, force, removeVolumes bool) error

	// ContainerLogs yields combined stdout/stderr one line at a time.
	// Stopping the iteration closes the daemon stream.
	ContainerLogs(ctx context.Context, containerID string, tail string, follow bool) iter.Seq2[string, error]

	// Image operations
	ListImages(ctx context.Context) ([]image.Summary, error)
	RemoveImage(ctx context.Context, ref string, force bool) error

	// PullImage yields the raw progress records of a pull. A record carrying
	// a daemon error ends the sequence with that error.
	PullImage(ctx context.Context, ref string) iter.Seq2[json.RawMessage, error]

	// Volume operations
	CreateVolume(ctx context.Context, name string) error
	ListVolumes(ctx context.Context, danglingOnly bool) ([]*volume.Volume, error)
	RemoveVolume(ctx context.Context, name string) error

	// Network operations
	ListNetworks(ctx context.Context) ([]network.Summary, error)
	CreateNetwork(ctx context.Context, name, driver string) (string, error)
	InspectNetwork(ctx context.Context, networkID string, verbose bool) (network.Inspect, error)
	RemoveNetwork(ctx context.Context, networkID string) error
	ConnectNetwork(ctx context.Context, networkID, containerID string) error
	DisconnectNetwork(ctx context.Context, networkID, containerID string, force bool) error
}

// ContainerConfig holds configuration for creating a container
type ContainerConfig struct {
	Image        string
	PortBindings map[string]string // containerPort/proto -> hostPort
}
