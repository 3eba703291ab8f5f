package runtime

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sirrobot01/dockdeck/pkg/runtime/docker"
)

// DefaultSockets maps runtime names to default socket paths.
// Both speak the Docker Engine API. An empty entry defers to the Docker
// client's own resolution (DOCKER_HOST, then the platform socket or pipe).
var DefaultSockets = map[string]string{
	"docker": "",
	"podman": "/run/podman/podman.sock",
}

// pingTimeout bounds the startup connectivity check
const pingTimeout = 10 * time.Second

// New creates the container runtime session.
// runtime: "docker" or "podman".
// An empty socketPath selects the runtime's default socket.
// The session is pinged once; failure is returned and the caller should not
// start serving.
func New(runtime, socketPath string) (Client, error) {
	// Default to docker
	if runtime == "" {
		runtime = "docker"
	}

	// Validate runtime
	defaultSocket, ok := DefaultSockets[runtime]
	if !ok {
		return nil, fmt.Errorf("unknown runtime: %s (valid: docker, podman)", runtime)
	}

	if socketPath == "" {
		socketPath = defaultSocket
	}

	if socketPath != "" {
		if err := validateSocket(socketPath); err != nil {
			return nil, err
		}
	}

	log.Info().
		Str("runtime", runtime).
		Str("socket", socketPath).
		Msg("Initializing container runtime")

	client, err := docker.NewClient(socketPath)
	if err != nil {
		return nil, err
	}

	if err := pingWithTimeout(client, socketPath, runtime); err != nil {
		client.Close()
		return nil, err
	}

	log.Info().
		Str("runtime", runtime).
		Str("socket", socketPath).
		Msg("Container runtime connected successfully")

	return client, nil
}

// validateSocket checks if socket path exists and is accessible
func validateSocket(socketPath string) error {
	info, err := os.Stat(socketPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("socket not found at %s", socketPath)
		}
		return fmt.Errorf("cannot access socket at %s: %w", socketPath, err)
	}

	// Check if it's a socket or symlink to socket
	mode := info.Mode()
	if mode&os.ModeSocket == 0 && mode&os.ModeSymlink == 0 {
		// May still be valid on some systems, continue with warning
		log.Warn().
			Str("socket", socketPath).
			Str("mode", mode.String()).
			Msg("Socket path may not be a Unix socket")
	}

	return nil
}

// pingWithTimeout pings the runtime with a timeout
func pingWithTimeout(client Client, socketPath, runtime string) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		if socketPath != "" {
			return fmt.Errorf("cannot connect to %s daemon at %s: %w", runtime, socketPath, err)
		}
		return fmt.Errorf("cannot connect to %s daemon: %w (is %s running?)", runtime, err, runtime)
	}
	return nil
}
