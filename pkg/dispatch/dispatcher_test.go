package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
	"testing"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/volume"
	"github.com/sirrobot01/dockdeck/pkg/classify"
	"github.com/sirrobot01/dockdeck/pkg/resource"
	"github.com/sirrobot01/dockdeck/pkg/runtime"
	"github.com/sirrobot01/dockdeck/pkg/runtime/fake"
)

func setupDispatcher(t *testing.T, client *fake.Client) (*Dispatcher, *[]Event) {
	t.Helper()
	var events []Event
	d := New(client, WithRecorder(RecorderFunc(func(e Event) {
		events = append(events, e)
	})))
	return d, &events
}

func TestStopMissingContainer(t *testing.T) {
	client := &fake.Client{
		StopContainerFunc: func(ctx context.Context, id string, timeout int) error {
			return errors.New("Error response from daemon: No such container: " + id)
		},
	}
	d, events := setupDispatcher(t, client)

	err := d.StopContainer(context.Background(), "missing", DefaultStopTimeout)
	if !classify.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if !strings.Contains(err.Error(), "not found") || !strings.Contains(err.Error(), "missing") {
		t.Errorf("message should name the container: %q", err.Error())
	}
	if len(*events) != 1 || (*events)[0].Outcome() != "not_found" {
		t.Errorf("expected one not_found event, got %+v", *events)
	}
}

func TestRemoveVolumeInUse(t *testing.T) {
	client := &fake.Client{
		RemoveVolumeFunc: func(ctx context.Context, name string) error {
			return fmt.Errorf("remove %s: volume is in use - [abc123]", name)
		},
	}
	d, _ := setupDispatcher(t, client)

	err := d.RemoveVolume(context.Background(), "v1")
	if !classify.IsInUse(err) {
		t.Fatalf("expected in use, got %v", err)
	}
	if classify.IsNotFound(err) {
		t.Error("in use must be distinct from not found")
	}
	if !strings.Contains(err.Error(), "'v1' is in use") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestRemoveNetworkConflict(t *testing.T) {
	client := &fake.Client{
		RemoveNetworkFunc: func(ctx context.Context, id string) error {
			return fmt.Errorf("has active endpoints: %w", cerrdefs.ErrConflict)
		},
	}
	d, _ := setupDispatcher(t, client)

	if err := d.RemoveNetwork(context.Background(), "n1"); !classify.IsInUse(err) {
		t.Errorf("expected in use from structured conflict, got %v", err)
	}
}

func TestCreateContainerPortMapping(t *testing.T) {
	tests := []struct {
		mapping string
		want    map[string]string
	}{
		{"8080:80", map[string]string{"80/tcp": "8080"}},
		{"bad", nil},
		{"", nil},
		{"1:2:3", nil},
	}

	for _, tt := range tests {
		t.Run(tt.mapping, func(t *testing.T) {
			var got *runtime.ContainerConfig
			client := &fake.Client{
				CreateContainerFunc: func(ctx context.Context, cfg *runtime.ContainerConfig) (string, error) {
					got = cfg
					return "c1", nil
				},
			}
			d, _ := setupDispatcher(t, client)

			if err := d.CreateContainer(context.Background(), "nginx:latest", tt.mapping); err != nil {
				t.Fatalf("create failed: %v", err)
			}
			if got == nil || got.Image != "nginx:latest" {
				t.Fatalf("unexpected config: %+v", got)
			}
			if len(got.PortBindings) != len(tt.want) {
				t.Fatalf("expected bindings %v, got %v", tt.want, got.PortBindings)
			}
			for k, v := range tt.want {
				if got.PortBindings[k] != v {
					t.Errorf("binding %s: expected %s, got %s", k, v, got.PortBindings[k])
				}
			}
			if !slices.Equal(client.Calls(), []string{"CreateContainer", "StartContainer"}) {
				t.Errorf("unexpected calls: %v", client.Calls())
			}
		})
	}
}

func TestCreateContainerStartFailureKeepsContainer(t *testing.T) {
	client := &fake.Client{
		StartContainerFunc: func(ctx context.Context, id string) error {
			return errors.New("port is already allocated")
		},
	}
	d, _ := setupDispatcher(t, client)

	err := d.CreateContainer(context.Background(), "nginx", "8080:80")
	var de *classify.DaemonError
	if !errors.As(err, &de) {
		t.Fatalf("expected daemon error, got %v", err)
	}
	if de.Op != "start" || de.ID != "fake-container-id" {
		t.Errorf("error should describe the start: %+v", de)
	}
	if slices.Contains(client.Calls(), "RemoveContainer") {
		t.Error("created container must not be rolled back")
	}
}

func TestCreateContainerMissingImage(t *testing.T) {
	client := &fake.Client{
		CreateContainerFunc: func(ctx context.Context, cfg *runtime.ContainerConfig) (string, error) {
			return "", fmt.Errorf("image %s: %w", cfg.Image, cerrdefs.ErrNotFound)
		},
	}
	d, _ := setupDispatcher(t, client)

	err := d.CreateContainer(context.Background(), "ghost", "")
	if !classify.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if !strings.Contains(err.Error(), "Image 'ghost' not found") {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if slices.Contains(client.Calls(), "StartContainer") {
		t.Error("start must not run after a failed create")
	}
}

func TestValidationSkipsDaemon(t *testing.T) {
	client := &fake.Client{}
	d, events := setupDispatcher(t, client)
	ctx := context.Background()

	errs := []error{
		d.StartContainer(ctx, ""),
		d.StopContainer(ctx, "", DefaultStopTimeout),
		d.KillContainer(ctx, "", ""),
		d.PauseContainer(ctx, ""),
		d.UnpauseContainer(ctx, ""),
		d.DeleteContainer(ctx, "", false, false),
		d.CreateContainer(ctx, "", "8080:80"),
		d.RemoveImage(ctx, "", false),
		d.CreateVolume(ctx, ""),
		d.RemoveVolume(ctx, ""),
		d.CreateNetwork(ctx, "", ""),
		d.RemoveNetwork(ctx, ""),
		d.ConnectContainerToNetwork(ctx, "c1", ""),
		d.DisconnectContainerFromNetwork(ctx, "", "n1", false),
		d.EmitLogs(ctx, "", func(string) error { return nil }),
		d.PullImage(ctx, "", func(resource.ProgressEvent) error { return nil }),
	}
	for i, err := range errs {
		if !classify.IsValidation(err) {
			t.Errorf("case %d: expected validation error, got %v", i, err)
		}
	}
	if _, err := d.ListNetworkMembers(ctx, ""); !classify.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
	if calls := client.Calls(); len(calls) != 0 {
		t.Errorf("no daemon call expected, got %v", calls)
	}
	for _, e := range *events {
		if e.Outcome() != "invalid" {
			t.Errorf("%s: expected invalid outcome, got %s", e.Command, e.Outcome())
		}
	}
}

func TestKillDefaultsSignal(t *testing.T) {
	var got string
	client := &fake.Client{
		KillContainerFunc: func(ctx context.Context, id, signal string) error {
			got = signal
			return nil
		},
	}
	d, _ := setupDispatcher(t, client)

	if err := d.KillContainer(context.Background(), "web", ""); err != nil {
		t.Fatalf("kill failed: %v", err)
	}
	if got != DefaultKillSignal {
		t.Errorf("expected %s, got %s", DefaultKillSignal, got)
	}
}

func TestCreateNetworkDefaultsDriver(t *testing.T) {
	var got string
	client := &fake.Client{
		CreateNetworkFunc: func(ctx context.Context, name, driver string) (string, error) {
			got = driver
			return "n1", nil
		},
	}
	d, _ := setupDispatcher(t, client)

	if err := d.CreateNetwork(context.Background(), "backend", ""); err != nil {
		t.Fatalf("create network failed: %v", err)
	}
	if got != DefaultNetworkDriver {
		t.Errorf("expected %s, got %s", DefaultNetworkDriver, got)
	}
}

func TestListVolumesDanglingOnly(t *testing.T) {
	var dangling bool
	client := &fake.Client{
		ListVolumesFunc: func(ctx context.Context, danglingOnly bool) ([]*volume.Volume, error) {
			dangling = danglingOnly
			return []*volume.Volume{{Name: "v1", Driver: "local"}, nil}, nil
		},
	}
	d, _ := setupDispatcher(t, client)

	vols, err := d.ListVolumes(context.Background())
	if err != nil {
		t.Fatalf("list volumes failed: %v", err)
	}
	if !dangling {
		t.Error("expected dangling filter")
	}
	if len(vols) != 1 || vols[0].Name != "v1" {
		t.Errorf("unexpected volumes: %+v", vols)
	}
}

func TestListContainersMapped(t *testing.T) {
	client := &fake.Client{
		ListContainersFunc: func(ctx context.Context) ([]container.Summary, error) {
			return []container.Summary{{Names: []string{"/web"}, Status: "Up 2 minutes", State: "running"}}, nil
		},
	}
	d, events := setupDispatcher(t, client)

	list, err := d.ListContainers(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 || list[0].Name == nil || *list[0].Name != "web" {
		t.Errorf("unexpected listing: %+v", list)
	}
	if len(*events) != 1 || (*events)[0].Command != CmdListContainers || (*events)[0].Outcome() != "ok" {
		t.Errorf("unexpected events: %+v", *events)
	}
}

func TestListImagesMapped(t *testing.T) {
	client := &fake.Client{
		ListImagesFunc: func(ctx context.Context) ([]image.Summary, error) {
			return []image.Summary{
				{RepoTags: []string{"nginx:latest", "nginx:1.27"}, Size: 1024},
				{Size: 2048},
			}, nil
		},
	}
	d, events := setupDispatcher(t, client)

	list, err := d.ListImages(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 images, got %d", len(list))
	}
	if list[0].RepoTag != "nginx:latest" || list[0].Size != 1024 {
		t.Errorf("unexpected first image: %+v", list[0])
	}
	if list[1].RepoTag != "" || list[1].Size != 2048 {
		t.Errorf("untagged image should have an empty repoTag: %+v", list[1])
	}
	if len(*events) != 1 || (*events)[0].Command != CmdListImages || (*events)[0].Outcome() != "ok" {
		t.Errorf("unexpected events: %+v", *events)
	}
}

func TestDaemonErrorsPerCommand(t *testing.T) {
	tests := []struct {
		name     string
		client   *fake.Client
		run      func(d *Dispatcher) error
		command  string
		outcome  string
		contains string
	}{
		{
			name: "pause missing container",
			client: &fake.Client{PauseContainerFunc: func(ctx context.Context, id string) error {
				return errors.New("No such container: " + id)
			}},
			run:      func(d *Dispatcher) error { return d.PauseContainer(context.Background(), "web") },
			command:  CmdPauseContainer,
			outcome:  "not_found",
			contains: "Container 'web' not found",
		},
		{
			name: "pause other failure",
			client: &fake.Client{PauseContainerFunc: func(ctx context.Context, id string) error {
				return errors.New("container web is not running")
			}},
			run:      func(d *Dispatcher) error { return d.PauseContainer(context.Background(), "web") },
			command:  CmdPauseContainer,
			outcome:  "other",
			contains: "Failed to pause container 'web'",
		},
		{
			name: "unpause permission denied",
			client: &fake.Client{UnpauseContainerFunc: func(ctx context.Context, id string) error {
				return errors.New("permission denied")
			}},
			run:      func(d *Dispatcher) error { return d.UnpauseContainer(context.Background(), "web") },
			command:  CmdUnpauseContainer,
			outcome:  "permission_denied",
			contains: "attempting to unpause container 'web'",
		},
		{
			name: "unpause structured not found",
			client: &fake.Client{UnpauseContainerFunc: func(ctx context.Context, id string) error {
				return fmt.Errorf("unpause %s: %w", id, cerrdefs.ErrNotFound)
			}},
			run:      func(d *Dispatcher) error { return d.UnpauseContainer(context.Background(), "web") },
			command:  CmdUnpauseContainer,
			outcome:  "not_found",
			contains: "Container 'web' not found",
		},
		{
			name: "remove missing image",
			client: &fake.Client{RemoveImageFunc: func(ctx context.Context, ref string, force bool) error {
				return errors.New("No such image: " + ref)
			}},
			run:      func(d *Dispatcher) error { return d.RemoveImage(context.Background(), "ghost:1", true) },
			command:  CmdRemoveImage,
			outcome:  "not_found",
			contains: "Image 'ghost:1' not found",
		},
		{
			name: "remove image permission denied",
			client: &fake.Client{RemoveImageFunc: func(ctx context.Context, ref string, force bool) error {
				return errors.New("permission denied")
			}},
			run:      func(d *Dispatcher) error { return d.RemoveImage(context.Background(), "nginx", true) },
			command:  CmdRemoveImage,
			outcome:  "permission_denied",
			contains: "attempting to remove image 'nginx'",
		},
		{
			name: "list images permission denied",
			client: &fake.Client{ListImagesFunc: func(ctx context.Context) ([]image.Summary, error) {
				return nil, errors.New("permission denied")
			}},
			run: func(d *Dispatcher) error {
				_, err := d.ListImages(context.Background())
				return err
			},
			command:  CmdListImages,
			outcome:  "permission_denied",
			contains: "attempting to list image",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, events := setupDispatcher(t, tc.client)

			err := tc.run(d)
			var de *classify.DaemonError
			if !errors.As(err, &de) {
				t.Fatalf("expected DaemonError, got %T %v", err, err)
			}
			if !strings.Contains(err.Error(), tc.contains) {
				t.Errorf("expected message to contain %q, got %q", tc.contains, err.Error())
			}
			if len(*events) != 1 || (*events)[0].Command != tc.command || (*events)[0].Outcome() != tc.outcome {
				t.Errorf("unexpected events: %+v", *events)
			}
		})
	}
}

func TestListNetworksFailure(t *testing.T) {
	client := &fake.Client{
		ListNetworksFunc: func(ctx context.Context) ([]network.Summary, error) {
			return nil, errors.New("unexpected EOF")
		},
	}
	d, _ := setupDispatcher(t, client)

	_, err := d.ListNetworks(context.Background())
	kind, ok := classify.KindOf(err)
	if !ok || kind != classify.KindOther {
		t.Errorf("expected other kind, got %v", err)
	}
	if !strings.Contains(err.Error(), "Failed to list network") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestListNetworkMembers(t *testing.T) {
	var verbose bool
	client := &fake.Client{
		InspectNetworkFunc: func(ctx context.Context, id string, v bool) (network.Inspect, error) {
			verbose = v
			return network.Inspect{
				ID: "net1",
				Containers: map[string]network.EndpointResource{
					"b": {Name: ""},
					"a": {Name: "web"},
				},
			}, nil
		},
	}
	d, _ := setupDispatcher(t, client)

	members, err := d.ListNetworkMembers(context.Background(), "backend")
	if err != nil {
		t.Fatalf("list members failed: %v", err)
	}
	if !verbose {
		t.Error("expected verbose inspect")
	}
	if len(members) != 2 || members[0].Name != "web" || members[1].Name != resource.UnnamedMember {
		t.Errorf("unexpected members: %+v", members)
	}
}

func TestConnectErrorNamesNetwork(t *testing.T) {
	client := &fake.Client{
		ConnectNetworkFunc: func(ctx context.Context, networkID, containerID string) error {
			return errors.New("network backend not found")
		},
	}
	d, _ := setupDispatcher(t, client)

	err := d.ConnectContainerToNetwork(context.Background(), "web", "backend")
	if !classify.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if !strings.Contains(err.Error(), "Network 'backend' not found") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestEmitLogsDeliversInOrder(t *testing.T) {
	var tail string
	var follow bool
	client := &fake.Client{
		ContainerLogsFunc: func(ctx context.Context, id, t string, f bool) iter.Seq2[string, error] {
			tail, follow = t, f
			return fake.Lines("one", "two", "three")
		},
	}
	d, events := setupDispatcher(t, client)

	var got []string
	err := d.EmitLogs(context.Background(), "web", func(line string) error {
		got = append(got, line)
		return nil
	})
	if err != nil {
		t.Fatalf("emit logs failed: %v", err)
	}
	if !slices.Equal(got, []string{"one", "two", "three"}) {
		t.Errorf("unexpected lines: %v", got)
	}
	if tail != LogTailAll || !follow {
		t.Errorf("expected full backlog and follow, got tail=%s follow=%v", tail, follow)
	}
	if (*events)[0].Items != 3 {
		t.Errorf("expected 3 items recorded, got %d", (*events)[0].Items)
	}
}

func TestEmitLogsSinkFailure(t *testing.T) {
	client := &fake.Client{
		ContainerLogsFunc: func(ctx context.Context, id, tail string, follow bool) iter.Seq2[string, error] {
			return fake.Lines("one", "two", "three", "four")
		},
	}
	d, events := setupDispatcher(t, client)

	delivered := 0
	err := d.EmitLogs(context.Background(), "web", func(line string) error {
		if delivered == 2 {
			return errors.New("client went away")
		}
		delivered++
		return nil
	})
	if !classify.IsUnexpected(err) {
		t.Fatalf("expected unexpected error, got %v", err)
	}
	if delivered != 2 {
		t.Errorf("expected 2 delivered, got %d", delivered)
	}
	if (*events)[0].Outcome() != "unexpected" {
		t.Errorf("expected unexpected outcome, got %s", (*events)[0].Outcome())
	}
}

func TestEmitLogsMissingContainer(t *testing.T) {
	client := &fake.Client{
		ContainerLogsFunc: func(ctx context.Context, id, tail string, follow bool) iter.Seq2[string, error] {
			return func(yield func(string, error) bool) {
				yield("", errors.New("No such container: "+id))
			}
		},
	}
	d, _ := setupDispatcher(t, client)

	err := d.EmitLogs(context.Background(), "ghost", func(string) error { return nil })
	if !classify.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestPullImageSkipsMalformed(t *testing.T) {
	client := &fake.Client{
		PullImageFunc: func(ctx context.Context, ref string) iter.Seq2[json.RawMessage, error] {
			return fake.Records(nil,
				`{"status":"Pulling from library/alpine","id":"latest"}`,
				`{"id":"abc"}`,
				`{"status":"Downloading","progressDetail":{"current":10,"total":100},"id":"abc"}`,
				`not json`,
				`{"status":"Digest: sha256:1234"}`,
			)
		},
	}
	d, events := setupDispatcher(t, client)

	var got []resource.ProgressEvent
	err := d.PullImage(context.Background(), "alpine", func(ev resource.ProgressEvent) error {
		got = append(got, ev)
		return nil
	})
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d: %+v", len(got), got)
	}
	if got[1].Status != "Downloading" || got[1].ProgressDetail == nil || *got[1].ProgressDetail.Current != 10 {
		t.Errorf("unexpected progress event: %+v", got[1])
	}
	if (*events)[0].Items != 3 {
		t.Errorf("expected 3 items recorded, got %d", (*events)[0].Items)
	}
}

func TestPullImageDaemonError(t *testing.T) {
	client := &fake.Client{
		PullImageFunc: func(ctx context.Context, ref string) iter.Seq2[json.RawMessage, error] {
			return fake.Records(errors.New("manifest unknown"), `{"status":"Pulling fs layer","id":"abc"}`)
		},
	}
	d, _ := setupDispatcher(t, client)

	delivered := 0
	err := d.PullImage(context.Background(), "ghost:1", func(resource.ProgressEvent) error {
		delivered++
		return nil
	})
	var de *classify.DaemonError
	if !errors.As(err, &de) || de.Op != "pull" {
		t.Fatalf("expected pull daemon error, got %v", err)
	}
	if delivered != 1 {
		t.Errorf("expected 1 delivered before the failure, got %d", delivered)
	}
}

func TestPingWrapsError(t *testing.T) {
	boom := errors.New("connection refused")
	client := &fake.Client{PingFunc: func(ctx context.Context) error { return boom }}
	d, _ := setupDispatcher(t, client)

	if err := d.Ping(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected wrapped ping error, got %v", err)
	}
}

func TestCanceledOutcome(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := &fake.Client{
		ContainerLogsFunc: func(_ context.Context, id, tail string, follow bool) iter.Seq2[string, error] {
			return fake.Lines("one", "two")
		},
	}
	d, events := setupDispatcher(t, client)

	err := d.EmitLogs(ctx, "web", func(string) error {
		cancel()
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
	if (*events)[0].Outcome() != "canceled" || (*events)[0].Items != 1 {
		t.Errorf("unexpected event: %+v", (*events)[0])
	}
}
