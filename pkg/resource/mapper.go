package resource

import (
	"cmp"
	"encoding/json"
	"maps"
	"slices"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/volume"
)

// ContainerName strips one leading "/" from a daemon container name
func ContainerName(name string) string {
	return strings.TrimPrefix(name, "/")
}

// Container maps a container list entry
func Container(c container.Summary) ContainerSummary {
	out := ContainerSummary{
		Status: optional(c.Status),
		State:  optional(string(c.State)),
		Ports:  []string{},
	}
	if len(c.Names) > 0 {
		name := ContainerName(c.Names[0])
		out.Name = &name
	}
	for _, p := range c.Ports {
		if p.IP != "" {
			out.Ports = append(out.Ports, p.IP)
		}
	}
	return out
}

// Containers maps a container listing
func Containers(list []container.Summary) []ContainerSummary {
	out := make([]ContainerSummary, 0, len(list))
	for _, c := range list {
		out = append(out, Container(c))
	}
	return out
}

// Image maps an image list entry
func Image(img image.Summary) ImageSummary {
	out := ImageSummary{Size: img.Size}
	if len(img.RepoTags) > 0 {
		out.RepoTag = img.RepoTags[0]
	}
	return out
}

// Images maps an image listing
func Images(list []image.Summary) []ImageSummary {
	out := make([]ImageSummary, 0, len(list))
	for _, img := range list {
		out = append(out, Image(img))
	}
	return out
}

// Volume maps a volume record
func Volume(v *volume.Volume) VolumeSummary {
	return VolumeSummary{
		Name:       v.Name,
		Driver:     v.Driver,
		Mountpoint: optional(v.Mountpoint),
		Labels:     maps.Clone(v.Labels),
		Scope:      optional(v.Scope),
		Status:     maps.Clone(v.Status),
	}
}

// Volumes maps a volume listing, skipping nil entries
func Volumes(list []*volume.Volume) []VolumeSummary {
	out := make([]VolumeSummary, 0, len(list))
	for _, v := range list {
		if v == nil {
			continue
		}
		out = append(out, Volume(v))
	}
	return out
}

// Network maps a network record. ok is false when any of id, name, driver
// or scope is missing; such records are dropped, never partially surfaced.
func Network(n network.Summary) (NetworkSummary, bool) {
	if n.ID == "" || n.Name == "" || n.Driver == "" || n.Scope == "" {
		return NetworkSummary{}, false
	}
	return NetworkSummary{
		ID:         n.ID,
		Name:       n.Name,
		Driver:     n.Driver,
		Scope:      n.Scope,
		Internal:   n.Internal,
		EnableIPv6: n.EnableIPv6,
		Labels:     maps.Clone(n.Labels),
	}, true
}

// Networks maps a network listing
func Networks(list []network.Summary) []NetworkSummary {
	out := make([]NetworkSummary, 0, len(list))
	for _, n := range list {
		if ns, ok := Network(n); ok {
			out = append(out, ns)
		}
	}
	return out
}

// Members maps the containers of a verbosely inspected network, ordered by
// container id
func Members(n network.Inspect) []NetworkMember {
	out := make([]NetworkMember, 0, len(n.Containers))
	for id, ep := range n.Containers {
		name := ep.Name
		if name == "" {
			name = UnnamedMember
		}
		out = append(out, NetworkMember{
			ID:        id,
			Name:      name,
			NetworkID: optional(n.ID),
		})
	}
	slices.SortFunc(out, func(a, b NetworkMember) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Progress reshapes one raw pull record. ok is false when the record is not
// a JSON object or carries no string status.
func Progress(raw json.RawMessage) (ProgressEvent, bool) {
	var rec struct {
		Status         *string `json:"status"`
		ProgressDetail *struct {
			Current *int64 `json:"current"`
			Total   *int64 `json:"total"`
		} `json:"progressDetail"`
		ID *string `json:"id"`
	}
	if err := json.Unmarshal(raw, &rec); err != nil || rec.Status == nil {
		return ProgressEvent{}, false
	}

	ev := ProgressEvent{Status: *rec.Status, ID: rec.ID}
	if rec.ProgressDetail != nil {
		ev.ProgressDetail = &ProgressDetail{
			Current: rec.ProgressDetail.Current,
			Total:   rec.ProgressDetail.Total,
		}
	}
	return ev, true
}
