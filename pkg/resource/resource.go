// Package resource projects daemon records into the stable shapes returned
// to callers. Every function is pure and tolerates missing fields; the
// daemon reports an absent optional field as its zero value.
package resource

// ContainerSummary is a container as last reported by the daemon
type ContainerSummary struct {
	Name   *string  `json:"name"`
	Status *string  `json:"status"`
	State  *string  `json:"state"`
	Ports  []string `json:"ports"` // host IPs
}

// ImageSummary is a locally stored image
type ImageSummary struct {
	RepoTag string `json:"repoTag"`
	Size    int64  `json:"size"` // bytes
}

// VolumeSummary is a named volume
type VolumeSummary struct {
	Name       string            `json:"name"`
	Driver     string            `json:"driver"`
	Mountpoint *string           `json:"mountpoint"`
	Labels     map[string]string `json:"labels"`
	Scope      *string           `json:"scope"`
	Status     map[string]any    `json:"status"`
}

// NetworkSummary is a network carrying all of id, name, driver and scope
type NetworkSummary struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Driver     string            `json:"driver"`
	Scope      string            `json:"scope"`
	Internal   bool              `json:"internal"`
	EnableIPv6 bool              `json:"enableIpv6"`
	Labels     map[string]string `json:"labels"`
}

// UnnamedMember is reported for network members the daemon gave no name
const UnnamedMember = "Unnamed"

// NetworkMember is a container attached to a network
type NetworkMember struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	NetworkID *string `json:"networkId"`
}

// ProgressDetail is the byte progress of one pulled layer
type ProgressDetail struct {
	Current *int64 `json:"current,omitempty"`
	Total   *int64 `json:"total,omitempty"`
}

// ProgressEvent is one record of an image pull
type ProgressEvent struct {
	Status         string          `json:"status"`
	ProgressDetail *ProgressDetail `json:"progressDetail,omitempty"`
	ID             *string         `json:"id,omitempty"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
