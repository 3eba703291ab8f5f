// Package classify turns raw daemon failures into a small set of actionable
// error kinds.
package classify

import (
	"errors"
	"fmt"
	"strings"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/client"
)

// Kind is the classified reason of a daemon failure
type Kind int

const (
	KindOther Kind = iota
	KindNotFound
	KindPermissionDenied
	KindInUse
	KindUnreachable
)

// String returns the wire name of the kind
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindPermissionDenied:
		return "permission_denied"
	case KindInUse:
		return "in_use"
	case KindUnreachable:
		return "unreachable"
	default:
		return "other"
	}
}

// Resource identifies which daemon object an operation targets
type Resource int

const (
	ResourceContainer Resource = iota
	ResourceImage
	ResourceVolume
	ResourceNetwork
)

func (r Resource) noun() string {
	switch r {
	case ResourceImage:
		return "image"
	case ResourceVolume:
		return "volume"
	case ResourceNetwork:
		return "network"
	default:
		return "container"
	}
}

// phrase is one row of the legacy text-matching table
type phrase struct {
	text string
	kind Kind
}

// Matching is case-sensitive and ordered: the first phrase found wins.
var phrases = map[Resource][]phrase{
	ResourceContainer: {
		{"No such container", KindNotFound},
		{"permission denied", KindPermissionDenied},
	},
	ResourceImage: {
		{"No such image", KindNotFound},
		{"permission denied", KindPermissionDenied},
	},
	ResourceVolume: {
		{"No such volume", KindNotFound},
		{"in use", KindInUse},
	},
	ResourceNetwork: {
		{"not found", KindNotFound},
		{"in use", KindInUse},
	},
}

// Context describes the operation that failed
type Context struct {
	Op       string // verb, e.g. "stop" or "list"
	Resource Resource
	ID       string // resource identifier, empty for list operations
}

// Classify maps err into a DaemonError. Structured status information is
// preferred; the phrase table is consulted only when the daemon gave none.
func Classify(err error, ctx Context) *DaemonError {
	if err == nil {
		return nil
	}
	var de *DaemonError
	if errors.As(err, &de) {
		return de
	}

	raw := err.Error()
	kind, ok := structuredKind(err, ctx.Resource)
	if !ok {
		kind, ok = phraseKind(raw, ctx.Resource)
	}
	if !ok && client.IsErrConnectionFailed(err) {
		kind = KindUnreachable
	}

	return &DaemonError{
		Kind:     kind,
		Op:       ctx.Op,
		Resource: ctx.Resource,
		ID:       ctx.ID,
		Message:  message(kind, ctx, raw),
		Err:      err,
	}
}

// ClassifyMessage classifies bare daemon text with no structured status.
func ClassifyMessage(raw string, ctx Context) *DaemonError {
	return Classify(errors.New(raw), ctx)
}

func structuredKind(err error, res Resource) (Kind, bool) {
	switch {
	case cerrdefs.IsNotFound(err):
		return KindNotFound, true
	case cerrdefs.IsPermissionDenied(err):
		return KindPermissionDenied, true
	case cerrdefs.IsConflict(err) && (res == ResourceVolume || res == ResourceNetwork):
		return KindInUse, true
	}
	return KindOther, false
}

func phraseKind(raw string, res Resource) (Kind, bool) {
	for _, p := range phrases[res] {
		if strings.Contains(raw, p.text) {
			return p.kind, true
		}
	}
	return KindOther, false
}

func message(kind Kind, ctx Context, raw string) string {
	noun := ctx.Resource.noun()
	subject := noun
	if ctx.ID != "" {
		subject = fmt.Sprintf("%s '%s'", noun, ctx.ID)
	}

	switch kind {
	case KindNotFound:
		return fmt.Sprintf("%s not found: %s", capitalize(subject), raw)
	case KindPermissionDenied:
		return fmt.Sprintf("Permission denied while attempting to %s %s: %s", ctx.Op, subject, raw)
	case KindInUse:
		return fmt.Sprintf("%s is in use and cannot be removed: %s", capitalize(subject), raw)
	case KindUnreachable:
		return fmt.Sprintf("Cannot reach the daemon while attempting to %s %s: %s", ctx.Op, subject, raw)
	default:
		return fmt.Sprintf("Failed to %s %s: %s", ctx.Op, subject, raw)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
