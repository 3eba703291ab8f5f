package dispatch

import (
	"context"
	"time"

	"github.com/sirrobot01/dockdeck/pkg/classify"
	"github.com/sirrobot01/dockdeck/pkg/relay"
	"github.com/sirrobot01/dockdeck/pkg/resource"
)

func imageCtx(op, ref string) classify.Context {
	return classify.Context{Op: op, Resource: classify.ResourceImage, ID: ref}
}

// ListImages returns all local images
func (d *Dispatcher) ListImages(ctx context.Context) ([]resource.ImageSummary, error) {
	return query(ctx, d, CmdListImages, imageCtx("list", ""), d.client.ListImages, resource.Images)
}

// RemoveImage removes an image by reference or ID
func (d *Dispatcher) RemoveImage(ctx context.Context, ref string, force bool) error {
	if err := classify.Required("image", ref); err != nil {
		return d.done(CmdRemoveImage, ref, time.Now(), 0, err)
	}
	return d.exec(ctx, CmdRemoveImage, imageCtx("remove", ref), func(ctx context.Context) error {
		return d.client.RemoveImage(ctx, ref, force)
	})
}

// PullImage pulls imageRef and delivers each well-formed progress record to
// sink in arrival order. Records that do not have the progress shape are
// skipped. The first daemon error aborts the pull and is returned.
func (d *Dispatcher) PullImage(ctx context.Context, imageRef string, sink relay.Sink[resource.ProgressEvent]) error {
	start := time.Now()
	if err := classify.Required("image", imageRef); err != nil {
		return d.done(CmdPullImage, imageRef, start, 0, err)
	}

	n, err := relay.Run(ctx, d.client.PullImage(ctx, imageRef), resource.Progress, sink, imageCtx("pull", imageRef))
	return d.done(CmdPullImage, imageRef, start, n, err)
}
