package meridian

import (
	"context"
	"time"

	"github.com/meridian-cloud/meridian/internal/command"
	"github.com/meridian-cloud/meridian/internal/db"
	"github.com/meridian-cloud/meridian/internal/domain"
	"github.com/meridian-cloud/meridian/internal/reply"
)

// HookService manages geofence webhooks.
type HookService struct {
	store db.Store
	obs   *observer
}

// Set registers (or replaces) a geofence webhook.
func (s *HookService) Set(ctx context.Context, spec HookSpec) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("hook.set", start, err) }()

	if spec.Area.build == nil {
		return domain.NewValidation("area", "a hook area is required")
	}
	source, err := spec.Area.build()
	if err != nil {
		return err
	}

	detect := make([]string, len(spec.Detect))
	for i, e := range spec.Detect {
		detect[i] = string(e)
	}

	cmd, err := command.SetHook(spec.Name, spec.Endpoint,
		domain.FenceType(spec.Fence), spec.Collection, detect, source)
	if err != nil {
		return err
	}
	_, err = s.store.Execute(ctx, cmd.String())
	return err
}

// List returns every registered hook.
func (s *HookService) List(ctx context.Context) (_ []HookInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("hook.list", start, err) }()

	cmd, err := command.Hooks("*")
	if err != nil {
		return nil, err
	}
	raw, err := s.store.Execute(ctx, cmd.String())
	if err != nil {
		return nil, err
	}
	parsed, err := reply.Hooks(raw)
	if err != nil {
		return nil, err
	}

	out := make([]HookInfo, 0, len(parsed))
	for _, h := range parsed {
		sum := command.Summarize(h.Command)
		detect := make([]DetectEvent, 0, len(sum.Detect))
		for _, e := range sum.Detect {
			detect = append(detect, DetectEvent(e))
		}
		out = append(out, HookInfo{
			Name:       h.Name,
			Collection: h.Key,
			Endpoints:  h.Endpoints,
			Command:    h.Command,
			Fence:      FenceType(sum.Fence),
			Detect:     detect,
			Area:       sum.Area,
		})
	}
	return out, nil
}

// Delete removes a hook by name.
func (s *HookService) Delete(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("hook.delete", start, err) }()

	cmd, err := command.DelHook(name)
	if err != nil {
		return err
	}
	_, err = s.store.Execute(ctx, cmd.String())
	return err
}
