package clients

import (
	"fmt"

	"social-scheduler/domain/apperror"
	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"
	"social-scheduler/infrastructure/configuration"
)

// Registry maps platforms to their adapters. Only platforms with OAuth
// credentials configured get an adapter; the rest resolve to a validation
// error so callers can report "not supported" instead of failing deep inside
// a provider call.
type Registry struct {
	adapters map[model.Platform]repository.IPlatformAdapter
}

func NewRegistry(cfg configuration.OAuth) *Registry {
	r := &Registry{adapters: make(map[model.Platform]repository.IPlatformAdapter)}
	if cfg.Twitter.ClientID != "" {
		r.register(NewTwitterAdapter(cfg.Twitter))
	}
	if cfg.LinkedIn.ClientID != "" {
		r.register(NewLinkedInAdapter(cfg.LinkedIn))
	}
	if cfg.Facebook.ClientID != "" {
		r.register(NewFacebookAdapter(cfg.Facebook))
	}
	if cfg.Instagram.ClientID != "" {
		r.register(NewInstagramAdapter(cfg.Instagram))
	}
	if cfg.Reddit.ClientID != "" {
		r.register(NewRedditAdapter(cfg.Reddit))
	}
	if cfg.YouTube.ClientID != "" {
		r.register(NewYouTubeAdapter(cfg.YouTube))
	}
	return r
}

func (r *Registry) register(a repository.IPlatformAdapter) {
	r.adapters[a.Platform()] = a
}

func (r *Registry) Resolve(p model.Platform) (repository.IPlatformAdapter, error) {
	a, ok := r.adapters[p]
	if !ok {
		return nil, apperror.Validation(fmt.Sprintf("platform %s is not supported", p))
	}
	return a, nil
}

// Platforms lists the registered platforms.
func (r *Registry) Platforms() []model.Platform {
	out := make([]model.Platform, 0, len(r.adapters))
	for p := range r.adapters {
		out = append(out, p)
	}
	return out
}

var _ repository.AdapterResolver = (*Registry)(nil)
