package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/rueidis"
	"github.com/rs/zerolog"

	model "task-lifecycle.com/task-lifecycle/internal/models"
)

type RedisTemplateCache struct {
	client rueidis.Client
	prefix string
	ttl    time.Duration
	log    zerolog.Logger
}

func NewRedisTemplateCache(client rueidis.Client, prefix string, ttl time.Duration, log zerolog.Logger) *RedisTemplateCache {
	return &RedisTemplateCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		log:    log.With().Str("component", "template_cache").Logger(),
	}
}

func (r *RedisTemplateCache) Get(ctx context.Context, ref string) (*model.Template, bool) {
	cmd := r.client.B().Get().Key(r.prefix + ref).Build()
	data, err := r.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if !rueidis.IsRedisNil(err) {
			r.log.Warn().Err(err).Str("ref", ref).Msg("template cache read failed")
		}
		return nil, false
	}

	var t model.Template
	if err := json.Unmarshal(data, &t); err != nil {
		r.log.Warn().Err(err).Str("ref", ref).Msg("template cache entry is corrupt")
		return nil, false
	}
	return &t, true
}

func (r *RedisTemplateCache) Set(ctx context.Context, t *model.Template) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}

	seconds := int64(r.ttl / time.Second)
	cmds := make(rueidis.Commands, 0, 2)
	for _, key := range r.keys(t) {
		cmds = append(cmds, r.client.B().Set().Key(key).Value(rueidis.BinaryString(data)).ExSeconds(seconds).Build())
	}

	for _, resp := range r.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return err
		}
	}
	return nil
}

func (r *RedisTemplateCache) Invalidate(ctx context.Context, t *model.Template) error {
	cmd := r.client.B().Del().Key(r.keys(t)...).Build()
	return r.client.Do(ctx, cmd).Error()
}

func (r *RedisTemplateCache) keys(t *model.Template) []string {
	keys := []string{r.prefix + t.ID}
	if t.Key != "" && t.Key != t.ID {
		keys = append(keys, r.prefix+t.Key)
	}
	return keys
}
