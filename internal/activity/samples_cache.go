package activity

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const samplesCacheExpireSeconds = 60 * 60

type samplesSource interface {
	SamplesForActivity(ctx context.Context, activityID string) (*Samples, error)
}

// SamplesCache sits in front of the samples repo. Activity streams are
// immutable once ingested, so a long expiry is fine.
type SamplesCache struct {
	source samplesSource
	cache  *freecache.Cache
}

func NewSamplesCache(source samplesSource, cacheSizeMegabytes int) *SamplesCache {
	megabyte := 1024 * 1024
	return &SamplesCache{
		source: source,
		cache:  freecache.NewCache(cacheSizeMegabytes * megabyte),
	}
}

func (c *SamplesCache) SamplesForActivity(ctx context.Context, activityID string) (*Samples, error) {
	cacheKey := []byte("samples::" + activityID)
	if samplesBytes, err := c.cache.Get(cacheKey); err == nil {
		var samples Samples
		if err := json.Unmarshal(samplesBytes, &samples); err == nil {
			log.Tracef("found samples for activity %s in cache", activityID)
			return &samples, nil
		}
		log.Errorf("failed to unmarshal cached samples for activity %s: %s", activityID, err)
	} else if !errors.Is(err, freecache.ErrNotFound) {
		log.Debugf("get samples for activity %s from cache: %s", activityID, err)
	}

	samples, err := c.source.SamplesForActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}

	samplesBytes, err := json.Marshal(samples)
	if err != nil {
		log.Errorf("failed to marshal samples for activity %s cache: %s", activityID, err)
		return samples, nil
	}
	if err := c.cache.Set(cacheKey, samplesBytes, samplesCacheExpireSeconds); err != nil {
		log.Errorf("failed to write samples cache for activity %s: %s", activityID, err)
	}

	return samples, nil
}
