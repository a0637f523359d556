package store

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
)

// ValidatorCache maps a feed URL to the HTTP validators its server sent on
// the last full fetch. Entries never expire on their own; they are replaced
// whenever a fetch returns a body.
type ValidatorCache map[string]Validators

// LoadValidatorCache reads the persisted cache. Missing and corrupt files
// both degrade to an empty cache: losing validators only costs one
// unconditional refetch per feed.
func LoadValidatorCache(path string) (ValidatorCache, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return ValidatorCache{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read validator cache: %w", err)
	}

	var cache ValidatorCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return ValidatorCache{}, fmt.Errorf("failed to parse validator cache %s: %w", path, err)
	}
	if cache == nil {
		cache = ValidatorCache{}
	}

	return cache, nil
}

// Save rewrites the cache in full, atomically.
func (c ValidatorCache) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode validator cache: %w", err)
	}

	return writeFileAtomic(path, append(data, '\n'))
}

// Clone returns an independent copy, so a run can update validators without
// mutating the cache it was handed.
func (c ValidatorCache) Clone() ValidatorCache {
	clone := make(ValidatorCache, len(c))
	maps.Copy(clone, c)
	return clone
}
