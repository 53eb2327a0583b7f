package config

import (
	"fmt"
)

type CacheKeyStruct struct {
	prefix string
}

func NewCacheKeyStruct(prefix string) *CacheKeyStruct {
	return &CacheKeyStruct{prefix: prefix}
}

// StudyGroupListKey returns the cache key for the full study group list.
func (r *CacheKeyStruct) StudyGroupListKey() string {
	return fmt.Sprintf("%s:studygroups:all", r.prefix)
}

// StudyGroupGenerationKey returns the counter bumped on every list invalidation.
func (r *CacheKeyStruct) StudyGroupGenerationKey() string {
	return fmt.Sprintf("%s:studygroups:gen", r.prefix)
}

var CacheKey = NewCacheKeyStruct("sg")
