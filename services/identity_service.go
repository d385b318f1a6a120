package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"docmeta/config"
	"docmeta/models"
	"docmeta/repositories"

	"gorm.io/gorm"
)

// IdentityService translates externally visible entry ids into the internal
// key space. Numeric ids pass through unchanged; provider-prefixed ids hash
// deterministically without a lookup; anything else goes through the stored
// mapping, created lazily when saveIfNotExist is set.
type IdentityService interface {
	Resolve(ctx context.Context, tenantID int, externalID string, saveIfNotExist bool) (models.EntryID, error)
}

type identityCacheKey struct {
	tenantID   int
	externalID string
}

type identityService struct {
	identity repositories.IdentityRepository

	mu       sync.Mutex
	cache    map[identityCacheKey]string
	capacity int
}

func NewIdentityService(identity repositories.IdentityRepository) IdentityService {
	capacity := 1024
	if config.AppConfig != nil && config.AppConfig.Identity.CacheSize > 0 {
		capacity = config.AppConfig.Identity.CacheSize
	}
	return &identityService{
		identity: identity,
		cache:    make(map[identityCacheKey]string, capacity),
		capacity: capacity,
	}
}

func (s *identityService) Resolve(ctx context.Context, tenantID int, externalID string, saveIfNotExist bool) (models.EntryID, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return models.EntryID{}, nil
	}

	if n, err := strconv.ParseInt(externalID, 10, 64); err == nil {
		return models.InternalID(n), nil
	}

	if hasProviderPrefix(externalID) {
		// Provider ids hash reproducibly, no mapping row needed.
		return models.ExternalID(hashID(externalID)), nil
	}

	key := identityCacheKey{tenantID: tenantID, externalID: externalID}
	s.mu.Lock()
	if hash, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return models.ExternalID(hash), nil
	}
	s.mu.Unlock()

	mapping, err := s.identity.Get(ctx, nil, tenantID, externalID)
	if err == nil {
		s.remember(key, mapping.HashID)
		return models.ExternalID(mapping.HashID), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.EntryID{}, newAppError(http.StatusInternalServerError, "resolve entry id failed", err)
	}

	hash := hashID(externalID)
	if saveIfNotExist {
		mapping := models.IdentityMapping{
			TenantID:   tenantID,
			ExternalID: externalID,
			HashID:     hash,
			CreatedAt:  time.Now(),
		}
		if err := s.identity.Upsert(ctx, nil, &mapping); err != nil {
			return models.EntryID{}, newAppError(http.StatusInternalServerError, "save entry id mapping failed", err)
		}
		s.remember(key, hash)
	}
	return models.ExternalID(hash), nil
}

func (s *identityService) remember(key identityCacheKey, hash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.cache) >= s.capacity {
		for k := range s.cache {
			delete(s.cache, k)
			break
		}
	}
	s.cache[key] = hash
}

func hasProviderPrefix(id string) bool {
	if config.AppConfig == nil {
		return false
	}
	for _, prefix := range config.AppConfig.Identity.ProviderPrefixes {
		if strings.HasPrefix(id, prefix) {
			return true
		}
	}
	return false
}

func hashID(id string) string {
	sum := md5.Sum([]byte(id))
	return hex.EncodeToString(sum[:])
}
