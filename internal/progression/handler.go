package progression

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coocood/freecache"
	gocache "github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"

	"github.com/vstojkovic/repforge/internal/telemetry/tracing"
	"github.com/vstojkovic/repforge/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=progression_test

type progressionService interface {
	ExperienceState(ctx context.Context, userID string) (*ExperienceState, error)
	Leaderboard(ctx context.Context, userID string) (Leaderboard, error)
}

const (
	// leaderboard rows are the same for everyone, cache the serialized bytes
	leaderboardCacheExpireSeconds = 60
	leaderboardCacheKey           = "leaderboard"

	// per-user tree snapshots are cheap to hold but invalidate quickly
	treeCacheExpire  = 30 * time.Second
	treeCacheCleanup = 5 * time.Minute
)

type Handler struct {
	service          progressionService
	leaderboardCache *freecache.Cache
	treeCache        *gocache.Cache
}

func NewHandler(service progressionService) *Handler {
	megabyte := 1024 * 1024
	return &Handler{
		service:          service,
		leaderboardCache: freecache.NewCache(megabyte),
		treeCache:        gocache.New(treeCacheExpire, treeCacheCleanup),
	}
}

func (handler *Handler) HandleTree(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progression.tree")
	defer span.End()

	userID := r.URL.Query().Get("user")
	if userID == "" {
		http.Error(w, "error, user id empty", http.StatusBadRequest)
		return
	}

	if cached, found := handler.treeCache.Get(userID); found {
		if state, ok := cached.(*ExperienceState); ok {
			handler.writeExperienceState(w, state)
			return
		}
	}

	state, err := handler.service.ExperienceState(ctx, userID)
	if err != nil {
		log.Errorf("failed to get progression state for user [%s]: %s", userID, err)
		http.Error(w, "failed to get progression state", http.StatusInternalServerError)
		return
	}

	handler.treeCache.Set(userID, state, gocache.DefaultExpiration)
	handler.writeExperienceState(w, state)
}

func (handler *Handler) writeExperienceState(w http.ResponseWriter, state *ExperienceState) {
	stateJson, err := json.Marshal(state)
	if err != nil {
		log.Errorf("failed to marshal progression state: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, stateJson, http.StatusOK)
}

func (handler *Handler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progression.leaderboard")
	defer span.End()

	userID := r.URL.Query().Get("user")

	// only the anonymous board is cacheable, a user specific response
	// carries that user's own rank
	if userID == "" {
		if cached, err := handler.leaderboardCache.Get([]byte(leaderboardCacheKey)); err == nil {
			log.Tracef("serving leaderboard from cache")
			pkg.WriteResponseBytes(w, pkg.ContentType.JSON, cached, http.StatusOK)
			return
		}
	}

	board, err := handler.service.Leaderboard(ctx, userID)
	if err != nil {
		log.Errorf("failed to get leaderboard: %s", err)
		http.Error(w, "failed to get leaderboard", http.StatusInternalServerError)
		return
	}

	boardJson, err := json.Marshal(board)
	if err != nil {
		log.Errorf("failed to marshal leaderboard: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if userID == "" {
		if err := handler.leaderboardCache.Set(
			[]byte(leaderboardCacheKey), boardJson, leaderboardCacheExpireSeconds,
		); err != nil {
			log.Errorf("failed to write leaderboard cache: %s", err)
		}
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, boardJson, http.StatusOK)
}
