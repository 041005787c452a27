package handlers

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"pod-tracker-api/models"
	"pod-tracker-api/services"

	"github.com/gin-gonic/gin"
)

const defaultRadiusKm = 5.0

type PodsHandler struct {
	store services.PodStore
	cache *services.CacheService
}

func NewPodsHandler(store services.PodStore, cache *services.CacheService) *PodsHandler {
	return &PodsHandler{store: store, cache: cache}
}

func (h *PodsHandler) ListPods(c *gin.Context) {
	pods, err := h.store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}
	c.JSON(http.StatusOK, pods)
}

func (h *PodsHandler) GetPod(c *gin.Context) {
	id, ok := parsePodID(c)
	if !ok {
		return
	}
	pod, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, pod)
}

func (h *PodsHandler) NearbyPods(c *gin.Context) {
	latStr := c.Query("lat")
	lngStr := c.Query("lng")
	if latStr == "" || lngStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng query parameters are required"})
		return
	}
	lat, latErr := strconv.ParseFloat(latStr, 64)
	lng, lngErr := strconv.ParseFloat(lngStr, 64)
	if latErr != nil || lngErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng must be valid numbers"})
		return
	}

	radius := defaultRadiusKm
	if r, err := strconv.ParseFloat(c.Query("radius"), 64); err == nil && r > 0 {
		radius = r
	}

	cacheKey := fmt.Sprintf("pods:near:%s:%s:%g", latStr, lngStr, radius)
	var cached []services.PodDistance
	if err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err == nil && cached != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	pods, err := h.store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}

	result := services.Nearby(pods, lat, lng, radius)
	go h.cache.Set(context.Background(), cacheKey, result, 5*time.Second)

	c.JSON(http.StatusOK, result)
}

type CreatePodRequest struct {
	Name         string      `json:"name"`
	Lat          interface{} `json:"lat"`
	Lng          interface{} `json:"lng"`
	Cleanliness  *int        `json:"cleanliness"`
	Available    *bool       `json:"available"`
	SelfCleaning *bool       `json:"self_cleaning"`
}

func (h *PodsHandler) CreatePod(c *gin.Context) {
	var req CreatePodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pod := models.Pod{
		Name:         req.Name,
		Lat:          coerceCoord(req.Lat, services.DefaultLat),
		Lng:          coerceCoord(req.Lng, services.DefaultLng),
		Cleanliness:  90,
		Available:    true,
		SelfCleaning: true,
		LastCleaned:  time.Now().UTC(),
	}
	if req.Cleanliness != nil {
		pod.Cleanliness = *req.Cleanliness
	}
	if req.Available != nil {
		pod.Available = *req.Available
	}
	if req.SelfCleaning != nil {
		pod.SelfCleaning = *req.SelfCleaning
	}

	if err := h.store.Create(c.Request.Context(), &pod); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create pod"})
		return
	}
	c.JSON(http.StatusCreated, pod)
}

// coerceCoord accepts a JSON number or a numeric string; anything else, or a
// non-finite value, falls back to the default location rather than storing
// garbage coordinates.
func coerceCoord(v interface{}, fallback float64) float64 {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fallback
		}
		return val
	case string:
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return fallback
		}
		return parsed
	default:
		return fallback
	}
}

func parsePodID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "pod not found"})
		return 0, false
	}
	return uint(id), true
}

func writeServiceError(c *gin.Context, err error) {
	switch err {
	case services.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "pod not found"})
	case services.ErrConflict:
		c.JSON(http.StatusConflict, gin.H{"error": "pod is not available"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
	}
}
