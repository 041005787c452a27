package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pod-tracker-api/models"
	"pod-tracker-api/services"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T, pods ...models.Pod) (*gin.Engine, *services.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := services.NewMemoryStore()
	for i := range pods {
		if err := store.Create(context.Background(), &pods[i]); err != nil {
			t.Fatalf("seed pod failed: %v", err)
		}
	}

	cache, _ := services.NewCacheService("")
	bus := services.NewBus(cache)
	engine := services.NewMutationEngine(store, bus)

	podsHandler := NewPodsHandler(store, cache)
	mutationsHandler := NewMutationsHandler(engine, bus)

	router := gin.New()
	api := router.Group("/api")
	{
		api.GET("/pods", podsHandler.ListPods)
		api.GET("/pods/near", podsHandler.NearbyPods)
		api.GET("/pods/:id", podsHandler.GetPod)
		api.POST("/pods", podsHandler.CreatePod)
		api.POST("/pods/:id/cleanliness", mutationsHandler.SetCleanliness)
		api.PUT("/pods/:id/status", mutationsHandler.SetStatus)
		api.POST("/checkin", mutationsHandler.CheckIn)
		api.POST("/report", mutationsHandler.Report)
	}
	return router, store
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListPods(t *testing.T) {
	router, _ := newTestRouter(t, services.SeedPods()...)

	w := doRequest(router, http.MethodGet, "/api/pods", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var pods []models.Pod
	if err := json.Unmarshal(w.Body.Bytes(), &pods); err != nil {
		t.Fatalf("response not a pod array: %v", err)
	}
	if len(pods) != 4 {
		t.Errorf("got %d pods, want 4", len(pods))
	}
}

func TestGetPod(t *testing.T) {
	router, _ := newTestRouter(t, models.Pod{Name: "Congress & 6th", Cleanliness: 92})

	t.Run("found", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/pods/1", "")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var pod models.Pod
		json.Unmarshal(w.Body.Bytes(), &pod)
		if pod.Name != "Congress & 6th" {
			t.Errorf("Name = %q", pod.Name)
		}
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/pods/99", "")
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})

	t.Run("non-numeric id is 404", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/pods/zzz", "")
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})
}

func TestCreatePod(t *testing.T) {
	t.Run("applies documented defaults", func(t *testing.T) {
		router, _ := newTestRouter(t)

		w := doRequest(router, http.MethodPost, "/api/pods", `{"name":"New Pod"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", w.Code)
		}
		var pod models.Pod
		json.Unmarshal(w.Body.Bytes(), &pod)
		if pod.ID == 0 {
			t.Error("id not assigned")
		}
		if pod.Cleanliness != 90 {
			t.Errorf("Cleanliness = %d, want 90", pod.Cleanliness)
		}
		if !pod.Available || !pod.SelfCleaning {
			t.Errorf("boolean defaults wrong: %+v", pod)
		}
		if pod.Lat != services.DefaultLat || pod.Lng != services.DefaultLng {
			t.Errorf("coords = (%f, %f), want defaults", pod.Lat, pod.Lng)
		}
	})

	t.Run("invalid coordinates fall back to defaults", func(t *testing.T) {
		router, store := newTestRouter(t)

		w := doRequest(router, http.MethodPost, "/api/pods", `{"name":"Bad Coords","lat":"abc","lng":"def"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", w.Code)
		}
		pod, err := store.Get(context.Background(), 1)
		if err != nil {
			t.Fatalf("stored pod missing: %v", err)
		}
		if pod.Lat != services.DefaultLat || pod.Lng != services.DefaultLng {
			t.Errorf("stored coords = (%f, %f), want defaults, never NaN", pod.Lat, pod.Lng)
		}
	})

	t.Run("numeric string coordinates are accepted", func(t *testing.T) {
		router, _ := newTestRouter(t)

		w := doRequest(router, http.MethodPost, "/api/pods", `{"name":"String Coords","lat":"30.30","lng":"-97.70"}`)
		var pod models.Pod
		json.Unmarshal(w.Body.Bytes(), &pod)
		if pod.Lat != 30.30 || pod.Lng != -97.70 {
			t.Errorf("coords = (%f, %f), want (30.30, -97.70)", pod.Lat, pod.Lng)
		}
	})

	t.Run("explicit fields override defaults", func(t *testing.T) {
		router, _ := newTestRouter(t)

		w := doRequest(router, http.MethodPost, "/api/pods",
			`{"name":"Custom","lat":30.28,"lng":-97.74,"cleanliness":55,"available":false,"self_cleaning":false}`)
		var pod models.Pod
		json.Unmarshal(w.Body.Bytes(), &pod)
		if pod.Cleanliness != 55 || pod.Available || pod.SelfCleaning {
			t.Errorf("overrides not applied: %+v", pod)
		}
	})
}

func TestNearbyPods(t *testing.T) {
	router, _ := newTestRouter(t, services.SeedPods()...)

	t.Run("missing lat or lng is 400", func(t *testing.T) {
		for _, path := range []string{
			"/api/pods/near",
			"/api/pods/near?lat=30.2672",
			"/api/pods/near?lng=-97.7431",
		} {
			w := doRequest(router, http.MethodGet, path, "")
			if w.Code != http.StatusBadRequest {
				t.Errorf("%s: status = %d, want 400", path, w.Code)
			}
		}
	})

	t.Run("non-numeric origin is 400", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/pods/near?lat=abc&lng=-97.7431", "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("returns in-radius pods nearest first", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/pods/near?lat=30.2672&lng=-97.7431&radius=1", "")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}

		var result []services.PodDistance
		if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
			t.Fatalf("bad response: %v", err)
		}
		// Zilker Park is ~2.9 km out; the other three seeds are within 1 km.
		if len(result) != 3 {
			t.Fatalf("got %d pods, want 3", len(result))
		}
		wantOrder := []string{"Congress & 6th", "Republic Square", "Capitol Grounds"}
		for i, want := range wantOrder {
			if result[i].Name != want {
				t.Errorf("result[%d] = %q, want %q", i, result[i].Name, want)
			}
		}
		if result[0].DistanceKm != 0 {
			t.Errorf("nearest pod distance = %f, want 0", result[0].DistanceKm)
		}
	})

	t.Run("radius defaults to 5km", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/pods/near?lat=30.2672&lng=-97.7431", "")
		var result []services.PodDistance
		json.Unmarshal(w.Body.Bytes(), &result)
		if len(result) != 4 {
			t.Errorf("got %d pods, want all 4 within default radius", len(result))
		}
	})
}
