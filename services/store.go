package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pod-tracker-api/models"

	"gorm.io/gorm"
)

// Default drop location used when a pod is created without usable
// coordinates, and origin of the seed fleet (downtown Austin, TX).
const (
	DefaultLat = 30.2672
	DefaultLng = -97.7431
)

// PodStore is the single ownership boundary around pod records. Every
// mutation path funnels through it; per-pod writes are atomic and reads
// observe completed writes.
type PodStore interface {
	Create(ctx context.Context, pod *models.Pod) error
	Get(ctx context.Context, id uint) (*models.Pod, error)
	List(ctx context.Context) ([]models.Pod, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) (*models.Pod, error)
}

// GormStore persists pods in Postgres via gorm.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate ensures the pods table exists.
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(&models.Pod{})
}

// EnsureSeed inserts the demo fleet when the table is empty, so a fresh
// deployment has something on the map.
func (s *GormStore) EnsureSeed(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Pod{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count pods: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, pod := range SeedPods() {
		if err := s.Create(ctx, &pod); err != nil {
			return err
		}
	}
	return nil
}

// SeedPods returns the four demo pods inserted on first run.
func SeedPods() []models.Pod {
	now := time.Now().UTC()
	return []models.Pod{
		{Name: "Congress & 6th", Lat: 30.2672, Lng: -97.7431, Cleanliness: 92, Available: true, SelfCleaning: true, LastCleaned: now},
		{Name: "Republic Square", Lat: 30.2669, Lng: -97.7470, Cleanliness: 85, Available: true, SelfCleaning: false, LastCleaned: now},
		{Name: "Capitol Grounds", Lat: 30.2747, Lng: -97.7404, Cleanliness: 78, Available: true, SelfCleaning: true, LastCleaned: now},
		{Name: "Zilker Park", Lat: 30.2669, Lng: -97.7729, Cleanliness: 88, Available: true, SelfCleaning: false, LastCleaned: now},
	}
}

func (s *GormStore) Create(ctx context.Context, pod *models.Pod) error {
	if err := s.db.WithContext(ctx).Create(pod).Error; err != nil {
		return fmt.Errorf("create pod: %w", err)
	}
	return nil
}

func (s *GormStore) Get(ctx context.Context, id uint) (*models.Pod, error) {
	var pod models.Pod
	err := s.db.WithContext(ctx).First(&pod, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pod %d: %w", id, err)
	}
	return &pod, nil
}

func (s *GormStore) List(ctx context.Context) ([]models.Pod, error) {
	var pods []models.Pod
	if err := s.db.WithContext(ctx).Order("id").Find(&pods).Error; err != nil {
		return nil, fmt.Errorf("list pods: %w", err)
	}
	return pods, nil
}

func (s *GormStore) Update(ctx context.Context, id uint, fields map[string]interface{}) (*models.Pod, error) {
	res := s.db.WithContext(ctx).Model(&models.Pod{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, fmt.Errorf("update pod %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// MemoryStore is an in-process PodStore with the same semantics as the gorm
// implementation: ids assigned on create, insertion-order listing, per-pod
// atomic updates. Used by tests and handy for local demos without Postgres.
type MemoryStore struct {
	mu     sync.Mutex
	nextID uint
	pods   []models.Pod
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (s *MemoryStore) Create(ctx context.Context, pod *models.Pod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pod.ID = s.nextID
	s.nextID++
	s.pods = append(s.pods, *pod)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id uint) (*models.Pod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.pods {
		if s.pods[i].ID == id {
			pod := s.pods[i]
			return &pod, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) List(ctx context.Context) ([]models.Pod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Pod, len(s.pods))
	copy(out, s.pods)
	return out, nil
}

func (s *MemoryStore) Update(ctx context.Context, id uint, fields map[string]interface{}) (*models.Pod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.pods {
		if s.pods[i].ID != id {
			continue
		}
		for key, value := range fields {
			switch key {
			case "name":
				s.pods[i].Name = value.(string)
			case "lat":
				s.pods[i].Lat = value.(float64)
			case "lng":
				s.pods[i].Lng = value.(float64)
			case "cleanliness":
				s.pods[i].Cleanliness = value.(int)
			case "available":
				s.pods[i].Available = value.(bool)
			case "self_cleaning":
				s.pods[i].SelfCleaning = value.(bool)
			case "last_cleaned":
				s.pods[i].LastCleaned = value.(time.Time)
			default:
				return nil, fmt.Errorf("unknown pod field %q", key)
			}
		}
		pod := s.pods[i]
		return &pod, nil
	}
	return nil, ErrNotFound
}
