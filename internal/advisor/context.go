package advisor

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/weatherwear/weatherwear/internal/recommendation"
	"github.com/weatherwear/weatherwear/internal/weather"
)

// Context store limits.
const (
	// DefaultMaxContexts caps how many users an in-memory store remembers.
	DefaultMaxContexts = 10000

	maxHistory         = 10
	maxRecommendations = 5
)

// ErrContextNotFound is returned when no context exists for a user.
var ErrContextNotFound = errors.New("user context not found")

// PersonalPreferences is what the stylist remembers about a user's taste.
type PersonalPreferences struct {
	Style            string   `json:"style,omitempty" validate:"max=50"`
	FavoriteBrands   []string `json:"favoriteBrands,omitempty" validate:"max=20,dive,max=50"`
	DislikedItems    []string `json:"dislikedItems,omitempty" validate:"max=20,dive,max=50"`
	OwnedItems       []string `json:"ownedItems,omitempty" validate:"max=50,dive,max=50"`
	ColorPreferences []string `json:"colorPreferences,omitempty" validate:"max=20,dive,max=50"`
}

// Merge overlays the fields set in update. A nil list keeps the current
// entries; an empty list clears them.
func (p PersonalPreferences) Merge(update PersonalPreferences) PersonalPreferences {
	if update.Style != "" {
		p.Style = update.Style
	}
	if update.FavoriteBrands != nil {
		p.FavoriteBrands = slices.Clone(update.FavoriteBrands)
	}
	if update.DislikedItems != nil {
		p.DislikedItems = slices.Clone(update.DislikedItems)
	}
	if update.OwnedItems != nil {
		p.OwnedItems = slices.Clone(update.OwnedItems)
	}
	if update.ColorPreferences != nil {
		p.ColorPreferences = slices.Clone(update.ColorPreferences)
	}
	return p
}

// Turn is one user message together with the weather it was asked under.
type Turn struct {
	Content     string        `json:"content"`
	At          time.Time     `json:"at"`
	Temperature float64       `json:"temperature"`
	Weather     weather.Label `json:"weather"`
}

// UserContext is the conversation state kept per user.
type UserContext struct {
	UserID              string                 `json:"userId"`
	Preferences         PersonalPreferences    `json:"preferences"`
	History             []Turn                 `json:"history"`
	LastRecommendations []recommendation.Items `json:"lastRecommendations"`
	CreatedAt           time.Time              `json:"createdAt"`
	UpdatedAt           time.Time              `json:"updatedAt"`
}

// NewUserContext returns the context a first-time user starts with.
func NewUserContext(userID string, now time.Time) *UserContext {
	return &UserContext{
		UserID:      userID,
		Preferences: PersonalPreferences{Style: defaultStyle},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AddTurn records a user message, keeping the most recent ones only.
func (uc *UserContext) AddTurn(t Turn) {
	uc.History = append(uc.History, t)
	if n := len(uc.History); n > maxHistory {
		uc.History = slices.Clone(uc.History[n-maxHistory:])
	}
}

// AddRecommendation records an outfit that was handed out.
func (uc *UserContext) AddRecommendation(items recommendation.Items) {
	uc.LastRecommendations = append(uc.LastRecommendations, items)
	if n := len(uc.LastRecommendations); n > maxRecommendations {
		uc.LastRecommendations = slices.Clone(uc.LastRecommendations[n-maxRecommendations:])
	}
}

func (uc *UserContext) clone() *UserContext {
	c := *uc
	c.Preferences.FavoriteBrands = slices.Clone(uc.Preferences.FavoriteBrands)
	c.Preferences.DislikedItems = slices.Clone(uc.Preferences.DislikedItems)
	c.Preferences.OwnedItems = slices.Clone(uc.Preferences.OwnedItems)
	c.Preferences.ColorPreferences = slices.Clone(uc.Preferences.ColorPreferences)
	c.History = slices.Clone(uc.History)
	c.LastRecommendations = slices.Clone(uc.LastRecommendations)
	return &c
}

// ContextStore keeps user contexts between requests.
type ContextStore interface {
	// Get returns a copy of the user's context or ErrContextNotFound.
	Get(ctx context.Context, userID string) (*UserContext, error)

	// Update applies fn to the user's context, creating it first when
	// missing, and returns a copy of the result. fn runs under the store's
	// lock and must not block.
	Update(ctx context.Context, userID string, fn func(*UserContext)) (*UserContext, error)
}

// InMemoryContextStore is an in-memory ContextStore. Contexts live for the
// lifetime of the process; when full, the least recently updated user is
// forgotten.
type InMemoryContextStore struct {
	mu       sync.RWMutex
	contexts map[string]*UserContext
	max      int
	now      func() time.Time
}

// NewInMemoryContextStore creates a store remembering up to maxUsers users.
// A non-positive maxUsers selects DefaultMaxContexts; a nil clock uses
// time.Now.
func NewInMemoryContextStore(maxUsers int, clock func() time.Time) *InMemoryContextStore {
	if maxUsers <= 0 {
		maxUsers = DefaultMaxContexts
	}
	if clock == nil {
		clock = time.Now
	}
	return &InMemoryContextStore{
		contexts: make(map[string]*UserContext),
		max:      maxUsers,
		now:      clock,
	}
}

// Get returns a copy of the user's context.
func (s *InMemoryContextStore) Get(_ context.Context, userID string) (*UserContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uc, ok := s.contexts[userID]
	if !ok {
		return nil, ErrContextNotFound
	}
	return uc.clone(), nil
}

// Update applies fn to the user's context atomically.
func (s *InMemoryContextStore) Update(_ context.Context, userID string, fn func(*UserContext)) (*UserContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	uc, ok := s.contexts[userID]
	if !ok {
		if len(s.contexts) >= s.max {
			s.evictOldest()
		}
		uc = NewUserContext(userID, now)
		s.contexts[userID] = uc
	}

	if fn != nil {
		fn(uc)
	}
	uc.UpdatedAt = now
	return uc.clone(), nil
}

// evictOldest drops the least recently updated context. Callers hold mu.
func (s *InMemoryContextStore) evictOldest() {
	var (
		oldestID string
		oldestAt time.Time
	)
	for id, uc := range s.contexts {
		if oldestID == "" || uc.UpdatedAt.Before(oldestAt) {
			oldestID, oldestAt = id, uc.UpdatedAt
		}
	}
	delete(s.contexts, oldestID)
}

var _ ContextStore = (*InMemoryContextStore)(nil)
