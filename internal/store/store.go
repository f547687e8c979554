package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/MarcoPoloResearchLab/filmfolio/internal/catalog"
	"go.uber.org/zap"
)

const (
	fieldRecordKey    = "record_key"
	fieldMovieID      = "movie_id"
	fieldCollectionID = "collection_id"

	operationAdd         = "add"
	operationRemove      = "remove"
	operationUpdate      = "update"
	operationReplace     = "replace"
	operationCreate      = "create"
	operationDelete      = "delete"
	operationAddMovie    = "add_movie"
	operationRemoveMovie = "remove_movie"
)

var noOpLogger = zap.NewNop()

// Config describes the dependencies of a Store.
type Config struct {
	Substrate  Substrate
	Clock      func() time.Time
	IDProvider IDProvider
	Changes    *ChangeDispatcher
	Logger     *zap.Logger
}

// Store owns the watchlist and collections records. Every operation reads the
// whole record, mutates it in memory and writes it back; the mutex serializes
// these cycles so concurrent callers never lose updates.
type Store struct {
	mu         sync.Mutex
	substrate  Substrate
	clock      func() time.Time
	idProvider IDProvider
	changes    *ChangeDispatcher
	logger     *zap.Logger
}

// NewStore validates the configuration and returns a Store.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Substrate == nil {
		return nil, newServiceError(opStoreNew, reasonMissingSubstrate, errMissingSubstrate)
	}
	if cfg.IDProvider == nil {
		return nil, newServiceError(opStoreNew, reasonMissingIDProvider, errMissingIDProvider)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	changes := cfg.Changes
	if changes == nil {
		changes = NewChangeDispatcher()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Store{
		substrate:  cfg.Substrate,
		clock:      clock,
		idProvider: cfg.IDProvider,
		changes:    changes,
		logger:     logger,
	}, nil
}

// Initialize creates whichever backing records do not exist yet. Existing
// records are left untouched, even when they fail to parse.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{WatchlistKey, CollectionsKey} {
		_, found, err := s.substrate.Load(ctx, key)
		if err != nil {
			s.logError(opInitialize, reasonReadFailed, err, zap.String(fieldRecordKey, key))
			return newServiceError(opInitialize, reasonReadFailed, fmt.Errorf("%w: %w", ErrReadFailed, err))
		}
		if found {
			continue
		}
		if err := s.substrate.Save(ctx, key, []byte("[]")); err != nil {
			s.logError(opInitialize, reasonWriteFailed, err, zap.String(fieldRecordKey, key))
			return newServiceError(opInitialize, reasonWriteFailed, fmt.Errorf("%w: %w", ErrWriteFailed, err))
		}
		s.logger.Info("store record created", zap.String(fieldRecordKey, key))
	}
	return nil
}

// Subscribe returns a stream of change events until ctx ends or cleanup runs.
func (s *Store) Subscribe(ctx context.Context) (<-chan ChangeEvent, func()) {
	return s.changes.Subscribe(ctx)
}

// ReadWatchlist returns every entry in insertion order.
func (s *Store) ReadWatchlist(ctx context.Context) ([]WatchlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadRecord[WatchlistEntry](ctx, s, opReadWatchlist, WatchlistKey)
}

// WriteWatchlist replaces the whole watchlist.
func (s *Store) WriteWatchlist(ctx context.Context, entries []WatchlistEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := saveRecord(ctx, s, opWriteWatchlist, WatchlistKey, entries); err != nil {
		return err
	}
	s.publish(TopicWatchlist, operationReplace, 0, "")
	return nil
}

// AddToWatchlist appends a new entry for the movie with default user fields.
// When the movie is already tracked the existing entry is returned unchanged
// and added is false.
func (s *Store) AddToWatchlist(ctx context.Context, movie catalog.Movie) (WatchlistEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := loadRecord[WatchlistEntry](ctx, s, opAddToWatchlist, WatchlistKey)
	if err != nil {
		return WatchlistEntry{}, false, err
	}
	for _, existing := range entries {
		if existing.ID == movie.ID {
			return existing, false, nil
		}
	}

	entry := WatchlistEntry{
		Movie:     movie,
		Status:    StatusPlanToWatch,
		Notes:     "",
		DateAdded: s.clock().UTC(),
	}
	entries = append(entries, entry)
	if err := saveRecord(ctx, s, opAddToWatchlist, WatchlistKey, entries); err != nil {
		return WatchlistEntry{}, false, err
	}
	s.publish(TopicWatchlist, operationAdd, movie.ID, "")
	return entry, true, nil
}

// RemoveFromWatchlist deletes the entry for movieID. Absent entries are ignored.
func (s *Store) RemoveFromWatchlist(ctx context.Context, movieID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := loadRecord[WatchlistEntry](ctx, s, opRemoveFromWatchlist, WatchlistKey)
	if err != nil {
		return err
	}
	remaining := make([]WatchlistEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.ID != movieID {
			remaining = append(remaining, entry)
		}
	}
	if len(remaining) == len(entries) {
		return nil
	}
	if err := saveRecord(ctx, s, opRemoveFromWatchlist, WatchlistKey, remaining); err != nil {
		return err
	}
	s.publish(TopicWatchlist, operationRemove, movieID, "")
	return nil
}

// UpdateWatchlistItem merges the update into the entry for movieID. found is
// false, and nothing is written, when the movie is not tracked.
func (s *Store) UpdateWatchlistItem(ctx context.Context, movieID int, update WatchlistUpdate) (WatchlistEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := loadRecord[WatchlistEntry](ctx, s, opUpdateWatchlistItem, WatchlistKey)
	if err != nil {
		return WatchlistEntry{}, false, err
	}
	index := indexOfEntry(entries, movieID)
	if index < 0 {
		return WatchlistEntry{}, false, nil
	}
	if update.IsEmpty() {
		return entries[index], true, nil
	}

	entries[index] = update.applyTo(entries[index])
	if err := saveRecord(ctx, s, opUpdateWatchlistItem, WatchlistKey, entries); err != nil {
		return WatchlistEntry{}, false, err
	}
	s.publish(TopicWatchlist, operationUpdate, movieID, "")
	return entries[index], true, nil
}

// IsInWatchlist reports whether movieID is tracked.
func (s *Store) IsInWatchlist(ctx context.Context, movieID int) (bool, error) {
	_, found, err := s.WatchlistEntry(ctx, movieID)
	return found, err
}

// WatchlistEntry returns the entry for movieID, if tracked.
func (s *Store) WatchlistEntry(ctx context.Context, movieID int) (WatchlistEntry, bool, error) {
	entries, err := s.ReadWatchlist(ctx)
	if err != nil {
		return WatchlistEntry{}, false, err
	}
	index := indexOfEntry(entries, movieID)
	if index < 0 {
		return WatchlistEntry{}, false, nil
	}
	return entries[index], true, nil
}

// ReadCollections returns every collection in creation order.
func (s *Store) ReadCollections(ctx context.Context) ([]Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadCollections(ctx, opReadCollections)
}

// WriteCollections replaces every collection.
func (s *Store) WriteCollections(ctx context.Context, collections []Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := saveRecord(ctx, s, opWriteCollections, CollectionsKey, collections); err != nil {
		return err
	}
	s.publish(TopicCollections, operationReplace, 0, "")
	return nil
}

// Collection returns a single collection by identifier.
func (s *Store) Collection(ctx context.Context, collectionID string) (Collection, bool, error) {
	collections, err := s.ReadCollections(ctx)
	if err != nil {
		return Collection{}, false, err
	}
	index := indexOfCollection(collections, collectionID)
	if index < 0 {
		return Collection{}, false, nil
	}
	return collections[index], true, nil
}

// CreateCollection persists a new, empty collection.
func (s *Store) CreateCollection(ctx context.Context, name CollectionName) (Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	collections, err := s.loadCollections(ctx, opCreateCollection)
	if err != nil {
		return Collection{}, err
	}

	collectionID, err := s.idProvider.NewID()
	if err != nil {
		s.logError(opCreateCollection, reasonIDGenerationFailed, err)
		return Collection{}, newServiceError(opCreateCollection, reasonIDGenerationFailed, err)
	}

	collection := Collection{
		ID:        collectionID,
		Name:      name.String(),
		Movies:    []catalog.Movie{},
		CreatedAt: s.clock().UTC(),
	}
	collections = append(collections, collection)
	if err := saveRecord(ctx, s, opCreateCollection, CollectionsKey, collections); err != nil {
		return Collection{}, err
	}
	s.publish(TopicCollections, operationCreate, 0, collectionID)
	return collection, nil
}

// DeleteCollection removes the collection. Absent collections are ignored.
func (s *Store) DeleteCollection(ctx context.Context, collectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	collections, err := s.loadCollections(ctx, opDeleteCollection)
	if err != nil {
		return err
	}
	remaining := make([]Collection, 0, len(collections))
	for _, collection := range collections {
		if collection.ID != collectionID {
			remaining = append(remaining, collection)
		}
	}
	if len(remaining) == len(collections) {
		return nil
	}
	if err := saveRecord(ctx, s, opDeleteCollection, CollectionsKey, remaining); err != nil {
		return err
	}
	s.publish(TopicCollections, operationDelete, 0, collectionID)
	return nil
}

// AddMovieToCollection appends the movie snapshot unless the collection
// already holds it. found is false when the collection does not exist.
func (s *Store) AddMovieToCollection(ctx context.Context, collectionID string, movie catalog.Movie) (Collection, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	collections, err := s.loadCollections(ctx, opAddMovieToCollection)
	if err != nil {
		return Collection{}, false, err
	}
	index := indexOfCollection(collections, collectionID)
	if index < 0 {
		return Collection{}, false, nil
	}
	if collections[index].Contains(movie.ID) {
		return collections[index], true, nil
	}

	collections[index].Movies = append(collections[index].Movies, movie)
	if err := saveRecord(ctx, s, opAddMovieToCollection, CollectionsKey, collections); err != nil {
		return Collection{}, false, err
	}
	s.publish(TopicCollections, operationAddMovie, movie.ID, collectionID)
	return collections[index], true, nil
}

// RemoveMovieFromCollection drops the movie from the collection if present.
func (s *Store) RemoveMovieFromCollection(ctx context.Context, collectionID string, movieID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	collections, err := s.loadCollections(ctx, opRemoveMovieFromCollection)
	if err != nil {
		return err
	}
	index := indexOfCollection(collections, collectionID)
	if index < 0 || !collections[index].Contains(movieID) {
		return nil
	}

	movies := make([]catalog.Movie, 0, len(collections[index].Movies))
	for _, movie := range collections[index].Movies {
		if movie.ID != movieID {
			movies = append(movies, movie)
		}
	}
	collections[index].Movies = movies
	if err := saveRecord(ctx, s, opRemoveMovieFromCollection, CollectionsKey, collections); err != nil {
		return err
	}
	s.publish(TopicCollections, operationRemoveMovie, movieID, collectionID)
	return nil
}

func (s *Store) loadCollections(ctx context.Context, operation string) ([]Collection, error) {
	collections, err := loadRecord[Collection](ctx, s, operation, CollectionsKey)
	if err != nil {
		return nil, err
	}
	for index := range collections {
		if collections[index].Movies == nil {
			collections[index].Movies = []catalog.Movie{}
		}
	}
	return collections, nil
}

func loadRecord[T any](ctx context.Context, s *Store, operation, key string) ([]T, error) {
	raw, found, err := s.substrate.Load(ctx, key)
	if err != nil {
		s.logError(operation, reasonReadFailed, err, zap.String(fieldRecordKey, key))
		return nil, newServiceError(operation, reasonReadFailed, fmt.Errorf("%w: %w", ErrReadFailed, err))
	}
	if !found || len(bytes.TrimSpace(raw)) == 0 {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		s.logger.Warn("discarding unparseable store record",
			zap.String("operation", operation),
			zap.String(fieldRecordKey, key),
			zap.Error(err))
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func saveRecord[T any](ctx context.Context, s *Store, operation, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		s.logError(operation, reasonEncodeFailed, err, zap.String(fieldRecordKey, key))
		return newServiceError(operation, reasonEncodeFailed, fmt.Errorf("%w: %w", ErrWriteFailed, err))
	}
	if err := s.substrate.Save(ctx, key, payload); err != nil {
		s.logError(operation, reasonWriteFailed, err, zap.String(fieldRecordKey, key))
		return newServiceError(operation, reasonWriteFailed, fmt.Errorf("%w: %w", ErrWriteFailed, err))
	}
	return nil
}

func (s *Store) publish(topic ChangeTopic, operation string, movieID int, collectionID string) {
	s.changes.Publish(ChangeEvent{
		Topic:        topic,
		Operation:    operation,
		MovieID:      movieID,
		CollectionID: collectionID,
		Timestamp:    s.clock().UTC(),
	})
}

func (s *Store) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("store error", attrs...)
}

func indexOfEntry(entries []WatchlistEntry, movieID int) int {
	for index, entry := range entries {
		if entry.ID == movieID {
			return index
		}
	}
	return -1
}

func indexOfCollection(collections []Collection, collectionID string) int {
	for index, collection := range collections {
		if collection.ID == collectionID {
			return index
		}
	}
	return -1
}
