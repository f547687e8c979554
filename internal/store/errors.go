package store

import (
	"errors"
	"fmt"
)

var (
	// ErrWriteFailed marks a mutation the durable substrate did not persist.
	ErrWriteFailed = errors.New("store: write failed")
	// ErrReadFailed marks a substrate read failure. Unparseable data is not a
	// read failure; it is treated as an empty record.
	ErrReadFailed = errors.New("store: read failed")

	errMissingSubstrate  = errors.New("substrate is required")
	errMissingIDProvider = errors.New("id provider is required")
)

// ServiceError carries a stable "<operation>.<reason>" code alongside the cause.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

// Code returns the stable error code.
func (e *ServiceError) Code() string {
	return e.code
}

const (
	opStoreNew                  = "store.new"
	opInitialize                = "store.initialize"
	opReadWatchlist             = "store.read_watchlist"
	opWriteWatchlist            = "store.write_watchlist"
	opAddToWatchlist            = "store.add_to_watchlist"
	opRemoveFromWatchlist       = "store.remove_from_watchlist"
	opUpdateWatchlistItem       = "store.update_watchlist_item"
	opReadCollections           = "store.read_collections"
	opWriteCollections          = "store.write_collections"
	opCreateCollection          = "store.create_collection"
	opDeleteCollection          = "store.delete_collection"
	opAddMovieToCollection      = "store.add_movie_to_collection"
	opRemoveMovieFromCollection = "store.remove_movie_from_collection"

	reasonMissingSubstrate   = "missing_substrate"
	reasonMissingIDProvider  = "missing_id_provider"
	reasonReadFailed         = "read_failed"
	reasonWriteFailed        = "write_failed"
	reasonEncodeFailed       = "encode_failed"
	reasonIDGenerationFailed = "id_generation_failed"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}
