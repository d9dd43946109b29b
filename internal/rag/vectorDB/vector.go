package vectorDB

import (
	"context"
)

type PointPayload struct {
	Content string
	Source  string
	Page    int
}

// Point is one stored searchable unit. Id is the chunk's sequence index, so a
// redelivered job re-upserting the same id overwrites instead of duplicating.
type Point struct {
	Id      uint64
	Vector  []float32
	Payload PointPayload
}

type ScoredPoint struct {
	Payload PointPayload
	Score   float32
}

// Gateway owns one isolated collection per document (collection name == doc id).
type Gateway interface {
	CollectionExists(ctx context.Context, name string) (bool, error)
	//CreateCollection is idempotent for the same name and dimensionality and
	//errors when the name already exists with a different dimensionality
	CreateCollection(ctx context.Context, name string, dimension uint64) error
	UpsertPoint(ctx context.Context, collection string, point Point) error
	//Query returns up to limit points ordered by descending similarity
	Query(ctx context.Context, collection string, vector []float32, limit uint64) ([]ScoredPoint, error)
}
