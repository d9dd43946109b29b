package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/rag/vectorDB"
	"github.com/akolanti/DocChatAPI/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var logger *logger_i.Logger
var qdrantInstance *qdrant.Client
var once sync.Once

type ClientHolder struct {
	QObj *qdrant.Client
}

func GetQdrantClient(ctx context.Context) *ClientHolder {

	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient()
		if res != nil {
			qdrantInstance = res
			go closeQdrant(ctx, qdrantInstance)
		}
	})

	if qdrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj: qdrantInstance,
	}
}

func newClient() *qdrant.Client {

	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))

	if host == "" {
		host = config.QdrantHost
	}
	if er != nil {
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
		return nil
	}

	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	err := qi.Close()
	if err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
	logger.Info("Closed Qdrant")
}

func (db *ClientHolder) CollectionExists(ctx context.Context, name string) (bool, error) {
	return db.QObj.CollectionExists(ctx, name)
}

// CreateCollection is create-if-absent. Two workers racing on the same fresh
// doc id can both reach the create call; the loser's AlreadyExists is benign
// as long as the dimensionality matches.
func (db *ClientHolder) CreateCollection(ctx context.Context, name string, dimension uint64) error {
	if name == "" {
		return errors.New("empty collection name")
	}

	exists, err := db.QObj.CollectionExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return db.verifyDimension(ctx, name, dimension)
	}

	err = db.QObj.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if status.Code(err) == codes.AlreadyExists {
		return db.verifyDimension(ctx, name, dimension)
	}
	return err
}

func (db *ClientHolder) verifyDimension(ctx context.Context, name string, dimension uint64) error {
	info, err := db.QObj.GetCollectionInfo(ctx, name)
	if err != nil {
		return err
	}
	existing := info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()
	if existing != dimension {
		return fmt.Errorf("collection %s exists with dimensionality %d, want %d", name, existing, dimension)
	}
	return nil
}

func (db *ClientHolder) UpsertPoint(ctx context.Context, collection string, point vectorDB.Point) error {
	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewIDNum(point.Id),
				Vectors: qdrant.NewVectors(point.Vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					"content": point.Payload.Content,
					"source":  point.Payload.Source,
					"page":    int64(point.Payload.Page),
				}),
			},
		},
		Wait: qdrant.PtrOf(true),
	})

	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) Query(ctx context.Context, collection string, vector []float32, limit uint64) ([]vectorDB.ScoredPoint, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(limit),
		WithPayload:    qdrant.NewWithPayload(true),
	})

	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, err
	}

	matches := make([]vectorDB.ScoredPoint, 0, len(result))
	for _, hit := range result {
		matches = append(matches, vectorDB.ScoredPoint{
			Score: hit.Score,
			Payload: vectorDB.PointPayload{
				Content: hit.Payload["content"].GetStringValue(),
				Source:  hit.Payload["source"].GetStringValue(),
				Page:    int(hit.Payload["page"].GetIntegerValue()),
			},
		})
	}

	loggr.Debug("Query finished", "matches", len(matches))
	return matches, nil
}
