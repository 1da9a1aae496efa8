// Package catalog adapts the Qdrant vector store to the search and ingestion
// use cases: one collection of (id, vector, payload) triples per catalog.
package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/ppetroskevicius/fastctl-search/internal/domain"
	"github.com/ppetroskevicius/fastctl-search/internal/domain/listing"
	"github.com/ppetroskevicius/fastctl-search/internal/domain/predicate"
	"github.com/ppetroskevicius/fastctl-search/internal/domain/result"
)

// defaultGRPCPort is Qdrant's gRPC port (REST is 6333).
const defaultGRPCPort = 6334

// Repo is the Qdrant-backed listing store.
type Repo struct {
	client     *qdrant.Client
	collection string
	logger     *zap.Logger
}

// CollectionInfo describes one collection for maintenance commands.
type CollectionInfo struct {
	Name   string
	Points uint64
}

// NewClient creates a Qdrant client from a URL like
// "https://cluster-id.qdrant.cloud:6334" or "localhost:6334".
func NewClient(rawURL, apiKey string) (*qdrant.Client, error) {
	host, port, useTLS, err := parseEndpoint(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse qdrant url %q: %w", rawURL, err)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}
	return client, nil
}

// New creates a catalog repository over an existing client.
func New(client *qdrant.Client, collection string, logger *zap.Logger) *Repo {
	return &Repo{client: client, collection: collection, logger: logger}
}

// Query issues one combined vector similarity + filter request. The filter is
// a hard gate applied by the store during candidate selection, so topK means
// "best topK among records satisfying every constraint".
func (r *Repo) Query(
	ctx context.Context, vector []float32,
	pred *predicate.Expression, topK int,
) ([]result.Hit, error) {
	points, err := r.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: r.collection,
		Query:          qdrant.NewQuery(vector...),
		Filter:         toFilter(pred),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: query points: %w", domain.ErrStoreUnavailable, err)
	}

	hits := make([]result.Hit, 0, len(points))
	for _, p := range points {
		l := fromPayload(p.GetPayload())
		id := l.ID
		if id == "" {
			id = p.GetId().GetUuid()
		}
		hits = append(hits, result.New(id, float64(p.GetScore()), l))
	}
	return hits, nil
}

// UpsertBatch writes one point per listing. vectors[i] is the embedding of
// listings[i].SemanticText.
func (r *Repo) UpsertBatch(ctx context.Context, listings []listing.Listing, vectors [][]float32) error {
	if len(listings) != len(vectors) {
		return fmt.Errorf("listing/vector count mismatch: %d vs %d", len(listings), len(vectors))
	}

	points := make([]*qdrant.PointStruct, len(listings))
	for i := range listings {
		points[i] = &qdrant.PointStruct{
			Id:      pointID(listings[i].ID),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: toPayload(&listings[i]),
		}
	}

	_, err := r.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: r.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("%w: upsert %d points: %w", domain.ErrStoreUnavailable, len(points), err)
	}
	return nil
}

// EnsureCollection creates the collection and its payload indexes if missing.
// Nested station fields get their own indexes so existential filters stay fast.
func (r *Repo) EnsureCollection(ctx context.Context, dimensions int) error {
	exists, err := r.client.CollectionExists(ctx, r.collection)
	if err != nil {
		return fmt.Errorf("%w: check collection: %w", domain.ErrStoreUnavailable, err)
	}
	if !exists {
		err = r.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: r.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(dimensions),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("%w: create collection %s: %w", domain.ErrStoreUnavailable, r.collection, err)
		}
		r.logger.Info("created collection",
			zap.String("collection", r.collection),
			zap.Int("dimensions", dimensions),
		)
	}

	return r.ensureIndexes(ctx)
}

func (r *Repo) ensureIndexes(ctx context.Context) error {
	indexes := []struct {
		field string
		typ   qdrant.FieldType
	}{
		{listing.FieldWard, qdrant.FieldType_FieldTypeKeyword},
		{listing.FieldContractLength, qdrant.FieldType_FieldTypeKeyword},
		{listing.FieldUnitFeatures, qdrant.FieldType_FieldTypeKeyword},
		{listing.FieldBuildingFeatures, qdrant.FieldType_FieldTypeKeyword},
		{listing.FieldMonthlyTotal, qdrant.FieldType_FieldTypeInteger},
		{listing.FieldManagementFee, qdrant.FieldType_FieldTypeInteger},
		{listing.FieldGuarantorService, qdrant.FieldType_FieldTypeInteger},
		{listing.FieldFireInsurance, qdrant.FieldType_FieldTypeInteger},
		{listing.FieldYearBuilt, qdrant.FieldType_FieldTypeInteger},
		{listing.FieldFloorNumber, qdrant.FieldType_FieldTypeInteger},
		{listing.FieldAreaM2, qdrant.FieldType_FieldTypeFloat},
		{listing.FieldJapaneseRequired, qdrant.FieldType_FieldTypeBool},
		{listing.FieldStations + "[]." + listing.StationFieldName, qdrant.FieldType_FieldTypeKeyword},
		{listing.FieldStations + "[]." + listing.StationFieldWalkTime, qdrant.FieldType_FieldTypeInteger},
		{listing.FieldStations + "[]." + listing.StationFieldLines, qdrant.FieldType_FieldTypeKeyword},
	}

	for _, idx := range indexes {
		ft := idx.typ
		_, err := r.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: r.collection,
			FieldName:      idx.field,
			FieldType:      &ft,
			Wait:           qdrant.PtrOf(true),
		})
		if err != nil {
			return fmt.Errorf("%w: create index on %s: %w", domain.ErrStoreUnavailable, idx.field, err)
		}
	}
	return nil
}

// Collections lists all collections with their point counts.
func (r *Repo) Collections(ctx context.Context) ([]CollectionInfo, error) {
	names, err := r.client.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list collections: %w", domain.ErrStoreUnavailable, err)
	}

	infos := make([]CollectionInfo, 0, len(names))
	for _, name := range names {
		count, err := r.client.Count(ctx, &qdrant.CountPoints{CollectionName: name})
		if err != nil {
			return nil, fmt.Errorf("%w: count %s: %w", domain.ErrStoreUnavailable, name, err)
		}
		infos = append(infos, CollectionInfo{Name: name, Points: count})
	}
	return infos, nil
}

// Wipe deletes every point in the named collection.
func (r *Repo) Wipe(ctx context.Context, name string) error {
	_, err := r.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: name,
		Points:         qdrant.NewPointsSelectorFilter(&qdrant.Filter{}),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("%w: wipe %s: %w", domain.ErrStoreUnavailable, name, err)
	}
	return nil
}

// DeleteIDs deletes the listings with the given catalog ids.
func (r *Repo) DeleteIDs(ctx context.Context, name string, ids []string) error {
	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = pointID(id)
	}

	_, err := r.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: name,
		Points:         qdrant.NewPointsSelector(pointIDs...),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("%w: delete %d points from %s: %w", domain.ErrStoreUnavailable, len(ids), name, err)
	}
	return nil
}

// HealthCheck verifies the store is reachable.
func (r *Repo) HealthCheck(ctx context.Context) error {
	if _, err := r.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Close releases the underlying gRPC connection.
func (r *Repo) Close() error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("close qdrant client: %w", err)
	}
	return nil
}

func parseEndpoint(rawURL string) (host string, port int, useTLS bool, err error) {
	s := rawURL
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", 0, false, err
	}
	if u.Hostname() == "" {
		return "", 0, false, fmt.Errorf("missing host")
	}

	port = defaultGRPCPort
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return "", 0, false, fmt.Errorf("invalid port %q", p)
		}
	}
	return u.Hostname(), port, u.Scheme == "https", nil
}
