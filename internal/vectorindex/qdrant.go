package vectorindex

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/qdrant/go-client/qdrant"

	"github.com/forge-indexer/forge-indexer/internal/models"
)

// QdrantIndex adapts a Qdrant gRPC client to the Index interface.
// Collection name and vector dimension are per-call parameters instead
// of baked into the client at construction, since one process may manage
// more than one namespaced collection over its lifetime (reset/re-index
// flows).
type QdrantIndex struct {
	client *qdrant.Client
	logger *slog.Logger
}

// NewQdrantIndex dials Qdrant at rawURL (e.g. "http://localhost:6334").
func NewQdrantIndex(rawURL string, logger *slog.Logger) (*QdrantIndex, error) {
	host, port, useTLS, err := parseQdrantURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrConfiguration, err)
	}
	client, err := qdrant.NewClient(&qdrant.Config{Host: host, Port: port, UseTLS: useTLS})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to qdrant: %v", models.ErrVectorIndex, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QdrantIndex{client: client, logger: logger}, nil
}

func parseQdrantURL(raw string) (host string, port int, useTLS bool, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", 0, false, err
	}
	host = u.Hostname()
	if host == "" {
		host = "localhost"
	}
	port = 6334
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return "", 0, false, err
		}
	}
	return host, port, u.Scheme == "https", nil
}

// EnsureCollection creates the collection if absent; if present with a
// different dimension, drops and recreates it — a destructive behavior
// worth logging prominently.
func (q *QdrantIndex) EnsureCollection(ctx context.Context, name string, dim int, metric string) error {
	exists, err := q.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("%w: check collection existence: %v", models.ErrVectorIndex, err)
	}
	if exists {
		info, err := q.client.GetCollectionInfo(ctx, name)
		if err != nil {
			return fmt.Errorf("%w: get collection info: %v", models.ErrVectorIndex, err)
		}
		if collectionDimension(info) == uint64(dim) {
			return nil
		}
		q.logger.Warn("dropping collection due to dimension mismatch",
			"collection", name, "configured_dim", dim, "existing_dim", collectionDimension(info))
		if err := q.DeleteCollection(ctx, name); err != nil {
			return err
		}
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(dim),
					Distance: distanceMetric(metric),
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: create collection: %v", models.ErrVectorIndex, err)
	}
	q.logger.Info("created collection", "collection", name, "dimension", dim)
	return nil
}

func collectionDimension(info *qdrant.CollectionInfo) uint64 {
	if info == nil || info.GetConfig() == nil || info.GetConfig().GetParams() == nil {
		return 0
	}
	vectors := info.GetConfig().GetParams().GetVectorsConfig()
	if vectors == nil {
		return 0
	}
	if params := vectors.GetParams(); params != nil {
		return params.GetSize()
	}
	return 0
}

// Upsert is idempotent by point_id.
func (q *QdrantIndex) Upsert(ctx context.Context, name string, pointID string, vector []float32, payload models.Payload) error {
	point := &qdrant.PointStruct{
		Id: &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: pointID}},
		Vectors: &qdrant.Vectors{
			VectorsOptions: &qdrant.Vectors_Vector{Vector: &qdrant.Vector{Data: vector}},
		},
		Payload: payloadToQdrant(payload),
	}
	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: name,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("%w: upsert point: %v", models.ErrVectorIndex, err)
	}
	return nil
}

func payloadToQdrant(p models.Payload) map[string]*qdrant.Value {
	return map[string]*qdrant.Value{
		"path":     qdrant.NewValueString(p.Path),
		"lang":     qdrant.NewValueString(p.Lang),
		"rev":      qdrant.NewValueString(p.Rev),
		"size":     qdrant.NewValueInt(int64(p.Size)),
		"code":     qdrant.NewValueString(p.Code),
		"branch":   qdrant.NewValueString(p.Branch),
		"symbol":   qdrant.NewValueString(p.Symbol),
		"summary":  qdrant.NewValueString(p.Summary),
		"chunk_id": qdrant.NewValueString(p.ChunkID),
	}
}

func payloadFromQdrant(values map[string]*qdrant.Value) (models.Payload, bool) {
	path, ok := values["path"]
	if !ok {
		return models.Payload{}, false
	}
	return models.Payload{
		Path:    path.GetStringValue(),
		Lang:    values["lang"].GetStringValue(),
		Rev:     values["rev"].GetStringValue(),
		Size:    int(values["size"].GetIntegerValue()),
		Code:    values["code"].GetStringValue(),
		Branch:  values["branch"].GetStringValue(),
		Symbol:  values["symbol"].GetStringValue(),
		Summary: values["summary"].GetStringValue(),
		ChunkID: values["chunk_id"].GetStringValue(),
	}, true
}

// Search runs the k-NN query plus the conjunctive repo-match/branch-eq
// payload filter. Malformed payloads (no "path" field) are dropped
// rather than surfaced, matching the retriever's own hydration rule so
// both layers agree on what counts as a valid hit.
func (q *QdrantIndex) Search(ctx context.Context, name string, vector []float32, k int, filter Filter) ([]Hit, error) {
	if k <= 0 {
		k = 10
	}
	limit := uint64(k)

	query := &qdrant.QueryPoints{
		CollectionName: name,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
	}
	if f := buildQdrantFilter(filter); f != nil {
		query.Filter = f
	}

	results, err := q.client.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", models.ErrVectorIndex, err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		payload, ok := payloadFromQdrant(r.Payload)
		if !ok {
			continue
		}
		hits = append(hits, Hit{Payload: payload, Score: r.Score})
	}
	return hits, nil
}

// buildQdrantFilter translates Filter into Qdrant's conjunctive Must
// condition list. repo-match is expressed as a substring/keyword match
// on the payload "path" field, with "", ".", "*" treated as wildcards
// that impose no constraint at all.
func buildQdrantFilter(filter Filter) *qdrant.Filter {
	var must []*qdrant.Condition
	if filter.Repo != "" && filter.Repo != "." && filter.Repo != "*" {
		must = append(must, &qdrant.Condition{
			ConditionOneOf: &qdrant.Condition_Field{
				Field: &qdrant.FieldCondition{
					Key:   "path",
					Match: &qdrant.Match{MatchValue: &qdrant.Match_Text{Text: filter.Repo}},
				},
			},
		})
	}
	if filter.Branch != "" {
		must = append(must, &qdrant.Condition{
			ConditionOneOf: &qdrant.Condition_Field{
				Field: &qdrant.FieldCondition{
					Key:   "branch",
					Match: &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: filter.Branch}},
				},
			},
		})
	}
	if len(must) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: must}
}

// DeleteCollection is idempotent.
func (q *QdrantIndex) DeleteCollection(ctx context.Context, name string) error {
	exists, err := q.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("%w: check collection existence: %v", models.ErrVectorIndex, err)
	}
	if !exists {
		return nil
	}
	if err := q.client.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("%w: delete collection: %v", models.ErrVectorIndex, err)
	}
	return nil
}

func distanceMetric(metric string) qdrant.Distance {
	switch strings.ToLower(metric) {
	case "dot":
		return qdrant.Distance_Dot
	case "euclidean":
		return qdrant.Distance_Euclid
	default:
		return qdrant.Distance_Cosine
	}
}
