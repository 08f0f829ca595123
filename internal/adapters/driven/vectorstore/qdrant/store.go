// Package qdrant implements driven.VectorStore on a Qdrant server over gRPC.
package qdrant

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	qc "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driven"
	"github.com/custodia-labs/tala-knowledge/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

const (
	// DefaultGRPCPort is Qdrant's gRPC port.
	DefaultGRPCPort = 6334

	// restPort is Qdrant's REST port. URLs pointing at it are moved to the
	// gRPC port since the client speaks gRPC only.
	restPort = 6333

	replicationFactor    = 1
	defaultSegmentNumber = 2
)

// Config holds connection settings.
type Config struct {
	// URL is the server endpoint, e.g. http://localhost:6334.
	URL    string
	APIKey string
}

// Store is a Qdrant-backed vector store. It holds one long-lived client.
type Store struct {
	client        *qc.Client
	integerFields map[string]bool
}

// NewStore connects to Qdrant.
func NewStore(cfg Config) (*Store, error) {
	ep, err := parseEndpoint(cfg.URL)
	if err != nil {
		return nil, err
	}

	client, err := qc.NewClient(&qc.Config{
		Host:   ep.host,
		Port:   ep.port,
		APIKey: cfg.APIKey,
		UseTLS: ep.tls,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: qdrant client: %v", domain.ErrVectorStoreUnavailable, err)
	}
	logger.Debug("Qdrant client for %s:%d (tls=%t)", ep.host, ep.port, ep.tls)

	return &Store{client: client, integerFields: integerFields()}, nil
}

type endpoint struct {
	host string
	port int
	tls  bool
}

// parseEndpoint accepts "host", "host:port" or a full URL.
func parseEndpoint(raw string) (endpoint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return endpoint{}, fmt.Errorf("%w: qdrant URL is required", domain.ErrInvalidConfig)
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return endpoint{}, fmt.Errorf("%w: qdrant URL %q", domain.ErrInvalidConfig, raw)
	}

	ep := endpoint{host: u.Hostname(), port: DefaultGRPCPort, tls: u.Scheme == "https"}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			return endpoint{}, fmt.Errorf("%w: qdrant port %q", domain.ErrInvalidConfig, p)
		}
		ep.port = port
	}
	if ep.port == restPort {
		logger.Debug("Qdrant URL uses the REST port, connecting to %s instead",
			net.JoinHostPort(ep.host, strconv.Itoa(DefaultGRPCPort)))
		ep.port = DefaultGRPCPort
	}
	return ep, nil
}

func integerFields() map[string]bool {
	fields := make(map[string]bool)
	for _, idx := range domain.RequiredIndexes {
		if idx.Type == domain.IndexInteger {
			fields[idx.Field] = true
		}
	}
	return fields
}

// ListCollections returns the names of all collections.
func (s *Store) ListCollections(ctx context.Context) ([]string, error) {
	names, err := s.client.ListCollections(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return names, nil
}

// CreateCollection creates a collection with one shard replica. Every
// collection uses cosine distance whatever spec.Distance says.
func (s *Store) CreateCollection(ctx context.Context, spec domain.CollectionSpec) error {
	if spec.VectorSize <= 0 {
		return fmt.Errorf("%w: vector size must be positive", domain.ErrInvalidInput)
	}

	err := s.client.CreateCollection(ctx, &qc.CreateCollection{
		CollectionName: spec.Name,
		VectorsConfig: qc.NewVectorsConfig(&qc.VectorParams{
			Size:     uint64(spec.VectorSize),
			Distance: qc.Distance_Cosine,
		}),
		ReplicationFactor: qc.PtrOf(uint32(replicationFactor)),
		OptimizersConfig: &qc.OptimizersConfigDiff{
			DefaultSegmentNumber: qc.PtrOf(uint64(defaultSegmentNumber)),
		},
	})
	if err != nil {
		return fmt.Errorf("create collection %s: %w", spec.Name, translate(err))
	}
	return nil
}

// CreatePayloadIndex creates a keyword or integer index on a payload field.
func (s *Store) CreatePayloadIndex(ctx context.Context, collection string, index domain.IndexSpec) error {
	fieldType := qc.FieldType_FieldTypeKeyword
	if index.Type == domain.IndexInteger {
		fieldType = qc.FieldType_FieldTypeInteger
	}

	_, err := s.client.CreateFieldIndex(ctx, &qc.CreateFieldIndexCollection{
		CollectionName: collection,
		FieldName:      index.Field,
		FieldType:      fieldType.Enum(),
		Wait:           qc.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("index %s on %s: %w", index.Field, collection, translate(err))
	}
	return nil
}

// Upsert writes points in one request.
func (s *Store) Upsert(ctx context.Context, collection string, points []domain.VectorPoint, wait bool) error {
	if len(points) == 0 {
		return nil
	}

	structs := make([]*qc.PointStruct, len(points))
	for i, p := range points {
		ps, err := toPointStruct(p)
		if err != nil {
			return err
		}
		structs[i] = ps
	}

	_, err := s.client.Upsert(ctx, &qc.UpsertPoints{
		CollectionName: collection,
		Wait:           qc.PtrOf(wait),
		Points:         structs,
	})
	if err != nil {
		return fmt.Errorf("upsert %d points into %s: %w", len(points), collection, translate(err))
	}
	return nil
}

func toPointStruct(p domain.VectorPoint) (*qc.PointStruct, error) {
	payload, err := qc.TryValueMap(p.Payload.Map())
	if err != nil {
		return nil, fmt.Errorf("point %s payload: %w", p.ID, err)
	}
	return &qc.PointStruct{
		Id:      qc.NewID(p.ID),
		Vectors: qc.NewVectors(p.Vector...),
		Payload: payload,
	}, nil
}

// Search returns the nearest points with their payloads.
func (s *Store) Search(ctx context.Context, collection string, query domain.VectorQuery) ([]domain.ScoredPoint, error) {
	req := &qc.QueryPoints{
		CollectionName: collection,
		Query:          qc.NewQuery(query.Vector...),
		Limit:          qc.PtrOf(uint64(max(query.Limit, 1))),
		Filter:         s.filter(query.Must),
		WithPayload:    qc.NewWithPayload(true),
	}

	hits, err := s.client.Query(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, translate(err))
	}

	out := make([]domain.ScoredPoint, len(hits))
	for i, h := range hits {
		out[i] = fromScoredPoint(h)
	}
	return out, nil
}

// filter turns equality matches into a must-filter. Integer-indexed
// fields are matched as integers when the value parses as one.
func (s *Store) filter(must []domain.FieldMatch) *qc.Filter {
	if len(must) == 0 {
		return nil
	}
	conditions := make([]*qc.Condition, len(must))
	for i, m := range must {
		conditions[i] = s.condition(m)
	}
	return &qc.Filter{Must: conditions}
}

func (s *Store) condition(m domain.FieldMatch) *qc.Condition {
	if s.integerFields[m.Field] {
		if n, err := strconv.ParseInt(m.Value, 10, 64); err == nil {
			return qc.NewMatchInt(m.Field, n)
		}
	}
	return qc.NewMatch(m.Field, m.Value)
}

func fromScoredPoint(h *qc.ScoredPoint) domain.ScoredPoint {
	return domain.ScoredPoint{
		ID:      pointID(h.GetId()),
		Score:   float64(h.GetScore()),
		Payload: domain.PayloadFromMap(valuesToMap(h.GetPayload())),
	}
}

func pointID(id *qc.PointId) string {
	if u := id.GetUuid(); u != "" {
		return u
	}
	return strconv.FormatUint(id.GetNum(), 10)
}

// valuesToMap converts a Qdrant payload back to plain Go values.
func valuesToMap(values map[string]*qc.Value) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = valueToAny(v)
	}
	return out
}

func valueToAny(v *qc.Value) any {
	switch kind := v.GetKind().(type) {
	case *qc.Value_StringValue:
		return kind.StringValue
	case *qc.Value_IntegerValue:
		return kind.IntegerValue
	case *qc.Value_DoubleValue:
		return kind.DoubleValue
	case *qc.Value_BoolValue:
		return kind.BoolValue
	case *qc.Value_StructValue:
		return valuesToMap(kind.StructValue.GetFields())
	case *qc.Value_ListValue:
		items := kind.ListValue.GetValues()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = valueToAny(item)
		}
		return out
	default:
		return nil
	}
}

// DeleteByDocument removes every point whose documentId matches.
func (s *Store) DeleteByDocument(ctx context.Context, collection, documentID string) error {
	_, err := s.client.Delete(ctx, &qc.DeletePoints{
		CollectionName: collection,
		Wait:           qc.PtrOf(true),
		Points: qc.NewPointsSelectorFilter(&qc.Filter{
			Must: []*qc.Condition{qc.NewMatch(domain.FieldDocumentID, documentID)},
		}),
	})
	if err != nil {
		return fmt.Errorf("delete document %s from %s: %w", documentID, collection, translate(err))
	}
	return nil
}

// CollectionInfo describes one collection.
func (s *Store) CollectionInfo(ctx context.Context, name string) (*domain.CollectionInfo, error) {
	info, err := s.client.GetCollectionInfo(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("collection %s: %w", name, translate(err))
	}
	return &domain.CollectionInfo{
		Name:        name,
		PointsCount: info.GetPointsCount(),
		VectorSize:  int(info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()),
		Status:      strings.ToLower(info.GetStatus().String()),
	}, nil
}

// Close closes the gRPC connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// translate maps gRPC failures onto domain errors. Qdrant reports an
// existing collection as InvalidArgument, so the message is checked too.
func translate(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())

	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %v", domain.ErrAlreadyExists, err)
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %v", domain.ErrVectorStoreUnavailable, err)
	}

	switch {
	case strings.Contains(msg, "already exists"):
		return fmt.Errorf("%w: %v", domain.ErrAlreadyExists, err)
	case strings.Contains(msg, "doesn't exist"), strings.Contains(msg, "not found"):
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}
	return err
}
