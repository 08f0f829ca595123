// Package weaviate implements driven.VectorStore on a Weaviate server.
//
// Each collection is a Weaviate class whose name is derived from the
// collection name (tala_admin_knowledge becomes Ctala__admin__knowledge). The
// class description records the original collection name and vector size
// so listings round-trip. Payloads are stored as flat class properties.
package weaviate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-openapi/strfmt"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/fault"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driven"
	"github.com/custodia-labs/tala-knowledge/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

const descriptionPrefix = "tala:"

// Property data types.
const (
	typeText = "text"
	typeInt  = "int"
	typeBool = "boolean"
)

type property struct {
	name     string
	dataType string
	// group is the payload section the property belongs to: "" for the
	// top level, otherwise "metadata" or "document".
	group string
}

// properties lists every payload field as a flat class property.
var properties = []property{
	{name: "documentId", dataType: typeText},
	{name: "chunkId", dataType: typeText},
	{name: "content", dataType: typeText},
	{name: "title", dataType: typeText, group: "metadata"},
	{name: "category", dataType: typeText, group: "metadata"},
	{name: "chunkIndex", dataType: typeInt, group: "metadata"},
	{name: "wordCount", dataType: typeInt, group: "metadata"},
	{name: "startWordOffset", dataType: typeInt, group: "metadata"},
	{name: "endWordOffset", dataType: typeInt, group: "metadata"},
	{name: "folderId", dataType: typeText, group: "metadata"},
	{name: "originalName", dataType: typeText, group: "document"},
	{name: "fileType", dataType: typeText, group: "document"},
	{name: "uploadedAt", dataType: typeText, group: "document"},
	{name: "fileSize", dataType: typeInt, group: "document"},
	{name: "ownerId", dataType: typeText, group: "document"},
	{name: "isAdminDocument", dataType: typeBool, group: "document"},
}

// Config holds connection settings.
type Config struct {
	// URL is the server endpoint, e.g. http://localhost:8080.
	URL    string
	APIKey string
}

// Store is a Weaviate-backed vector store.
type Store struct {
	client *weaviate.Client
}

// NewStore creates a Weaviate client.
func NewStore(cfg Config) (*Store, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, fmt.Errorf("%w: weaviate URL is required", domain.ErrInvalidConfig)
	}

	scheme := "http"
	if strings.HasPrefix(url, "https://") {
		scheme = "https"
	}
	host := strings.TrimSuffix(strings.TrimPrefix(url, scheme+"://"), "/")

	wcfg := weaviate.Config{Host: host, Scheme: scheme}
	if cfg.APIKey != "" {
		wcfg.AuthConfig = auth.ApiKey{Value: cfg.APIKey}
	}

	client, err := weaviate.NewClient(wcfg)
	if err != nil {
		return nil, fmt.Errorf("%w: weaviate client: %v", domain.ErrVectorStoreUnavailable, err)
	}
	logger.Debug("Weaviate client for %s://%s", scheme, host)

	return &Store{client: client}, nil
}

// ClassName derives the Weaviate class for a collection. The mapping is
// reversible so distinct collections never share a class: ASCII letters
// and digits are kept, an underscore is doubled and any other rune is
// written as its hex code point between underscores. The "C" prefix
// satisfies Weaviate's leading capital letter rule.
func ClassName(collection string) string {
	var b strings.Builder
	b.WriteString("C")
	for _, r := range collection {
		switch {
		case r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '_':
			b.WriteString("__")
		default:
			b.WriteString("_" + strconv.FormatInt(int64(r), 16) + "_")
		}
	}
	return b.String()
}

func describe(collection string, vectorSize int) string {
	return descriptionPrefix + collection + ":" + strconv.Itoa(vectorSize)
}

// parseDescription reverses describe. ok is false for classes this
// store did not create.
func parseDescription(desc string) (collection string, vectorSize int, ok bool) {
	rest, found := strings.CutPrefix(desc, descriptionPrefix)
	if !found {
		return "", 0, false
	}
	i := strings.LastIndex(rest, ":")
	if i <= 0 {
		return "", 0, false
	}
	size, err := strconv.Atoi(rest[i+1:])
	if err != nil {
		return "", 0, false
	}
	return rest[:i], size, true
}

// ListCollections returns the collections created by this store.
func (s *Store) ListCollections(ctx context.Context) ([]string, error) {
	dump, err := s.client.Schema().Getter().Do(ctx)
	if err != nil {
		return nil, translate(err)
	}

	var names []string
	for _, class := range dump.Classes {
		if name, _, ok := parseDescription(class.Description); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// CreateCollection creates a class with no vectorizer; vectors always
// come from the embedding provider.
func (s *Store) CreateCollection(ctx context.Context, spec domain.CollectionSpec) error {
	if spec.VectorSize <= 0 {
		return fmt.Errorf("%w: vector size must be positive", domain.ErrInvalidInput)
	}

	err := s.client.Schema().ClassCreator().WithClass(classFor(spec)).Do(ctx)
	if err != nil {
		return fmt.Errorf("create collection %s: %w", spec.Name, translate(err))
	}
	return nil
}

func classFor(spec domain.CollectionSpec) *models.Class {
	props := make([]*models.Property, len(properties))
	for i, p := range properties {
		prop := &models.Property{Name: p.name, DataType: []string{p.dataType}}
		if p.dataType == typeText && p.name != "content" {
			prop.Tokenization = "field"
		}
		props[i] = prop
	}
	return &models.Class{
		Class:           ClassName(spec.Name),
		Description:     describe(spec.Name, spec.VectorSize),
		Vectorizer:      "none",
		VectorIndexType: "hnsw",
		VectorIndexConfig: map[string]any{
			"distance": "cosine",
		},
		Properties: props,
	}
}

// CreatePayloadIndex checks the field exists. Weaviate builds a
// filterable index for every property when the class is created.
func (s *Store) CreatePayloadIndex(ctx context.Context, collection string, index domain.IndexSpec) error {
	if _, ok := lookupProperty(index.Field); !ok {
		return fmt.Errorf("%w: no property for %s", domain.ErrInvalidInput, index.Field)
	}
	exists, err := s.client.Schema().ClassExistenceChecker().WithClassName(ClassName(collection)).Do(ctx)
	if err != nil {
		return translate(err)
	}
	if !exists {
		return fmt.Errorf("collection %s: %w", collection, domain.ErrNotFound)
	}
	return nil
}

// lookupProperty resolves a payload field path such as
// "metadata.category" to its flat property.
func lookupProperty(field string) (property, bool) {
	name := field
	if i := strings.LastIndex(field, "."); i >= 0 {
		name = field[i+1:]
	}
	for _, p := range properties {
		if p.name == name {
			return p, true
		}
	}
	return property{}, false
}

// Upsert writes points with one batch request. Objects with an existing
// ID are replaced. Batch writes are queryable on return, so wait has no
// effect.
func (s *Store) Upsert(ctx context.Context, collection string, points []domain.VectorPoint, _ bool) error {
	if len(points) == 0 {
		return nil
	}

	class := ClassName(collection)
	objects := make([]*models.Object, len(points))
	for i, p := range points {
		objects[i] = &models.Object{
			Class:      class,
			ID:         strfmt.UUID(p.ID),
			Properties: toProperties(p.Payload),
			Vector:     p.Vector,
		}
	}

	resp, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return fmt.Errorf("upsert %d points into %s: %w", len(points), collection, translate(err))
	}
	if err := batchErrors(resp); err != nil {
		return fmt.Errorf("upsert into %s: %w", collection, err)
	}
	return nil
}

func batchErrors(resp []models.ObjectsGetResponse) error {
	var errs []error
	for _, r := range resp {
		if r.Result == nil || r.Result.Errors == nil {
			continue
		}
		for _, item := range r.Result.Errors.Error {
			errs = append(errs, fmt.Errorf("object %s: %s", r.ID, item.Message))
		}
	}
	return errors.Join(errs...)
}

// toProperties flattens a payload into class properties.
func toProperties(p domain.Payload) map[string]any {
	flat := map[string]any{}
	nested := p.Map()
	for _, prop := range properties {
		section := nested
		if prop.group != "" {
			section, _ = nested[prop.group].(map[string]any)
		}
		if v, ok := section[prop.name]; ok {
			flat[prop.name] = v
		}
	}
	return flat
}

// fromProperties rebuilds a payload from class properties.
func fromProperties(flat map[string]any) domain.Payload {
	nested := map[string]any{
		"metadata": map[string]any{},
		"document": map[string]any{},
	}
	for _, prop := range properties {
		v, ok := flat[prop.name]
		if !ok || v == nil {
			continue
		}
		if prop.group == "" {
			nested[prop.name] = v
			continue
		}
		nested[prop.group].(map[string]any)[prop.name] = v
	}
	return domain.PayloadFromMap(nested)
}

// Search returns the nearest objects. Scores are 1 - cosine distance.
func (s *Store) Search(ctx context.Context, collection string, query domain.VectorQuery) ([]domain.ScoredPoint, error) {
	class := ClassName(collection)

	fields := make([]graphql.Field, 0, len(properties)+1)
	for _, p := range properties {
		fields = append(fields, graphql.Field{Name: p.name})
	}
	fields = append(fields, graphql.Field{Name: "_additional", Fields: []graphql.Field{{Name: "id"}, {Name: "distance"}}})

	get := s.client.GraphQL().Get().
		WithClassName(class).
		WithFields(fields...).
		WithNearVector(s.client.GraphQL().NearVectorArgBuilder().WithVector(query.Vector)).
		WithLimit(max(query.Limit, 1))
	if where := whereFor(query.Must); where != nil {
		get = get.WithWhere(where)
	}

	resp, err := get.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, translate(err))
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("search %s: %s", collection, resp.Errors[0].Message)
	}
	return parseHits(resp.Data, class), nil
}

// whereFor ANDs equality filters together.
func whereFor(must []domain.FieldMatch) *filters.WhereBuilder {
	var operands []*filters.WhereBuilder
	for _, m := range must {
		prop, ok := lookupProperty(m.Field)
		if !ok {
			continue
		}
		w := filters.Where().WithPath([]string{prop.name}).WithOperator(filters.Equal)
		n, err := strconv.ParseInt(m.Value, 10, 64)
		switch {
		case prop.dataType == typeInt && err == nil:
			w = w.WithValueInt(n)
		case prop.dataType == typeBool:
			w = w.WithValueBoolean(m.Value == "true")
		default:
			w = w.WithValueText(m.Value)
		}
		operands = append(operands, w)
	}

	switch len(operands) {
	case 0:
		return nil
	case 1:
		return operands[0]
	default:
		return filters.Where().WithOperator(filters.And).WithOperands(operands)
	}
}

// parseHits reads Get.<class>[] from a GraphQL response.
func parseHits(data map[string]models.JSONObject, class string) []domain.ScoredPoint {
	get, ok := data["Get"].(map[string]any)
	if !ok {
		return nil
	}
	items, ok := get[class].([]any)
	if !ok {
		return nil
	}

	hits := make([]domain.ScoredPoint, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		hit := domain.ScoredPoint{Payload: fromProperties(obj)}
		if additional, ok := obj["_additional"].(map[string]any); ok {
			hit.ID, _ = additional["id"].(string)
			if d, ok := additional["distance"].(float64); ok {
				hit.Score = 1 - d
			}
		}
		hits = append(hits, hit)
	}
	return hits
}

// DeleteByDocument removes every object of one document.
func (s *Store) DeleteByDocument(ctx context.Context, collection, documentID string) error {
	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(ClassName(collection)).
		WithWhere(whereFor([]domain.FieldMatch{{Field: domain.FieldDocumentID, Value: documentID}})).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("delete document %s from %s: %w", documentID, collection, translate(err))
	}
	return nil
}

// CollectionInfo describes one collection.
func (s *Store) CollectionInfo(ctx context.Context, name string) (*domain.CollectionInfo, error) {
	class := ClassName(name)
	c, err := s.client.Schema().ClassGetter().WithClassName(class).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("collection %s: %w", name, translate(err))
	}
	_, size, _ := parseDescription(c.Description)

	resp, err := s.client.GraphQL().Aggregate().
		WithClassName(class).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", name, translate(err))
	}

	return &domain.CollectionInfo{
		Name:        name,
		PointsCount: parseCount(resp.Data, class),
		VectorSize:  size,
		Status:      "ready",
	}, nil
}

// parseCount reads Aggregate.<class>[0].meta.count.
func parseCount(data map[string]models.JSONObject, class string) uint64 {
	agg, ok := data["Aggregate"].(map[string]any)
	if !ok {
		return 0
	}
	items, ok := agg[class].([]any)
	if !ok || len(items) == 0 {
		return 0
	}
	first, _ := items[0].(map[string]any)
	meta, _ := first["meta"].(map[string]any)
	count, _ := meta["count"].(float64)
	return uint64(count)
}

// Close is a no-op; the client holds no persistent connection.
func (s *Store) Close() error {
	return nil
}

// translate maps Weaviate client failures onto domain errors.
func translate(err error) error {
	var werr *fault.WeaviateClientError
	if !errors.As(err, &werr) {
		return err
	}
	switch {
	case werr.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	case strings.Contains(strings.ToLower(werr.Msg), "already exists"):
		return fmt.Errorf("%w: %v", domain.ErrAlreadyExists, err)
	case !werr.IsUnexpectedStatusCode:
		return fmt.Errorf("%w: %v", domain.ErrVectorStoreUnavailable, err)
	}
	return err
}
