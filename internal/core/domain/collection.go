package domain

// AdminCollection is the single collection shared by all tenants.
const AdminCollection = "tala_admin_knowledge"

const (
	userCollectionPrefix = "tala_user_"
	userCollectionSuffix = "_knowledge"
)

// Distance is a vector similarity metric.
type Distance string

// DistanceCosine scores in [0,1] for normalised embeddings; higher is closer.
const DistanceCosine Distance = "Cosine"

// IndexType is the schema of a payload index.
type IndexType string

// Payload index types.
const (
	IndexKeyword IndexType = "keyword"
	IndexInteger IndexType = "integer"
)

// CollectionSpec describes a collection to create.
type CollectionSpec struct {
	Name       string
	VectorSize int
	Distance   Distance
}

// IndexSpec describes one secondary payload index.
type IndexSpec struct {
	Field string
	Type  IndexType
}

// RequiredIndexes are created on every new collection.
var RequiredIndexes = []IndexSpec{
	{Field: FieldCategory, Type: IndexKeyword},
	{Field: FieldFileType, Type: IndexKeyword},
	{Field: FieldDocumentID, Type: IndexKeyword},
	{Field: FieldChunkIndex, Type: IndexInteger},
}

// CollectionInfo summarises a collection for listings.
type CollectionInfo struct {
	Name        string `json:"name"`
	PointsCount uint64 `json:"pointsCount"`
	VectorSize  int    `json:"vectorSize,omitempty"`
	Status      string `json:"status,omitempty"`
}

// CollectionName maps an (owner, admin flag) pair to its collection.
// The same owner always maps to the same name, distinct owners map to
// distinct names, and admins always map to AdminCollection.
func CollectionName(ownerID string, isAdmin bool) string {
	if isAdmin {
		return AdminCollection
	}
	if ownerID == "" {
		return OwnerlessCollection()
	}
	return userCollectionPrefix + ownerID + userCollectionSuffix
}

// OwnerlessCollection is where a non-admin request without an owner lands.
// Such requests currently share the admin pool.
func OwnerlessCollection() string {
	return AdminCollection
}

// IsAdminCollection reports whether name is the shared admin collection.
func IsAdminCollection(name string) bool {
	return name == AdminCollection
}

// FieldMatch is an exact keyword match on a payload field.
type FieldMatch struct {
	Field string
	Value string
}

// VectorQuery is a similarity search against one collection.
type VectorQuery struct {
	Vector []float32
	Limit  int

	// Must lists equality filters that all have to hold.
	Must []FieldMatch
}

// ScoredPoint is one raw hit returned by a vector store.
type ScoredPoint struct {
	ID      string
	Score   float64
	Payload Payload
}
