// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - VectorStore: Collection provisioning, upsert and similarity search
//     (Qdrant, Weaviate or in-memory fixtures)
//   - EmbeddingProvider: Text to vector (OpenAI, Ollama or hashing)
//   - Extractor: Plain text from one family of media types
//   - Chunker: Word-window segmentation
//   - FolderStore: Folder persistence
//   - DocumentStore: Ingested document records
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingCache: Reuses vectors for repeated inputs.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, extractor, or postprocessor package
package driven
