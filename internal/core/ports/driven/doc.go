// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the answer pipeline to function:
//
//   - VectorIndex: Chunk embedding storage and similarity search
//   - SideTableStore: Rendered tables and pictures keyed by (source, ref)
//   - EmbeddingService: Generates query and chunk embeddings
//   - Generator: Prompt-templated completion over a grounded context
//   - LLMService: Provider chat completion used by the Generator
//   - PromptStore: System prompt and user template
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingCache: Query embedding memoisation. Without it every query is embedded.
//   - AnswerMetrics: Outcome counters. Without it nothing is recorded.
//   - UserStore, PasswordHasher: Only needed by the user commands.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
