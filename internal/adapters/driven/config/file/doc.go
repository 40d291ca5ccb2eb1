// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the refrag home directory
// (~/.refrag, or $REFRAG_HOME when set).
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage (config.toml)
//   - PromptStore: RAG prompt templates (prompt.toml), optionally watched for edits
package file
