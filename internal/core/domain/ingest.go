package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// IngestRecord is one upstream chunk as produced by document conversion.
// Metadata values are loosely typed and normalised by Normalise.
type IngestRecord struct {
	PageContent string         `json:"page_content"`
	Metadata    map[string]any `json:"metadata"`
}

// IngestStats summarises an ingestion run.
type IngestStats struct {
	// Records is the number of records read.
	Records int `json:"records"`

	// Chunks is the number of chunks added to the vector index.
	Chunks int `json:"chunks"`

	// Tables is the number of table rows added to the side table.
	Tables int `json:"tables"`

	// Pictures is the number of picture rows added to the side table.
	Pictures int `json:"pictures"`

	// Skipped is the number of records dropped as empty.
	Skipped int `json:"skipped"`
}

// Normalise converts the record into typed chunk metadata and content.
// Unknown chunk types are rejected. Missing types default to text.
func (r IngestRecord) Normalise() (ChunkMetadata, string, error) {
	meta := ChunkMetadata{
		Source:    metadataString(r.Metadata["source"]),
		SelfRef:   NormaliseReferenceField(metadataString(r.Metadata["self_ref"])),
		ParentRef: NormaliseReferenceField(metadataString(r.Metadata["parent_ref"])),
		ChildRef:  NormaliseReferenceField(metadataString(r.Metadata["child_ref"])),
		Type:      ChunkType(strings.ToLower(metadataString(r.Metadata["chunk_type"]))),
	}
	if meta.Type == "" {
		meta.Type = ChunkTypeText
	}
	if !meta.Type.IsValid() {
		return ChunkMetadata{}, "", fmt.Errorf("%w: unknown chunk_type %q", ErrInvalidInput, meta.Type)
	}

	idx, err := metadataInt(r.Metadata["chunk_index"])
	if err != nil {
		return ChunkMetadata{}, "", fmt.Errorf("%w: chunk_index: %w", ErrInvalidInput, err)
	}
	meta.ChunkIndex = idx

	if meta.Type.IsArtifact() && SplitReferenceField(meta.SelfRef) == nil {
		return ChunkMetadata{}, "", fmt.Errorf("%w: %s chunk without self_ref", ErrInvalidInput, meta.Type)
	}
	return meta, r.PageContent, nil
}

// metadataString flattens a loosely typed metadata value into a string.
func metadataString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := metadataString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	case []string:
		return strings.Join(val, " ")
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

func metadataInt(v any) (int, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		return int(val), nil
	case json.Number:
		n, err := val.Int64()
		return int(n), err
	case string:
		if strings.TrimSpace(val) == "" {
			return 0, nil
		}
		return strconv.Atoi(strings.TrimSpace(val))
	default:
		return 0, fmt.Errorf("unsupported value %v", val)
	}
}
