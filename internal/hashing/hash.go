package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/mmrzaf/dbfill/internal/domain"
)

// HashConfig produces a stable digest of a generation config for run
// provenance. The config is canonicalized first so field ordering and
// omitted optionals never change the hash.
func HashConfig(cfg *domain.GenerationConfig) (string, error) {
	canonical := canonicalizeConfig(cfg)
	data, err := json.Marshal(canonical)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

func canonicalizeConfig(cfg *domain.GenerationConfig) map[string]interface{} {
	tables := make([]map[string]interface{}, len(cfg.Tables))
	for i, table := range cfg.Tables {
		columns := make([]map[string]interface{}, len(table.Columns))
		for j, col := range table.Columns {
			colMap := map[string]interface{}{
				"name":        col.Name,
				"column_type": col.ColumnType,
				"nullable":    col.Nullable,
			}
			if col.MaskingType != "" {
				colMap["masking_type"] = col.MaskingType
				colMap["sub_type"] = col.SubType
			}
			if col.MinValue != nil {
				colMap["min_value"] = *col.MinValue
			}
			if col.MaxValue != nil {
				colMap["max_value"] = *col.MaxValue
			}
			if col.MinDate != "" {
				colMap["min_date"] = col.MinDate
			}
			if col.MaxDate != "" {
				colMap["max_date"] = col.MaxDate
			}
			if col.Precision != 0 {
				colMap["precision"] = col.Precision
			}
			if col.CharacterString != "" {
				colMap["character_string"] = col.CharacterString
			}
			if col.Format != "" {
				colMap["format"] = col.Format
			}
			if col.Separator != "" {
				colMap["separator"] = col.Separator
			}
			if col.Value != "" {
				colMap["value"] = col.Value
			}
			if col.Identity {
				colMap["identity"] = true
				colMap["identity_seed"] = col.IdentitySeed
				colMap["identity_increment"] = col.IdentityIncr
			}
			if col.UniqueIndex {
				colMap["unique_index"] = true
			}
			columns[j] = colMap
		}

		tables[i] = map[string]interface{}{
			"name":             table.Name,
			"schema":           table.SchemaOrDefault(),
			"rows":             table.Rows,
			"has_unique_index": table.HasUniqueIndex,
			"columns":          columns,
		}
	}

	result := map[string]interface{}{
		"name":   cfg.Name,
		"tables": tables,
	}
	if cfg.ID != "" {
		result["id"] = cfg.ID
	}
	if cfg.Version != "" {
		result["version"] = cfg.Version
	}
	if cfg.Description != "" {
		result["description"] = cfg.Description
	}

	return result
}
