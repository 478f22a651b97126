package gguf

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"modeltrack/pkg/types"
)

// rawOutput mirrors the slice of gguf-parser's JSON output we consume.
type rawOutput struct {
	Metadata struct {
		Architecture   string  `json:"architecture"`
		FileTypeDetail string  `json:"fileTypeDetail"`
		Parameters     int64   `json:"parameters"`
		FileSize       int64   `json:"fileSize"`
		BitsPerWeight  float64 `json:"bitsPerWeight"`
		Name           string  `json:"name"`
	} `json:"metadata"`
	Architecture struct {
		Architecture         string `json:"architecture"`
		MaximumContextLength int64  `json:"maximumContextLength"`
		EmbeddingLength      int64  `json:"embeddingLength"`
	} `json:"architecture"`
	Estimate struct {
		Items []struct {
			VRAMs []struct {
				NonUMA int64 `json:"nonuma"`
			} `json:"vrams"`
			RAM struct {
				NonUMA int64 `json:"nonuma"`
			} `json:"ram"`
		} `json:"items"`
	} `json:"estimate"`
}

func parseOutput(raw []byte) (*types.GGUFMetadata, error) {
	var out rawOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse gguf-parser output: %w", err)
	}

	md := &types.GGUFMetadata{
		Architecture:    out.Metadata.Architecture,
		Quantization:    out.Metadata.FileTypeDetail,
		Parameters:      out.Metadata.Parameters,
		ContextLength:   out.Architecture.MaximumContextLength,
		EmbeddingLength: out.Architecture.EmbeddingLength,
		FileSizeBytes:   out.Metadata.FileSize,
		BitsPerWeight:   round2(out.Metadata.BitsPerWeight),
		ModelName:       out.Metadata.Name,
	}
	if md.Architecture == "" {
		md.Architecture = out.Architecture.Architecture
	}
	if items := out.Estimate.Items; len(items) > 0 {
		if vrams := items[0].VRAMs; len(vrams) > 0 {
			md.VRAMRequiredGB = bytesToGB(vrams[0].NonUMA)
		}
		md.RAMRequiredGB = bytesToGB(items[0].RAM.NonUMA)
	}
	return md, nil
}

func bytesToGB(b int64) float64 {
	if b <= 0 {
		return 0
	}
	return round2(float64(b) / (1 << 30))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// quantPreference orders candidate files for extraction: a mid-size
// balanced quantization parses fastest and represents the repo well.
var quantPreference = []string{"q4_k_m", "q4_k_s", "q5_k_m", "q5_k_s", "q4_0", "q5_0"}

// PickPreferredFile chooses which of a repo's GGUF files to extract
// metadata from, falling back to the first file when no preferred
// quantization is present. Returns "" for an empty list.
func PickPreferredFile(files []string) string {
	if len(files) == 0 {
		return ""
	}
	for _, pref := range quantPreference {
		for _, f := range files {
			if strings.Contains(strings.ToLower(f), pref) {
				return f
			}
		}
	}
	return files[0]
}
