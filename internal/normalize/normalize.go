// Package normalize converts raw hub candidates into canonical model
// records: category, Chinese-origin flag, GGUF detection, size and VRAM
// estimates, plus delegated metadata extraction.
package normalize

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"modeltrack/internal/sources"
	"modeltrack/pkg/types"
)

// categoryRules is the fixed ordered keyword table for category inference.
// First match wins; records matching nothing fall through to Other.
var categoryRules = []struct {
	category types.Category
	keywords []string
}{
	{types.CategoryImage, []string{"diffusers", "stable-diffusion", "image-generation", "text-to-image", "image-to-image", "diffusion", "flux"}},
	{types.CategoryVideo, []string{"text-to-video", "video-generation", "image-to-video", "video"}},
	{types.CategoryAudio, []string{"text-to-speech", "automatic-speech-recognition", "audio-to-audio", "text-to-audio", "whisper", "tts"}},
	{types.CategoryCoding, []string{"code", "coding", "coder", "code-generation", "starcoder"}},
	{types.CategoryText, []string{"text-generation", "text2text-generation", "conversational", "instruct", "chat", "llm", "llama", "mistral", "qwen", "gpt"}},
}

// chineseIndicators are matched case-insensitively against model names.
// Origin is independent of hub: Chinese models appear on both.
var chineseIndicators = []string{
	"qwen", "baichuan", "chatglm", "yi-", "deepseek",
	"chinese", "minicpm", "internlm", "moss", "tigerbot",
	"aquila", "skywork", "xverse", "orion", "glm",
}

// sizeEstimates maps parameter-count name tokens to an approximate
// on-disk size in GB. Scanned in declared order; the first token found as
// a substring wins, which keeps ambiguous names deterministic.
var sizeEstimates = []struct {
	token  string
	sizeGB float64
}{
	{"0.5b", 1}, {"1b", 2}, {"1.5b", 3}, {"2b", 4}, {"3b", 6},
	{"4b", 8}, {"7b", 14}, {"8b", 16}, {"13b", 26}, {"14b", 28},
	{"32b", 64}, {"34b", 68}, {"70b", 140}, {"72b", 144},
}

// vramOverhead covers KV cache and runtime buffers on top of weights.
const vramOverhead = 1.2

// DetectCategory infers a category from tags, pipeline and name.
func DetectCategory(c sources.Candidate) types.Category {
	haystack := make(map[string]struct{}, len(c.Tags))
	for _, tag := range c.Tags {
		haystack[strings.ToLower(tag)] = struct{}{}
	}
	pipeline := strings.ToLower(c.Pipeline)
	name := strings.ToLower(c.Name)

	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if _, ok := haystack[kw]; ok {
				return rule.category
			}
			if pipeline != "" && strings.Contains(pipeline, kw) {
				return rule.category
			}
			if strings.Contains(name, kw) {
				return rule.category
			}
		}
	}
	return types.CategoryOther
}

// IsChineseModel reports whether the model looks Chinese-origin, from the
// name indicator list or zh/chinese tags.
func IsChineseModel(name string, tags []string) bool {
	lower := strings.ToLower(name)
	for _, ind := range chineseIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	for _, tag := range tags {
		switch strings.ToLower(tag) {
		case "zh", "chinese":
			return true
		}
	}
	return false
}

// IsGGUF reports whether the candidate is a GGUF-format model, from its
// name, tags, or repo file list. Independent of extraction success.
func IsGGUF(c sources.Candidate) bool {
	if strings.Contains(strings.ToLower(c.Name), "gguf") {
		return true
	}
	for _, tag := range c.Tags {
		if strings.EqualFold(tag, "gguf") {
			return true
		}
	}
	return len(c.GGUFFiles) > 0
}

// EstimateSizeGB prefers the reported artifact byte total, falls back to
// the parameter-token table, and returns nil when neither applies.
func EstimateSizeGB(sizeBytes int64, name string) *float64 {
	if sizeBytes > 0 {
		gb := round1(float64(sizeBytes) / (1 << 30))
		return &gb
	}
	lower := strings.ToLower(name)
	for _, e := range sizeEstimates {
		if strings.Contains(lower, e.token) {
			gb := e.sizeGB
			return &gb
		}
	}
	return nil
}

// EstimateVRAMGB derives an advisory VRAM figure. Extracted metadata wins
// (the tool's own estimate, or weights reconstructed from parameter count
// and quantization density); otherwise the size estimate plus overhead;
// otherwise nil.
func EstimateVRAMGB(sizeGB *float64, md *types.GGUFMetadata) *float64 {
	if md != nil {
		if md.VRAMRequiredGB > 0 {
			v := md.VRAMRequiredGB
			return &v
		}
		if md.Parameters > 0 && md.BitsPerWeight > 0 {
			weightsGB := float64(md.Parameters) * md.BitsPerWeight / 8 / (1 << 30)
			v := round1(weightsGB * vramOverhead)
			return &v
		}
	}
	if sizeGB != nil {
		v := round1(*sizeGB * vramOverhead)
		return &v
	}
	return nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// encodeTags stores at most ten tags as a JSON array string.
func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	if len(tags) > 10 {
		tags = tags[:10]
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return ""
	}
	return string(b)
}

func releaseDate(c sources.Candidate) *time.Time {
	if c.ReleaseDate != nil {
		return c.ReleaseDate
	}
	now := time.Now().UTC()
	return &now
}
