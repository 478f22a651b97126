package normalize

import (
	"testing"

	"modeltrack/internal/sources"
	"modeltrack/pkg/types"
)

func TestDetectCategory(t *testing.T) {
	cases := []struct {
		name string
		c    sources.Candidate
		want types.Category
	}{
		{"diffusers tag", sources.Candidate{Name: "SD3", Tags: []string{"diffusers"}}, types.CategoryImage},
		{"image pipeline", sources.Candidate{Name: "SomeModel", Pipeline: "text-to-image"}, types.CategoryImage},
		{"video pipeline", sources.Candidate{Name: "Gen", Pipeline: "text-to-video"}, types.CategoryVideo},
		{"audio tag", sources.Candidate{Name: "Voice", Tags: []string{"text-to-speech"}}, types.CategoryAudio},
		{"whisper name", sources.Candidate{Name: "whisper-large-v3"}, types.CategoryAudio},
		{"coder name", sources.Candidate{Name: "DeepSeek-Coder-V2"}, types.CategoryCoding},
		{"image beats coding when listed first", sources.Candidate{Name: "CodeDiffusion", Tags: []string{"stable-diffusion", "code"}}, types.CategoryImage},
		{"text pipeline", sources.Candidate{Name: "SomeModel", Pipeline: "text-generation"}, types.CategoryText},
		{"llama name", sources.Candidate{Name: "Llama-3.2-3B"}, types.CategoryText},
		{"nothing matches", sources.Candidate{Name: "esmfold"}, types.CategoryOther},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectCategory(tc.c); got != tc.want {
				t.Fatalf("got %s want %s", got, tc.want)
			}
		})
	}
}

func TestIsChineseModel(t *testing.T) {
	cases := []struct {
		name string
		tags []string
		want bool
	}{
		{"Qwen2.5-7B-Instruct", nil, true},
		{"DeepSeek-R1", nil, true},
		{"Yi-1.5-9B", nil, true},
		{"SomeModel", []string{"zh"}, true},
		{"SomeModel", []string{"Chinese"}, true},
		{"Mistral-7B", []string{"en"}, false},
	}
	for _, tc := range cases {
		if got := IsChineseModel(tc.name, tc.tags); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsGGUF(t *testing.T) {
	if !IsGGUF(sources.Candidate{Name: "Llama-2-7B-GGUF"}) {
		t.Fatalf("name match")
	}
	if !IsGGUF(sources.Candidate{Name: "m", Tags: []string{"GGUF"}}) {
		t.Fatalf("tag match")
	}
	if !IsGGUF(sources.Candidate{Name: "m", GGUFFiles: []string{"a.gguf"}}) {
		t.Fatalf("file match")
	}
	if IsGGUF(sources.Candidate{Name: "Mistral-7B"}) {
		t.Fatalf("no match expected")
	}
}

func TestEstimateSizeGB(t *testing.T) {
	if got := EstimateSizeGB(4368438944, "whatever"); got == nil || *got != 4.1 {
		t.Fatalf("reported bytes: %v", got)
	}
	if got := EstimateSizeGB(0, "Qwen-7B"); got == nil || *got != 14 {
		t.Fatalf("7b token: %v", got)
	}
	// Multiple numeric tokens: the table is scanned in declared order and
	// the first substring match wins.
	if got := EstimateSizeGB(0, "Qwen2.5-1.5B-Instruct"); got == nil || *got != 3 {
		t.Fatalf("1.5b token: %v", got)
	}
	if got := EstimateSizeGB(0, "esmfold-v1"); got != nil {
		t.Fatalf("no token should give nil, got %v", *got)
	}
}

func TestEstimateVRAMGB(t *testing.T) {
	size := 14.0
	if got := EstimateVRAMGB(&size, nil); got == nil || *got != 16.8 {
		t.Fatalf("size path: %v", got)
	}
	if got := EstimateVRAMGB(&size, &types.GGUFMetadata{VRAMRequiredGB: 5.1}); got == nil || *got != 5.1 {
		t.Fatalf("tool estimate wins: %v", got)
	}
	md := &types.GGUFMetadata{Parameters: 7_000_000_000, BitsPerWeight: 4}
	if got := EstimateVRAMGB(nil, md); got == nil || *got != 3.9 {
		t.Fatalf("quantization path: %v", got)
	}
	if got := EstimateVRAMGB(nil, nil); got != nil {
		t.Fatalf("no inputs should give nil")
	}
}
