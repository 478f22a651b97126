package scraper

import (
	"time"

	"modeltrack/internal/sources"
	"modeltrack/pkg/types"
)

// sampleCandidates is the curated fallback set used when discovery comes
// back nearly empty, so a fresh install never shows a blank dashboard.
func sampleCandidates() []sources.Candidate {
	return []sources.Candidate{
		{
			Source:      types.SourceHuggingFace,
			RepoID:      "meta-llama/Llama-3.2-3B",
			Name:        "Llama-3.2-3B",
			URL:         "https://huggingface.co/meta-llama/Llama-3.2-3B",
			Description: "Meta Llama 3.2 3B - Compact yet powerful language model optimized for efficiency",
			Tags:        []string{"llama", "meta", "text-generation"},
			ReleaseDate: seedDate("2024-09-25 12:00:00"),
			Downloads:   1000000,
			Likes:       5000,
			SizeBytes:   6 << 30,
		},
		{
			Source:      types.SourceHuggingFace,
			RepoID:      "Qwen/Qwen2.5-7B-Instruct",
			Name:        "Qwen2.5-7B-Instruct",
			URL:         "https://huggingface.co/Qwen/Qwen2.5-7B-Instruct",
			Description: "Qwen 2.5 7B Instruct - Alibaba latest multilingual model with excellent Chinese support",
			Tags:        []string{"qwen", "chinese", "text-generation"},
			ReleaseDate: seedDate("2024-09-19 10:30:00"),
			Downloads:   500000,
			Likes:       3000,
			SizeBytes:   14 << 30,
		},
		{
			Source:      types.SourceHuggingFace,
			RepoID:      "deepseek-ai/DeepSeek-Coder-V2-Lite-Instruct",
			Name:        "DeepSeek-Coder-V2-Lite",
			URL:         "https://huggingface.co/deepseek-ai/DeepSeek-Coder-V2-Lite-Instruct",
			Description: "DeepSeek Coder V2 Lite - Excellent code generation model from DeepSeek",
			Tags:        []string{"deepseek", "code", "coding"},
			ReleaseDate: seedDate("2024-06-17 08:00:00"),
			Downloads:   300000,
			Likes:       2000,
			SizeBytes:   16 << 30,
		},
		{
			Source:      types.SourceHuggingFace,
			RepoID:      "stabilityai/stable-diffusion-3-medium",
			Name:        "Stable-Diffusion-3-Medium",
			URL:         "https://huggingface.co/stabilityai/stable-diffusion-3-medium",
			Description: "Stable Diffusion 3 Medium - High quality image generation with improved text rendering",
			Tags:        []string{"stable-diffusion", "image", "diffusers"},
			ReleaseDate: seedDate("2024-06-12 14:00:00"),
			Downloads:   800000,
			Likes:       4000,
			SizeBytes:   4 << 30,
		},
		{
			Source:      types.SourceHuggingFace,
			RepoID:      "mistralai/Mistral-7B-Instruct-v0.3",
			Name:        "Mistral-7B-Instruct-v0.3",
			URL:         "https://huggingface.co/mistralai/Mistral-7B-Instruct-v0.3",
			Description: "Mistral 7B Instruct v0.3 - Fast and efficient instruction-following model",
			Tags:        []string{"mistral", "text-generation", "instruct"},
			ReleaseDate: seedDate("2024-05-22 16:00:00"),
			Downloads:   2000000,
			Likes:       8000,
			SizeBytes:   14 << 30,
		},
		{
			Source:      types.SourceHuggingFace,
			RepoID:      "microsoft/Phi-3-mini-4k-instruct",
			Name:        "Phi-3-mini-4k-instruct",
			URL:         "https://huggingface.co/microsoft/Phi-3-mini-4k-instruct",
			Description: "Microsoft Phi-3 Mini - Compact 3.8B model with impressive performance",
			Tags:        []string{"phi", "microsoft", "text-generation"},
			ReleaseDate: seedDate("2024-04-23 09:00:00"),
			Downloads:   1500000,
			Likes:       6000,
			SizeBytes:   7 << 30,
		},
		{
			Source:      types.SourceHuggingFace,
			RepoID:      "black-forest-labs/FLUX.1-schnell",
			Name:        "FLUX.1-schnell",
			URL:         "https://huggingface.co/black-forest-labs/FLUX.1-schnell",
			Description: "FLUX.1 Schnell - Ultra-fast high quality image generation",
			Tags:        []string{"flux", "image", "diffusers", "text-to-image"},
			ReleaseDate: seedDate("2024-08-01 11:00:00"),
			Downloads:   600000,
			Likes:       3500,
			SizeBytes:   12 << 30,
		},
		{
			Source:      types.SourceHuggingFace,
			RepoID:      "meta-llama/Llama-3.2-11B-Vision",
			Name:        "Llama-3.2-11B-Vision",
			URL:         "https://huggingface.co/meta-llama/Llama-3.2-11B-Vision",
			Description: "Meta Llama 3.2 Vision - Multimodal model for image understanding",
			Tags:        []string{"llama", "vision", "multimodal"},
			ReleaseDate: seedDate("2024-09-25 13:00:00"),
			Downloads:   400000,
			Likes:       2500,
			SizeBytes:   22 << 30,
		},
		{
			Source:      types.SourceHuggingFace,
			RepoID:      "01-ai/Yi-1.5-9B-Chat",
			Name:        "Yi-1.5-9B-Chat",
			URL:         "https://huggingface.co/01-ai/Yi-1.5-9B-Chat",
			Description: "Yi 1.5 9B Chat - Excellent bilingual (Chinese/English) chat model",
			Tags:        []string{"yi", "chinese", "chat"},
			ReleaseDate: seedDate("2024-05-13 07:00:00"),
			Downloads:   250000,
			Likes:       1500,
			SizeBytes:   18 << 30,
		},
		{
			Source:      types.SourceHuggingFace,
			RepoID:      "openbmb/MiniCPM-V-2_6",
			Name:        "MiniCPM-V-2_6",
			URL:         "https://huggingface.co/openbmb/MiniCPM-V-2_6",
			Description: "MiniCPM-V 2.6 - Tiny but capable vision-language model",
			Tags:        []string{"minicpm", "vision", "multimodal"},
			ReleaseDate: seedDate("2024-08-06 15:00:00"),
			Downloads:   150000,
			Likes:       1200,
			SizeBytes:   5 << 30,
		},
	}
}

func seedDate(s string) *time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
