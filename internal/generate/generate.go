package generate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/codebuildervaibhav/podcast-content/internal/types"
)

// Generator writes placeholder content artifacts for the dev server. It
// stands in for the real transcription and generation pipeline, producing
// files with the same names and keys the service would.
type Generator struct {
	outputDir string
}

// NewGenerator creates a generator writing into outputDir.
func NewGenerator(outputDir string) *Generator {
	return &Generator{outputDir: outputDir}
}

// Generate produces one artifact per applicable content type and returns
// the artifact map (type key -> filename). A transcript is always written.
// SEO, social and newsletter derive from the blog post and are skipped
// when blog is not selected, matching the service behavior.
func (g *Generator) Generate(jobID, uploadName string, selected []types.ContentType) (map[string]string, error) {
	base := strings.TrimSuffix(uploadName, filepath.Ext(uploadName))
	outputBase := fmt.Sprintf("%s_%s", jobID, base)

	files := map[string]string{}

	transcriptName, err := g.writeMarkdown(outputBase+"_transcript", placeholderTranscript(base))
	if err != nil {
		return nil, err
	}
	files["transcript"] = transcriptName

	blogSelected := hasType(selected, types.ContentBlog)
	if blogSelected {
		name, err := g.writeMarkdown(outputBase+"_blog", placeholderBlog(base))
		if err != nil {
			return nil, err
		}
		files["blog"] = name
	}

	if hasType(selected, types.ContentSEO) && blogSelected {
		name, err := g.writeJSON(outputBase+"_seo", placeholderSEO(base))
		if err != nil {
			return nil, err
		}
		files["seo"] = name
	}

	if hasType(selected, types.ContentFAQ) {
		name, err := g.writeMarkdown(outputBase+"_faq", placeholderFAQ(base))
		if err != nil {
			return nil, err
		}
		files["faq"] = name
	}

	if hasType(selected, types.ContentSocial) && blogSelected {
		name, err := g.writeMarkdown(outputBase+"_social", placeholderSocial(base))
		if err != nil {
			return nil, err
		}
		files["social"] = name
	}

	if hasType(selected, types.ContentNewsletter) && blogSelected {
		name, err := g.writeMarkdown(outputBase+"_newsletter", placeholderNewsletter(base))
		if err != nil {
			return nil, err
		}
		files["newsletter"] = name
	}

	if hasType(selected, types.ContentQuotes) {
		name, err := g.writeMarkdown(outputBase+"_quotes", placeholderQuotes(base))
		if err != nil {
			return nil, err
		}
		files["quotes"] = name
	}

	return files, nil
}

func (g *Generator) writeMarkdown(name, content string) (string, error) {
	filename := name + ".md"
	if err := os.WriteFile(filepath.Join(g.outputDir, filename), []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %v", filename, err)
	}
	return filename, nil
}

func (g *Generator) writeJSON(name string, content any) (string, error) {
	filename := name + ".json"
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s: %v", filename, err)
	}
	if err := os.WriteFile(filepath.Join(g.outputDir, filename), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %v", filename, err)
	}
	return filename, nil
}

func hasType(selected []types.ContentType, ct types.ContentType) bool {
	for _, s := range selected {
		if s == ct {
			return true
		}
	}
	return false
}

func placeholderTranscript(base string) string {
	return fmt.Sprintf("# Transcript: %s\n\n[SPEAKER 1] Welcome back to the show. Today we are talking about %s.\n\n[SPEAKER 2] Glad to be here. Let's dive in.\n", base, base)
}

func placeholderBlog(base string) string {
	return fmt.Sprintf("# %s: Key Takeaways\n\nThis post summarizes the episode \"%s\".\n\n## Highlights\n\n- Placeholder insight one\n- Placeholder insight two\n", base, base)
}

func placeholderSEO(base string) map[string]any {
	return map[string]any{
		"title":            fmt.Sprintf("%s: Key Takeaways", base),
		"meta_description": fmt.Sprintf("Highlights and lessons from the episode %s.", base),
		"tags":             []string{"podcast", "blog"},
		"keywords":         []string{base, "podcast", "summary"},
	}
}

func placeholderFAQ(base string) string {
	return fmt.Sprintf("# FAQ: %s\n\n**Q: What is this episode about?**\n\nA: Placeholder answer.\n", base)
}

func placeholderSocial(base string) string {
	return fmt.Sprintf("# Social Media Posts\n\n## Twitter/X\n\nNew episode out: %s\n\n## LinkedIn\n\nWe just published %s.\n", base, base)
}

func placeholderNewsletter(base string) string {
	return fmt.Sprintf("# Newsletter\n\nIn this week's issue: %s.\n", base)
}

func placeholderQuotes(base string) string {
	return fmt.Sprintf("# Quotes from %s\n\n> \"Placeholder memorable quote.\"\n", base)
}
