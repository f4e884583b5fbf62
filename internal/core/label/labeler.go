package label

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/reviewgap/analyzer/internal/core/cluster"
	"github.com/reviewgap/analyzer/internal/core/common"
	"github.com/reviewgap/analyzer/internal/core/model"
	"github.com/reviewgap/analyzer/internal/llm"
)

// defaultNamePrompt asks the model for a short complaint-category name and a
// one-sentence description. First %s is the keyword list, second the samples.
const defaultNamePrompt = `You categorize app-store complaints.

Keywords: %s

Sample reviews:
%s

Name this complaint category. Respond with a JSON object:
{"name": "<2-4 word category name>", "description": "<one sentence>"}
Do not output any other text.`

type clusterName struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// categoryPatterns maps a dominant keyword to a canned name/description.
// Used when no naming capability is configured or it fails.
var categoryPatterns = []struct {
	pattern     string
	name        string
	description string
}{
	{"crash", "App Crashes", "Issues related to app crashes and instability"},
	{"bug", "Bug Reports", "Various bugs and software defects reported by users"},
	{"slow", "Performance Issues", "Complaints about slow performance and responsiveness"},
	{"battery", "Battery Drain", "Issues with excessive battery consumption"},
	{"login", "Authentication Problems", "Difficulties with login and account access"},
	{"sync", "Synchronization Issues", "Problems with data syncing across devices"},
	{"notification", "Notification Problems", "Issues with push notifications and alerts"},
	{"interface", "User Interface Issues", "Problems with app design and usability"},
	{"feature", "Missing Features", "Requests for missing or desired functionality"},
	{"ads", "Advertisement Issues", "Complaints about ads and monetization"},
	{"payment", "Payment Problems", "Issues with purchases and billing"},
	{"update", "Update Issues", "Problems after app updates"},
	{"loading", "Loading Problems", "Issues with content loading and connectivity"},
	{"account", "Account Issues", "Problems with user accounts and profiles"},
	{"connection", "Connectivity Issues", "Network and internet connection problems"},
	{"storage", "Storage Problems", "Issues with storage space and memory"},
}

// Labeler derives a name, description, keyword list, and representative
// samples for each cluster. The naming capability is optional; labeling
// failure never drops a cluster; it falls back to a heuristic name.
type Labeler struct {
	namer       llm.LLMClient // nil disables LLM naming
	prompt      string
	log         *slog.Logger
	maxKeywords int
	maxSamples  int
}

func NewLabeler(namer llm.LLMClient, prompt string, log *slog.Logger, maxKeywords, maxSamples int) *Labeler {
	if prompt == "" {
		prompt = defaultNamePrompt
	}
	if maxKeywords <= 0 {
		maxKeywords = 5
	}
	if maxSamples <= 0 {
		maxSamples = 3
	}
	return &Labeler{
		namer:       namer,
		prompt:      prompt,
		log:         log,
		maxKeywords: maxKeywords,
		maxSamples:  maxSamples,
	}
}

// Label populates c.Name, c.Description, c.Keywords, and c.SampleReviews.
// n is the 1-based cluster creation index, used for the generic fallback
// name.
func (l *Labeler) Label(ctx context.Context, c *model.Cluster, n int) {
	texts := make([]string, len(c.Members))
	for i, m := range c.Members {
		texts[i] = m.CleanedText
	}

	c.Keywords = ExtractKeywords(texts, l.maxKeywords)
	c.SampleReviews = l.representativeSamples(c)

	name, description, err := l.name(ctx, c.Keywords, c.SampleReviews)
	if err != nil {
		l.log.Warn("cluster naming failed, using heuristic", "cluster_id", c.ID, "error", err)
		name, description = heuristicName(c.Keywords, n)
	}
	c.Name = name
	c.Description = description
}

// representativeSamples picks the members whose embeddings sit closest to
// the cluster centroid, so samples reflect the theme rather than a random
// draw. Returns the original (uncleaned) review text.
func (l *Labeler) representativeSamples(c *model.Cluster) []string {
	type candidate struct {
		index int
		dist  float64
	}
	candidates := make([]candidate, len(c.Members))
	for i, m := range c.Members {
		candidates[i] = candidate{i, cluster.CosineDistance(m.Vector, c.Centroid)}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].index < candidates[j].index
	})

	limit := min(l.maxSamples, len(candidates))
	samples := make([]string, limit)
	for i := 0; i < limit; i++ {
		samples[i] = c.Members[candidates[i].index].Text
	}
	return samples
}

func (l *Labeler) name(ctx context.Context, keywords, samples []string) (string, string, error) {
	if l.namer == nil {
		return "", "", fmt.Errorf("no naming capability configured")
	}

	sampleList := ""
	for _, s := range samples {
		if len(s) > 200 {
			s = s[:200] + "..."
		}
		sampleList += fmt.Sprintf("- %s\n", s)
	}
	prompt := fmt.Sprintf(l.prompt, strings.Join(keywords, ", "), sampleList)

	response, err := l.namer.Generate(ctx, prompt)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate cluster name: %w", err)
	}

	result, err := common.ParseJSON[clusterName](response)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse cluster name: %w", err)
	}
	if result.Name == "" {
		return "", "", fmt.Errorf("empty cluster name in response")
	}
	return result.Name, result.Description, nil
}

// heuristicName maps keywords to a known complaint category, or builds a
// title from the top keywords, or falls back to "Complaint Group N".
func heuristicName(keywords []string, n int) (string, string) {
	for _, p := range categoryPatterns {
		for _, kw := range firstN(keywords, 3) {
			if strings.Contains(kw, p.pattern) {
				return p.name, p.description
			}
		}
	}

	switch {
	case len(keywords) >= 2:
		name := fmt.Sprintf("%s and %s Issues", title(keywords[0]), title(keywords[1]))
		desc := fmt.Sprintf("User complaints primarily about %s", strings.Join(firstN(keywords, 3), ", "))
		return name, desc
	case len(keywords) == 1:
		return fmt.Sprintf("%s Issues", title(keywords[0])),
			fmt.Sprintf("User complaints primarily about %s", keywords[0])
	default:
		return fmt.Sprintf("Complaint Group %d", n), "Miscellaneous user complaints"
	}
}

func title(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if size == 0 || r == utf8.RuneError {
		return w
	}
	return string(unicode.ToUpper(r)) + w[size:]
}

func firstN(s []string, n int) []string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
