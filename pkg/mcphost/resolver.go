package mcphost

import (
	"regexp"
	"sort"
	"strings"
)

// MatchType classifies how a [Suggestion] was derived.
type MatchType string

const (
	MatchExact    MatchType = "exact"
	MatchTemplate MatchType = "template"
	MatchScheme   MatchType = "scheme"
	MatchName     MatchType = "name"
)

// Suggestion is one ranked candidate server for a resolution query.
type Suggestion struct {
	ServerID   string
	MatchType  MatchType
	Confidence float64
}

// resolveResourceServer ranks servers that can plausibly serve target,
// given the current aggregated resources and resource templates. It is a
// pure function of its inputs; see spec §4.3 for the exact algorithm.
//
// Exact matches, if any exist, are returned alone (confidence 1.0). Failing
// that, template matches are returned (confidence 0.8). Failing that,
// scheme matches are returned (confidence 0.5), each server listed at most
// once. An empty result means no suggestion.
func resolveResourceServer(target string, resources []AggregatedResource, templates []AggregatedResourceTemplate) []Suggestion {
	var exact []Suggestion
	for _, r := range resources {
		if r.URI == target {
			exact = append(exact, Suggestion{ServerID: r.ServerID, MatchType: MatchExact, Confidence: 1.0})
		}
	}
	if len(exact) > 0 {
		sortByConfidence(exact)
		return exact
	}

	var templateMatches []Suggestion
	for _, t := range templates {
		if uriTemplateMatches(t.URITemplate, target) {
			templateMatches = append(templateMatches, Suggestion{ServerID: t.ServerID, MatchType: MatchTemplate, Confidence: 0.8})
		}
	}
	if len(templateMatches) > 0 {
		sortByConfidence(templateMatches)
		return templateMatches
	}

	targetScheme, ok := uriScheme(target)
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var schemeMatches []Suggestion
	for _, r := range resources {
		scheme, ok := uriScheme(r.URI)
		if !ok || scheme != targetScheme || seen[r.ServerID] {
			continue
		}
		seen[r.ServerID] = true
		schemeMatches = append(schemeMatches, Suggestion{ServerID: r.ServerID, MatchType: MatchScheme, Confidence: 0.5})
	}
	sortByConfidence(schemeMatches)
	return schemeMatches
}

// resolveToolServer ranks servers offering a tool by the given exact name.
func resolveToolServer(name string, tools []AggregatedTool) []Suggestion {
	var out []Suggestion
	for _, t := range tools {
		if t.Name == name {
			out = append(out, Suggestion{ServerID: t.ServerID, MatchType: MatchName, Confidence: 1.0})
		}
	}
	sortByConfidence(out)
	return out
}

// resolvePromptServer ranks servers offering a prompt by the given exact
// name.
func resolvePromptServer(name string, prompts []AggregatedPrompt) []Suggestion {
	var out []Suggestion
	for _, p := range prompts {
		if p.Name == name {
			out = append(out, Suggestion{ServerID: p.ServerID, MatchType: MatchName, Confidence: 1.0})
		}
	}
	sortByConfidence(out)
	return out
}

// sortByConfidence sorts in place by non-increasing confidence, stable so
// ties preserve insertion (server-registration) order.
func sortByConfidence(s []Suggestion) {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Confidence > s[j].Confidence })
}

// uriScheme returns the prefix up to and including the first colon, or
// false if target has no colon.
func uriScheme(target string) (string, bool) {
	i := strings.IndexByte(target, ':')
	if i < 0 {
		return "", false
	}
	return target[:i+1], true
}

// uriTemplateMatches reports whether template, a URI template containing
// {placeholder} segments, matches target after substituting each
// placeholder with a greedy wildcard and anchoring the whole string.
func uriTemplateMatches(template, target string) bool {
	pattern := templateToRegexp(template)
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(target)
}

var templatePlaceholder = regexp.MustCompile(`\{[^{}]*\}`)

func templateToRegexp(template string) string {
	var sb strings.Builder
	sb.WriteByte('^')
	last := 0
	for _, loc := range templatePlaceholder.FindAllStringIndex(template, -1) {
		sb.WriteString(regexp.QuoteMeta(template[last:loc[0]]))
		sb.WriteString(".*")
		last = loc[1]
	}
	sb.WriteString(regexp.QuoteMeta(template[last:]))
	sb.WriteByte('$')
	return sb.String()
}
