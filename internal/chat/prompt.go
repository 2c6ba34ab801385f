// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hybrid Graph Chat Contributors

// Package chat builds hybrid prompts from vector matches and graph facts
// and drives the assistant conversation loop.
package chat

import (
	"fmt"
	"strings"

	"github.com/1109inc/hybrid-graph-chat-assistant/internal/graph"
	"github.com/1109inc/hybrid-graph-chat-assistant/internal/vecindex"
)

// systemInstruction steers the model toward natural-language itineraries
// built from the retrieved context.
const systemInstruction = "You are a travel itinerary assistant. **Use the names and descriptive text** provided in the context to form a natural-language itinerary. **NEVER** include the 'id', 'node id', or any code in your final response. Focus on giving the user the best 2-3 specific place names or descriptions per day."

const (
	maxPromptMatches = 10
	maxPromptFacts   = 20
)

// PromptInput is the retrieved context for one user query.
type PromptInput struct {
	Query   string
	Matches []vecindex.Match
	Facts   []graph.Fact
}

// BuildPrompt renders the system instruction and the user message
// combining the top vector matches and graph facts.
func BuildPrompt(in PromptInput) (system, user string) {
	matches := in.Matches
	if len(matches) > maxPromptMatches {
		matches = matches[:maxPromptMatches]
	}
	facts := in.Facts
	if len(facts) > maxPromptFacts {
		facts = facts[:maxPromptFacts]
	}

	var vecContext []string
	for _, m := range matches {
		line := fmt.Sprintf("- id: %s, name: %s, type: %s, score: %v",
			m.ID, metaString(m.Metadata, "name"), metaString(m.Metadata, "type"), m.Score)
		if city := metaString(m.Metadata, "city"); city != "" {
			line += ", city: " + city
		}
		vecContext = append(vecContext, line)
	}

	var graphContext []string
	for _, f := range facts {
		graphContext = append(graphContext, fmt.Sprintf("- (%s) -[%s]-> (%s) %s: %s",
			f.Source, f.Rel, f.TargetID, f.TargetName, f.TargetDesc))
	}

	user = fmt.Sprintf("User query: %s\n\n"+
		"Top semantic matches (from vector DB):\n%s\n\n"+
		"Graph facts (neighboring relations):\n%s\n\n"+
		"Based on the above, answer the user's question. If helpful, suggest 2–3 concrete itinerary steps or tips and mention node ids for references.",
		in.Query, strings.Join(vecContext, "\n"), strings.Join(graphContext, "\n"))

	return systemInstruction, user
}

func metaString(meta map[string]any, key string) string {
	if meta == nil {
		return ""
	}
	s, _ := meta[key].(string)
	return s
}
