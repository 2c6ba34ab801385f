// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hybrid Graph Chat Contributors

package chat_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/1109inc/hybrid-graph-chat-assistant/internal/chat"
	"github.com/1109inc/hybrid-graph-chat-assistant/internal/graph"
	"github.com/1109inc/hybrid-graph-chat-assistant/internal/vecindex"
)

func TestBuildPrompt_IncludesContext(t *testing.T) {
	system, user := chat.BuildPrompt(chat.PromptInput{
		Query: "three days in Hanoi",
		Matches: []vecindex.Match{
			{ID: "n1", Score: 0.91, Metadata: map[string]any{"name": "Hoan Kiem Lake", "type": "attraction", "city": "Hanoi"}},
			{ID: "n2", Score: 0.85, Metadata: map[string]any{"name": "Old Quarter", "type": "area"}},
		},
		Facts: []graph.Fact{
			{Source: "n1", Rel: "NEAR", TargetID: "n3", TargetName: "Ngoc Son Temple", TargetDesc: "temple on an islet"},
		},
	})

	assert.Contains(t, system, "travel itinerary assistant")

	assert.Contains(t, user, "User query: three days in Hanoi")
	assert.Contains(t, user, "- id: n1, name: Hoan Kiem Lake, type: attraction, score: 0.91, city: Hanoi")
	assert.Contains(t, user, "- id: n2, name: Old Quarter, type: area, score: 0.85")
	assert.NotContains(t, user, "score: 0.85, city:", "match without city metadata omits the city field")
	assert.Contains(t, user, "- (n1) -[NEAR]-> (n3) Ngoc Son Temple: temple on an islet")
}

func TestBuildPrompt_CapsContext(t *testing.T) {
	var matches []vecindex.Match
	for i := 0; i < 15; i++ {
		matches = append(matches, vecindex.Match{ID: fmt.Sprintf("m%d", i)})
	}
	var facts []graph.Fact
	for i := 0; i < 30; i++ {
		facts = append(facts, graph.Fact{Source: fmt.Sprintf("f%d", i), TargetID: fmt.Sprintf("t%d", i)})
	}

	_, user := chat.BuildPrompt(chat.PromptInput{Query: "q", Matches: matches, Facts: facts})

	assert.Contains(t, user, "- id: m9,")
	assert.NotContains(t, user, "- id: m10,", "matches capped at ten")
	assert.Contains(t, user, "- (f19)")
	assert.NotContains(t, user, "- (f20)", "facts capped at twenty")
}

func TestBuildPrompt_EmptyContext(t *testing.T) {
	_, user := chat.BuildPrompt(chat.PromptInput{Query: "anything"})
	assert.Contains(t, user, "User query: anything")
	assert.Contains(t, user, "Top semantic matches")
}
