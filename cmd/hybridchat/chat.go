// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hybrid Graph Chat Contributors

package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1109inc/hybrid-graph-chat-assistant/internal/chat"
	"github.com/1109inc/hybrid-graph-chat-assistant/internal/graph"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat [question]",
		Short: "Ask the travel assistant",
		Long:  "Answer a travel question with hybrid vector + graph retrieval. Starts an interactive session when no question is given.",
		RunE:  runChat,
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	embedder, closeCache, err := buildEmbedder(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	index, err := buildIndex(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := index.Close(); err != nil {
			slog.Warn("closing vector index", "error", err)
		}
	}()

	traverser, err := graph.NewNeo4jTraverser(graph.Neo4jConfig{
		URI:      cfg.Neo4j.URI,
		Username: cfg.Neo4j.Username,
		Password: cfg.Neo4j.Password,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := traverser.Close(ctx); err != nil {
			slog.Warn("closing graph driver", "error", err)
		}
	}()

	model, err := chat.NewGeminiModel(ctx, chat.GeminiConfig{
		APIKey: cfg.Gemini.APIKey,
		Model:  cfg.Gemini.ChatModel,
	})
	if err != nil {
		return err
	}

	assistant := chat.NewAssistant(embedder, index, traverser, model, cfg.Chat.TopK)

	if len(args) > 0 {
		answer, err := assistant.Answer(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), answer)
		return nil
	}

	return interactiveLoop(cmd, assistant)
}

func interactiveLoop(cmd *cobra.Command, assistant *chat.Assistant) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Hybrid travel assistant. Type 'exit' to quit.")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "\nEnter your travel question: ")
		if !scanner.Scan() {
			break
		}

		query := strings.TrimSpace(scanner.Text())
		if query == "" || query == "exit" || query == "quit" {
			break
		}

		answer, err := assistant.Answer(cmd.Context(), query)
		if err != nil {
			// One failed question should not end the session.
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}

		fmt.Fprintf(out, "\n=== Assistant Answer ===\n\n%s\n\n=== End ===\n", answer)
	}

	return scanner.Err()
}
