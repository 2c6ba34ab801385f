// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hybrid Graph Chat Contributors

package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/1109inc/hybrid-graph-chat-assistant/internal/config"
	apperr "github.com/1109inc/hybrid-graph-chat-assistant/pkg/errors"
)

// NewRootCmd creates the root hybridchat command with all subcommands
// registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hybridchat",
		Short:         "hybridchat — hybrid vector + graph travel assistant",
		Long:          "hybridchat answers travel questions by combining vector-index retrieval, graph neighborhood facts, and a Gemini chat model, with a persistent local cache for embeddings.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initViper(cmd)
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newChatCmd(),
		newUploadCmd(),
		newVersionCmd(),
	)

	return root
}

// initViper sets up the global Viper with defaults, env bindings, and
// optional config file so the standard precedence (flag > env > file >
// defaults) is handled uniformly.
func initViper(cmd *cobra.Command) error {
	v := viper.GetViper()

	config.SetDefaults(v)
	config.SetupEnv(v)

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return apperr.Wrapf(err, apperr.CodeConfigLoadReadFailure, "reading config file")
		}
	} else {
		// Auto-discover hybridchat.yaml from standard locations; no
		// config file is fine, parse errors must surface.
		v.SetConfigName("hybridchat")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/hybridchat")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return apperr.Wrapf(err, apperr.CodeConfigLoadReadFailure, "reading config")
			}
		}
	}

	if verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose"); verbose {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	return nil
}

// loadConfig resolves the validated configuration from the global Viper.
func loadConfig() (*config.Config, error) {
	return config.FromViper(viper.GetViper())
}
