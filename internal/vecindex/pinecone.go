// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hybrid Graph Chat Contributors

package vecindex

import (
	"context"
	"log/slog"

	"github.com/pinecone-io/go-pinecone/v2/pinecone"
	"google.golang.org/protobuf/types/known/structpb"

	apperr "github.com/1109inc/hybrid-graph-chat-assistant/pkg/errors"
)

// PineconeConfig holds Pinecone connection and index-provisioning
// settings.
type PineconeConfig struct {
	APIKey    string
	IndexName string
	Dimension int
	Cloud     string
	Region    string
}

// Compile-time interface check.
var _ Index = (*Pinecone)(nil)

// Pinecone implements Index on a Pinecone serverless index with cosine
// metric.
type Pinecone struct {
	conn   *pinecone.IndexConnection
	logger *slog.Logger
}

// NewPinecone connects to the configured index, creating a serverless
// index with the configured dimension when it does not exist yet.
func NewPinecone(ctx context.Context, cfg PineconeConfig) (*Pinecone, error) {
	if cfg.APIKey == "" {
		return nil, apperr.New(apperr.CodeIndexConfigInvalid, "pinecone: missing api_key in config", apperr.FieldIndex(cfg.IndexName))
	}
	if cfg.IndexName == "" {
		return nil, apperr.New(apperr.CodeIndexConfigInvalid, "pinecone: missing index name")
	}

	client, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: cfg.APIKey})
	if err != nil {
		return nil, apperr.Wrapf(err, apperr.CodeIndexConfigInvalid, "pinecone: creating client")
	}

	idx, err := ensureIndex(ctx, client, cfg)
	if err != nil {
		return nil, err
	}

	conn, err := client.Index(pinecone.NewIndexConnParams{Host: idx.Host})
	if err != nil {
		return nil, apperr.Wrapf(err, apperr.CodeIndexQueryFailure, "pinecone: connecting to index %s", cfg.IndexName)
	}

	return &Pinecone{conn: conn, logger: slog.Default()}, nil
}

func ensureIndex(ctx context.Context, client *pinecone.Client, cfg PineconeConfig) (*pinecone.Index, error) {
	existing, err := client.ListIndexes(ctx)
	if err != nil {
		return nil, apperr.Wrapf(err, apperr.CodeIndexQueryFailure, "pinecone: listing indexes")
	}
	for _, idx := range existing {
		if idx.Name == cfg.IndexName {
			return idx, nil
		}
	}

	slog.Info("creating pinecone index", "name", cfg.IndexName, "dimension", cfg.Dimension)

	dimension := int32(cfg.Dimension)
	metric := pinecone.Cosine
	idx, err := client.CreateServerlessIndex(ctx, &pinecone.CreateServerlessIndexRequest{
		Name:      cfg.IndexName,
		Dimension: dimension,
		Metric:    metric,
		Cloud:     pinecone.Cloud(cfg.Cloud),
		Region:    cfg.Region,
	})
	if err != nil {
		return nil, apperr.Wrapf(err, apperr.CodeIndexUpsertFailure, "pinecone: creating index %s", cfg.IndexName)
	}
	return idx, nil
}

// Upsert writes items to the index in one request.
func (p *Pinecone) Upsert(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}

	vectors := make([]*pinecone.Vector, len(items))
	for i, item := range items {
		values := item.Values
		vec := &pinecone.Vector{Id: item.ID, Values: values}
		if len(item.Metadata) > 0 {
			meta, err := structpb.NewStruct(item.Metadata)
			if err != nil {
				return apperr.Wrapf(err, apperr.CodeIndexUpsertFailure, "pinecone: encoding metadata for %s", item.ID)
			}
			vec.Metadata = meta
		}
		vectors[i] = vec
	}

	if _, err := p.conn.UpsertVectors(ctx, vectors); err != nil {
		return apperr.Wrapf(err, apperr.CodeIndexUpsertFailure, "pinecone: upserting %d vectors", len(vectors))
	}
	return nil
}

// Query returns the topK nearest neighbors with metadata.
func (p *Pinecone) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	resp, err := p.conn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          vector,
		TopK:            uint32(topK),
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, apperr.Wrapf(err, apperr.CodeIndexQueryFailure, "pinecone: querying top %d", topK)
	}

	matches := make([]Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		if m.Vector == nil {
			continue
		}
		match := Match{ID: m.Vector.Id, Score: m.Score}
		if m.Vector.Metadata != nil {
			match.Metadata = m.Vector.Metadata.AsMap()
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// Close releases the index connection.
func (p *Pinecone) Close() error { return p.conn.Close() }
