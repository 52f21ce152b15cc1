package supabase

import (
	"context"
	"fmt"

	"github.com/supabase-community/supabase-go"

	"staging-pro-backend/internal/config"
	"staging-pro-backend/internal/store"
)

// Client is the PostgREST-backed store.RecordStore. Every collection is a
// flat table keyed by the text column id.
type Client struct {
	Supabase *supabase.Client
	Config   *config.Config
}

func NewClient(cfg *config.Config) (*Client, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &Client{
		Supabase: client,
		Config:   cfg,
	}, nil
}

var _ store.RecordStore = (*Client)(nil)

func (c *Client) FetchAll(ctx context.Context, col store.Collection) ([]store.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rows []store.Record
	if _, err := c.Supabase.From(string(col)).Select("*", "", false).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", col, err)
	}
	return rows, nil
}

func (c *Client) FetchWhere(ctx context.Context, col store.Collection, field, value string) ([]store.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rows []store.Record
	_, err := c.Supabase.From(string(col)).Select("*", "", false).Eq(field, value).ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s by %s: %w", col, field, err)
	}
	return rows, nil
}

func (c *Client) Insert(ctx context.Context, col store.Collection, rec store.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, _, err := c.Supabase.From(string(col)).Insert(rec, false, "", "minimal", "").Execute(); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", col, err)
	}
	return nil
}

// Update sends only the given columns, so PostgREST merges them into the
// row and concurrent writers of other columns keep their values.
func (c *Client) Update(ctx context.Context, col store.Collection, id string, patch store.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, _, err := c.Supabase.From(string(col)).Update(patch, "minimal", "").Eq("id", id).Execute(); err != nil {
		return fmt.Errorf("failed to update %s %s: %w", col, id, err)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, col store.Collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, _, err := c.Supabase.From(string(col)).Delete("minimal", "").Eq("id", id).Execute(); err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", col, id, err)
	}
	return nil
}
