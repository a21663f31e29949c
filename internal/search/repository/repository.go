// Package repository implements the global search query. One weighted
// full-text query spans leads, contacts and contracts and returns a
// single ranked result set.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type SearchResult struct {
	ID           uuid.UUID
	Type         string
	Title        string
	Subtitle     string
	Status       string
	LinkID       string
	MatchedField string
	Score        float32
	CreatedAt    time.Time
	Total        int64
}

func (r *Repository) GlobalSearch(ctx context.Context, tenantID uuid.UUID, query string, limit int) ([]SearchResult, error) {
	querySQL := `
		WITH search_query AS (
			SELECT websearch_to_tsquery('simple', $2) AS q
		),
		results AS (
			-- 1) LEADS
			SELECT
				l.id,
				'lead'::text AS type,
				l.name AS title,
				concat_ws(' • ', NULLIF(l.company, ''), NULLIF(l.email, '')) AS subtitle,
				l.stage AS status,
				l.id::text AS link_id,
				CASE
					WHEN to_tsvector('simple', coalesce(l.name, '')) @@ sq.q THEN 'name'
					WHEN to_tsvector('simple', coalesce(l.company, '')) @@ sq.q THEN 'company'
					WHEN to_tsvector('simple', coalesce(l.email, '')) @@ sq.q THEN 'email'
					ELSE 'phone'
				END AS matched_field,
				ts_rank(
					setweight(to_tsvector('simple', coalesce(l.name, '')), 'A') ||
					setweight(to_tsvector('simple', coalesce(l.company, '')), 'B') ||
					setweight(to_tsvector('simple', coalesce(l.email, '')), 'B') ||
					setweight(to_tsvector('simple', coalesce(l.phone, '')), 'C'),
					sq.q
				) AS rank,
				l.created_at
			FROM crm_leads l, search_query sq
			WHERE l.tenant_id = $1
				AND (
					setweight(to_tsvector('simple', coalesce(l.name, '')), 'A') ||
					setweight(to_tsvector('simple', coalesce(l.company, '')), 'B') ||
					setweight(to_tsvector('simple', coalesce(l.email, '')), 'B') ||
					setweight(to_tsvector('simple', coalesce(l.phone, '')), 'C')
				) @@ sq.q

			UNION ALL

			-- 2) CONTACTS
			SELECT
				ct.id,
				'contact'::text AS type,
				ct.name AS title,
				concat_ws(' • ', NULLIF(ct.company, ''), NULLIF(ct.email, '')) AS subtitle,
				ct.stage AS status,
				ct.id::text AS link_id,
				CASE
					WHEN to_tsvector('simple', coalesce(ct.name, '')) @@ sq.q THEN 'name'
					WHEN to_tsvector('simple', coalesce(ct.company, '')) @@ sq.q THEN 'company'
					ELSE 'email'
				END AS matched_field,
				ts_rank(
					setweight(to_tsvector('simple', coalesce(ct.name, '')), 'A') ||
					setweight(to_tsvector('simple', coalesce(ct.company, '')), 'B') ||
					setweight(to_tsvector('simple', coalesce(ct.email, '')), 'B'),
					sq.q
				) AS rank,
				ct.created_at
			FROM crm_contacts ct, search_query sq
			WHERE ct.tenant_id = $1
				AND (
					setweight(to_tsvector('simple', coalesce(ct.name, '')), 'A') ||
					setweight(to_tsvector('simple', coalesce(ct.company, '')), 'B') ||
					setweight(to_tsvector('simple', coalesce(ct.email, '')), 'B')
				) @@ sq.q

			UNION ALL

			-- 3) CONTRACTS
			SELECT
				co.id,
				'contract'::text AS type,
				co.title AS title,
				concat_ws(' • ', co.status, (co.value_cents / 100.0)::text || ' ' || co.currency) AS subtitle,
				co.status AS status,
				co.id::text AS link_id,
				'title'::text AS matched_field,
				ts_rank(
					setweight(to_tsvector('simple', coalesce(co.title, '')), 'A'),
					sq.q
				) AS rank,
				co.created_at
			FROM crm_contracts co, search_query sq
			WHERE co.tenant_id = $1
				AND to_tsvector('simple', coalesce(co.title, '')) @@ sq.q
		)
		SELECT
			id, type, title, subtitle, status, link_id, matched_field, rank, created_at,
			COUNT(*) OVER() AS total
		FROM results
		ORDER BY rank DESC, created_at DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, querySQL, tenantID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("global search query failed: %w", err)
	}
	defer rows.Close()

	items := make([]SearchResult, 0)
	for rows.Next() {
		var item SearchResult
		if err := rows.Scan(
			&item.ID,
			&item.Type,
			&item.Title,
			&item.Subtitle,
			&item.Status,
			&item.LinkID,
			&item.MatchedField,
			&item.Score,
			&item.CreatedAt,
			&item.Total,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}
