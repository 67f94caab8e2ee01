//go:build integration_ch

package ch

import (
	"context"
	"testing"
	"time"

	"gscchat/internal/platform/testkit/containers"
)

func TestInsertAndScanMap_Integration(t *testing.T) {
	dsn := containers.Clickhouse(t)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	c, err := Open(ctx, Config{URL: dsn, Role: "test"}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer c.Close()

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := c.Conn.Exec(ctx, `CREATE TABLE search_analytics (
		site_url String, date Date, query String, page String,
		clicks UInt64, impressions UInt64, position Float64
	) ENGINE = MergeTree ORDER BY (site_url, date)`); err != nil {
		t.Fatalf("create: %v", err)
	}

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	n, err := c.Insert(ctx, "search_analytics",
		[]string{"site_url", "date", "query", "page", "clicks", "impressions", "position"},
		[][]any{
			{"sc-domain:example.com", day, "shoes", "/shoes", uint64(60), uint64(1000), 4.0},
			{"sc-domain:example.com", day.AddDate(0, 0, 1), "shoes", "/shoes", uint64(40), uint64(1000), 6.0},
		})
	if err != nil || n != 2 {
		t.Fatalf("insert = %d, %v", n, err)
	}

	rows, err := c.Query(ctx, `SELECT query, sum(clicks) AS clicks,
		sum(position * impressions) / sum(impressions) AS position
		FROM search_analytics WHERE site_url = ? GROUP BY query`, "sc-domain:example.com")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()

	if !rows.Next() {
		t.Fatalf("expected one row, err=%v", rows.Err())
	}
	m, err := rows.ScanMap()
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if m["query"] != "shoes" || m["clicks"] != uint64(100) || m["position"] != 5.0 {
		t.Fatalf("row = %#v", m)
	}
}
