package repo

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gscchat/internal/core/intents"
	perr "gscchat/internal/platform/errors"
)

// DefaultTable is the daily fact table both dialects read
const DefaultTable = "search_analytics"

// aggregate aliases; distinct from the source columns so ORDER BY never binds to a raw column
const (
	colClicks      = "total_clicks"
	colImpressions = "total_impressions"
	colCTR         = "avg_ctr"
	colPosition    = "avg_position"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidTable reports whether name is a plain or schema-qualified identifier
func ValidTable(name string) bool { return identRe.MatchString(name) }

// dimension columns
var dimColumns = map[intents.Dimension]string{
	intents.DimQuery: "query",
	intents.DimPage:  "page",
}

// Dialect renders the backend-specific parts of a metrics query
type Dialect struct {
	Name string

	placeholder func(n int) string
	day         func(ph string) string
	aggregates  string
	contains    func(col, ph string, negate bool) string
	regex       func(col, ph string, negate bool) string
}

// ClickHouse binds positional ? parameters
var ClickHouse = Dialect{
	Name:        "clickhouse",
	placeholder: func(int) string { return "?" },
	day:         func(ph string) string { return "toDate(" + ph + ")" },
	aggregates: "sum(clicks) AS " + colClicks +
		", sum(impressions) AS " + colImpressions +
		", if(sum(impressions) = 0, 0, sum(clicks) / sum(impressions)) AS " + colCTR +
		", if(sum(impressions) = 0, 0, sum(position * impressions) / sum(impressions)) AS " + colPosition,
	contains: func(col, ph string, negate bool) string {
		if negate {
			return "positionCaseInsensitiveUTF8(" + col + ", " + ph + ") = 0"
		}
		return "positionCaseInsensitiveUTF8(" + col + ", " + ph + ") > 0"
	},
	regex: func(col, ph string, negate bool) string {
		if negate {
			return "NOT match(" + col + ", " + ph + ")"
		}
		return "match(" + col + ", " + ph + ")"
	},
}

// Postgres binds numbered $n parameters
var Postgres = Dialect{
	Name:        "postgres",
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	day:         func(ph string) string { return ph + "::date" },
	aggregates: "coalesce(sum(clicks), 0)::float8 AS " + colClicks +
		", coalesce(sum(impressions), 0)::float8 AS " + colImpressions +
		", CASE WHEN coalesce(sum(impressions), 0) = 0 THEN 0 ELSE sum(clicks)::float8 / sum(impressions) END AS " + colCTR +
		", CASE WHEN coalesce(sum(impressions), 0) = 0 THEN 0 ELSE sum(position * impressions)::float8 / sum(impressions) END AS " + colPosition,
	contains: func(col, ph string, negate bool) string {
		if negate {
			return "strpos(lower(" + col + "), lower(" + ph + ")) = 0"
		}
		return "strpos(lower(" + col + "), lower(" + ph + ")) > 0"
	},
	regex: func(col, ph string, negate bool) string {
		if negate {
			return col + " !~ " + ph
		}
		return col + " ~ " + ph
	},
}

// Query is a compiled statement
type Query struct {
	SQL  string
	Args []any
	Dims []string
}

type builder struct {
	d    Dialect
	args []any
}

func (b *builder) bind(v any) string {
	b.args = append(b.args, v)
	return b.d.placeholder(len(b.args))
}

// Compile renders p against table. A plan without dimensions yields a single totals row
func (d Dialect) Compile(table string, p intents.Plan) (Query, error) {
	if !ValidTable(table) {
		return Query{}, perr.Newf(perr.ErrorCodeUnknown, "invalid metrics table name %q", table)
	}
	if p.Range.IsZero() {
		return Query{}, perr.WithField(perr.InvalidArgf("plan range is required"), "range")
	}

	dims := make([]string, 0, len(p.Dimensions))
	for _, dim := range p.Dimensions {
		col, ok := dimColumns[dim]
		if !ok {
			return Query{}, perr.WithField(perr.InvalidArgf("unsupported dimension %q", dim), "dimensions")
		}
		dims = append(dims, col)
	}

	b := &builder{d: d}
	var sb strings.Builder
	sb.WriteString("SELECT ")
	for _, c := range dims {
		sb.WriteString(c)
		sb.WriteString(", ")
	}
	sb.WriteString(d.aggregates)
	sb.WriteString(" FROM ")
	sb.WriteString(table)
	fmt.Fprintf(&sb, " WHERE site_url = %s AND date BETWEEN %s AND %s",
		b.bind(p.Site), d.day(b.bind(p.Range.Start)), d.day(b.bind(p.Range.End)))

	for _, g := range p.FilterGroups {
		clause, err := b.group(g)
		if err != nil {
			return Query{}, err
		}
		if clause != "" {
			sb.WriteString(" AND ")
			sb.WriteString(clause)
		}
	}

	if len(dims) > 0 {
		list := strings.Join(dims, ", ")
		sb.WriteString(" GROUP BY ")
		sb.WriteString(list)
		fmt.Fprintf(&sb, " ORDER BY %s DESC, %s DESC, %s", colClicks, colImpressions, list)
		if p.RowLimit > 0 {
			fmt.Fprintf(&sb, " LIMIT %d", p.RowLimit)
		}
		if p.StartRow > 0 {
			fmt.Fprintf(&sb, " OFFSET %d", p.StartRow)
		}
	}
	return Query{SQL: sb.String(), Args: b.args, Dims: dims}, nil
}

func (b *builder) group(g intents.FilterGroup) (string, error) {
	if len(g.Filters) == 0 {
		return "", nil
	}
	join := " AND "
	switch g.GroupType {
	case intents.GroupAnd, "":
	case intents.GroupOr:
		join = " OR "
	default:
		return "", perr.WithField(perr.InvalidArgf("unsupported group type %q", g.GroupType), "filter_groups")
	}
	parts := make([]string, 0, len(g.Filters))
	for _, f := range g.Filters {
		p, err := b.filter(f)
		if err != nil {
			return "", err
		}
		parts = append(parts, p)
	}
	return "(" + strings.Join(parts, join) + ")", nil
}

func (b *builder) filter(f intents.Filter) (string, error) {
	col, ok := dimColumns[f.Dimension]
	if !ok {
		return "", perr.WithField(perr.InvalidArgf("unsupported filter dimension %q", f.Dimension), "filter_groups")
	}
	switch f.Operator {
	case intents.OpEquals:
		return col + " = " + b.bind(f.Expression), nil
	case intents.OpNotEquals:
		return col + " != " + b.bind(f.Expression), nil
	case intents.OpContains:
		return b.d.contains(col, b.bind(f.Expression), false), nil
	case intents.OpNotContains:
		return b.d.contains(col, b.bind(f.Expression), true), nil
	case intents.OpIncludingRegex:
		return b.d.regex(col, b.bind(f.Expression), false), nil
	case intents.OpExcludingRegex:
		return b.d.regex(col, b.bind(f.Expression), true), nil
	}
	return "", perr.WithField(perr.InvalidArgf("unsupported filter operator %q", f.Operator), "filter_groups")
}

// DialectFor maps a source kind name to its dialect
func DialectFor(kind string) (Dialect, bool) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "clickhouse", "ch":
		return ClickHouse, true
	case "postgres", "postgresql", "pg":
		return Postgres, true
	}
	return Dialect{}, false
}
