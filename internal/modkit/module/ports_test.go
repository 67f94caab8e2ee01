package module

import (
	"strings"
	"testing"

	phttp "gscchat/internal/platform/net/http"
)

type Reporter interface{ Source() string }

type reporter string

func (r reporter) Source() string { return string(r) }

type stub struct {
	name  string
	ports any
}

func (s stub) Name() string             { return s.name }
func (s stub) Ports() any               { return s.ports }
func (s stub) MountRoutes(phttp.Router) {}

func TestPortsOf(t *testing.T) {
	type bundle struct {
		Table  string
		Source Reporter
	}
	type hidden struct {
		source Reporter
	}
	cases := []struct {
		name  string
		ports any
		want  string
		ok    bool
	}{
		{"nil", nil, "", false},
		{"direct", Reporter(reporter("clickhouse")), "clickhouse", true},
		{"exported field", bundle{Table: "gsc", Source: reporter("postgres")}, "postgres", true},
		{"unexported field", hidden{source: reporter("postgres")}, "", false},
		{"non struct", 42, "", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := PortsOf[Reporter](stub{name: "insights", ports: c.ports})
			if ok != c.ok {
				t.Fatalf("ok = %v, want %v", ok, c.ok)
			}
			if ok && got.Source() != c.want {
				t.Fatalf("source = %q", got.Source())
			}
		})
	}
}

func TestMustPortsOf(t *testing.T) {
	if got := MustPortsOf[Reporter](stub{ports: reporter("clickhouse")}); got.Source() != "clickhouse" {
		t.Fatalf("got %q", got.Source())
	}

	defer func() {
		msg, _ := recover().(string)
		if !strings.Contains(msg, "meta") {
			t.Fatalf("panic = %q, want module name", msg)
		}
	}()
	MustPortsOf[Reporter](stub{name: "meta"})
}
