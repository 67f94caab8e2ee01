package report

import (
	"regexp"
	"strconv"
	"strings"

	"gscchat/internal/core/insight"
	perr "gscchat/internal/platform/errors"
)

var (
	actionLine     = regexp.MustCompile(`^(\d+)\. (.+) \[(High impact|Medium impact|Low impact)\]$`)
	confidenceLine = regexp.MustCompile(`^(High|Medium|Low) — \S.*$`)
)

// Validate checks markdown against the report contract and names the first violation
func Validate(md string) error {
	lines := strings.Split(strings.TrimRight(strings.ReplaceAll(md, "\r\n", "\n"), "\n"), "\n")

	idx := map[string]int{}
	for i, l := range lines {
		if !strings.HasPrefix(l, "## ") {
			continue
		}
		if _, dup := idx[l]; dup {
			return invalid("duplicate heading %q", l)
		}
		idx[l] = i
	}
	prev := -1
	for _, h := range Headings() {
		at, ok := idx[h]
		if !ok {
			return invalid("missing heading %q", h)
		}
		if at < prev {
			return invalid("heading %q is out of order", h)
		}
		prev = at
	}
	if len(idx) != len(Headings()) {
		return invalid("unexpected extra heading")
	}

	body := func(h string) []string {
		start := idx[h] + 1
		end := len(lines)
		for _, other := range Headings() {
			if j := idx[other]; j > idx[h] && j < end {
				end = j
			}
		}
		var out []string
		for _, l := range lines[start:end] {
			if strings.TrimSpace(l) != "" {
				out = append(out, l)
			}
		}
		return out
	}

	if s := body(HeadingSummary); len(s) == 0 {
		return invalid("summary is empty")
	}
	if err := checkBullets(body(HeadingFindings), "key findings", insight.MinFindings, insight.MaxFindings); err != nil {
		return err
	}
	if err := checkBullets(body(HeadingCauses), "likely causes", insight.MinCauses, insight.MaxCauses); err != nil {
		return err
	}

	acts := body(HeadingActions)
	if len(acts) == 0 || !strings.HasPrefix(acts[len(acts)-1], StandsOutPrefix) {
		return invalid("%q line must directly precede %s", strings.TrimSpace(StandsOutPrefix), HeadingConfidence)
	}
	if strings.TrimSpace(strings.TrimPrefix(acts[len(acts)-1], StandsOutPrefix)) == "" {
		return invalid("what stands out is empty")
	}
	// only blank lines may sit between the stands-out line and the confidence heading
	for i := idx[HeadingConfidence] - 1; i >= 0 && !strings.HasPrefix(lines[i], StandsOutPrefix); i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return invalid("%q line must directly precede %s", strings.TrimSpace(StandsOutPrefix), HeadingConfidence)
		}
	}
	acts = acts[:len(acts)-1]
	if n := len(acts); n < insight.MinActions || n > insight.MaxActions {
		return invalid("recommended actions has %d items, want %d-%d", n, insight.MinActions, insight.MaxActions)
	}
	for i, l := range acts {
		m := actionLine.FindStringSubmatch(l)
		if m == nil {
			return invalid("action %d is malformed: %q", i+1, l)
		}
		if m[1] != strconv.Itoa(i+1) {
			return invalid("action %d is numbered %s", i+1, m[1])
		}
	}

	conf := body(HeadingConfidence)
	if len(conf) != 1 || !confidenceLine.MatchString(conf[0]) {
		return invalid("confidence must be a single \"<High|Medium|Low> — <reason>\" line")
	}
	return nil
}

func checkBullets(lines []string, name string, lo, hi int) error {
	for _, l := range lines {
		if !strings.HasPrefix(l, Bullet) || strings.TrimSpace(strings.TrimPrefix(l, Bullet)) == "" {
			return invalid("%s contains a non-bullet line: %q", name, l)
		}
	}
	if n := len(lines); n < lo || n > hi {
		return invalid("%s has %d bullets, want %d-%d", name, n, lo, hi)
	}
	return nil
}

func invalid(format string, a ...any) error {
	return perr.WithField(perr.Newf(perr.ErrorCodeValidation, format, a...), "markdown")
}
