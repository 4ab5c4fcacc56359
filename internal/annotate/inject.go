package annotate

import (
	"html"
	"sort"
	"strings"
	"unicode/utf8"
)

// MarkerClass is the CSS class on every highlight span.
const MarkerClass = "evidence-highlight"

const closeMarker = "</span>"

// Stats summarizes one injection pass.
type Stats struct {
	Triples   int // triples received
	Wrapped   int // occurrences wrapped in a marker
	Overlaps  int // occurrences skipped because they overlapped a marker or markup
	Unmatched int // triples with no occurrence at all
	Empty     int // triples with empty text
}

// Inject wraps every occurrence of each triple's text in buf with a span
// marker. Triples are applied longest text first, counted in characters, with
// ties in input order. An occurrence that overlaps an earlier marker or a tag
// already in buf, or that cuts through a character reference, is left alone,
// so markers never nest. Offsets are bytes.
func Inject(buf string, triples []Triple) (string, Stats) {
	stats := Stats{Triples: len(triples)}

	ordered := append([]Triple(nil), triples...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return utf8.RuneCountInString(ordered[i].Text) > utf8.RuneCountInString(ordered[j].Text)
	})

	regions := markupRegions(buf)

	for _, t := range ordered {
		needle := escapeText(t.Text)
		if needle == "" {
			stats.Empty++
			continue
		}

		open := openMarker(t)
		inserted := len(open) + len(closeMarker)
		found := false

		for cursor := 0; cursor <= len(buf); {
			i := strings.Index(buf[cursor:], needle)
			if i < 0 {
				break
			}
			found = true
			start := cursor + i
			end := start + len(needle)

			if regions.Overlaps(start, end) || insideEntity(buf, start) || insideEntity(buf, end) {
				stats.Overlaps++
				cursor = end
				continue
			}

			buf = buf[:start] + open + buf[start:end] + closeMarker + buf[end:]
			regions.ShiftAfter(start, inserted)
			regions.Insert(Region{Start: start, End: end + inserted})
			stats.Wrapped++
			cursor = end + inserted
		}

		if !found {
			stats.Unmatched++
		}
	}

	return buf, stats
}

// Annotate paragraphizes body and injects the triples decoded from raw. When
// raw is malformed it returns a *MalformedInputError and no output; callers
// fall back to Paragraphize alone.
func Annotate(body string, raw []byte) (string, Stats, error) {
	triples, err := ParseTriples(raw)
	if err != nil {
		return "", Stats{}, err
	}
	rendered, err := Paragraphize(body)
	if err != nil {
		return "", Stats{}, err
	}
	out, stats := Inject(rendered, triples)
	return out, stats, nil
}

func openMarker(t Triple) string {
	var sb strings.Builder
	sb.WriteString(`<span class="`)
	sb.WriteString(MarkerClass)
	sb.WriteString(`" data-tier="`)
	sb.WriteString(html.EscapeString(string(t.Tier)))
	sb.WriteString(`" data-evidence="`)
	sb.WriteString(html.EscapeString(t.Evidence))
	sb.WriteString(`">`)
	return sb.String()
}

// markupRegions seeds a RegionSet with every tag in buf so that no marker is
// placed inside or across one.
func markupRegions(buf string) *RegionSet {
	regions := &RegionSet{}
	for i := 0; i < len(buf); i++ {
		if buf[i] != '<' {
			continue
		}
		end := strings.IndexByte(buf[i:], '>')
		if end < 0 {
			break
		}
		regions.Insert(Region{Start: i, End: i + end + 1})
		i += end
	}
	return regions
}

const maxEntity = 12

// insideEntity reports whether pos falls strictly inside a character
// reference such as &amp; or &#39;.
func insideEntity(buf string, pos int) bool {
	lo := pos - maxEntity
	if lo < 0 {
		lo = 0
	}
	amp := strings.LastIndexByte(buf[lo:pos], '&')
	if amp < 0 {
		return false
	}
	amp += lo
	n := entityLen(buf[amp:])
	return n > 0 && pos < amp+n
}

// entityLen returns the length of the character reference at the start of s,
// or 0 when there is none.
func entityLen(s string) int {
	for j := 1; j < len(s) && j <= maxEntity; j++ {
		c := s[j]
		switch {
		case c == ';':
			if j == 1 {
				return 0
			}
			return j + 1
		case c == '#' && j == 1:
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		default:
			return 0
		}
	}
	return 0
}
