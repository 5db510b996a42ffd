package detect

import (
	"regexp"
	"strings"

	"logdam/internal/parse"
)

var (
	reApacheCombined = regexp.MustCompile(`^\S+ \S+ \S+ \[[^\]]+\] "[A-Z]+ [^\s]+ [^"]+" \d{3} (\d+|-)( "[^"]*" "[^"]*")?`)
	reSyslogBSD      = regexp.MustCompile(`^[A-Z][a-z]{2} [ \d]\d \d{2}:\d{2}:\d{2} \S+ [^\s:\[]+(\[\d+\])?: `)
	reTcpDump        = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d+ (IP6?|ARP|STP|LLDP)[ ,]`)
)

type Guess struct {
	Label      string
	Confidence float64
}

// Heuristics votes on a small sample of decoded lines. Lines carrying tabs
// count towards the generic delimited strategy. With no clear winner the
// result is Default at zero confidence.
func Heuristics(sample []string) Guess {
	lines := 0
	votes := map[string]int{}
	for _, l := range sample {
		s := strings.TrimRight(l, "\r")
		if strings.TrimSpace(s) == "" {
			continue
		}
		lines++
		switch {
		case reSyslogBSD.MatchString(s):
			votes[parse.LabelSysLog]++
		case reTcpDump.MatchString(s):
			votes[parse.LabelTcpDump]++
		case reApacheCombined.MatchString(s):
			votes[parse.LabelWebLog]++
		case strings.Contains(s, "\t"):
			votes[parse.LabelDefault]++
		}
	}
	best, hits := parse.LabelDefault, 0
	// picker order breaks ties
	for _, label := range parse.Labels() {
		if votes[label] > hits {
			best, hits = label, votes[label]
		}
	}
	if hits == 0 || hits*2 < lines {
		return Guess{Label: parse.LabelDefault, Confidence: 0}
	}
	return Guess{Label: best, Confidence: conf(lines, hits)}
}

func conf(lines, hits int) float64 {
	if lines == 0 {
		return 0
	}
	return float64(hits) / float64(lines)
}
