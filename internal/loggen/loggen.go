// Package loggen produces synthetic lines for every canned strategy so the
// report can be exercised without a real feed.
package loggen

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

const (
	FormatTSV     = "tsv"
	FormatSyslog  = "syslog"
	FormatTcpDump = "tcpdump"
	FormatWebLog  = "weblog"
)

func Formats() []string {
	return []string{FormatTSV, FormatSyslog, FormatTcpDump, FormatWebLog}
}

func Normalize(f string) string {
	f = strings.ToLower(strings.TrimSpace(f))
	switch f {
	case "tab", "tabs", "default", "text":
		return FormatTSV
	case "bsd", "sys":
		return FormatSyslog
	case "pcap", "tcp":
		return FormatTcpDump
	case "apache", "nginx", "web", "access":
		return FormatWebLog
	}
	return f
}

func Supported(f string) bool {
	for _, s := range Formats() {
		if s == f {
			return true
		}
	}
	return false
}

// Generator emits lines of one format drawn from a small key space, so keyed
// reports see repeated keys and update in place.
type Generator struct {
	format string
	keys   int
	rnd    *rand.Rand
	seq    int
}

func New(format string, keys int, seed int64) (*Generator, error) {
	format = Normalize(format)
	if !Supported(format) {
		return nil, fmt.Errorf("loggen: unsupported format %q", format)
	}
	if keys <= 0 {
		keys = 8
	}
	return &Generator{format: format, keys: keys, rnd: rand.New(rand.NewSource(seed))}, nil
}

func (g *Generator) Format() string { return g.format }

// Line renders one line stamped at now, without a trailing newline.
func (g *Generator) Line(now time.Time) string {
	g.seq++
	switch g.format {
	case FormatSyslog:
		return fmt.Sprintf("%s %s %s[%d]: %s", now.Format(time.Stamp), g.pick(hosts), g.program(), g.intn(1000, 40000), g.pick(messages))
	case FormatTcpDump:
		if g.rnd.Intn(10) == 0 {
			return fmt.Sprintf("%s ARP, Request who-has %s tell %s, length 28", now.Format("15:04:05.000000"), g.ip(), g.ip())
		}
		return fmt.Sprintf("%s IP %s > %s.%d: %s, length %d", now.Format("15:04:05.000000"), g.endpoint(), g.ip(), g.pickInt(ports), g.pick(protos), g.intn(40, 1500))
	case FormatWebLog:
		return fmt.Sprintf(`%s - %s [%s] "%s %s HTTP/1.1" %d %d "%s" "%s"`,
			g.ip(), g.pick(users), now.Format("02/Jan/2006:15:04:05 -0700"), g.pick(methods), g.path(),
			g.status(), g.intn(100, 50000), g.pick(referers), g.pick(agents))
	default:
		return strings.Join([]string{
			fmt.Sprintf("job-%02d", g.rnd.Intn(g.keys)),
			g.pick(states),
			fmt.Sprint(g.seq),
			now.Format(time.RFC3339),
			g.pick(messages),
		}, "\t")
	}
}

func (g *Generator) pick(from []string) string { return from[g.rnd.Intn(len(from))] }

func (g *Generator) pickInt(from []int) int { return from[g.rnd.Intn(len(from))] }

func (g *Generator) intn(lo, hi int) int { return g.rnd.Intn(hi-lo+1) + lo }

func (g *Generator) ip() string {
	return fmt.Sprintf("10.%d.%d.%d", g.rnd.Intn(4), g.rnd.Intn(255), g.intn(1, 254))
}

// endpoint draws host and port from the key space so tcpdump rows repeat
// sources.
func (g *Generator) endpoint() string {
	n := g.rnd.Intn(g.keys) + 1
	return fmt.Sprintf("10.0.0.%d.%d", n, 40000+n)
}

func (g *Generator) program() string {
	return programs[g.rnd.Intn(min(g.keys, len(programs)))]
}

func (g *Generator) path() string {
	return paths[g.rnd.Intn(min(g.keys, len(paths)))]
}

func (g *Generator) status() int {
	r := g.rnd.Float64()
	switch {
	case r < 0.75:
		return 200
	case r < 0.85:
		return 201
	case r < 0.93:
		return 404
	case r < 0.98:
		return 500
	default:
		return 302
	}
}

var (
	hosts    = []string{"web01", "web02", "db01", "cache01"}
	programs = []string{"sshd", "cron", "kernel", "systemd", "nginx", "postfix", "dhclient", "ntpd"}
	messages = []string{
		"user authenticated",
		"request completed",
		"cache miss",
		"db query executed",
		"rate limit exceeded",
		"background job started",
		"background job finished",
		"invalid credentials",
	}
	states   = []string{"queued", "running", "done", "failed"}
	protos   = []string{"UDP", "Flags [S]", "Flags [P.]", "Flags [.]", "ICMP echo request"}
	ports    = []int{22, 53, 80, 443, 5353, 8080}
	users    = []string{"-", "alice", "bob", "carol", "dave"}
	methods  = []string{"GET", "POST", "PUT", "DELETE"}
	paths    = []string{"/", "/health", "/login", "/logout", "/api/v1/items", "/static/app.js", "/static/style.css", "/metrics"}
	referers = []string{"-", "https://example.com/", "https://search.example.com/?q=logs"}
	agents   = []string{
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
		"curl/8.2.1",
	}
)
