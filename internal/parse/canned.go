package parse

import (
	"strings"

	"logdam/internal/model"
	"logdam/internal/util/logx"
)

// Syslog handles BSD-style lines: "Oct 16 23:39:01 host prog[pid]: message".
// Rows are [date, host, program, message] keyed on program.
type Syslog struct {
	delimitedRecords
	fixedKey
}

func NewSyslog(src ByteSource, opt Options) (*Syslog, error) {
	recs, err := newDelimitedRecords(src, "\n", opt.Encoding)
	if err != nil {
		return nil, err
	}
	return &Syslog{delimitedRecords: recs, fixedKey: fixedKey{key: 2}}, nil
}

func (s *Syslog) Name() string { return LabelSysLog }

func (s *Syslog) ParseFields(record string) (model.Row, bool) {
	parts := strings.Split(record, ":")
	if len(parts) > 3 {
		// parts[2] holds "<seconds> <host> <program>"
		shs := strings.Split(parts[2], " ")
		if len(shs) == 3 {
			date := parts[0] + ":" + parts[1] + ":" + shs[0]
			program := strings.SplitN(shs[2], "[", 2)[0]
			msg := strings.TrimPrefix(strings.Join(parts[3:], ":"), " ")
			return model.Row{date, shs[1], program, msg}, true
		}
	}
	logx.Warnf("parse: %s dropped malformed record %q", s.Name(), record)
	return nil, false
}

// TcpDump handles tcpdump text output. Directional records
// ("ts proto src > dst: payload") become [time, proto, src, dst, payload];
// anything else (ARP and friends) is split on spaces into the same shape.
type TcpDump struct {
	delimitedRecords
	fixedKey
}

func NewTcpDump(src ByteSource, opt Options) (*TcpDump, error) {
	recs, err := newDelimitedRecords(src, "\n", opt.Encoding)
	if err != nil {
		return nil, err
	}
	return &TcpDump{delimitedRecords: recs, fixedKey: fixedKey{key: 2}}, nil
}

func (t *TcpDump) Name() string { return LabelTcpDump }

func (t *TcpDump) ParseFields(record string) (model.Row, bool) {
	halves := strings.Split(record, ">")
	if len(halves) == 2 {
		leader := strings.Split(halves[0], " ")
		trailer := strings.Split(halves[1], ":")
		if len(leader) >= 3 {
			dst := strings.TrimSpace(trailer[0])
			payload := strings.TrimSpace(strings.Join(trailer[1:], ":"))
			return model.Row{leader[0], leader[1], leader[2], dst, payload}, true
		}
	} else {
		tok := strings.Split(record, " ")
		if len(tok) >= 4 {
			return model.Row{tok[0], tok[1], tok[2], tok[3], strings.Join(tok[4:], " ")}, true
		}
	}
	logx.Warnf("parse: %s dropped malformed record %q", t.Name(), record)
	return nil, false
}

// WebLog handles common/combined access logs by position, rejoining the
// bracketed two-token timestamp into one field. Keyed on request path.
type WebLog struct {
	delimitedRecords
	fixedKey
}

func NewWebLog(src ByteSource, opt Options) (*WebLog, error) {
	recs, err := newDelimitedRecords(src, "\n", opt.Encoding)
	if err != nil {
		return nil, err
	}
	return &WebLog{delimitedRecords: recs, fixedKey: fixedKey{key: 5}}, nil
}

func (w *WebLog) Name() string { return LabelWebLog }

func (w *WebLog) ParseFields(record string) (model.Row, bool) {
	tok := strings.Split(record, " ")
	if len(tok) < 12 {
		logx.Warnf("parse: %s dropped malformed record %q", w.Name(), record)
		return nil, false
	}
	date := strings.Join(tok[3:5], " ")
	return model.Row{
		tok[0], tok[1], tok[2], date,
		tok[5], tok[6], tok[7], tok[8], tok[9], tok[10], tok[11],
		strings.Join(tok[12:], " "),
	}, true
}
