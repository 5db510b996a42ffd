package parse

import (
	"fmt"
	"strings"
)

const (
	LabelDefault = "Default"
	LabelTcpDump = "TcpDump"
	LabelWebLog  = "WebLog"
	LabelSysLog  = "SysLog"
)

// Labels lists strategy names in picker order.
func Labels() []string {
	return []string{LabelDefault, LabelTcpDump, LabelWebLog, LabelSysLog}
}

// Canonical resolves a label case-insensitively.
func Canonical(label string) (string, bool) {
	for _, l := range Labels() {
		if strings.EqualFold(l, strings.TrimSpace(label)) {
			return l, true
		}
	}
	return "", false
}

// New builds the strategy named by label reading from src.
func New(label string, src ByteSource, opt Options) (Config, error) {
	name, ok := Canonical(label)
	if !ok {
		return nil, fmt.Errorf("parse: %w: %q", ErrUnknownStrategy, label)
	}
	switch name {
	case LabelTcpDump:
		return NewTcpDump(src, opt)
	case LabelWebLog:
		return NewWebLog(src, opt)
	case LabelSysLog:
		return NewSyslog(src, opt)
	default:
		return NewDelimited(src, opt)
	}
}
