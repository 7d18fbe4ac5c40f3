package ring

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrDecode is returned by DecodeMessage for any payload that does not
// match the textual contract exactly. Callers must tolerate it by
// dropping the offending datum and logging.
var ErrDecode = errors.New("ring: malformed message payload")

var (
	sourceLineRe = regexp.MustCompile(`^\t"source":\s*(\d+),$`)
	typeLineRe   = regexp.MustCompile(`^\t"type":\s*([0-9]+),$`)
	valueLineRe  = regexp.MustCompile(`^\t"value": (.*)$`)
)

// EncodeMessage renders m using the line-oriented, tab-indented textual
// encoding this system speaks on the wire. The value field is written
// raw, with no quoting or escaping, matching the original serializer's
// habit of streaming the value straight onto its line.
func EncodeMessage(m Message) string {
	return fmt.Sprintf(
		"{\n\t\"source\": %d,\n\t\"type\": %d,\n\t\"value\": %s\n}",
		m.Source, int(m.Type), m.Value,
	)
}

// DecodeMessage parses a payload produced by EncodeMessage. Any deviation
// from the exact five-line, brace-delimited, three-field shape is reported as
// ErrDecode rather than partially accepted. The value field is captured
// verbatim, with no unquoting: it is not a JSON string literal.
func DecodeMessage(payload string) (Message, error) {
	lines := strings.Split(payload, "\n")
	if len(lines) != 5 || lines[0] != "{" || lines[4] != "}" {
		return Message{}, ErrDecode
	}

	sm := sourceLineRe.FindStringSubmatch(lines[1])
	tm := typeLineRe.FindStringSubmatch(lines[2])
	vm := valueLineRe.FindStringSubmatch(lines[3])
	if sm == nil || tm == nil || vm == nil {
		return Message{}, ErrDecode
	}

	source, err := strconv.ParseUint(sm[1], 10, 16)
	if err != nil {
		return Message{}, ErrDecode
	}

	kind, err := strconv.Atoi(tm[1])
	if err != nil || kind < int(Greetings) || kind > int(ElectedLeader) {
		return Message{}, ErrDecode
	}

	return Message{Source: Id(source), Type: Kind(kind), Value: vm[1]}, nil
}
