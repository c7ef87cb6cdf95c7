package object

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedCommit is returned when a commit payload's header block
// cannot be parsed.
var ErrMalformedCommit = errors.New("gud: malformed commit object")

// Commit is a named snapshot of a root tree plus an optional parent link
// and committer metadata (§3, §4.1).
type Commit struct {
	TreeHash   Hash
	ParentHash *Hash // nil when the commit has no parent
	Name       string
	Email      string
	Timestamp  string // opaque, ISO-8601 with offset (§9)
	Message    string
}

// Encode serializes the commit to its payload form (§4.1, §6):
//
//	tree\t<hex>\n
//	[parent\t<hex>\n]
//	committer\t<name> <email> (<timestamp>)\n
//	\n
//	<message>
func (c *Commit) Encode() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree\t%s\n", c.TreeHash)
	if c.ParentHash != nil {
		fmt.Fprintf(&buf, "parent\t%s\n", c.ParentHash)
	}
	fmt.Fprintf(&buf, "committer\t%s %s (%s)\n", c.Name, c.Email, c.Timestamp)
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// DecodeCommit parses a commit payload.
func DecodeCommit(payload []byte) (*Commit, error) {
	raw := string(payload)
	headerEnd := strings.Index(raw, "\n\n")
	if headerEnd < 0 {
		return nil, fmt.Errorf("%w: no blank line separating header from message", ErrMalformedCommit)
	}

	header := raw[:headerEnd]
	message := raw[headerEnd+2:]

	c := &Commit{Message: message}
	sawTree := false
	sawCommitter := false

	for _, line := range strings.Split(header, "\n") {
		tab := strings.IndexByte(line, '\t')
		if tab < 0 {
			return nil, fmt.Errorf("%w: header line %q has no tab", ErrMalformedCommit, line)
		}
		key, value := line[:tab], line[tab+1:]

		switch key {
		case "tree":
			h, err := NewHash(value)
			if err != nil {
				return nil, fmt.Errorf("%w: bad tree hash: %v", ErrMalformedCommit, err)
			}
			c.TreeHash = h
			sawTree = true
		case "parent":
			h, err := NewHash(value)
			if err != nil {
				return nil, fmt.Errorf("%w: bad parent hash: %v", ErrMalformedCommit, err)
			}
			c.ParentHash = &h
		case "committer":
			name, email, ts, err := parseCommitter(value)
			if err != nil {
				return nil, err
			}
			c.Name, c.Email, c.Timestamp = name, email, ts
			sawCommitter = true
		default:
			return nil, fmt.Errorf("%w: unknown header key %q", ErrMalformedCommit, key)
		}
	}

	if !sawTree {
		return nil, fmt.Errorf("%w: missing tree header", ErrMalformedCommit)
	}
	if !sawCommitter {
		return nil, fmt.Errorf("%w: missing committer header", ErrMalformedCommit)
	}

	return c, nil
}

// parseCommitter splits "<name> <email> (<timestamp>)" preserving spaces
// inside name.
func parseCommitter(value string) (name, email, timestamp string, err error) {
	open := strings.LastIndexByte(value, '(')
	close := strings.LastIndexByte(value, ')')
	if open < 0 || close < 0 || close < open {
		return "", "", "", fmt.Errorf("%w: bad committer line %q", ErrMalformedCommit, value)
	}

	timestamp = value[open+1 : close]
	rest := strings.TrimSpace(value[:open])

	sp := strings.LastIndexByte(rest, ' ')
	if sp < 0 {
		return "", "", "", fmt.Errorf("%w: bad committer identity %q", ErrMalformedCommit, rest)
	}

	name = rest[:sp]
	email = rest[sp+1:]
	return name, email, timestamp, nil
}
