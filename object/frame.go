package object

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// ErrMalformedFrame is returned when framed object bytes cannot be parsed:
// missing NUL delimiter, missing header space, a non-numeric size, or a
// size that disagrees with the payload length.
var ErrMalformedFrame = errors.New("gud: malformed object frame")

// Frame produces the canonical framed bytes that get hashed (§4.1, §6):
//
//	<kind> SP <decimal_size> NUL <payload>
func Frame(kind Kind, payload []byte) []byte {
	header := fmt.Sprintf("%s %d\x00", kind, len(payload))
	buf := make([]byte, 0, len(header)+len(payload))
	buf = append(buf, header...)
	buf = append(buf, payload...)
	return buf
}

// ParseFrame splits framed bytes back into their kind and payload,
// validating the header per §4.1 step 4.
func ParseFrame(framed []byte) (Kind, []byte, error) {
	idx := bytes.IndexByte(framed, 0)
	if idx < 0 {
		return 0, nil, fmt.Errorf("%w: no NUL delimiter", ErrMalformedFrame)
	}

	header := framed[:idx]
	payload := framed[idx+1:]

	sp := bytes.IndexByte(header, ' ')
	if sp < 0 {
		return 0, nil, fmt.Errorf("%w: no header separator", ErrMalformedFrame)
	}

	kind, ok := ParseKind(string(header[:sp]))
	if !ok {
		return 0, nil, fmt.Errorf("%w: unknown kind %q", ErrMalformedFrame, header[:sp])
	}

	size, err := strconv.Atoi(string(header[sp+1:]))
	if err != nil || size < 0 {
		return 0, nil, fmt.Errorf("%w: invalid size %q", ErrMalformedFrame, header[sp+1:])
	}

	if size != len(payload) {
		return 0, nil, fmt.Errorf("%w: header declares %d bytes, payload has %d", ErrMalformedFrame, size, len(payload))
	}

	return kind, payload, nil
}
