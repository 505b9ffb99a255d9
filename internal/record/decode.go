package record

import (
	"encoding/binary"
	"fmt"
	"strconv"
)

// Decode parses a serialized record. It is the inverse of Encode, with the
// zero padding of text fields trimmed.
func Decode(data []byte) (Record, error) {
	var r Record

	if len(data) != Size {
		return r, fmt.Errorf("%w: got %d bytes, want %d", ErrRecordSize, len(data), Size)
	}
	if data[offVersion] != Version {
		return r, fmt.Errorf("%w: %d", ErrUnknownVersion, data[offVersion])
	}

	r.Mode = AddressMode(data[offMode])
	switch r.Mode {
	case ModeIP:
		a := data[offAddress : offAddress+4]
		r.Address = strconv.Itoa(int(a[0])) + "." + strconv.Itoa(int(a[1])) + "." +
			strconv.Itoa(int(a[2])) + "." + strconv.Itoa(int(a[3]))
	case ModeHostname:
		r.Address = readLatin1(data[offAddress:offPort])
	default:
		return r, fmt.Errorf("%w: %d", ErrUnknownMode, data[offMode])
	}

	r.Port = int(binary.BigEndian.Uint16(data[offPort:]))

	switch data[offCredFlag] {
	case 0:
	case 1:
		r.HasCredentials = true
		r.Username = readLatin1(data[offUsername:offPassword])
		r.Password = readLatin1(data[offPassword:Size])
	default:
		return r, fmt.Errorf("%w: %d", ErrInvalidFlag, data[offCredFlag])
	}

	return r, nil
}

// readLatin1 converts a zero-padded field back to a string, mapping each
// byte to the character with the same code point.
func readLatin1(field []byte) string {
	end := len(field)
	for end > 0 && field[end-1] == 0 {
		end--
	}

	runes := make([]rune, end)
	for i, b := range field[:end] {
		runes[i] = rune(b)
	}
	return string(runes)
}
