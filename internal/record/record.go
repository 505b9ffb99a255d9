// Package record implements the fixed-layout binary record that carries
// broker connection settings to a thermostat's provisioning listener.
//
// Every record is exactly Size bytes:
//
//	offset  len  field
//	0       1    version (always 254)
//	1       1    address mode (0=IP, 1=hostname)
//	2       64   address, zero-padded
//	66      2    port, big-endian
//	68      1    credentials flag
//	69      32   username, zero-padded
//	101     32   password, zero-padded
package record

import (
	"encoding/binary"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// Version is the marker byte identifying the record format.
	Version byte = 254

	AddressFieldSize  = 64
	UsernameFieldSize = 32
	PasswordFieldSize = 32

	// The last byte of each text field is always left as a terminator.
	MaxAddressLen  = AddressFieldSize - 1
	MaxUsernameLen = UsernameFieldSize - 1
	MaxPasswordLen = PasswordFieldSize - 1

	MaxPort = 65535
)

const (
	offVersion  = 0
	offMode     = 1
	offAddress  = 2
	offPort     = offAddress + AddressFieldSize
	offCredFlag = offPort + 2
	offUsername = offCredFlag + 1
	offPassword = offUsername + UsernameFieldSize

	// Size is the serialized length of every record.
	Size = offPassword + PasswordFieldSize
)

// AddressMode tells the device how to interpret the address field.
type AddressMode uint8

const (
	ModeIP       AddressMode = 0
	ModeHostname AddressMode = 1
)

func (m AddressMode) String() string {
	switch m {
	case ModeIP:
		return "ip"
	case ModeHostname:
		return "hostname"
	default:
		return "mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// Record holds the broker settings sent to the device.
// Username and Password are only serialized when HasCredentials is set.
type Record struct {
	Mode           AddressMode
	Address        string
	Port           int
	HasCredentials bool
	Username       string
	Password       string
}

// Encode validates r and serializes it into a Size-byte buffer.
// No partial buffer is ever returned: on error the result is nil.
func Encode(r Record) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	buf := make([]byte, Size)
	buf[offVersion] = Version
	buf[offMode] = byte(r.Mode)

	switch r.Mode {
	case ModeIP:
		octets, _ := parseIPv4(r.Address)
		copy(buf[offAddress:], octets[:])
	case ModeHostname:
		putLatin1(buf[offAddress:offPort], r.Address)
	}

	binary.BigEndian.PutUint16(buf[offPort:], uint16(r.Port))

	if r.HasCredentials {
		buf[offCredFlag] = 1
		putLatin1(buf[offUsername:offPassword], r.Username)
		putLatin1(buf[offPassword:Size], r.Password)
	}

	return buf, nil
}

// Validate reports the first problem that would prevent r from being encoded.
func (r Record) Validate() error {
	if utf8.RuneCountInString(r.Address) > MaxAddressLen {
		return newValidationError(AddressTooLong, "address is %d characters, at most %d allowed", utf8.RuneCountInString(r.Address), MaxAddressLen)
	}
	if utf8.RuneCountInString(r.Username) > MaxUsernameLen {
		return newValidationError(UsernameTooLong, "username is %d characters, at most %d allowed", utf8.RuneCountInString(r.Username), MaxUsernameLen)
	}
	if utf8.RuneCountInString(r.Password) > MaxPasswordLen {
		return newValidationError(PasswordTooLong, "password is %d characters, at most %d allowed", utf8.RuneCountInString(r.Password), MaxPasswordLen)
	}

	switch r.Mode {
	case ModeIP:
		if _, ok := parseIPv4(r.Address); !ok {
			return newValidationError(InvalidAddress, "%q is not a dotted-decimal IPv4 address", r.Address)
		}
	case ModeHostname:
		if !isLatin1(r.Address) {
			return newValidationError(InvalidAddress, "hostname %q contains characters outside the single-byte range", r.Address)
		}
	default:
		return newValidationError(InvalidAddress, "unknown address mode %d", r.Mode)
	}

	if r.Port < 0 || r.Port > MaxPort {
		return newValidationError(PortOutOfRange, "port %d is outside 0-%d", r.Port, MaxPort)
	}

	if r.HasCredentials {
		if !isLatin1(r.Username) {
			return newValidationError(InvalidCredentials, "username contains characters outside the single-byte range")
		}
		if !isLatin1(r.Password) {
			return newValidationError(InvalidCredentials, "password contains characters outside the single-byte range")
		}
	}

	return nil
}

// parseIPv4 accepts exactly four dot-separated decimal integers in [0,255].
// Each octet may carry surrounding whitespace, a leading '+' and leading zeros.
func parseIPv4(s string) ([4]byte, bool) {
	var octets [4]byte

	parts := strings.Split(s, ".")
	if len(parts) != len(octets) {
		return octets, false
	}

	for i, p := range parts {
		p = strings.TrimSpace(p)
		if strings.HasPrefix(p, "+") {
			p = p[1:]
		}
		v, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return octets, false
		}
		octets[i] = byte(v)
	}

	return octets, true
}

// isLatin1 reports whether every character of s fits in a single byte.
func isLatin1(s string) bool {
	for _, c := range s {
		if c > 0xFF {
			return false
		}
	}
	return true
}

// putLatin1 writes one byte per character of s into field.
// The remainder of field is left zeroed.
func putLatin1(field []byte, s string) {
	i := 0
	for _, c := range s {
		field[i] = byte(c)
		i++
	}
}
