package endpoint

import (
	"fmt"
	"strings"

	"github.com/agentstation/mavroute/pkg/errors"
)

// Kind is the connection type of an endpoint. Its string value is the wire
// token used in configuration files and API payloads.
type Kind string

// Connection kinds.
const (
	KindUDPServer Kind = "udpin"
	KindUDPClient Kind = "udpout"
	KindTCPServer Kind = "tcpin"
	KindTCPClient Kind = "tcpout"
	KindSerial    Kind = "serial"
)

var kinds = [...]Kind{
	KindUDPServer,
	KindUDPClient,
	KindTCPServer,
	KindTCPClient,
	KindSerial,
}

// Kinds returns every accepted connection kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds[:])
	return out
}

// KindTokens returns the wire tokens of all kinds.
func KindTokens() []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

// ParseKind matches s against the wire tokens. The match is exact.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := rules[k]; ok {
		return k, nil
	}
	tokens := KindTokens()
	return "", errors.NewRejection(errors.ErrInvalidKind, FieldKind, s,
		fmt.Sprintf("%q is not a connection type, valid types are: %s", s, strings.Join(tokens, ", ")),
		tokens...)
}

// String returns the wire token.
func (k Kind) String() string {
	return string(k)
}

// IsValid reports whether k is one of the declared kinds.
func (k Kind) IsValid() bool {
	_, ok := rules[k]
	return ok
}

// IsNetwork reports whether place is a network address and argument a port.
func (k Kind) IsNetwork() bool {
	switch k {
	case KindUDPServer, KindUDPClient, KindTCPServer, KindTCPClient:
		return true
	default:
		return false
	}
}

// IsSerial reports whether place is a device path and argument a baud rate.
func (k Kind) IsSerial() bool {
	return k == KindSerial
}

// Transport returns the transport family of the kind: "udp", "tcp" or "serial".
func (k Kind) Transport() string {
	switch k {
	case KindUDPServer, KindUDPClient:
		return "udp"
	case KindTCPServer, KindTCPClient:
		return "tcp"
	case KindSerial:
		return "serial"
	default:
		return ""
	}
}

// rule holds the place and argument checks for one family of kinds.
type rule struct {
	place    func(place string) error
	argument func(arg *int, raw any) error
}

var (
	networkRule = rule{place: validateNetworkAddress, argument: validatePort}
	serialRule  = rule{place: validateSerialPath, argument: validateBaudRate}
)

// rules is the single dispatch table from kind to validation.
var rules = map[Kind]rule{
	KindUDPServer: networkRule,
	KindUDPClient: networkRule,
	KindTCPServer: networkRule,
	KindTCPClient: networkRule,
	KindSerial:    serialRule,
}
