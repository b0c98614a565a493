package endpoint

import (
	"fmt"
	"net/netip"
	"regexp"
	"strings"

	"github.com/miekg/dns"
	"golang.org/x/net/idna"

	"github.com/agentstation/mavroute/pkg/errors"
)

// hostnamePattern accepts two or more dot separated labels. Labels are
// alphanumeric with inner hyphens or underscores, at most 63 characters, and
// the last label ends with a letter.
var hostnamePattern = regexp.MustCompile(
	`^(?:[a-zA-Z0-9](?:[a-zA-Z0-9_-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z0-9][a-zA-Z0-9_-]{0,61}[a-zA-Z]$`,
)

// IsDomain reports whether s is a syntactically valid domain name.
// Internationalized names are checked in their punycode form.
func IsDomain(s string) bool {
	if s == "" {
		return false
	}
	ascii, err := idna.ToASCII(s)
	if err != nil {
		return false
	}
	if _, ok := dns.IsDomainName(ascii); !ok {
		return false
	}
	return hostnamePattern.MatchString(ascii)
}

// IsIPv4 reports whether s is a dotted-quad IPv4 literal.
func IsIPv4(s string) bool {
	addr, err := netip.ParseAddr(s)
	return err == nil && addr.Is4()
}

// IsIPv6 reports whether s is an IPv6 literal without a zone.
func IsIPv6(s string) bool {
	addr, err := netip.ParseAddr(s)
	return err == nil && addr.Is6() && addr.Zone() == ""
}

// IsNetworkAddress reports whether s is a domain, IPv4 or IPv6 literal.
func IsNetworkAddress(s string) bool {
	return IsDomain(s) || IsIPv4(s) || IsIPv6(s)
}

// IsSerialPath reports whether s is an absolute path that does not look like a directory.
func IsSerialPath(s string) bool {
	return strings.HasPrefix(s, "/") && !strings.HasSuffix(s, "/")
}

func validateNetworkAddress(place string) error {
	if IsNetworkAddress(place) {
		return nil
	}
	return errors.NewRejection(errors.ErrInvalidAddress, FieldPlace, place,
		fmt.Sprintf("invalid network address: %q", place))
}

func validateSerialPath(place string) error {
	if IsSerialPath(place) {
		return nil
	}
	return errors.NewRejection(errors.ErrInvalidPath, FieldPlace, place,
		fmt.Sprintf("bad serial address: %q, make sure to use an absolute path", place))
}

func validatePort(arg *int, raw any) error {
	if arg != nil && *arg >= MinPort && *arg <= MaxPort {
		return nil
	}
	return errors.NewRejection(errors.ErrInvalidPort, FieldArgument, raw,
		fmt.Sprintf("ports must be in the range %d:%d, received %s", MinPort, MaxPort, describeArgument(arg, raw)))
}

// describeArgument renders the argument as received for error messages.
func describeArgument(arg *int, raw any) string {
	switch {
	case arg != nil:
		return fmt.Sprintf("%d", *arg)
	case raw == nil:
		return "nothing"
	default:
		return fmt.Sprintf("%q", fmt.Sprint(raw))
	}
}
