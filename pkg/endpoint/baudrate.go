package endpoint

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/agentstation/mavroute/pkg/errors"
)

// Port bounds for network kinds.
const (
	MinPort = 1
	MaxPort = 65535
)

// baudRates is the accepted serial baud rate set, fastest first.
var baudRates = [...]int{
	3000000,
	2000000,
	1000000,
	921600,
	570600,
	460800,
	257600,
	250000,
	230400,
	115200,
	57600,
	38400,
	19200,
	9600,
}

// BaudRates returns a copy of the accepted serial baud rates, fastest first.
func BaudRates() []int {
	out := make([]int, len(baudRates))
	copy(out, baudRates[:])
	return out
}

// IsBaudRate reports whether rate is an accepted serial baud rate.
func IsBaudRate(rate int) bool {
	return slices.Contains(baudRates[:], rate)
}

func baudRateTokens() []string {
	out := make([]string, len(baudRates))
	for i, r := range baudRates {
		out[i] = strconv.Itoa(r)
	}
	return out
}

func validateBaudRate(arg *int, raw any) error {
	if arg != nil && IsBaudRate(*arg) {
		return nil
	}
	allowed := baudRateTokens()
	return errors.NewRejection(errors.ErrInvalidBaudRate, FieldArgument, raw,
		fmt.Sprintf("invalid serial baudrate: %s, valid options are %v", describeArgument(arg, raw), baudRates),
		allowed...)
}
