package errors_test

import (
	"fmt"

	"github.com/agentstation/mavroute/pkg/errors"
)

// Example checks an error by category.
func Example() {
	err := errors.NewNotFoundError("endpoint", "udpin:0.0.0.0:14550")
	if errors.IsNotFound(err) {
		fmt.Println("endpoint not registered")
	}
	// Output: endpoint not registered
}

// Example_rejection inspects why an endpoint was rejected.
func Example_rejection() {
	var err error = errors.NewRejection(errors.ErrInvalidBaudRate, "argument", 1234,
		"invalid serial baudrate: 1234", "115200", "57600")

	var verr *errors.ValidationError
	if errors.As(err, &verr) {
		fmt.Println(errors.Reason(err), verr.Field, verr.Allowed)
	}
	// Output: invalid_baud_rate argument [115200 57600]
}
