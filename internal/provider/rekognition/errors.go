package rekognition

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

var (
	// ErrInvalidCredentials indicates that AWS credentials are invalid or missing
	ErrInvalidCredentials = errors.New("invalid or missing AWS credentials")

	// ErrInvalidImage indicates the payload cannot be sent to Rekognition
	ErrInvalidImage = errors.New("invalid image for rekognition")

	// ErrThrottled indicates AWS rejected the call for rate or quota reasons
	ErrThrottled = errors.New("rekognition request throttled")
)

const (
	errCodeAccessDenied       = "AccessDeniedException"
	errCodeUnrecognizedClient = "UnrecognizedClientException"
	errCodeInvalidImageFormat = "InvalidImageFormatException"
	errCodeImageTooLarge      = "ImageTooLargeException"
	errCodeThrottling         = "ThrottlingException"
	errCodeProvisionedLimit   = "ProvisionedThroughputExceededException"
)

// classifyError maps AWS API errors onto the package sentinels so callers can
// branch with errors.Is instead of matching AWS error codes.
func classifyError(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.ErrorCode() {
	case errCodeAccessDenied, errCodeUnrecognizedClient:
		return fmt.Errorf("%w: %s", ErrInvalidCredentials, apiErr.ErrorMessage())
	case errCodeInvalidImageFormat, errCodeImageTooLarge:
		return fmt.Errorf("%w: %s", ErrInvalidImage, apiErr.ErrorMessage())
	case errCodeThrottling, errCodeProvisionedLimit:
		return fmt.Errorf("%w: %s", ErrThrottled, apiErr.ErrorMessage())
	default:
		return err
	}
}
