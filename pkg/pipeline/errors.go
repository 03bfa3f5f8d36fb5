package pipeline

import (
	"github.com/pkg/errors"
)

var (
	ErrStepNameMustBeSet = errors.New("step name must be set")
	ErrStepFuncMustBeSet = errors.New("step function must be set")
	ErrTitleMustBeSet    = errors.New("pipeline title must be set")
	ErrEndpointMustBeSet = errors.New("a remote endpoint must be set to execute remotely")
	ErrInvalidShortName  = errors.New("short name must be a valid identifier")
)
