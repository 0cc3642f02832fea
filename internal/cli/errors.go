package cli

import "errors"

var (
	errUnknownCommand      = errors.New("unknown command")
	errUnknownFlag         = errors.New("unknown flag")
	errFlagRequiresArg     = errors.New("flag requires an argument")
	errRefRequired         = errors.New("issue id or position is required")
	errDescriptionRequired = errors.New("description is required")
	errNothingToEdit       = errors.New("nothing to edit (no field flags given)")
	errDeleteAborted       = errors.New("delete aborted")
)
