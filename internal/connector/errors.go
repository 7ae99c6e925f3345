package connector

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/GriffinCanCode/finder/internal/volume"
)

// Error codes understood by the web client.
const (
	codeCmdRequired    = "errCmdReq"
	codeUnknownCmd     = "errUnknownCmd"
	codeCmdParams      = "errCmdParams"
	codeFileNotFound   = "errFileNotFound"
	codeFolderNotFound = "errFolderNotFound"
	codeExists         = "errExists"
	codeInvName        = "errInvName"
	codeLocked         = "errLocked"
	codeOpen           = "errOpen"
	codeMkdir          = "errMkdir"
	codeMkfile         = "errMkfile"
	codeRename         = "errRename"
	codeRm             = "errRm"
	codeUpload         = "errUpload"
	codeUploadNoFiles  = "errUploadNoFiles"
	codeSearch         = "errSearch"
	codeSearchTimeout  = "errSearchTimeout"
)

// Error is a failure reported to the client as {"error": ...}.
type Error struct {
	Status int
	Code   string
	Args   []string
}

func (e *Error) Error() string {
	if len(e.Args) == 0 {
		return e.Code
	}
	return e.Code + ": " + strings.Join(e.Args, ", ")
}

// payload is the value of the "error" field: a bare code or code plus args.
func (e *Error) payload() any {
	if len(e.Args) == 0 {
		return e.Code
	}
	return append([]string{e.Code}, e.Args...)
}

func fail(code string, args ...string) *Error {
	return &Error{Status: http.StatusOK, Code: code, Args: args}
}

func badRequest(code string, args ...string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: code, Args: args}
}

// volumeError maps a volume failure onto a client code. notFound and ioCode
// depend on the command; boundary failures never get more detail than
// notFound.
func volumeError(err error, notFound, ioCode string) *Error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, volume.ErrNotFound),
		errors.Is(err, volume.ErrParentInvalid),
		errors.Is(err, volume.ErrUnavailable):
		return fail(notFound)
	case errors.Is(err, volume.ErrAlreadyExists):
		return fail(codeExists)
	case errors.Is(err, volume.ErrInvalidName):
		return fail(codeInvName)
	case errors.Is(err, volume.ErrLocked):
		return fail(codeLocked)
	case errors.Is(err, context.DeadlineExceeded):
		return fail(codeSearchTimeout)
	default:
		return fail(ioCode)
	}
}
