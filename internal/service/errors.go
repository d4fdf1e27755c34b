package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/invoicer/internal/apperr"
)

// CodeOf maps an error kind to the Connect status returned to clients.
func CodeOf(err error) connect.Code {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return connect.CodeInvalidArgument
	case apperr.KindNotFound:
		return connect.CodeNotFound
	case apperr.KindMalformedRecord, apperr.KindPartialData:
		return connect.CodeDataLoss
	case apperr.KindStorage:
		return connect.CodeInternal
	case apperr.KindAuthFailed:
		return connect.CodeUnauthenticated
	case apperr.KindRecipientRejected:
		return connect.CodeFailedPrecondition
	case apperr.KindConnectionLost, apperr.KindTransport:
		return connect.CodeUnavailable
	}
	switch {
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	}
	return connect.CodeInternal
}

// hintKey is the response metadata header carrying apperr hints.
const hintKey = "Invoicer-Hint"

func toConnectError(err error) *connect.Error {
	cerr := connect.NewError(CodeOf(err), err)
	if hint := apperr.HintOf(err); hint != "" {
		cerr.Meta().Set(hintKey, hint)
	}
	return cerr
}
