/*
DESCRIPTION
  errors.go defines ErrorKind, the taxonomy of configuration and runtime
  failures a session can report (section 7 of the specifications), and
  EncError, the error type New/SetInput/EncodeNAL return carrying one of
  those kinds. Wrapping follows the teacher decoder's use of
  github.com/pkg/errors (codec/h264/h264dec/parse.go, sps.go) for
  stack-trace-carrying error chains, rather than plain fmt.Errorf.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package avcenc

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies an EncError, mirroring the failure taxonomy of
// section 7 of the specifications.
type ErrorKind int

const (
	ErrUninitialized ErrorKind = iota
	ErrAlreadyInitialized
	ErrWrongState
	ErrNotSupported
	ErrMemoryFail
	ErrLevelNotSupported
	ErrLevelFail
	ErrProfileNotSupported
	ErrToolsNotSupported
	ErrInvalidFmoType
	ErrInvalidNumRef
	ErrInvalidPocLsb
	ErrInvalidNumSliceGroup
	ErrInvalidFrameRate
	ErrInvalidAlphaOffset
	ErrInvalidBetaOffset
	ErrInvalidDeblockIdc
	ErrInvalidChangeRate
	ErrInitQpFail
	ErrInitQsFail
	ErrChromaQpFail
	ErrWeightedBipredFail
	ErrBitstreamInitFail
	ErrBitstreamBufferFull
	ErrSpsFail
	ErrPpsFail
	ErrPocFail
	ErrConsecutiveNonref
	ErrSliceEmpty
	ErrTrailingOnesFail
	ErrFail
)

func (k ErrorKind) String() string {
	names := [...]string{
		"Uninitialized", "AlreadyInitialized", "WrongState", "NotSupported",
		"MemoryFail", "LevelNotSupported", "LevelFail", "ProfileNotSupported",
		"ToolsNotSupported", "InvalidFmoType", "InvalidNumRef", "InvalidPocLsb",
		"InvalidNumSliceGroup", "InvalidFrameRate", "InvalidAlphaOffset",
		"InvalidBetaOffset", "InvalidDeblockIdc", "InvalidChangeRate",
		"InitQpFail", "InitQsFail", "ChromaQpFail", "WeightedBipredFail",
		"BitstreamInitFail", "BitstreamBufferFull", "SpsFail", "PpsFail",
		"PocFail", "ConsecutiveNonref", "SliceEmpty", "TrailingOnesFail", "Fail",
	}
	if int(k) < 0 || int(k) >= len(names) {
		return "Unknown"
	}
	return names[k]
}

// EncError is the error type returned by New, SetInput and EncodeNAL.
type EncError struct {
	Kind ErrorKind
	msg  string
}

func (e *EncError) Error() string {
	if e.msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

// newErr constructs an *EncError, wrapping it with github.com/pkg/errors
// so call sites that need a stack trace can errors.Wrap further.
func newErr(kind ErrorKind, format string, args ...interface{}) error {
	return errors.WithStack(&EncError{Kind: kind, msg: fmt.Sprintf(format, args...)})
}

// AsEncError unwraps err to its *EncError, if any, following
// github.com/pkg/errors' Cause chain.
func AsEncError(err error) (*EncError, bool) {
	for err != nil {
		if ee, ok := err.(*EncError); ok {
			return ee, true
		}
		cause, ok := err.(interface{ Cause() error })
		if !ok {
			break
		}
		err = cause.Cause()
	}
	return nil, false
}
