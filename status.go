/*
DESCRIPTION
  status.go defines the Status values SetInput and EncodeNAL return to
  report session state and per-call outcome, as tabulated in section 6
  of the specifications.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package avcenc

// Status reports the outcome of a SetInput or EncodeNAL call.
type Status int

const (
	// StatusOk indicates the call succeeded with no further news: for
	// SetInput, the frame was admitted and NAL units are ready to pull;
	// for EncodeNAL, a NAL unit was written but more remain pending for
	// the current picture.
	StatusOk Status = iota

	// StatusPictureReady indicates EncodeNAL just returned the final NAL
	// unit of a non-IDR picture.
	StatusPictureReady

	// StatusNewIdr indicates EncodeNAL just returned the final NAL unit
	// of an IDR picture.
	StatusNewIdr

	// StatusSkippedPicture indicates SetInput's admission or rate
	// control decision dropped the frame: no NAL units were queued, and
	// the caller should proceed to the next input frame.
	StatusSkippedPicture

	// StatusWrongState indicates the call was made in a state that does
	// not permit it (e.g. EncodeNAL with no pending NAL, or SetInput
	// while a previous picture's NAL units have not yet been fully
	// pulled).
	StatusWrongState

	// StatusUninitialized indicates the call was made before New
	// completed successfully, or after Cleanup.
	StatusUninitialized

	// StatusAlreadyInitialized is unused by the current API (New always
	// returns a fresh *Encoder) but is retained for parity with the
	// specification's status table.
	StatusAlreadyInitialized

	// StatusMemoryFail indicates a frame or buffer allocation failed
	// (DPBPool.Acquire returned false).
	StatusMemoryFail

	// StatusBitstreamBufferFull indicates the buffer passed to EncodeNAL
	// is smaller than the next pending NAL unit.
	StatusBitstreamBufferFull
)

// String renders a human-readable Status name, used in logging.
func (s Status) String() string {
	switch s {
	case StatusOk:
		return "Ok"
	case StatusPictureReady:
		return "PictureReady"
	case StatusNewIdr:
		return "NewIdr"
	case StatusSkippedPicture:
		return "SkippedPicture"
	case StatusWrongState:
		return "WrongState"
	case StatusUninitialized:
		return "Uninitialized"
	case StatusAlreadyInitialized:
		return "AlreadyInitialized"
	case StatusMemoryFail:
		return "MemoryFail"
	case StatusBitstreamBufferFull:
		return "BitstreamBufferFull"
	default:
		return "Unknown"
	}
}
