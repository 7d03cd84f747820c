package pdrcommon

// TransferFlag describes the position of a GetPDR response chunk within a
// record's multi-part transfer (spec.md §4.1, §6).
type TransferFlag uint8

const (
	TransferStart       TransferFlag = 0x00
	TransferMiddle      TransferFlag = 0x01
	TransferEnd         TransferFlag = 0x04
	TransferStartAndEnd TransferFlag = 0x05
)

// TransferOpFlag selects which part of a multi-part transfer a GetPDR
// request asks for.
type TransferOpFlag uint8

const (
	TransferOpGetNextPart  TransferOpFlag = 0x00
	TransferOpGetFirstPart TransferOpFlag = 0x01
)

// CompletionCode is a PLDM command completion code (spec.md §6, §7).
type CompletionCode uint8

const (
	CompletionSuccess             CompletionCode = 0x00
	CompletionError               CompletionCode = 0x01
	CompletionInvalidData         CompletionCode = 0x02
	CompletionInvalidLength       CompletionCode = 0x03
	CompletionUnsupported         CompletionCode = 0x04
	CompletionInvalidRecordHandle CompletionCode = 0x05
)

// PLDM type and command codes for the five Platform M&C commands this
// subsystem consumes/serves (spec.md §6).
const (
	PLDMTypePlatform = 0x02

	CmdGetPDRRepositoryInfo      = 0x50
	CmdGetPDR                    = 0x51
	CmdFindPDR                   = 0x52
	CmdGetPDRRepositorySignature = 0x53
	CmdRunInitAgent              = 0x58
)

// RepositoryState is the repository-level availability state returned by
// GetPDRRepositoryInfo (spec.md §3.2).
type RepositoryState uint8

const (
	StateAvailable        RepositoryState = 0
	StateUpdateInProgress RepositoryState = 1
	StateFailed           RepositoryState = 2
)
