// Copyright 2018-present Network Optix, Inc. Licensed under MPL 2.0: www.mozilla.org/MPL/2.0/
package sglib

import "fmt"

// CommandOutcomeCategory classifies the outcome of one SCSI command. The
// numeric values are a long-standing exit-status contract: some of the lower
// values correspond to sense key values, the middle band to SCSI status
// codes, and summaries pick the highest numbered applicable category. The
// ordering mixes semantically unrelated codes (Timeout sits between
// TaskAborted and Protection); it is preserved as-is for compatibility.
type CommandOutcomeCategory int

const (
	// CatClean - no errors or other information.
	CatClean CommandOutcomeCategory = 0
	// Value 1 is left unused so that utilities can report syntax errors.

	// CatNotReady - sense key 0x2, unit stopped?
	CatNotReady CommandOutcomeCategory = 2
	// CatMediumHard - medium, hardware error or blank check (keys 0x3/0x4/0x8).
	CatMediumHard CommandOutcomeCategory = 3
	// CatIllegalReq - illegal request other than invalid opcode (key 0x5).
	CatIllegalReq CommandOutcomeCategory = 5
	// CatUnitAttention - device state changed (key 0x6).
	CatUnitAttention CommandOutcomeCategory = 6
	// CatDataProtect - media write protected? (key 0x7).
	CatDataProtect CommandOutcomeCategory = 7
	// CatInvalidOp - invalid opcode (key 0x5, asc 0x20, ascq 0x0).
	CatInvalidOp CommandOutcomeCategory = 9
	// CatCopyAborted - some data transferred (key 0xa).
	CatCopyAborted CommandOutcomeCategory = 10
	// CatAbortedCommand - key 0xb with asc other than 0x10.
	CatAbortedCommand CommandOutcomeCategory = 11
	// CatMiscompare - probably a verify (key 0xe).
	CatMiscompare CommandOutcomeCategory = 14
	// CatIllegalReqWithInfo - illegal request plus a valid info field.
	CatIllegalReqWithInfo CommandOutcomeCategory = 17
	// CatMediumHardWithInfo - medium or hardware error plus a valid info field.
	CatMediumHardWithInfo CommandOutcomeCategory = 18
	// CatNoSense - sense data with a key of No Sense (key 0x0).
	CatNoSense CommandOutcomeCategory = 20
	// CatRecovered - successful command after a recovered error (key 0x1).
	CatRecovered CommandOutcomeCategory = 21
	// CatResConflict - SCSI status, reservation by another machine.
	CatResConflict CommandOutcomeCategory = 24
	// CatConditionMet - SCSI status, only from PRE-FETCH (SBC-4).
	CatConditionMet CommandOutcomeCategory = 25
	// CatBusy - SCSI status, invites retry.
	CatBusy CommandOutcomeCategory = 26
	// CatTsFull - SCSI status, wait then retry.
	CatTsFull CommandOutcomeCategory = 27
	// CatAcaActive - SCSI status, ACA is seldom used.
	CatAcaActive CommandOutcomeCategory = 28
	// CatTaskAborted - SCSI status, this command aborted by?
	CatTaskAborted CommandOutcomeCategory = 29
	// CatTimeout - pass-through timed out.
	CatTimeout CommandOutcomeCategory = 33
	// CatProtection - subset of aborted command, for PI/DIF (key 0xb, asc 0x10).
	CatProtection CommandOutcomeCategory = 40
	// CatProtectionWithInfo - protection plus a valid info field.
	CatProtectionWithInfo CommandOutcomeCategory = 41
	// CatMalformed - response to a SCSI command was malformed.
	CatMalformed CommandOutcomeCategory = 97
	// CatSense - something else is in the sense buffer.
	CatSense CommandOutcomeCategory = 98
	// CatOther - some other error or warning, e.g. a transport error.
	CatOther CommandOutcomeCategory = 99
)

func (category CommandOutcomeCategory) String() string {
	names := map[CommandOutcomeCategory]string{
		CatClean:              "No errors",
		CatNotReady:           "Not ready",
		CatMediumHard:         "Medium or hardware error (plus blank check)",
		CatIllegalReq:         "Illegal request",
		CatUnitAttention:      "Unit attention",
		CatDataProtect:        "Data protect",
		CatInvalidOp:          "Illegal request, invalid opcode",
		CatCopyAborted:        "Copy aborted",
		CatAbortedCommand:     "Aborted command",
		CatIllegalReqWithInfo: "Illegal request with info",
		CatMediumHardWithInfo: "Medium or hardware error with info",
		CatMiscompare:         "Miscompare",
		CatNoSense:            "Sense data, no sense",
		CatRecovered:          "Recovered error",
		CatResConflict:        "Reservation conflict",
		CatConditionMet:       "Condition met",
		CatBusy:               "Busy",
		CatTsFull:             "Task set full",
		CatAcaActive:          "ACA active",
		CatTaskAborted:        "Task aborted",
		CatTimeout:            "Timeout",
		CatProtection:         "Aborted command, protection",
		CatProtectionWithInfo: "Aborted command, protection with info",
		CatMalformed:          "Malformed response",
		CatSense:              "Some other sense data problem",
		CatOther:              "Some other error/warning",
	}
	name, ok := names[category]
	if !ok {
		return fmt.Sprintf("Sense category: %d", int(category))
	}
	return name
}

// CategorizeSense maps a raw sense buffer to an outcome category. A buffer
// that cannot be decoded, or a less common sense key, yields CatSense.
func CategorizeSense(sense []byte) CommandOutcomeCategory {
	header := NormalizeSense(sense)
	if header == nil {
		return CatSense
	}
	switch header.SenseKey {
	case SenseKeyNoSense:
		return CatNoSense
	case SenseKeyRecoveredError:
		return CatRecovered
	case SenseKeyNotReady:
		return CatNotReady
	case SenseKeyMediumError, SenseKeyHardwareError, SenseKeyBlankCheck:
		return CatMediumHard
	case SenseKeyIllegalRequest:
		if header.Asc == 0x20 && header.Ascq == 0x00 {
			return CatInvalidOp
		}
		return CatIllegalReq
	case SenseKeyUnitAttention:
		return CatUnitAttention
	case SenseKeyDataProtect:
		return CatDataProtect
	case SenseKeyCopyAborted:
		return CatCopyAborted
	case SenseKeyAbortedCommand:
		if header.Asc == 0x10 {
			return CatProtection
		}
		return CatAbortedCommand
	case SenseKeyMiscompare:
		return CatMiscompare
	}
	return CatSense
}

// CategorizeSenseWithInfo behaves like CategorizeSense but upgrades to the
// *WithInfo alternates when the information field is simultaneously valid.
func CategorizeSenseWithInfo(sense []byte) CommandOutcomeCategory {
	category := CategorizeSense(sense)
	valid, _ := SenseInfoField(sense)
	if !valid {
		return category
	}
	switch category {
	case CatIllegalReq:
		return CatIllegalReqWithInfo
	case CatMediumHard:
		return CatMediumHardWithInfo
	case CatProtection:
		return CatProtectionWithInfo
	}
	return category
}

// CategorizeStatus maps a SCSI status byte to an outcome category. Check
// Condition is not mapped here; its sense buffer carries the detail and
// CategorizeSense should be used instead.
func CategorizeStatus(status StatusCode) CommandOutcomeCategory {
	switch status {
	case StatusGood, StatusIntermediate, StatusIntermediateConditionMet:
		return CatClean
	case StatusConditionMet:
		return CatConditionMet
	case StatusBusy:
		return CatBusy
	case StatusReservationConflict:
		return CatResConflict
	case StatusTaskSetFull:
		return CatTsFull
	case StatusAcaActive:
		return CatAcaActive
	case StatusTaskAborted:
		return CatTaskAborted
	case StatusCheckCondition, StatusCommandTerminated:
		return CatSense
	}
	return CatOther
}

// CombineCategories reports the effective category of a command whose status
// and sense data map to different categories: the highest numbered
// applicable one. Status-only categories are interleaved into the same
// ordered space precisely so that this comparison is well defined.
func CombineCategories(first, second CommandOutcomeCategory) CommandOutcomeCategory {
	if first > second {
		return first
	}
	return second
}
