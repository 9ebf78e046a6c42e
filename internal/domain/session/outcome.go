package session

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Status is the result class of a restore or save.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Reason explains a skipped or failed outcome.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonNotFound     Reason = "not_found"
	ReasonLocalMissing Reason = "local_missing"
	ReasonFetch        Reason = "fetch_error"
	ReasonWrite        Reason = "write_error"
	ReasonRead         Reason = "read_error"
	ReasonUpload       Reason = "upload_error"
	ReasonPanic        Reason = "panic"
)

// TriggerLoggedOut is the save trigger for a revoked login.
const TriggerLoggedOut = "logged_out"

// Op names the operation an outcome belongs to.
type Op string

const (
	OpRestore Op = "restore"
	OpSave    Op = "save"
)

// Outcome reports what a restore or save did. Restore and Save never return
// errors; callers inspect the outcome instead.
type Outcome struct {
	Op       Op            `json:"op"`
	Status   Status        `json:"status"`
	Reason   Reason        `json:"reason,omitempty"`
	Message  string        `json:"message,omitempty"`
	Trigger  string        `json:"trigger,omitempty"`
	Bytes    int           `json:"bytes"`
	Checksum string        `json:"checksum,omitempty"`
	At       time.Time     `json:"at"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// OK reports whether the operation completed.
func (o Outcome) OK() bool { return o.Status == StatusOK }

// Skipped reports whether the operation was a deliberate no-op.
func (o Outcome) Skipped() bool { return o.Status == StatusSkipped }

// Failed reports whether the operation hit an error.
func (o Outcome) Failed() bool { return o.Status == StatusFailed }

func succeeded(op Op, data []byte) Outcome {
	return Outcome{Op: op, Status: StatusOK, Bytes: len(data), Checksum: checksum(data)}
}

// checksum is the hex SHA-256 of an artifact, so a restore and a later save
// of the same bytes can be matched in logs.
func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func skipped(op Op, reason Reason) Outcome {
	return Outcome{Op: op, Status: StatusSkipped, Reason: reason}
}

func failed(op Op, reason Reason, err error) Outcome {
	o := Outcome{Op: op, Status: StatusFailed, Reason: reason, Err: err}
	if err != nil {
		o.Message = err.Error()
	}
	return o
}
