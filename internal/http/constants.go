package http

import "time"

const headerRequestID = "X-Request-ID"

const ctxKeyRequestID = "request_id"

// Common JSON keys
const (
	JSONKeyOK      = "ok"
	JSONKeyError   = "error"
	JSONKeyKind    = "kind"
	JSONKeyAddress = "address"
	JSONKeyCount   = "count"
)

const (
	HTTPErrorForbiddenText     = "forbidden"
	HTTPErrorForbiddenHostText = "forbidden host"
	HTTPErrorInvalidDateText   = "invalid date (want YYYYMMDD)"
	HTTPErrorInvalidRangeText  = "start date is after end date"
	HTTPErrorNotFoundText      = "no entry for this date"
)

// Defaults for an open-ended date range.
const (
	defaultRangeStart uint32 = 19700101
	defaultRangeEnd   uint32 = 99991231
)

// Websocket timings
const (
	wsWriteWait    = 10 * time.Second
	wsPongWait     = 60 * time.Second
	wsPingInterval = (wsPongWait * 9) / 10
)

// Websocket message types
const (
	wsTypeSession = "session"
	wsTypeState   = "state"
)
