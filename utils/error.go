package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// ErrorMonthClosed is returned when a mutation targets a month that already
// has generated PL records.
var ErrorMonthClosed = errors.New("month is already closed")
