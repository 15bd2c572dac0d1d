package turnlog

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// NewSessionID returns an identifier of the form session_<unixmillis>_<suffix>.
func NewSessionID(now time.Time) string {
	return fmt.Sprintf("session_%d_%s", now.UnixMilli(), randomSuffix())
}

// NewRecordID returns an identifier of the form log_<unixmillis>_<suffix>.
func NewRecordID(now time.Time) string {
	return fmt.Sprintf("log_%d_%s", now.UnixMilli(), randomSuffix())
}

// randomSuffix yields 9 base36 characters drawn from a random UUID.
func randomSuffix() string {
	id := uuid.New()
	s := strconv.FormatUint(binary.BigEndian.Uint64(id[:8]), 36)
	for len(s) < 9 {
		s = "0" + s
	}
	return s[len(s)-9:]
}
