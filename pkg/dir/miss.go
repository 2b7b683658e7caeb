//go:build !pipesdebug

package dir

import "log"

// ReportMiss records a seam table lookup that found no entry. Callers
// recover with a default orientation; builds tagged pipesdebug panic here
// instead.
func ReportMiss(format string, args ...any) {
	log.Printf("seam table miss: "+format, args...)
}
