//go:build pipesdebug

package dir

import "fmt"

func ReportMiss(format string, args ...any) {
	panic("seam table miss: " + fmt.Sprintf(format, args...))
}
