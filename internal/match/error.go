package match

import "fmt"

func errorf(typeMethod, format string, a ...interface{}) error {
	return fmt.Errorf("github.com/nicolagi/procdiff/internal/match."+typeMethod+": "+format, a...)
}
