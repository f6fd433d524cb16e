// Package dependency decodes predecessor codes such as "1FS,2.3SS".
package dependency

import (
	"regexp"
	"strings"

	"github.com/harrisonrobin/gantta/pkg/model"
	"github.com/harrisonrobin/gantta/pkg/util"
)

var codeRegex = regexp.MustCompile(`^([\d.]+)([A-Z]{2})$`)

// Reference points at another task by outline number.
type Reference struct {
	OutlineNumber string
	TypeCode      string
}

// ParseText splits a comma separated list of codes. Segments that are not an
// outline number followed by a two letter type code are dropped.
func ParseText(v any) []Reference {
	text := util.Text(v)
	if text == "" {
		return nil
	}

	var refs []Reference
	for _, segment := range strings.Split(text, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		match := codeRegex.FindStringSubmatch(segment)
		if match == nil {
			continue
		}
		refs = append(refs, Reference{OutlineNumber: match[1], TypeCode: match[2]})
	}
	return refs
}

// MapTypeCode translates a two letter code to the Gantt enumeration.
// Unknown codes are treated as finish-to-start.
func MapTypeCode(code string) model.DependencyType {
	switch code {
	case "SS":
		return model.StartToStart
	case "SF":
		return model.StartToFinish
	case "FF":
		return model.FinishToFinish
	}
	return model.FinishToStart
}
