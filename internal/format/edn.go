package format

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// WriteEDN writes an EDN rendering of v. Values go through their JSON encoding first so
// json tags decide the field names; camelCase keys become kebab-case keywords
// (parentId -> :parent-id).
func WriteEDN(w io.Writer, v any, pretty bool) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var x any
	if err := json.Unmarshal(b, &x); err != nil {
		return err
	}
	var sb strings.Builder
	e := edn{pretty: pretty, out: &sb}
	e.value(x, 0)
	sb.WriteByte('\n')
	_, err = io.WriteString(w, sb.String())
	return err
}

type edn struct {
	pretty bool
	out    *strings.Builder
}

func (e edn) value(v any, level int) {
	switch t := v.(type) {
	case nil:
		e.out.WriteString("nil")
	case bool:
		e.out.WriteString(strconv.FormatBool(t))
	case string:
		e.out.WriteString(strconv.Quote(t))
	case float64:
		if t == float64(int64(t)) {
			e.out.WriteString(strconv.FormatInt(int64(t), 10))
		} else {
			e.out.WriteString(strconv.FormatFloat(t, 'f', -1, 64))
		}
	case []any:
		e.coll("[", "]", len(t), level, func(i int) { e.value(t[i], level+1) })
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		e.coll("{", "}", len(keys), level, func(i int) {
			e.out.WriteString(keyword(keys[i]))
			e.out.WriteByte(' ')
			e.value(t[keys[i]], level+1)
		})
	default:
		e.out.WriteString(strconv.Quote(fmt.Sprint(v)))
	}
}

func (e edn) coll(open, closing string, n, level int, item func(i int)) {
	e.out.WriteString(open)
	if n == 0 {
		e.out.WriteString(closing)
		return
	}
	for i := 0; i < n; i++ {
		switch {
		case e.pretty:
			e.out.WriteByte('\n')
			e.out.WriteString(strings.Repeat("  ", level+1))
		case i > 0:
			e.out.WriteByte(' ')
		}
		item(i)
	}
	if e.pretty {
		e.out.WriteByte('\n')
		e.out.WriteString(strings.Repeat("  ", level))
	}
	e.out.WriteString(closing)
}

func keyword(s string) string {
	var sb strings.Builder
	sb.WriteByte(':')
	for i, r := range strings.TrimSpace(s) {
		switch {
		case r == ' ' || r == '_':
			sb.WriteByte('-')
		case unicode.IsUpper(r):
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(unicode.ToLower(r))
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
