package editor

import (
	"strings"
	"unicode"
)

var keywords = keywordSet(`
		select from where and or not in is null like ilike between exists
		insert into values update set delete returning
		create drop alter table index view schema database truncate
		join inner outer left right full cross on using natural
		order by group having limit offset as distinct all union intersect except
		case when then else end cast
		count sum avg min max coalesce
		begin commit rollback transaction
		asc desc nulls first last
		primary key foreign references unique check default constraint cascade restrict
		true false with recursive show describe explain analyze pragma use`)

func keywordSet(list string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, k := range strings.Fields(list) {
		set[k] = struct{}{}
	}
	return set
}

func isKeyword(w string) bool {
	_, ok := keywords[strings.ToLower(w)]
	return ok
}

// upperKeywords uppercases SQL keywords outside string literals, quoted
// identifiers and comments.
func upperKeywords(sql string) string {
	var out strings.Builder
	out.Grow(len(sql))
	src := []rune(sql)

	for i := 0; i < len(src); {
		r := src[i]
		switch {
		case r == '\'' || r == '"' || r == '`':
			j := skipQuoted(src, i)
			out.WriteString(string(src[i:j]))
			i = j
		case r == '-' && i+1 < len(src) && src[i+1] == '-':
			j := i
			for j < len(src) && src[j] != '\n' {
				j++
			}
			out.WriteString(string(src[i:j]))
			i = j
		case isWordRune(r):
			j := i
			for j < len(src) && isWordRune(src[j]) {
				j++
			}
			w := string(src[i:j])
			if isKeyword(w) {
				w = strings.ToUpper(w)
			}
			out.WriteString(w)
			i = j
		default:
			out.WriteRune(r)
			i++
		}
	}
	return out.String()
}

// skipQuoted returns the index just past the quoted run starting at i. A
// doubled quote character is an escaped quote.
func skipQuoted(src []rune, i int) int {
	q := src[i]
	j := i + 1
	for j < len(src) {
		if src[j] == q {
			if j+1 < len(src) && src[j+1] == q {
				j += 2
				continue
			}
			return j + 1
		}
		j++
	}
	return j
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
