// Package mention 处理聊天消息中的 @文件名 引用：解析、补全建议与补全替换.
package mention

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultSuggestLimit 补全建议的默认条数.
const DefaultSuggestLimit = 5

var trailingMention = regexp.MustCompile(`@[^ ]*$`)

// Parse 返回消息中以空格分隔、以 @ 开头的词（去掉 @），末尾一个非字母数字字符会被去掉.
// 只有 @ 的词被忽略.
func Parse(text string) []string {
	var out []string

	for _, word := range strings.Split(text, " ") {
		if !strings.HasPrefix(word, "@") {
			continue
		}

		name := []rune(word[1:])
		if len(name) == 0 {
			continue
		}

		if last := name[len(name)-1]; !isASCIIAlnum(last) {
			name = name[:len(name)-1]
		}

		if len(name) > 0 {
			out = append(out, string(name))
		}
	}

	return out
}

// Partial 返回消息最后一个词中 @ 之后的部分；最后一个词不是引用时 ok 为 false.
func Partial(text string) (partial string, ok bool) {
	words := strings.FieldsFunc(text, unicode.IsSpace)
	if len(words) == 0 || hasTrailingSpace(text) {
		return "", false
	}

	last := words[len(words)-1]
	if !strings.HasPrefix(last, "@") {
		return "", false
	}

	return last[1:], true
}

// Suggest 按不区分大小写的前缀匹配过滤候选文件名，最多返回 limit 条（<= 0 时不限制）.
// 消息末尾不是 @引用 时返回 nil.
func Suggest(text string, filenames []string, limit int) []string {
	partial, ok := Partial(text)
	if !ok {
		return nil
	}

	prefix := strings.ToLower(partial)

	var out []string

	for _, name := range filenames {
		if strings.HasPrefix(strings.ToLower(name), prefix) {
			out = append(out, name)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}

	return out
}

// Complete 将消息末尾的 @partial 替换为 @filename；末尾没有引用时原样返回.
func Complete(text, filename string) string {
	return trailingMention.ReplaceAllLiteralString(text, "@"+filename)
}

func isASCIIAlnum(r rune) bool {
	return r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

func hasTrailingSpace(text string) bool {
	r := []rune(text)

	return len(r) > 0 && unicode.IsSpace(r[len(r)-1])
}
