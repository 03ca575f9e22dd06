// Package i18n provides the process-wide, lazily-initialized locale message
// table used to format diagnostics for both the CLI and the language
// server.
package i18n

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Locale identifies a supported display language.
type Locale int

const (
	English Locale = iota
	Chinese
)

func (l Locale) String() string {
	if l == Chinese {
		return "zh"
	}
	return "en"
}

// FromString parses a locale flag/command value ("en" or "zh"), falling
// back to English for anything else.
func FromString(s string) Locale {
	if strings.EqualFold(s, "zh") {
		return Chinese
	}
	return English
}

// FromEnv auto-detects the display locale from LANG, then LC_ALL,
// LC_MESSAGES, LANGUAGE, looking for the substrings "zh", "cn", "CN" in
// that order of preference; English is the fallback.
func FromEnv() Locale {
	for _, key := range []string{"LANG", "LC_ALL", "LC_MESSAGES", "LANGUAGE"} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		if strings.Contains(v, "zh") || strings.Contains(v, "cn") || strings.Contains(v, "CN") {
			return Chinese
		}
	}
	return English
}

var (
	initOnce sync.Once
	texts    map[string]map[Locale]string
)

func initTexts() {
	texts = map[string]map[Locale]string{
		"SyntaxError": {
			English: "syntax error: %s",
			Chinese: "语法错误：%s",
		},
		"NodeNotFound": {
			English: "undefined node %q",
			Chinese: "未定义的节点 %q",
		},
		"FunctionNotFound": {
			English: "undefined function %q",
			Chinese: "未定义的函数 %q",
		},
		"ArgumentCountMismatch": {
			English: "function %q expects %d argument(s), got %d",
			Chinese: "函数 %q 需要 %d 个参数，实际传入 %d 个",
		},
		"ArgumentTypeMismatch": {
			English: "function %q argument %d: expected %s, got %s",
			Chinese: "函数 %q 的第 %d 个参数：期望 %s，实际为 %s",
		},
		"ConditionTypeMismatch": {
			English: "condition function %q must return Boolean, returns %s",
			Chinese: "条件函数 %q 必须返回 Boolean，实际返回 %s",
		},
		"DuplicateDefinition": {
			English: "%q is already defined",
			Chinese: "%q 已被定义",
		},
		"InterpolationUnmatchedBrace": {
			English: "unmatched '{' in interpolated string",
			Chinese: "插值字符串中存在未闭合的 '{'",
		},
		"SerializationError": {
			English: "cannot serialize: %s",
			Chinese: "无法序列化：%s",
		},
		"NonSnakeCaseFunction": {
			English: "function %q should be snake_case",
			Chinese: "函数 %q 应使用 snake_case 命名",
		},
		"NonSnakeCaseVariable": {
			English: "variable %q should be snake_case",
			Chinese: "变量 %q 应使用 snake_case 命名",
		},
		"NonPascalCaseNode": {
			English: "node %q should be PascalCase",
			Chinese: "节点 %q 应使用 PascalCase 命名",
		},
		"NonPascalCaseEnum": {
			English: "enum %q should be PascalCase",
			Chinese: "枚举 %q 应使用 PascalCase 命名",
		},
		"UnusedFunction": {
			English: "function %q is never called",
			Chinese: "函数 %q 从未被调用",
		},
	}
}

// Get formats the message registered under key for locale, falling back to
// English when the key is missing in the requested locale (and returning
// the bare key when it is missing entirely, which only happens for a typo
// in this package's own table).
func Get(key string, locale Locale, args ...any) string {
	initOnce.Do(initTexts)
	byLocale, ok := texts[key]
	if !ok {
		return key
	}
	tmpl, ok := byLocale[locale]
	if !ok {
		tmpl = byLocale[English]
	}
	return fmt.Sprintf(tmpl, args...)
}
