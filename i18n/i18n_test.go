package i18n

import "testing"

func TestLocaleString(t *testing.T) {
	if English.String() != "en" {
		t.Errorf("English.String() = %q, want en", English.String())
	}
	if Chinese.String() != "zh" {
		t.Errorf("Chinese.String() = %q, want zh", Chinese.String())
	}
}

func TestFromString(t *testing.T) {
	cases := map[string]Locale{"zh": Chinese, "ZH": Chinese, "en": English, "": English, "fr": English}
	for in, want := range cases {
		if got := FromString(in); got != want {
			t.Errorf("FromString(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LANG", "zh_CN.UTF-8")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANGUAGE", "")
	if got := FromEnv(); got != Chinese {
		t.Errorf("FromEnv() = %v, want Chinese for LANG=zh_CN.UTF-8", got)
	}

	t.Setenv("LANG", "en_US.UTF-8")
	if got := FromEnv(); got != English {
		t.Errorf("FromEnv() = %v, want English for LANG=en_US.UTF-8", got)
	}
}

func TestGetFormatsRegisteredMessage(t *testing.T) {
	got := Get("NodeNotFound", English, "Missing")
	want := `undefined node "Missing"`
	if got != want {
		t.Errorf("Get() = %q, want %q", got, want)
	}
}

func TestGetFallsBackToEnglishForUnknownLocale(t *testing.T) {
	// Every registered key currently has both English and Chinese entries,
	// so this only exercises the fallback path structurally: a locale
	// value outside the known set still resolves through the English
	// branch, it does not panic or return a blank string.
	got := Get("NodeNotFound", Locale(99), "Missing")
	want := `undefined node "Missing"`
	if got != want {
		t.Errorf("Get() = %q, want %q", got, want)
	}
}

func TestGetUnknownKeyReturnsBareKey(t *testing.T) {
	if got := Get("NotARealKey", English); got != "NotARealKey" {
		t.Errorf("Get() = %q, want the bare key back", got)
	}
}

func TestGetChineseTranslation(t *testing.T) {
	got := Get("UnusedFunction", Chinese, "helper")
	want := `函数 "helper" 从未被调用`
	if got != want {
		t.Errorf("Get() = %q, want %q", got, want)
	}
}
