package syncmanager

import "testing"

func TestLogLevelOrder(t *testing.T) {
	levels := []LogLevel{
		LogLevelOff,
		LogLevelFatal,
		LogLevelError,
		LogLevelWarn,
		LogLevelInfo,
		LogLevelDetail,
		LogLevelDebug,
		LogLevelTrace,
		LogLevelAll,
	}

	for i := 1; i < len(levels); i++ {
		if levels[i-1] >= levels[i] {
			t.Fatalf("%v should be less verbose than %v", levels[i-1], levels[i])
		}
	}
}

func TestLogLevelEnables(t *testing.T) {
	cases := []struct {
		threshold LogLevel
		msg       LogLevel
		enabled   bool
	}{
		{LogLevelDebug, LogLevelError, true},
		{LogLevelDebug, LogLevelDebug, true},
		{LogLevelDebug, LogLevelTrace, false},
		{LogLevelInfo, LogLevelDetail, false},
		{LogLevelOff, LogLevelFatal, false},
		{LogLevelAll, LogLevelAll, true},
		{LogLevelAll, LogLevelOff, false},
	}

	for _, c := range cases {
		if got := c.threshold.Enables(c.msg); got != c.enabled {
			t.Fatalf("%v.Enables(%v) should be %v", c.threshold, c.msg, c.enabled)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	for l := LogLevelOff; l <= LogLevelAll; l++ {
		parsed, err := ParseLogLevel(l.String())
		if err != nil {
			t.Fatal(err)
		}
		if parsed != l {
			t.Fatalf("%s parsed as %v", l.String(), parsed)
		}
	}

	if l, err := ParseLogLevel(" Warning "); err != nil || l != LogLevelWarn {
		t.Fatalf("warning should parse as warn, got %v, %v", l, err)
	}

	if _, err := ParseLogLevel("verbose"); !IsErr(err, InvalidConfiguration) {
		t.Fatalf("unknown level should fail with InvalidConfiguration, got %v", err)
	}
}
