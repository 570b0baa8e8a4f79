package logger

import "strings"

// Level is the level at which a logger is configured. Messages below the
// configured level are dropped.
type Level uint32

// Level constants.
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
	LevelOff
)

var levelTags = [...]string{"TRC", "DBG", "INF", "WRN", "ERR", "CRT", "OFF"}

var levelsByName = map[string]Level{
	"trace":    LevelTrace,
	"debug":    LevelDebug,
	"info":     LevelInfo,
	"warn":     LevelWarn,
	"error":    LevelError,
	"critical": LevelCritical,
	"off":      LevelOff,
}

// LevelFromString parses either the full name or the tag of a level, case
// insensitively. It returns LevelInfo and false for anything else.
func LevelFromString(s string) (l Level, ok bool) {
	s = strings.ToLower(s)
	if level, ok := levelsByName[s]; ok {
		return level, true
	}
	for level, tag := range levelTags {
		if strings.ToLower(tag) == s {
			return Level(level), true
		}
	}
	return LevelInfo, false
}

// String returns the tag written in log lines for l
func (l Level) String() string {
	if l >= LevelOff {
		return levelTags[LevelOff]
	}
	return levelTags[l]
}
