package log

// Config describes logger settings sourced from flags or environment.
type Config struct {
	// Level is one of debug|info|warn|error|fatal. Empty means info.
	Level string
	// Format is one of text|json. Empty means text.
	Format string
}

// ApplyConfig builds a Logger from Config. Unknown levels or formats are
// rejected so callers can fall back explicitly.
func ApplyConfig(cfg *Config) (Logger, error) {
	level := InfoLevel
	if cfg.Level != "" {
		parsed, err := ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}
	var formatter Formatter = &TextFormatter{}
	switch cfg.Format {
	case "", "text":
	case "json":
		formatter = &JSONFormatter{}
	default:
		return nil, &UnknownFormatError{Format: cfg.Format}
	}
	return NewLogger(WithLevel(level), WithFormatter(formatter)), nil
}

// UnknownFormatError reports an unrecognized log format name.
type UnknownFormatError struct {
	Format string
}

func (e *UnknownFormatError) Error() string {
	return "unknown log format " + e.Format + "; use text or json"
}
