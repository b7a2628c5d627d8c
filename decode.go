package schemarpc

import (
	"errors"
	"io"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/reoring/schemarpc/i18n"
	eng "github.com/reoring/schemarpc/internal/engine"
)

// DecodeJSON decodes a request body into the JSON data model: map[string]any,
// []any, string, json.Number, bool and nil. Decoding problems are returned as
// ValidationErrors with code parse_error, duplicate_key or truncated.
func DecodeJSON(data []byte, opt DecodeOpt) (any, error) {
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return nil, truncated(opt.MaxBytes)
	}
	return decode(eng.NewBytes(data), opt)
}

// DecodeJSONReader is DecodeJSON over a stream. At most MaxBytes+1 bytes are read.
func DecodeJSONReader(r io.Reader, opt DecodeOpt) (any, error) {
	if opt.MaxBytes > 0 {
		data, err := io.ReadAll(io.LimitReader(r, opt.MaxBytes+1))
		if err != nil {
			return nil, ValidationErrors{{Path: "", Code: CodeParseError, Message: err.Error()}}
		}
		return DecodeJSON(data, opt)
	}
	return decode(eng.NewReader(r), opt)
}

func decode(src eng.TokenSource, opt DecodeOpt) (any, error) {
	eo := eng.Options{MaxDepth: opt.MaxDepth}
	switch opt.OnDuplicateKey {
	case Ignore:
		eo.Duplicates = eng.DupIgnore
	case Warn:
		eo.Duplicates = eng.DupWarn
		log := opt.Logger
		if log == nil {
			log = logrus.StandardLogger()
		}
		eo.Warn = func(is eng.Issue) {
			log.WithFields(logrus.Fields{"path": pathOf(is.At).String()}).Warn(is.Message)
		}
	default:
		eo.Duplicates = eng.DupError
	}
	v, err := eng.Decode(src, eo)
	if err == nil {
		return v, nil
	}
	var ie eng.IssueError
	if errors.As(err, &ie) {
		msg := i18n.T(ie.Code, map[string]string{"key": strconv.Quote(ie.Key)})
		if ie.Code == CodeParseError {
			msg += ": " + ie.Message
		}
		return nil, ValidationErrors{{Path: pathOf(ie.At).String(), Code: ie.Code, Message: msg}}
	}
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return nil, ValidationErrors{{Path: "", Code: CodeParseError, Message: i18n.T(CodeParseError, nil) + ": " + err.Error()}}
}

func pathOf(at []eng.Segment) Path {
	p := Root
	for _, s := range at {
		if s.Index >= 0 {
			p = p.Index(s.Index)
		} else {
			p = p.Field(s.Key)
		}
	}
	return p
}

func truncated(limit int64) error {
	return ValidationErrors{{
		Path:    "",
		Code:    CodeTruncated,
		Message: i18n.T(CodeTruncated, map[string]string{"expected": strconv.FormatInt(limit, 10)}),
	}}
}
