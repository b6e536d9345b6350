package logger

import (
	"bytes"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Formatter renders "<tag> <message>" lines.
type Formatter struct {
	DisableColor bool
}

func colorByTag(tag string) color.Attribute {
	switch tag {
	case TagWarn:
		return color.FgYellow
	case TagError:
		return color.FgRed
	case TagQuery:
		return color.FgBlue
	default:
		return color.FgCyan
	}
}

func tagByLevel(level logrus.Level) string {
	switch level {
	case logrus.WarnLevel:
		return TagWarn
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return TagError
	default:
		return TagInfo
	}
}

func (f *Formatter) paint(attr color.Attribute, s string) string {
	c := color.New(attr, color.Bold)
	if f.DisableColor {
		c.DisableColor()
	} else {
		c.EnableColor()
	}
	return c.Sprint(s)
}

func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	if ns, ok := entry.Data[namespaceField].(string); ok {
		b.WriteString(f.paint(color.FgMagenta, ns))
		b.WriteByte(' ')
	} else {
		tag, ok := entry.Data[tagField].(string)
		if !ok {
			tag = tagByLevel(entry.Level)
		}
		if tag != plainTag {
			b.WriteString(f.paint(colorByTag(tag), tag))
			b.WriteByte(' ')
		}
	}

	b.WriteString(entry.Message)
	b.WriteByte('\n')
	return b.Bytes(), nil
}
