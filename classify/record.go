package classify

import (
	"fmt"
	"strings"

	"github.com/c360studio/semxref/source/rows"
)

// Kind is the record shape selected by the discriminant column.
type Kind int

// Record kinds.
const (
	KindUnrecognized Kind = iota
	KindAsterisk
	KindNumberSign
	KindPercent
	KindPlus
	KindNull
	KindCaret
	KindComment
)

// recordWidth is the column count of every recognized non-comment record.
const recordWidth = 5

var kindTokens = map[string]Kind{
	"Asterisk":    KindAsterisk,
	"Number Sign": KindNumberSign,
	"NumberSign":  KindNumberSign,
	"Percent":     KindPercent,
	"Plus":        KindPlus,
	"NULL":        KindNull,
	"Caret":       KindCaret,
}

// ParseKind maps a discriminant token to its Kind.
func ParseKind(token string) Kind {
	if strings.HasPrefix(token, "#") {
		return KindComment
	}
	if k, ok := kindTokens[token]; ok {
		return k
	}
	return KindUnrecognized
}

func (k Kind) String() string {
	switch k {
	case KindAsterisk:
		return "Asterisk"
	case KindNumberSign:
		return "NumberSign"
	case KindPercent:
		return "Percent"
	case KindPlus:
		return "Plus"
	case KindNull:
		return "NULL"
	case KindCaret:
		return "Caret"
	case KindComment:
		return "Comment"
	default:
		return "Unrecognized"
	}
}

// Record is one parsed classification row.
type Record struct {
	Kind Kind
	// Token is the raw discriminant, kept for diagnostics on unrecognized rows.
	Token  string
	ID     string
	Fields []string
	Line   int
}

// Destination returns the destination text of a Caret record.
func (r Record) Destination() string {
	if r.Kind != KindCaret || len(r.Fields) < 3 {
		return ""
	}
	return r.Fields[2]
}

// ParseRecord parses one row. An empty discriminant, or a recognized record
// without exactly five columns, is a *rows.StructuralError.
func ParseRecord(row []string, line int) (Record, error) {
	if len(row) == 0 || row[0] == "" {
		return Record{}, rows.Structural("", line, row, rows.ErrMissingDiscriminant)
	}

	rec := Record{Kind: ParseKind(row[0]), Token: row[0], Fields: row, Line: line}
	switch rec.Kind {
	case KindComment:
		return rec, nil
	case KindUnrecognized:
		if len(row) > 1 {
			rec.ID = row[1]
		}
		return rec, nil
	}

	if len(row) != recordWidth {
		return Record{}, rows.Structural("", line, row,
			fmt.Errorf("%w: %s record wants %d, got %d", rows.ErrColumnCount, rec.Kind, recordWidth, len(row)))
	}
	rec.ID = row[1]
	return rec, nil
}
