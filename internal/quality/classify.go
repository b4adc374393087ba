package quality

import "fmt"

// Kind selects the statistic strategy for a column.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNumeric
	KindTextual
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindTextual:
		return "textual"
	case KindOther:
		return "other"
	}
	return ""
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "numeric":
		*k = KindNumeric
	case "textual":
		*k = KindTextual
	case "other":
		*k = KindOther
	case "":
		*k = KindUnknown
	default:
		return fmt.Errorf("unknown column kind %q", string(b))
	}
	return nil
}

// Classify decides how a column is profiled. A column is numeric when every
// non-missing value is a number and textual when every non-missing value is
// text; anything else, including booleans, times and mixtures, is other. A
// fully missing column keeps its declared kind, or other when none is known.
func Classify(values []Value, declared Kind) Kind {
	var present, numbers, texts int
	for _, v := range values {
		switch v.Type() {
		case MissingValue:
			continue
		case NumberValue:
			numbers++
		case TextValue:
			texts++
		}
		present++
	}
	switch {
	case present == 0:
		if declared != KindUnknown {
			return declared
		}
		return KindOther
	case numbers == present:
		return KindNumeric
	case texts == present:
		return KindTextual
	}
	return KindOther
}
