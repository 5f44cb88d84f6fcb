package call

// DTMFEvent is a single DTMF tone as defined by RFC 4733.
type DTMFEvent int

const (
	// DTMFEventDigit0 through DTMFEventDigit9 are the decimal digits.
	DTMFEventDigit0 DTMFEvent = iota
	DTMFEventDigit1
	DTMFEventDigit2
	DTMFEventDigit3
	DTMFEventDigit4
	DTMFEventDigit5
	DTMFEventDigit6
	DTMFEventDigit7
	DTMFEventDigit8
	DTMFEventDigit9

	// DTMFEventAsterisk is the '*' tone.
	DTMFEventAsterisk

	// DTMFEventHash is the '#' tone.
	DTMFEventHash

	// DTMFEventLetterA through DTMFEventLetterD are the extended tones.
	DTMFEventLetterA
	DTMFEventLetterB
	DTMFEventLetterC
	DTMFEventLetterD
)

func (e DTMFEvent) String() string {
	switch {
	case e >= DTMFEventDigit0 && e <= DTMFEventDigit9:
		return string(rune('0' + e))
	case e == DTMFEventAsterisk:
		return "*"
	case e == DTMFEventHash:
		return "#"
	case e >= DTMFEventLetterA && e <= DTMFEventLetterD:
		return string(rune('A' + e - DTMFEventLetterA))
	default:
		return ErrUnknownType.Error()
	}
}
