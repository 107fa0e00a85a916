package classsection

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	DefaultBoard   = "CBSE"
	DefaultStream  = "General"
	DefaultClass   = "General"
	DefaultSection = "A"
)

var (
	gradeNumber   = regexp.MustCompile(`\b([1-9]|1[0-2])(?:ST|ND|RD|TH)?\b`)
	sectionLetter = regexp.MustCompile(`[\s-]([A-Z])(?:\s|$)`)
	sectionWord   = regexp.MustCompile(`SECTION\s+([A-Z]+)`)
)

// Components is the structured form of a class label such as "10-A" or "FYJC Science B".
type Components struct {
	Board       string
	Stream      string
	ClassName   string
	SectionName string
}

func Parse(text string) Components {
	text = strings.ToUpper(strings.TrimSpace(text))
	return Components{
		Board:       detectBoard(text),
		Stream:      detectStream(text),
		ClassName:   detectClassName(text),
		SectionName: detectSection(text),
	}
}

func detectBoard(text string) string {
	for _, b := range []string{"CBSE", "SSC", "HSC", "ICSE"} {
		if strings.Contains(text, b) {
			return b
		}
	}
	if containsAny(text, "LKG", "UKG", "NURSERY", "PRE-PRIMARY", "PREPRIMARY") {
		return "Pre-Primary"
	}
	return DefaultBoard
}

func detectStream(text string) string {
	switch {
	case strings.Contains(text, "SCIENCE"):
		return "Science"
	case strings.Contains(text, "COMMERCE"):
		return "Commerce"
	case containsAny(text, "ARTS", "HUMANITIES"):
		return "Arts"
	}
	return DefaultStream
}

func detectClassName(text string) string {
	switch {
	case strings.Contains(text, "LKG"):
		return "LKG"
	case strings.Contains(text, "UKG"):
		return "UKG"
	case strings.Contains(text, "NURSERY"):
		return "Nursery"
	case containsAny(text, "FYJC", "FY JC", "11"):
		return "FYJC"
	case containsAny(text, "SYJC", "SY JC", "12"):
		return "SYJC"
	}
	if m := gradeNumber.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return m[1] + ordinalSuffix(n)
	}
	return DefaultClass
}

func detectSection(text string) string {
	for _, colour := range []string{"RED", "BLUE", "GREEN", "YELLOW"} {
		if strings.Contains(text, colour) {
			return colour[:1] + strings.ToLower(colour[1:])
		}
	}
	if m := sectionLetter.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := sectionWord.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return DefaultSection
}

func ordinalSuffix(n int) string {
	if n >= 11 && n <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}

func containsAny(text string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}
