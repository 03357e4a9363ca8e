package comment

import (
	"fmt"
	"regexp"
)

// BlockList decides whether content looks promotional.
type BlockList interface {
	Matches(content string) bool
}

// PatternBlockList matches content against case-insensitive regular expressions.
type PatternBlockList struct {
	patterns []*regexp.Regexp
}

// NewPatternBlockList compiles patterns. An empty list matches nothing.
func NewPatternBlockList(patterns ...string) (*PatternBlockList, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		if p == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("[comment NewPatternBlockList] invalid pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return &PatternBlockList{patterns: compiled}, nil
}

func (b *PatternBlockList) Matches(content string) bool {
	for _, re := range b.patterns {
		if re.MatchString(content) {
			return true
		}
	}
	return false
}
