package router

import (
	"regexp"

	"github.com/tonehall/catalogqa/internal/domain"
)

// The stage-1 rule sets are data, not code, so they can be audited and
// tested independently of the classifier. Order matters: the two blocked
// categories are terminal and checked before anything else; among the
// remaining sets, calculation patterns are the most specific and go first.

// purchasePatterns mark commercial intent. Matched as whole words.
var purchasePatterns = compileWords([]string{
	"price", "prices", "pricing", "cost", "costs",
	"how much", "buy", "purchase", "stock", "availability",
	"where to get", "ordering", "order", "quote", "discount",
	"deal", "sale",
})

// violationPatterns mark out-of-domain competitor products. Matched as whole words.
var violationPatterns = compileWords([]string{
	"sonos", "jbl", "yamaha", "qsc", "crestron",
	"extron", "biamp", "crown", "lab gruppen", "lab.gruppen",
})

var calculationPatterns = compile([]string{
	`can i connect`,
	`how many .* can i`,
	`will .* work with`,
	`calculate`,
	`what(?:'s| is) the total`,
	`(\d+)\s*(?:×|x)\s*(\d+)\s*w`,
	`(\d+)\s*speakers?\s*(?:at|@)\s*(\d+)\s*w`,
	`transformer`,
	`impedance.*(?:series|parallel)`,
	`\btaps?\b`,
	`\d+\s*db\s*(?:reduc|quieter|lower)`,
	`(?:reduce|lower|cut)\b.*\d+\s*db\b`,
})

var lookupPatterns = compile([]string{
	`what(?:'s| is) the .* of (\w+[-/]?\w*)`,
	`(?:get|show|tell me) (?:the )?.* (?:for|of) (\w+[-/]?\w*)`,
	`(\w+[-/]\w+) (?:specs|specifications|details)`,
	`specs (?:for|of) (\w+[-/]?\w*)`,
})

var searchPatterns = compile([]string{
	`find`,
	`search`,
	`recommend`,
	`suggest`,
	`looking for`,
	`best .* for`,
	`which .* should`,
	`suitable for`,
	`good for`,
})

// ruleSet pairs a pattern table with the intent it resolves to.
type ruleSet struct {
	intent   domain.Intent
	patterns []*regexp.Regexp
}

// classifyRules are the stage-1 tables in evaluation order.
var classifyRules = []ruleSet{
	{domain.IntentPurchase, purchasePatterns},
	{domain.IntentDomainViolation, violationPatterns},
	{domain.IntentCalculation, calculationPatterns},
	{domain.IntentDirectLookup, lookupPatterns},
	{domain.IntentSemanticSearch, searchPatterns},
}

// matchRules returns the first rule set whose table matches the lowercased
// query, or ok=false when no table matches.
func matchRules(lower string) (domain.Intent, bool) {
	for _, rs := range classifyRules {
		for _, p := range rs.patterns {
			if p.MatchString(lower) {
				return rs.intent, true
			}
		}
	}
	return domain.IntentUnknown, false
}

func compile(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// compileWords compiles literal phrases with word boundaries.
func compileWords(words []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		out[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
	}
	return out
}
