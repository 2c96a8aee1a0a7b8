package filter

// Keyword sets driving the research-worthiness heuristic. Matching is
// substring-based against lower-cased market text.

var highInfoKeywords = []string{
	"election", "vote", "poll", "candidate", "president", "senate", "congress",
	"policy", "regulation", "fda", "sec", "approval", "decision", "announcement",
	"earnings", "revenue", "profit", "quarterly", "financial",
	"launch", "release", "product", "feature", "update",
	"trial", "court", "lawsuit", "verdict", "ruling",
	"economic", "gdp", "inflation", "unemployment", "rate",
	"sports", "game", "match", "tournament", "championship",
}

var lowInfoKeywords = []string{
	"coin", "flip", "dice", "random", "lottery", "draw",
	"instant", "immediate", "second", "minute",
}

var highAccessKeywords = []string{
	"official", "announcement", "press", "release", "statement",
	"public", "government", "federal", "state", "agency",
	"company", "corporation", "earnings", "report",
	"election", "poll", "survey", "data",
	"news", "media", "coverage",
}

var lowAccessKeywords = []string{
	"insider", "private", "confidential", "secret",
	"internal", "leak", "rumor", "speculation",
}

var randomnessKeywords = []string{
	"coin", "flip", "dice", "roll", "random", "lottery", "draw",
	"chance", "luck", "gamble", "bet", "instant",
}

var efficientCryptoCategories = []string{"crypto", "bitcoin", "ethereum"}

var efficientSportsCategories = []string{"sports", "nfl", "nba", "mlb"}
