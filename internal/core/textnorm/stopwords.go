package textnorm

// Stop word vocabulary: a general English list plus review-domain filler terms
// that dominate local-business corpora without carrying signal. Both extractors
// and the TF-IDF vectorizer filter against the same combined set.

var generalStop = [...]string{
	"a", "about", "above", "after", "again", "against", "all", "am", "an",
	"and", "any", "are", "as", "at", "be", "because", "been", "before",
	"being", "below", "between", "both", "but", "by", "can", "cannot",
	"could", "did", "do", "does", "doing", "down", "during", "each", "few",
	"for", "from", "further", "had", "has", "have", "having", "he", "her",
	"here", "hers", "herself", "him", "himself", "his", "how", "i", "if",
	"in", "into", "is", "it", "its", "itself", "just", "me", "more", "most",
	"my", "myself", "no", "nor", "not", "now", "of", "off", "on", "once",
	"only", "or", "other", "our", "ours", "ourselves", "out", "over", "own",
	"same", "she", "should", "so", "some", "such", "than", "that", "the",
	"their", "theirs", "them", "themselves", "then", "there", "these",
	"they", "this", "those", "through", "to", "too", "under", "until", "up",
	"very", "was", "we", "were", "what", "when", "where", "which", "while",
	"who", "whom", "why", "will", "with", "you", "your", "yours",
	"yourself", "yourselves", "dont", "didnt", "wont", "cant", "im", "ive",
	"id", "youre", "theyre", "wasnt", "isnt", "arent", "werent", "hasnt",
	"havent", "wouldnt", "couldnt", "shouldnt", "its", "thats",
}

// domainStop covers review-speak that appears in nearly every document
var domainStop = [...]string{
	"place", "restaurant", "food", "service", "time", "really", "good",
	"great", "nice", "love", "like", "went", "got", "ordered", "came",
	"back", "would", "definitely", "highly",
}

var stopset = func() map[string]struct{} {
	m := make(map[string]struct{}, len(generalStop)+len(domainStop))
	for _, w := range generalStop {
		m[w] = struct{}{}
	}
	for _, w := range domainStop {
		m[w] = struct{}{}
	}
	return m
}()

// IsStop reports whether the normalized token w is in the combined stop set
func IsStop(w string) bool {
	_, ok := stopset[w]
	return ok
}

// StopCount returns the size of the combined set (handy for tests and debug)
func StopCount() int { return len(stopset) }
