package tone

import "github.com/repofit/repofit-backend/internal/model"

// Fixed keyword vocabularies per tone. Matching is lowercase substring
// containment against salient entity names.
var (
	startupKeywords = []string{
		"startup", "fast-paced", "fast paced", "dynamic", "agile",
		"disrupt", "scrappy", "venture", "hypergrowth", "hustle",
		"equity", "seed", "founding",
	}
	corporateKeywords = []string{
		"enterprise", "corporation", "corporate", "established",
		"fortune", "global", "stakeholder", "compliance", "governance",
		"process", "professional", "division",
	}
	innovativeKeywords = []string{
		"innovative", "innovation", "cutting-edge", "cutting edge",
		"state-of-the-art", "pioneering", "breakthrough", "novel",
		"next-generation", "research", "modern",
	}
	formalKeywords = []string{
		"formal", "policy", "procedure", "regulation", "standard",
		"requirement", "qualification", "certification", "mandatory",
		"degree",
	}
	casualKeywords = []string{
		"casual", "fun", "relaxed", "flexible", "friendly",
		"laid-back", "laid back", "remote-first", "perks", "snacks",
		"ping-pong",
	}
)

// toneDescriptors are the fixed short descriptor lists attached to a
// resolved tone.
var toneDescriptors = map[model.Tone][]string{
	model.ToneStartup:    {"fast-paced", "ownership"},
	model.ToneInnovative: {"forward-thinking", "experimental"},
	model.ToneCasual:     {"relaxed", "approachable"},
	model.ToneFormal:     {"structured", "precise"},
	model.ToneCorporate:  {"established", "process-driven"},
}
