// Dialogue generation — template tables keyed by interaction kind, with a
// personality flavor line chosen from the initiator's traits.
package social

import (
	"strings"

	"github.com/emberhollow/villagesim/internal/villager"
)

// dialogueTemplates holds line templates per interaction kind.
// {name} is the target's display name, {item} a topical subject.
var dialogueTemplates = map[Kind][]string{
	KindGreeting: {
		"Good day to you, {name}.",
		"Well met, {name}! I don't believe we've spoken before.",
		"Morning, {name}. Fine weather for it.",
	},
	KindConversation: {
		"Have you seen the state of the {item} this year, {name}?",
		"{name}, you won't believe what happened at the market.",
		"The days grow long, {name}. How fares your family?",
		"I was just thinking about you, {name}.",
	},
	KindTrade: {
		"I've got good {item} today, {name} — fair price for you.",
		"{name}, care to look over my {item}?",
		"A deal's a deal, {name}. Best {item} in the village.",
	},
	KindHelp: {
		"Here, {name}, let me give you a hand with that.",
		"You look worn out, {name}. Take this.",
		"We look after our own, {name}.",
	},
	KindGossip: {
		"Between us, {name}, have you heard about the {item}?",
		"Don't spread this around, {name}, but...",
		"{name}, the things people say at the tavern...",
	},
	KindArgument: {
		"I've had just about enough of this, {name}!",
		"You've got some nerve, {name}.",
		"We'll settle this another time, {name}, mark my words.",
	},
}

// conversationTopics fills the {item} placeholder.
var conversationTopics = []string{
	"harvest", "weather", "roads", "old mill", "chapel bell",
	"market prices", "well water", "north fields",
}

// traitFlavors appends a short aside characteristic of the initiator.
var traitFlavors = map[villager.Trait]string{
	villager.TraitCheerful:    " (said with a broad smile)",
	villager.TraitGrumpy:      " (muttered)",
	villager.TraitShy:         " (barely above a whisper)",
	villager.TraitCurious:     " (leaning in, eyes bright)",
	villager.TraitGenerous:    " (pressing a small gift into their hand)",
	villager.TraitGreedy:      " (eyeing their coin purse)",
}

// dialogueFor renders a dialogue line for an interaction.
func (r *Resolver) dialogueFor(kind Kind, a, b *villager.Villager) string {
	lines := dialogueTemplates[kind]
	if len(lines) == 0 {
		lines = dialogueTemplates[KindConversation]
	}
	line := lines[r.rng.Intn(len(lines))]

	topic := conversationTopics[r.rng.Intn(len(conversationTopics))]
	line = strings.ReplaceAll(line, "{name}", b.Name)
	line = strings.ReplaceAll(line, "{item}", topic)

	// Roughly one line in three carries the speaker's manner.
	if r.rng.Chance(0.35) {
		for _, t := range a.Traits {
			if flavor, ok := traitFlavors[t]; ok {
				line += flavor
				break
			}
		}
	}
	return line
}
