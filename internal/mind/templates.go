// Thought template tables, indexed by dominant personality trait.
package mind

import (
	"strings"

	"github.com/emberhollow/villagesim/internal/villager"
)

// templateTable maps a dominant trait to candidate lines. {name} is a
// referenced villager, {subject} a need, activity, or place. The traitAny
// entry covers villagers whose traits have no line of their own.
type templateTable map[villager.Trait][]string

const traitAny = villager.Trait(255)

var memoryTemplates = templateTable{
	villager.TraitCheerful: {
		"That chat with {name} really brightened my morning.",
		"I should talk to {name} more often — good sort, that one.",
	},
	villager.TraitGrumpy: {
		"{name} does go on. Still... it wasn't the worst talk.",
		"What did {name} mean by that, exactly?",
	},
	villager.TraitCurious: {
		"{name} mentioned something odd earlier. I want to know more.",
	},
	villager.TraitShy: {
		"I hope I didn't say anything foolish to {name}.",
	},
	villager.TraitSocial: {
		"Talking with {name} is the best part of the day.",
	},
	villager.TraitLoner: {
		"{name} caught me off guard. I prefer my own company, mostly.",
	},
	traitAny: {"I keep coming back to what {name} said."},
}

var observationTemplates = templateTable{
	villager.TraitCurious: {
		"What's {name} up to over there, I wonder?",
		"{name} seems to be in a hurry today.",
	},
	villager.TraitSocial: {
		"There's {name} — maybe I'll catch them later.",
	},
	villager.TraitGrumpy: {
		"{name} again. The village feels smaller every year.",
	},
	villager.TraitShy: {
		"I'll keep my head down until {name} passes.",
	},
	villager.TraitGenerous: {
		"{name} looks tired. I should see if they need anything.",
	},
	traitAny: {"There goes {name}."},
}

var desireTemplates = templateTable{
	villager.TraitCheerful: {
		"What I wouldn't give for {subject} right now — still, can't complain.",
	},
	villager.TraitGrumpy: {
		"No {subject} again. Typical.",
	},
	villager.TraitGreedy: {
		"{subject} — and I'd pay no more than it's worth, mind.",
	},
	villager.TraitLazy: {
		"All I ask of this day is {subject}.",
	},
	villager.TraitHardworking: {
		"Once the work's done, {subject}. Not before.",
	},
	traitAny: {"I could really use {subject}."},
}

var planTemplates = templateTable{
	villager.TraitHardworking: {
		"Plenty still to do with the {subject}. Best keep at it.",
		"The {subject} won't finish itself.",
	},
	villager.TraitLazy: {
		"This {subject} can surely wait until tomorrow.",
	},
	villager.TraitCurious: {
		"Maybe there's a better way to go about this {subject}.",
	},
	villager.TraitGreedy: {
		"If this {subject} goes well, there's coin in it.",
	},
	traitAny: {"Back to the {subject}, then."},
}

var reflectionTemplates = templateTable{
	villager.TraitCheerful: {
		"A fine day in the village, all told.",
		"Thinking of {subject} always lifts my spirits.",
	},
	villager.TraitGrumpy: {
		"Village isn't what it used to be.",
		"That {subject}... someone ought to do something about it.",
	},
	villager.TraitCurious: {
		"I wonder what lies beyond the north fields.",
		"Strange how often I find myself back at the {subject}.",
	},
	villager.TraitLoner: {
		"Quiet, at last.",
	},
	villager.TraitGenerous: {
		"Perhaps I'll set something aside for the neighbors this week.",
	},
	traitAny: {"Another day in the village."},
}

var dreamSubjects = []string{
	"old oak by the well", "harvest feast", "river path",
	"summer fair", "chapel garden",
}

// render picks the dominant trait for the context and fills a template.
func (g *Generator) render(table templateTable, v *villager.Villager, name, subject string) string {
	lines := g.linesFor(table, v)
	line := lines[g.rng.Intn(len(lines))]
	line = strings.ReplaceAll(line, "{name}", name)
	line = strings.ReplaceAll(line, "{subject}", subject)
	return line
}

// linesFor selects template lines by the villager's dominant trait,
// weighting traits that match current context (a lonely extravert thinks
// in social terms; a tired villager thinks like a lazy one).
func (g *Generator) linesFor(table templateTable, v *villager.Villager) []string {
	weights := make([]float64, len(v.Traits))
	for i, t := range v.Traits {
		w := 1.0
		if _, ok := table[t]; !ok {
			weights[i] = 0
			continue
		}
		if t == villager.TraitSocial && v.Needs.Social < 40 && v.Scores.Extraversion > 0.5 {
			w += 1.5
		}
		if t == villager.TraitLazy && v.Needs.Energy < 40 {
			w += 1.0
		}
		if t == villager.TraitGrumpy && v.Needs.Mood < 40 {
			w += 1.0
		}
		if t == villager.TraitCheerful && v.Needs.Mood > 70 {
			w += 1.0
		}
		weights[i] = w
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total > 0 {
		t := v.Traits[g.rng.Pick(weights)]
		if lines, ok := table[t]; ok {
			return lines
		}
	}
	return table[traitAny]
}
