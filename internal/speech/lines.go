package speech

// Every sentence the tutor says lives here so its voice stays
// consistent. Lines are short; the synthesizer handles inflection.

import (
	"fmt"
	"math/rand"
	"strings"
)

// Greeting and global.

func LineWelcome() string {
	return "Hi, I'm Otto. What animal shall we draw today?"
}

func LineBye() string {
	return "Bye. Keep drawing."
}

func LineNothingToRepeat() string {
	return "I haven't said anything yet."
}

func LineHelp() string {
	return "Name an animal to start. While drawing, say next, back, redraw or home. Say list to hear what I can draw."
}

func LineUnknown(input string) string {
	if input == "" {
		return "Sorry, I didn't catch that."
	}
	return fmt.Sprintf("Sorry, I didn't catch that: %s.", input)
}

// Selecting.

// LineAnimalList reads out the catalog.
func LineAnimalList(names []string) string {
	if len(names) == 0 {
		return "I don't know any animals yet."
	}
	return fmt.Sprintf("I can draw %s.", JoinOr(names, "and"))
}

// LineHistory sums up the session history.
func LineHistory(finished, started int) string {
	switch {
	case started == 0:
		return "You haven't drawn anything yet."
	case finished == started:
		return fmt.Sprintf("You've finished %s so far. Nice work!", plural(finished, "drawing"))
	default:
		return fmt.Sprintf("You've started %s and finished %d.", plural(started, "drawing"), finished)
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func LineNoAnimal() string {
	return "Pick an animal first."
}

// LineSuggestion is said when a misspelled or partial name was matched.
func LineSuggestion(input, name string) string {
	return fmt.Sprintf("No %s in my book, I think you meant %s.", input, name)
}

// LineConfirmSuggestion asks before switching to a close match.
func LineConfirmSuggestion(input, name string) string {
	return fmt.Sprintf("I don't know %s. Did you mean %s? Say %s to draw it.", input, name, name)
}

// LineFallback offers numbered alternatives for an unknown name. The
// category is spoken when one matched the input.
func LineFallback(input, category string, options []string) string {
	var b strings.Builder
	switch {
	case input == "":
		b.WriteString("Let's pick something. ")
	case category != "":
		fmt.Fprintf(&b, "I can't draw %s yet, but here are some %s animals. ", input, category)
	default:
		fmt.Fprintf(&b, "I can't draw %s yet. ", input)
	}
	if len(options) == 0 {
		b.WriteString("I have nothing to offer.")
		return b.String()
	}
	items := make([]string, len(options))
	for i, o := range options {
		items[i] = fmt.Sprintf("%d, %s", i+1, o)
	}
	fmt.Fprintf(&b, "How about %s?", JoinOr(items, "or"))
	return b.String()
}

func LineInvalidPick(n int) string {
	return fmt.Sprintf("There is no option %d.", n)
}

// Drawing.

func LineStart(name string, steps int, difficulty string) string {
	s := fmt.Sprintf("Let's draw a %s. It takes %d steps.", name, steps)
	if difficulty != "" {
		s = fmt.Sprintf("Let's draw a %s. It's %s and takes %d steps.", name, difficulty, steps)
	}
	return s
}

// LineStep narrates one step, counted from 1.
func LineStep(n, total int, instruction string) string {
	return fmt.Sprintf("Step %d of %d. %s", n, total, instruction)
}

func LineFirstStep() string {
	return "This is the first step."
}

func LineRedraw(name string) string {
	return fmt.Sprintf("Starting the %s again from the top.", name)
}

func LineHome() string {
	return "Okay. Which animal next?"
}

// LineFinished congratulates and suggests related animals.
func LineFinished(name string, related []string) string {
	s := fmt.Sprintf("Well done, your %s is finished!", name)
	if len(related) > 0 {
		s += fmt.Sprintf(" Next you could try %s.", JoinOr(related, "or"))
	}
	return s
}

// Idle nudges, picked at random so repeats don't drone.

var nudges = []string{
	"Take your time. Say next when you're ready.",
	"How's it going? Say next to move on.",
	"Still there? Say repeat to hear the step again.",
	"No rush. Say next when that part is done.",
}

// LineNudge returns a random idle reminder.
func LineNudge() string {
	return nudges[rand.Intn(len(nudges))]
}

// Wake word acknowledgements.

var listeningFillers = []string{
	"I'm listening.",
	"Yes?",
	"Go ahead.",
	"What shall we draw?",
	"I'm here.",
}

// LineListening returns a random acknowledgement for the wake word.
func LineListening() string {
	return listeningFillers[rand.Intn(len(listeningFillers))]
}

// Prefetchable returns the fixed lines worth warming the audio cache with.
func Prefetchable() []string {
	out := []string{LineWelcome(), LineHelp(), LineHome(), LineFirstStep(), LineNoAnimal()}
	out = append(out, nudges...)
	return append(out, listeningFillers...)
}

// JoinOr joins items as "a, b or c" using the given final conjunction.
func JoinOr(items []string, conj string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " " + conj + " " + items[len(items)-1]
}
