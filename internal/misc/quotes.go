package misc

import "math/rand"

type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// motivationalQuotes is the static pool served on /quote/random. Shown in the
// app after logging a session or hitting a progression milestone.
var motivationalQuotes = []Quote{
	{Text: "The last three or four reps is what makes the muscle grow.", Author: "Arnold Schwarzenegger"},
	{Text: "Strength does not come from winning. Your struggles develop your strengths.", Author: "Arnold Schwarzenegger"},
	{Text: "A champion is someone who gets up when they can't.", Author: "Jack Dempsey"},
	{Text: "The pain you feel today will be the strength you feel tomorrow.", Author: "Unknown"},
	{Text: "Rest is not idleness.", Author: "John Lubbock"},
	{Text: "Take care of your body. It's the only place you have to live.", Author: "Jim Rohn"},
	{Text: "Slow progress is still progress.", Author: "Unknown"},
	{Text: "You miss one hundred percent of the lifts you skip.", Author: "Unknown"},
}

func RandomQuote() Quote {
	return motivationalQuotes[rand.Intn(len(motivationalQuotes))]
}
