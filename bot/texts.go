package bot

// DefaultTemplateName labels the shared outline template seeded at startup.
const DefaultTemplateName = "Default"

// DefaultOutline is the built-in essay structure offered when the user has no
// template of their own.
const DefaultOutline = `Default essay structure:
1. Introduction and the problem statement
2. Your position on the problem
3. Arguments supporting the position
4. Conclusion`

const (
	textWelcome = `Hello! I am an essay assistant bot.

I can write an essay on any topic, check a finished essay for mistakes, and keep your work in a history you can browse any time.

Press /menu to see what I can do.`

	textMenu = `What would you like to do?

/write — write an essay on a topic
/check — check an essay for mistakes
/templates — manage essay templates
/history — browse your saved essays`

	textHelp = `How to work with me:

1. /write — send me a topic and I will write an essay. You can use the default structure or one of your own templates.
2. /check — send me a finished essay and I will point out spelling, punctuation, style and logic problems.
3. /templates — save your own essay outlines and reuse them.
4. /history — every generated essay is saved; browse and reread them page by page.

Each command starts over: entering a new command drops whatever you were in the middle of.`

	textWritingEssay  = "Writing the essay, this can take a little while..."
	textCheckingEssay = "Checking the essay..."

	textUnknown         = "I did not understand that. Press /menu to see the available commands."
	textUnknownDocument = "I work with plain text only. Send the essay as a text message."
	textUnknownAction   = "This button is no longer active."
)

// Reply-keyboard labels double as command aliases, so pressing a board button
// behaves exactly like typing the command.
const (
	labelWrite     = "✍️ Write an essay"
	labelCheck     = "🔍 Check an essay"
	labelTemplates = "📝 Templates"
	labelHistory   = "📚 My essays"
	labelMenu      = "📖 Menu"
	labelHelp      = "❓ Help"
)
